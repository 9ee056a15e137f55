// Package dom computes dominator trees over OIR control-flow graphs.
//
// The construction follows the classic iterative scheme over a reverse
// postorder: intersect predecessor dominators walking up postorder numbers
// until the fixpoint. Traversal uses an explicit stack, never recursion, so
// depth is independent of program size.
package dom

import (
	"oir/internal/ir"
)

// Tree answers dominance queries for one function. It is immutable after
// construction; CFG edits invalidate it.
type Tree struct {
	fn    *ir.Function
	idom  []*ir.Block // indexed by BlockID
	ponum []int32     // postorder number per BlockID, -1 if unreachable
}

// New builds the dominator tree of f.
func New(f *ir.Function) *Tree {
	t := &Tree{
		fn:    f,
		idom:  make([]*ir.Block, f.NumBlocks()),
		ponum: make([]int32, f.NumBlocks()),
	}
	for i := range t.ponum {
		t.ponum[i] = -1
	}
	order := postorder(f)
	for i, b := range order {
		t.ponum[b.ID()] = int32(i)
	}

	entry := f.Entry()
	t.idom[entry.ID()] = entry
	changed := true
	for changed {
		changed = false
		// Reverse postorder, skipping the entry.
		for i := len(order) - 1; i >= 0; i-- {
			b := order[i]
			if b == entry {
				continue
			}
			var newIdom *ir.Block
			for _, p := range b.Preds() {
				if t.ponum[p.ID()] < 0 || t.idom[p.ID()] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = t.intersect(p, newIdom)
			}
			if newIdom != nil && t.idom[b.ID()] != newIdom {
				t.idom[b.ID()] = newIdom
				changed = true
			}
		}
	}
	return t
}

// intersect finds the closest common dominator of b and c.
func (t *Tree) intersect(b, c *ir.Block) *ir.Block {
	for b != c {
		for t.ponum[b.ID()] < t.ponum[c.ID()] {
			b = t.idom[b.ID()]
		}
		for t.ponum[c.ID()] < t.ponum[b.ID()] {
			c = t.idom[c.ID()]
		}
	}
	return b
}

// Idom returns b's immediate dominator. The entry block is its own idom.
func (t *Tree) Idom(b *ir.Block) *ir.Block { return t.idom[b.ID()] }

// Dominates reports whether a dominates b (reflexively).
func (t *Tree) Dominates(a, b *ir.Block) bool {
	if t.ponum[b.ID()] < 0 {
		// Unreachable blocks are dominated by everything.
		return true
	}
	for {
		if a == b {
			return true
		}
		idom := t.idom[b.ID()]
		if idom == nil || idom == b {
			return false
		}
		b = idom
	}
}

// ProperlyDominates reports whether a dominates b and a != b.
func (t *Tree) ProperlyDominates(a, b *ir.Block) bool {
	return a != b && t.Dominates(a, b)
}

type blockAndIndex struct {
	b     *ir.Block
	index int // number of successor edges already explored
}

// postorder returns a DFS postordering of f's reachable blocks.
func postorder(f *ir.Function) []*ir.Block {
	seen := make([]bool, f.NumBlocks())
	order := make([]*ir.Block, 0, f.NumBlocks())
	s := make([]blockAndIndex, 0, 32)
	entry := f.Entry()
	s = append(s, blockAndIndex{b: entry})
	seen[entry.ID()] = true
	for len(s) > 0 {
		tos := len(s) - 1
		x := s[tos]
		b := x.b
		succs := b.Succs()
		if i := x.index; i < len(succs) {
			s[tos].index++
			bb := succs[i]
			if !seen[bb.ID()] {
				seen[bb.ID()] = true
				s = append(s, blockAndIndex{b: bb})
			}
			continue
		}
		s = s[:tos]
		order = append(order, b)
	}
	return order
}
