// Package access indexes exclusivity regions per basic block, so lifetime
// extension can skip blocks that cannot possibly end a non-local region.
package access

import (
	"oir/internal/ir"
)

// Index records, per block, whether a non-local region end is present: an
// end_access whose begin_access lives in a different block, or an unpaired
// end_access whose scope is implicit.
type Index struct {
	nonLocalEnd []bool // indexed by BlockID
}

// NewIndex scans f once and builds the per-block summary.
func NewIndex(f *ir.Function) *Index {
	idx := &Index{nonLocalEnd: make([]bool, f.NumBlocks())}
	for _, b := range f.Blocks() {
		for _, in := range b.Instrs() {
			if in.Kind() != ir.InstrEndAccess {
				continue
			}
			if in.Unpaired() || in.BeginAccess().Parent() != b {
				idx.nonLocalEnd[b.ID()] = true
				break
			}
		}
	}
	return idx
}

// ContainsNonLocalEnd reports whether b holds an end_access whose matching
// begin lies outside b (or is implicit).
func (idx *Index) ContainsNonLocalEnd(b *ir.Block) bool {
	return idx.nonLocalEnd[b.ID()]
}
