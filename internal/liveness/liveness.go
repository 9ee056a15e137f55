// Package liveness computes pruned SSA liveness for a single value: the
// minimal set of program points at which the value is needed, ignoring any
// pre-existing destroy placement.
package liveness

import (
	"oir/internal/ir"
)

// BlockState is the liveness summary of one block relative to the tracked
// value.
type BlockState uint8

const (
	// Dead: the value is provably not needed past block entry.
	Dead BlockState = iota
	// LiveWithin: the value's last need is inside this block.
	LiveWithin
	// LiveOut: the value is needed at block exit.
	LiveOut
)

// String returns the state name.
func (s BlockState) String() string {
	switch s {
	case Dead:
		return "dead"
	case LiveWithin:
		return "live-within"
	case LiveOut:
		return "live-out"
	default:
		return "?"
	}
}

// UserKind classifies an instruction's relationship to the pruned live
// range.
type UserKind uint8

const (
	// NonUser: not a registered use of the value.
	NonUser UserKind = iota
	// NonLifetimeEnding: a registered use that does not end the lifetime.
	NonLifetimeEnding
	// LifetimeEnding: a registered use that ends the lifetime.
	LifetimeEnding
)

// Pruned tracks per-block liveness and the set of interesting users for one
// value. It is constructed fresh per canonicalized value and discarded
// afterwards.
type Pruned struct {
	fn    *ir.Function
	state []BlockState // indexed by BlockID
	// users maps each interesting user to whether it ends the lifetime.
	// A user recorded through several operands ends the lifetime only if
	// every recorded use does.
	users    map[*ir.Instr]bool
	worklist []*ir.Block
}

// NewPruned initializes liveness for def: the defining block starts
// LiveWithin, everything else Dead.
func NewPruned(def *ir.Value) *Pruned {
	fn := def.ParentBlock().Fn()
	p := &Pruned{
		fn:    fn,
		state: make([]BlockState, fn.NumBlocks()),
		users: make(map[*ir.Instr]bool),
	}
	p.state[def.ParentBlock().ID()] = LiveWithin
	return p
}

// BlockState returns the liveness state of b.
func (p *Pruned) BlockState(b *ir.Block) BlockState {
	return p.state[b.ID()]
}

// InterestingUser classifies in against the registered users.
func (p *Pruned) InterestingUser(in *ir.Instr) UserKind {
	ending, ok := p.users[in]
	switch {
	case !ok:
		return NonUser
	case ending:
		return LifetimeEnding
	default:
		return NonLifetimeEnding
	}
}

// UpdateForUse registers user as an interesting use and propagates block
// liveness backward from its block.
func (p *Pruned) UpdateForUse(user *ir.Instr, lifetimeEnding bool) {
	if prev, ok := p.users[user]; ok {
		p.users[user] = prev && lifetimeEnding
	} else {
		p.users[user] = lifetimeEnding
	}
	p.computeUseBlockLiveness(user.Parent())
}

// computeUseBlockLiveness marks useBB LiveWithin and walks predecessors,
// marking them LiveOut until already-live blocks stop the walk. The def
// block was marked at initialization, so propagation never escapes the
// region dominated by the definition.
func (p *Pruned) computeUseBlockLiveness(useBB *ir.Block) {
	if p.state[useBB.ID()] != Dead {
		return
	}
	p.state[useBB.ID()] = LiveWithin
	p.worklist = append(p.worklist[:0], useBB)
	for len(p.worklist) > 0 {
		bb := p.worklist[len(p.worklist)-1]
		p.worklist = p.worklist[:len(p.worklist)-1]
		for _, pred := range bb.Preds() {
			switch p.state[pred.ID()] {
			case Dead:
				p.worklist = append(p.worklist, pred)
				p.state[pred.ID()] = LiveOut
			case LiveWithin:
				p.state[pred.ID()] = LiveOut
			case LiveOut:
				// Already propagated.
			}
		}
	}
}

// UpdateForBorrowingOperand registers the value as live across the whole
// borrow scope introduced by op's user: the borrow itself and every
// end_borrow closing it become non-ending uses. It reports false when the
// scope is not well formed for this purpose (the scope never ends, is
// reborrowed across a control-flow edge, or escapes), in which case the
// caller must abort canonicalization.
func (p *Pruned) UpdateForBorrowingOperand(op *ir.Operand) bool {
	borrow := op.User()
	if borrow.Kind() != ir.InstrBorrow {
		return false
	}
	p.UpdateForUse(borrow, false)

	foundEnd := false
	work := []*ir.Value{borrow.Result()}
	for len(work) > 0 {
		v := work[len(work)-1]
		work = work[:len(work)-1]
		for _, use := range v.Uses() {
			user := use.User()
			switch user.Kind() {
			case ir.InstrEndBorrow:
				p.UpdateForUse(user, false)
				foundEnd = true
			case ir.InstrBr:
				// Reborrow across an edge: scope not locally bounded.
				return false
			case ir.InstrEscape, ir.InstrToUnowned, ir.InstrBitCast:
				return false
			case ir.InstrExtract, ir.InstrInteriorAddr:
				if r := user.Result(); r != nil {
					work = append(work, r)
				}
			default:
				// Interior use, covered by the scope ends.
			}
		}
	}
	return foundEnd
}
