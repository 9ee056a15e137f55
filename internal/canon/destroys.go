package canon

import (
	"oir/internal/ir"
	"oir/internal/liveness"
)

// findOrInsertDestroys populates the consume set with the final destroy
// points of the current def: for every boundary identified by pruned
// liveness, exactly one consuming instruction is claimed or created.
//
// The def is postdominated by some subset of its consuming uses, including
// destroys on all return paths; every block inside a loop that keeps the
// value alive is LiveOut by now, so boundaries never land inside one.
func (c *Canonicalizer) findOrInsertDestroys() {
	// Each original consuming use starts a backward CFG walk toward the
	// pruned boundary.
	c.blockWorklist.initializeRange(c.consumingBlocks.blocks())
	for {
		bb := c.blockWorklist.pop()
		if bb == nil {
			break
		}
		switch c.liveness.BlockState(bb) {
		case liveness.LiveOut:
			// A consuming block can end up LiveOut after liveness
			// analysis; it is irrelevant for the boundary.
		case liveness.LiveWithin:
			c.findOrInsertDestroyInBlock(bb)
		case liveness.Dead:
			// Keep searching upward for the boundary.
			for _, pred := range bb.Preds() {
				if c.liveness.BlockState(pred) == liveness.LiveOut {
					c.findOrInsertDestroyOnCFGEdge(pred, bb)
				} else {
					c.blockWorklist.insert(pred)
				}
			}
		}
	}
}

// findDestroyOnCFGEdge looks past destroys and debug observations at the
// head of edgeBB for an existing destroy of def.
func findDestroyOnCFGEdge(edgeBB *ir.Block, def *ir.Value) *ir.Instr {
	for _, in := range edgeBB.Instrs() {
		switch in.Kind() {
		case ir.InstrDebugValue:
			continue
		case ir.InstrDestroy:
			if in.Operand(0).Value() == def {
				return in
			}
			continue
		}
		break
	}
	return nil
}

// findOrInsertDestroyOnCFGEdge places the boundary on the edge pred→succ:
// the def is live out of at least one other successor of pred. A destroy
// already sitting on the edge is reused rather than recreated, possibly
// one placed while canonicalizing another value, so iterated invocation
// stays idempotent. The edge must be non-critical.
func (c *Canonicalizer) findOrInsertDestroyOnCFGEdge(pred, succ *ir.Block) {
	c.invariant(succ.SinglePred() == pred,
		"value live-out on another successor of %s: critical edge to %s", pred.Name(), succ.Name())
	di := findDestroyOnCFGEdge(succ, c.currentDef)
	if di == nil {
		di = ir.NewDestroy(c.currentDef)
		c.editor.InsertAtFront(succ, di)
		c.stats.DestroysGenerated++
	}
	c.consumes.recordFinalConsume(di)
}

// insertDestroyAt places a final destroy for the current def immediately
// before the instruction at idx in bb, unless existingDestroy already
// covers the boundary; then it is reused, and any debug observations
// between idx and it are recovered.
func (c *Canonicalizer) insertDestroyAt(bb *ir.Block, idx int, existingDestroy *ir.Instr) {
	if existingDestroy != nil {
		for i := idx; bb.Instrs()[i] != existingDestroy; i++ {
			if in := bb.Instrs()[i]; in.Kind() == ir.InstrDebugValue {
				c.consumes.popDebugAfterConsume(in)
			}
		}
		c.consumes.recordFinalConsume(existingDestroy)
		return
	}
	di := ir.NewDestroy(c.currentDef)
	c.editor.InsertBefore(bb.Instrs()[idx], di)
	c.consumes.recordFinalConsume(di)
	c.stats.DestroysGenerated++
}

// ignoredByDestroyReuse reports whether scanning for the boundary may step
// over in while keeping a previously seen destroy reusable. Lifetimes are
// allowed to extend up to the next non-ignored instruction so repeated
// destroy rewriting does not fight optimization.
func ignoredByDestroyReuse(k ir.InstrKind) bool {
	return k == ir.InstrDestroy || k == ir.InstrDebugValue
}

// findOrInsertDestroyInBlock resolves a boundary that lies inside bb. Walk
// backward from the terminator: the last interesting use either consumes
// the value (claim it) or a destroy is inserted right after it. A dead
// live range gets its destroy immediately after the def.
func (c *Canonicalizer) findOrInsertDestroyInBlock(bb *ir.Block) {
	defInst := c.currentDef.DefiningInstruction()
	var existingDestroy *ir.Instr
	idx := len(bb.Instrs()) - 1
	for {
		in := bb.Instrs()[idx]
		if c.pruneDebug && in.Kind() == ir.InstrDebugValue {
			if c.debugValues.contains(in) {
				c.debugValues.remove(in)
				c.consumes.recordDebugAfterConsume(in)
			}
		}
		switch c.liveness.InterestingUser(in) {
		case liveness.NonUser:
		case liveness.NonLifetimeEnding:
			// Insert a destroy after this use. A terminator has no
			// "after"; the destroys go on the successor edges instead.
			if in.IsTerminator() {
				for _, succ := range bb.Succs() {
					c.findOrInsertDestroyOnCFGEdge(bb, succ)
				}
			} else {
				c.insertDestroyAt(bb, idx+1, existingDestroy)
			}
			return
		case liveness.LifetimeEnding:
			// This use becomes the final consume.
			c.consumes.recordFinalConsume(in)
			return
		}
		// Not a potential last user. Keep scanning, remembering a destroy
		// of this def for reuse while only ignorable instructions
		// intervene.
		if !ignoredByDestroyReuse(in.Kind()) {
			existingDestroy = nil
		} else if existingDestroy == nil && in.Kind() == ir.InstrDestroy {
			if CanonicalCopiedDef(in.Operand(0).Value()) == c.currentDef {
				existingDestroy = in
			}
		}
		if idx == 0 {
			c.invariant(c.currentDef.IsBlockArg() && c.currentDef.ParentBlock() == bb,
				"reached top of %s without finding the def", bb.Name())
			c.insertDestroyAt(bb, 0, existingDestroy)
			return
		}
		idx--
		// Reaching the def means the live range is dead on arrival:
		// destroy immediately after the definition.
		if bb.Instrs()[idx] == defInst {
			c.insertDestroyAt(bb, idx+1, existingDestroy)
			return
		}
	}
}
