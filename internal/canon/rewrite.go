package canon

import (
	"oir/internal/ir"
	"oir/internal/liveness"
)

// copyLiveUse gives use its own ownership token: the lifetime extends
// beyond this consuming use, so the original cannot be surrendered here.
func (c *Canonicalizer) copyLiveUse(use *ir.Operand) {
	cp := ir.NewCopy(use.Value())
	c.editor.InsertBefore(use.User(), cp)
	c.editor.RedirectOperand(use, cp.Result())
	c.stats.CopiesGenerated++
}

// rewriteCopies revisits the def-use graph of the current def. Unneeded
// original copies and destroys are deleted; interior consuming uses that
// lost the claim on the original receive a fresh copy. This phase performs
// only IR-local edits and cannot fail once the boundary has been placed.
func (c *Canonicalizer) rewriteCopies() {
	c.invariant(c.currentDef.Ownership() == ir.OwnershipOwned, "rewriting a non-owned def")

	toDelete := newInstrSetVector()
	c.defUseWorklist.clear()

	// Visit one operand of the def-use graph. Reports whether the operand
	// can keep using the current definition; false means it needs a copy.
	visitUse := func(use *ir.Operand) bool {
		user := use.User()
		// Recurse through copies.
		if user.Kind() == ir.InstrCopy {
			c.defUseWorklist.insert(user.Result())
			return true
		}
		if user.Kind() == ir.InstrDestroy {
			// A destroy claimed as final stays; any other is redundant.
			if !c.consumes.claimConsume(user) {
				toDelete.insert(user)
				c.stats.DestroysEliminated++
			}
			return true
		}
		// Non-consuming uses need no copy and cannot be final destroys.
		// Any lifetime-ending use left here is a true consume: borrow and
		// reborrow operands were filtered out during liveness.
		if !ir.Classify(use).IsConsuming() {
			return true
		}
		// A consuming use that was not chosen as a final consume, or
		// whose claim was already discharged through another operand,
		// must act on a copy.
		return c.consumes.claimConsume(user)
	}

	for _, use := range snapshotUses(c.currentDef) {
		if !visitUse(use) {
			c.copyLiveUse(use)
		}
	}
	for {
		value := c.defUseWorklist.pop()
		if value == nil {
			break
		}
		srcCopy := value.DefiningInstruction()
		// Recurse through the copy's own uses, reusing the copy in place
		// for at most one same-block use instead of inserting a fresh one.
		var reusedCopyOp *ir.Operand
		for _, use := range snapshotUses(srcCopy.Result()) {
			if !visitUse(use) {
				if reusedCopyOp == nil && srcCopy.Parent() == use.User().Parent() {
					reusedCopyOp = use
				} else {
					c.copyLiveUse(use)
				}
			}
		}
		if reusedCopyOp != nil && srcCopy.Result().HasOneUse() {
			// The copy already sits where it is needed; keep it as is.
			continue
		}
		c.editor.ReplaceAllUses(srcCopy.Result(), srcCopy.Operand(0).Value())
		if reusedCopyOp != nil {
			c.editor.RedirectOperand(reusedCopyOp, srcCopy.Result())
		} else if toDelete.insert(srcCopy) {
			c.stats.CopiesEliminated++
		}
	}
	c.invariant(!c.consumes.hasUnclaimed(), "consume set has unclaimed entries")

	// Deferred debug observations in dead blocks sit past every final
	// consume; queue them for deletion alongside the unrecovered ones.
	for _, dvi := range c.debugValues.instrs() {
		if c.liveness.BlockState(dvi.Parent()) == liveness.Dead {
			c.consumes.recordDebugAfterConsume(dvi)
		}
	}
	for _, dvi := range c.consumes.debugInstsAfterConsume() {
		c.editor.Delete(dvi)
	}

	for _, in := range toDelete.instrs() {
		c.editor.Delete(in)
	}
}

// snapshotUses copies the use list so the live list can be edited during
// iteration.
func snapshotUses(v *ir.Value) []*ir.Operand {
	return append([]*ir.Operand(nil), v.Uses()...)
}
