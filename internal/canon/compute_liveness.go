package canon

import (
	"oir/internal/ir"
	"oir/internal/liveness"
)

// computeCanonicalLiveness walks the def-use graph of the current def,
// following through copies (and, for owned phis, through adjacent
// reborrows) and classifying every reachable use. It reports false when a
// use makes ownership untraceable, in which case no liveness state is
// trusted and the pass must abort without mutation.
func (c *Canonicalizer) computeCanonicalLiveness() bool {
	c.defUseWorklist.initialize(c.currentDef)
	for {
		value := c.defUseWorklist.pop()
		if value == nil {
			break
		}
		if value.IsBlockArg() && value.Ownership() == ir.OwnershipOwned {
			// Guaranteed sibling phis re-establish borrows of this owned
			// phi across the same edges; their uses extend its liveness.
			for _, arg := range value.ParentBlock().Args() {
				if arg.IsReborrow() {
					c.defUseWorklist.insert(arg)
				}
			}
		}
		for _, use := range value.Uses() {
			user := use.User()

			// Recurse through copies.
			if user.Kind() == ir.InstrCopy {
				c.defUseWorklist.insert(user.Result())
				continue
			}
			// Debug observations are deferred rather than
			// liveness-extending: debug visibility must not force extra
			// lifetime. Only those potentially outside the current pruned
			// range are interesting.
			if c.pruneDebug && user.Kind() == ir.InstrDebugValue {
				if c.liveness.BlockState(user.Parent()) != liveness.LiveOut {
					c.debugValues.insert(user)
				}
				continue
			}
			switch cat := ir.Classify(use); cat {
			case ir.NonUse:

			case ir.TrivialUse:
				c.invariant(false, "trivial use of nontrivial value %d", value.ID())

			case ir.ForwardingUnowned, ir.PointerEscape:
				// Ownership is no longer traceable.
				return false

			case ir.InstantaneousUse, ir.UnownedInstantaneousUse, ir.BitwiseEscape:
				c.liveness.UpdateForUse(user, false)

			case ir.ForwardingConsume:
				c.recordConsumingUse(user)
				c.liveness.UpdateForUse(user, true)

			case ir.DestroyingConsume:
				if user.Kind() == ir.InstrDestroy {
					// Original destroys do not force pruned liveness;
					// they are boundary candidates, nothing more.
					c.destroys.insert(user)
				} else {
					c.liveness.UpdateForUse(user, true)
				}
				c.recordConsumingUse(user)

			case ir.Borrow:
				if !c.liveness.UpdateForBorrowingOperand(use) {
					return false
				}

			case ir.InteriorPointer, ir.ForwardingBorrow, ir.EndBorrow:
				// Guaranteed uses reached through adjacent reborrow phis
				// keep the owned value alive but never end its lifetime.
				c.liveness.UpdateForUse(user, false)

			case ir.Reborrow:
				if c.carriesCurrentDef(user) {
					// An adjacent phi consumes the value being reborrowed:
					// this operand does not end the lifetime, but the
					// branch does.
					c.liveness.UpdateForUse(user, true)
					break
				}
				c.liveness.UpdateForUse(user, false)
				// Uses of the reborrowing phi extend liveness.
				reborrow := user.Targets()[0].Args()[use.Index()]
				c.defUseWorklist.insert(reborrow)

			default:
				c.invariant(false, "unhandled use category %s", cat)
			}
		}
	}
	return true
}

// recordConsumingUse registers the user's block as a boundary candidate for
// destroy placement.
func (c *Canonicalizer) recordConsumingUse(user *ir.Instr) {
	c.consumingBlocks.insert(user.Parent())
}

// carriesCurrentDef reports whether any operand of in is the current def.
func (c *Canonicalizer) carriesCurrentDef(in *ir.Instr) bool {
	for i := 0; i < in.NumOperands(); i++ {
		if in.Operand(i).Value() == c.currentDef {
			return true
		}
	}
	return false
}
