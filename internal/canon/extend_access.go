package canon

import (
	"oir/internal/ir"
	"oir/internal/liveness"
)

// endsAccessOverlappingPrunedBoundary reports whether in is a region end
// whose exclusivity scope overlaps the end of the pruned live range. A
// hoisted destroy would then execute inside a scope it previously executed
// outside of.
//
// Not overlapping (ignored):
//
//	%def
//	use %def       // pruned liveness ends here
//	begin_access   // scope unrelated to def
//	end_access
//
// Overlapping (must extend pruned liveness):
//
//	%def
//	begin_access   // scope unrelated to def
//	use %def       // pruned liveness ends here
//	end_access
//
// and likewise when the begin precedes the def itself.
func (c *Canonicalizer) endsAccessOverlappingPrunedBoundary(in *ir.Instr) bool {
	if in.Kind() != ir.InstrEndAccess {
		return false
	}
	if in.Unpaired() {
		return true
	}
	begin := in.BeginAccess()
	beginBB := begin.Parent()
	switch c.liveness.BlockState(beginBB) {
	case liveness.LiveOut:
		// Partial overlap of the form:
		//     %def
		//     begin_access
		//     br ...
		//   bb:
		//     use
		//     end_access
		return true
	case liveness.LiveWithin:
		// Overlap only if an interesting use follows the begin within its
		// block:
		//     %def
		//     begin_access
		//     use
		//     end_access
		instrs := beginBB.Instrs()
		for i := beginBB.IndexOf(begin) + 1; i < len(instrs); i++ {
			if c.liveness.InterestingUser(instrs[i]) != liveness.NonUser {
				return true
			}
		}
		return false
	case liveness.Dead:
		// begin_access and the def are in different blocks:
		//     begin_access
		//     br ...
		//   bb:
		//     %def
		//     end_access
		//
		// The end is dominated by both the def and the begin, so a path
		// from the begin to the def avoiding the end exists only if the
		// begin's block dominates the def's block.
		return c.domTree.ProperlyDominates(beginBB, c.currentDef.ParentBlock())
	}
	c.invariant(false, "covered liveness switch")
	return false
}

// extendLivenessThroughOverlappingAccess finds every exclusivity region
// overlapping the pruned boundary and extends liveness to cover it, treating
// the region end as a non-consuming use. Extension iterates to a fixpoint:
// regions need not be strictly nested relative to the tracked value, so each
// extension can expose a new overlap:
//
//	%def
//	begin_access A
//	use %def        // initial pruned boundary
//	begin_access B
//	end_access A    // boundary after first extension
//	end_access B    // boundary after second extension
//	destroy %def
//
// Only dead blocks backward-reachable from an original consuming block, and
// among those only blocks containing a non-local region end, are scanned.
func (c *Canonicalizer) extendLivenessThroughOverlappingAccess() {
	changed := true
	for changed {
		changed = false
		// Blocks in which liveness may have to be extended. Populated
		// up front so membership can be tested during the scan below.
		blocksToVisit := newBlockSetVector()
		for _, b := range c.consumingBlocks.blocks() {
			blocksToVisit.insert(b)
		}
		for i := 0; i < blocksToVisit.len(); i++ {
			bb := blocksToVisit.at(i)
			// A live block needs no extension within its predecessors.
			if c.liveness.BlockState(bb) != liveness.Dead {
				continue
			}
			for _, pred := range bb.Preds() {
				blocksToVisit.insert(pred)
			}
		}
		for i := 0; i < blocksToVisit.len(); i++ {
			bb := blocksToVisit.at(i)
			blockLiveness := c.liveness.BlockState(bb)
			if blockLiveness == liveness.LiveOut {
				continue
			}
			if blockLiveness == liveness.Dead && !c.accessIdx.ContainsNonLocalEnd(bb) {
				continue
			}
			blockHasUse := blockLiveness == liveness.LiveWithin
			// Whether to skip past the trailing original destroys before
			// considering region ends: extension must not cross a region
			// end that executes after original liveness already ended.
			findLastConsume := c.consumingBlocks.contains(bb) && !c.hasDeadSuccessorIn(bb, blocksToVisit)
			instrs := bb.Instrs()
			for j := len(instrs) - 1; j >= 0; j-- {
				in := instrs[j]
				if findLastConsume {
					findLastConsume = !c.destroys.contains(in)
					continue
				}
				// Stop at the latest use; an earlier end does not overlap.
				if blockHasUse && c.liveness.InterestingUser(in) != liveness.NonUser {
					break
				}
				if c.endsAccessOverlappingPrunedBoundary(in) {
					c.liveness.UpdateForUse(in, false)
					changed = true
					break
				}
			}
			// Liveness changed; restart the CFG traversal.
			if changed {
				break
			}
		}
	}
}

func (c *Canonicalizer) hasDeadSuccessorIn(bb *ir.Block, visit *blockSetVector) bool {
	for _, succ := range bb.Succs() {
		if visit.contains(succ) && c.liveness.BlockState(succ) == liveness.Dead {
			return true
		}
	}
	return false
}
