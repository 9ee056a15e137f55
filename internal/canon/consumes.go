package canon

import (
	"oir/internal/ir"
)

// consumeInfo tracks the set of instructions chosen as final consuming uses
// of the canonical lifetime. Each recorded consume must be claimed exactly
// once during copy rewriting; an unclaimed leftover is a contract violation.
type consumeInfo struct {
	// final maps each chosen consume to whether it has been claimed.
	final map[*ir.Instr]bool
	order []*ir.Instr

	// debugAfter holds debug observations that sit past the final consume
	// and must be deleted unless recovered.
	debugAfter *instrSetVector
}

func newConsumeInfo() *consumeInfo {
	return &consumeInfo{
		final:      make(map[*ir.Instr]bool),
		debugAfter: newInstrSetVector(),
	}
}

func (ci *consumeInfo) recordFinalConsume(in *ir.Instr) {
	if _, ok := ci.final[in]; ok {
		return
	}
	ci.final[in] = false
	ci.order = append(ci.order, in)
}

// claimConsume reports whether in was recorded as a final consume and marks
// it claimed. A second claim of the same instruction fails.
func (ci *consumeInfo) claimConsume(in *ir.Instr) bool {
	claimed, ok := ci.final[in]
	if !ok || claimed {
		return false
	}
	ci.final[in] = true
	return true
}

func (ci *consumeInfo) hasUnclaimed() bool {
	for _, claimed := range ci.final {
		if !claimed {
			return true
		}
	}
	return false
}

func (ci *consumeInfo) recordDebugAfterConsume(dvi *ir.Instr) {
	ci.debugAfter.insert(dvi)
}

// popDebugAfterConsume recovers a debug observation that turned out to sit
// before the chosen destroy after all.
func (ci *consumeInfo) popDebugAfterConsume(dvi *ir.Instr) {
	if !ci.debugAfter.seen[dvi] {
		return
	}
	delete(ci.debugAfter.seen, dvi)
	for i, in := range ci.debugAfter.order {
		if in == dvi {
			ci.debugAfter.order = append(ci.debugAfter.order[:i], ci.debugAfter.order[i+1:]...)
			break
		}
	}
}

func (ci *consumeInfo) debugInstsAfterConsume() []*ir.Instr {
	return ci.debugAfter.instrs()
}

func (ci *consumeInfo) clear() {
	ci.final = make(map[*ir.Instr]bool)
	ci.order = ci.order[:0]
	ci.debugAfter.clear()
}
