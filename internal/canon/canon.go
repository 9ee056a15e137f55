// Package canon canonicalizes the lifetimes of owned OIR values.
//
// For one owned, non-lexical SSA value the pass computes pruned liveness of
// the value and its copies, extends it across overlapping exclusivity
// regions, materializes the minimal set of final destroys, and rewrites the
// def-use graph so that every copy left in the IR is load-bearing:
//
//  1. Compute pruned liveness of the def and its copies, ignoring original
//     destroys.
//  2. Extend liveness so no destroy lands inside an overlapping exclusivity
//     region (iterated to a fixpoint).
//  3. Find or insert the final destroy on every liveness boundary.
//  4. Rewrite copies and destroys: delete the redundant ones, insert new
//     copies only where a consuming use lost the claim on the original.
//
// Steps 1-2 are pure analysis; the IR is first mutated in step 3. A def
// that is not owned, is lexically pinned, or has an escaping use is
// reported as not canonicalizable with the IR untouched.
package canon

import (
	"fmt"

	"oir/internal/access"
	"oir/internal/dom"
	"oir/internal/ir"
	"oir/internal/liveness"
	"oir/internal/observ"
)

// phase is the driver state. Transitions run strictly forward; abort is
// only reachable before any mutation.
type phase uint8

const (
	phaseInit phase = iota
	phaseLivenessComputed
	phaseExclusivityExtended
	phaseDestroysPlaced
	phaseRewritten
	phaseDone
	phaseAborted
)

// Stats counts the instructions created and eliminated by the pass. The
// counts are diagnostic, not semantically load-bearing.
type Stats struct {
	CopiesGenerated    int
	CopiesEliminated   int
	DestroysGenerated  int
	DestroysEliminated int
}

// Reset zeroes all counters.
func (s *Stats) Reset() { *s = Stats{} }

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.CopiesGenerated += other.CopiesGenerated
	s.CopiesEliminated += other.CopiesEliminated
	s.DestroysGenerated += other.DestroysGenerated
	s.DestroysEliminated += other.DestroysEliminated
}

// Changed reports whether the pass touched the IR at all.
func (s Stats) Changed() bool {
	return s != Stats{}
}

// Options configures a Canonicalizer.
type Options struct {
	// PruneDebug treats debug observations outside the pruned live range
	// as removable instead of liveness-extending.
	PruneDebug bool
	// Timer, when set, records per-phase durations.
	Timer *observ.Timer
}

// Canonicalizer canonicalizes owned-value lifetimes within one function.
// It is single-threaded and assumes exclusive access to the IR for the
// duration of each call; no state survives between calls except Stats.
type Canonicalizer struct {
	fn        *ir.Function
	editor    *ir.Editor
	domTree   *dom.Tree
	accessIdx *access.Index

	pruneDebug bool
	timer      *observ.Timer
	stats      Stats

	// Per-value transient state, discarded after every call.
	phase           phase
	currentDef      *ir.Value
	liveness        *liveness.Pruned
	defUseWorklist  valueWorklist
	blockWorklist   blockWorklist
	consumingBlocks *blockSetVector
	destroys        *instrSetVector
	debugValues     *instrSetVector
	consumes        *consumeInfo
}

// New creates a canonicalizer for fn. The editor's callback sink must not
// carry will-be-deleted or operand-replaced hooks: copy rewriting removes
// operands before deleting instructions, so those hooks would fire on
// stale state. A misconfigured sink fails here, not at mutation time.
func New(fn *ir.Function, editor *ir.Editor, domTree *dom.Tree, accessIdx *access.Index, opts Options) (*Canonicalizer, error) {
	if err := editor.Callbacks().Validate(); err != nil {
		return nil, err
	}
	return &Canonicalizer{
		fn:              fn,
		editor:          editor,
		domTree:         domTree,
		accessIdx:       accessIdx,
		pruneDebug:      opts.PruneDebug,
		timer:           opts.Timer,
		consumingBlocks: newBlockSetVector(),
		destroys:        newInstrSetVector(),
		debugValues:     newInstrSetVector(),
		consumes:        newConsumeInfo(),
	}, nil
}

// Stats returns the counters accumulated since the last ResetStats.
func (c *Canonicalizer) Stats() Stats { return c.stats }

// ResetStats zeroes the accumulated counters.
func (c *Canonicalizer) ResetStats() { c.stats.Reset() }

// CanonicalizeValueLifetime canonicalizes the lifetime of def. It returns
// true iff a full canonical rewrite was performed. It returns false, with
// the IR untouched, when def is not owned, is lexically pinned, or has a
// use that makes ownership untraceable.
func (c *Canonicalizer) CanonicalizeValueLifetime(def *ir.Value) bool {
	if def.Ownership() != ir.OwnershipOwned {
		return false
	}
	if def.Lexical() {
		return false
	}
	c.initDef(def)

	if !c.timed("liveness", c.computeCanonicalLiveness) {
		c.clear()
		c.phase = phaseAborted
		return false
	}
	c.phase = phaseLivenessComputed

	c.timed("extend", func() bool {
		c.extendLivenessThroughOverlappingAccess()
		return true
	})
	c.phase = phaseExclusivityExtended

	c.timed("destroys", func() bool {
		c.findOrInsertDestroys()
		return true
	})
	c.phase = phaseDestroysPlaced

	c.timed("rewrite", func() bool {
		c.rewriteCopies()
		return true
	})
	c.phase = phaseRewritten

	c.clear()
	c.phase = phaseDone
	return true
}

func (c *Canonicalizer) initDef(def *ir.Value) {
	c.phase = phaseInit
	c.currentDef = def
	c.liveness = liveness.NewPruned(def)
}

// clear discards all transient per-value state so repeated invocations on
// different values never interact.
func (c *Canonicalizer) clear() {
	c.currentDef = nil
	c.liveness = nil
	c.defUseWorklist.clear()
	c.consumingBlocks.clear()
	c.destroys.clear()
	c.debugValues.clear()
	c.consumes.clear()
}

func (c *Canonicalizer) timed(name string, fn func() bool) bool {
	if c.timer == nil {
		return fn()
	}
	idx := c.timer.Begin(name)
	ok := fn()
	c.timer.End(idx, "")
	return ok
}

// CanonicalCopiedDef follows copy chains upward to the root definition a
// copy ultimately duplicates.
func CanonicalCopiedDef(v *ir.Value) *ir.Value {
	for {
		def := v.DefiningInstruction()
		if def == nil || def.Kind() != ir.InstrCopy {
			return v
		}
		v = def.Operand(0).Value()
	}
}

func (c *Canonicalizer) invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("canon: invariant violated: "+format, args...))
	}
}
