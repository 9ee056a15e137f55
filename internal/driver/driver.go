// Package driver runs lifetime canonicalization over textual OIR files:
// parse, normalize, canonicalize every owned def, validate, print.
package driver

import (
	"fmt"

	"oir/internal/access"
	"oir/internal/canon"
	"oir/internal/diag"
	"oir/internal/dom"
	"oir/internal/ir"
	"oir/internal/irtext"
	"oir/internal/observ"
	"oir/internal/source"
)

// Options configures a run.
type Options struct {
	PruneDebug         bool
	SplitCriticalEdges bool
	// Jobs bounds the number of files processed concurrently; 0 means
	// GOMAXPROCS.
	Jobs int
	// Timings records per-phase durations.
	Timings bool
	// Cache, when non-nil, short-circuits files whose content and options
	// were seen before.
	Cache *DiskCache
}

// Result is the outcome for one file.
type Result struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	Module *ir.Module
	Stats  canon.Stats
	Output string
	Timer  *observ.Timer
	Cached bool
}

// Ok reports whether the file was processed without errors.
func (r *Result) Ok() bool { return r.Bag == nil || !r.Bag.HasErrors() }

// RunFile parses and canonicalizes a single file already loaded into fset.
func RunFile(fset *source.FileSet, id source.FileID, path string, opts Options) *Result {
	res := &Result{
		Path:   path,
		FileID: id,
		Bag:    diag.NewBag(irtext.MaxDiagnostics),
	}
	if opts.Timings {
		res.Timer = observ.NewTimer()
	}

	if opts.Cache != nil {
		if payload, ok := opts.Cache.Get(fset.Get(id).Hash, opts); ok {
			res.Output = payload.Output
			res.Stats = payload.Stats()
			res.Cached = true
			return res
		}
	}

	m := irtext.Parse(fset, id, res.Bag)
	if m == nil {
		return res
	}
	res.Module = m

	for _, fn := range m.Funcs {
		stats, err := CanonicalizeFunc(fn, opts, res.Timer)
		if err != nil {
			res.Bag.Error(diag.CodeMalformedIR, source.Span{File: id}, "function @%s: %v", fn.Name, err)
			return res
		}
		res.Stats.Add(stats)
	}
	if err := ir.Validate(m); err != nil {
		res.Bag.Error(diag.CodeMalformedIR, source.Span{File: id}, "post-pass validation: %v", err)
		return res
	}
	res.Output = irtext.PrintModule(m)

	if opts.Cache != nil {
		opts.Cache.Put(fset.Get(id).Hash, opts, res)
	}
	return res
}

// CanonicalizeFunc canonicalizes the lifetime of every owned, non-lexical
// def in fn and returns the accumulated counters.
func CanonicalizeFunc(fn *ir.Function, opts Options, timer *observ.Timer) (canon.Stats, error) {
	editor, err := ir.NewEditor(ir.Callbacks{})
	if err != nil {
		return canon.Stats{}, err
	}
	if opts.SplitCriticalEdges {
		ir.SplitCriticalEdges(fn, editor)
	}
	domTree := dom.New(fn)
	accessIdx := access.NewIndex(fn)
	c, err := canon.New(fn, editor, domTree, accessIdx, canon.Options{
		PruneDebug: opts.PruneDebug,
		Timer:      timer,
	})
	if err != nil {
		return canon.Stats{}, fmt.Errorf("setting up canonicalizer: %w", err)
	}
	for _, def := range CollectOwnedDefs(fn) {
		c.CanonicalizeValueLifetime(def)
	}
	return c.Stats(), nil
}

// CollectOwnedDefs gathers the owned, non-lexical defs of fn in a
// deterministic order, skipping copies: a copy is canonicalized through the
// root definition it duplicates.
func CollectOwnedDefs(fn *ir.Function) []*ir.Value {
	var defs []*ir.Value
	consider := func(v *ir.Value) {
		if v == nil || v.Ownership() != ir.OwnershipOwned || v.Lexical() {
			return
		}
		defs = append(defs, v)
	}
	for _, b := range fn.Blocks() {
		for _, arg := range b.Args() {
			consider(arg)
		}
		for _, in := range b.Instrs() {
			if in.Kind() == ir.InstrCopy {
				continue
			}
			consider(in.Result())
		}
	}
	return defs
}
