package ir

// SplitCriticalEdges rewrites every critical edge (a multi-successor block
// branching to a multi-predecessor block) through a fresh block holding a
// single br. Boundary placement requires critical-edge-free CFGs.
// Returns the number of edges split.
func SplitCriticalEdges(f *Function, e *Editor) int {
	split := 0
	// Snapshot: splitting appends blocks, which must not be revisited.
	blocks := append([]*Block(nil), f.Blocks()...)
	for _, b := range blocks {
		term := b.Terminator()
		if term == nil || len(term.Targets()) < 2 {
			continue
		}
		for i, succ := range term.Targets() {
			if len(succ.Preds()) < 2 {
				continue
			}
			nb := f.NewBlock("")
			succ.removePred(b)
			term.targets[i] = nb
			nb.preds = append(nb.preds, b)
			br := NewBr(succ)
			nb.insertAt(0, br)
			if e != nil {
				e.Callbacks().created(br)
			}
			split++
		}
	}
	return split
}
