package driver

// Stage identifies how far one file has progressed through a run.
type Stage uint8

const (
	// StageQueued: not started yet.
	StageQueued Stage = iota
	// StageParse: being parsed.
	StageParse
	// StageCanon: lifetimes being canonicalized.
	StageCanon
	// StageDone: finished without errors.
	StageDone
	// StageFailed: finished with errors.
	StageFailed
)

// String returns a short status label.
func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageParse:
		return "parsing"
	case StageCanon:
		return "canonicalizing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "?"
	}
}

// Event is one progress update for a file.
type Event struct {
	Path  string
	Stage Stage
	Msg   string
}
