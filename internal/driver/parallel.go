package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"oir/internal/source"
)

// ListFiles returns the sorted list of *.oir files under dir.
func ListFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".oir") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// RunDir canonicalizes every *.oir file under dir in parallel. Per-file
// progress is reported through events when non-nil; the channel is closed
// when the run finishes.
func RunDir(ctx context.Context, dir string, opts Options, events chan<- Event) (*source.FileSet, []*Result, error) {
	if events != nil {
		defer close(events)
	}
	files, err := ListFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fset := source.NewFileSet()
	if len(files) == 0 {
		return fset, nil, nil
	}

	// Preload sequentially: the FileSet is not safe for concurrent Add.
	ids := make([]source.FileID, len(files))
	loadErrs := make([]error, len(files))
	for i, path := range files {
		ids[i], loadErrs[i] = fset.Load(path)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine owns a distinct index; no mutex needed.
	results := make([]*Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			emit(events, Event{Path: path, Stage: StageParse})
			if loadErrs[i] != nil {
				results[i] = &Result{Path: path}
				emit(events, Event{Path: path, Stage: StageFailed, Msg: loadErrs[i].Error()})
				return loadErrs[i]
			}
			emit(events, Event{Path: path, Stage: StageCanon})
			res := RunFile(fset, ids[i], path, opts)
			results[i] = res
			if res.Ok() {
				emit(events, Event{Path: path, Stage: StageDone})
			} else {
				emit(events, Event{Path: path, Stage: StageFailed, Msg: "diagnostics reported"})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fset, results, err
	}
	return fset, results, nil
}

func emit(events chan<- Event, ev Event) {
	if events != nil {
		events <- ev
	}
}
