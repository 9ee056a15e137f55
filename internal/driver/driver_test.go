package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"oir/internal/driver"
	"oir/internal/source"
)

const simpleInput = `func @f {
bb0:
  %v = alloc
  %c = copy %v
  apply @use(%c: owned)
  destroy %v
  return
}
`

const canonicalOutput = `func @f {
bb0:
  %v = alloc
  apply @use(%v: owned)
  return
}
`

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestRunFile checks the full parse-canonicalize-print pipeline on one file.
func TestRunFile(t *testing.T) {
	path := writeInput(t, t.TempDir(), "in.oir", simpleInput)
	fset := source.NewFileSet()
	id, err := fset.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	res := driver.RunFile(fset, id, path, driver.Options{SplitCriticalEdges: true})
	if !res.Ok() {
		t.Fatalf("diagnostics: %+v", res.Bag.Items())
	}
	if res.Output != canonicalOutput {
		t.Errorf("output:\n%s\nwant:\n%s", res.Output, canonicalOutput)
	}
	if res.Stats.CopiesEliminated != 1 || res.Stats.DestroysEliminated != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

// TestRunFileReportsParseErrors checks that bad input fails with
// diagnostics and no output.
func TestRunFileReportsParseErrors(t *testing.T) {
	path := writeInput(t, t.TempDir(), "bad.oir", "func @f {\nbb0:\n  destroy %nope\n  return\n}\n")
	fset := source.NewFileSet()
	id, err := fset.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	res := driver.RunFile(fset, id, path, driver.Options{})
	if res.Ok() {
		t.Fatal("bad input reported as ok")
	}
	if res.Output != "" {
		t.Errorf("output = %q, want empty", res.Output)
	}
}

// TestRunFileTimings checks that the timer records pass phases.
func TestRunFileTimings(t *testing.T) {
	path := writeInput(t, t.TempDir(), "in.oir", simpleInput)
	fset := source.NewFileSet()
	id, _ := fset.Load(path)
	res := driver.RunFile(fset, id, path, driver.Options{Timings: true})
	if !res.Ok() {
		t.Fatalf("diagnostics: %+v", res.Bag.Items())
	}
	if res.Timer == nil || len(res.Timer.Phases()) == 0 {
		t.Error("no phases recorded")
	}
}

// TestDiskCacheRoundTrip checks that a second identical run is served from
// the cache with the same output and counters.
func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := driver.OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	opts := driver.Options{SplitCriticalEdges: true, Cache: cache}
	path := writeInput(t, t.TempDir(), "in.oir", simpleInput)

	fset := source.NewFileSet()
	id, _ := fset.Load(path)
	first := driver.RunFile(fset, id, path, opts)
	if !first.Ok() || first.Cached {
		t.Fatalf("first run: ok=%v cached=%v", first.Ok(), first.Cached)
	}

	fset2 := source.NewFileSet()
	id2, _ := fset2.Load(path)
	second := driver.RunFile(fset2, id2, path, opts)
	if !second.Cached {
		t.Fatal("second run missed the cache")
	}
	if second.Output != first.Output {
		t.Errorf("cached output differs:\n%s\nvs\n%s", second.Output, first.Output)
	}
	if second.Stats != first.Stats {
		t.Errorf("cached stats = %+v, want %+v", second.Stats, first.Stats)
	}
}

// TestDiskCacheKeyedByOptions checks that option changes miss the cache.
func TestDiskCacheKeyedByOptions(t *testing.T) {
	cache, err := driver.OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := writeInput(t, t.TempDir(), "in.oir", simpleInput)

	fset := source.NewFileSet()
	id, _ := fset.Load(path)
	driver.RunFile(fset, id, path, driver.Options{Cache: cache})

	fset2 := source.NewFileSet()
	id2, _ := fset2.Load(path)
	res := driver.RunFile(fset2, id2, path, driver.Options{Cache: cache, PruneDebug: true})
	if res.Cached {
		t.Error("different options must not share a cache entry")
	}
}

// TestRunDir checks the parallel directory run with progress events.
func TestRunDir(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "a.oir", simpleInput)
	writeInput(t, dir, "b.oir", simpleInput)
	writeInput(t, dir, "skip.txt", "not an input")

	events := make(chan driver.Event, 64)
	collected := make(map[string][]driver.Stage)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			collected[filepath.Base(ev.Path)] = append(collected[filepath.Base(ev.Path)], ev.Stage)
		}
	}()

	_, results, err := driver.RunDir(context.Background(), dir, driver.Options{Jobs: 2}, events)
	<-done
	if err != nil {
		t.Fatalf("RunDir: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("have %d results, want 2", len(results))
	}
	for _, res := range results {
		if !res.Ok() {
			t.Errorf("%s: diagnostics %+v", res.Path, res.Bag.Items())
		}
		if res.Output != canonicalOutput {
			t.Errorf("%s: unexpected output:\n%s", res.Path, res.Output)
		}
	}
	for _, name := range []string{"a.oir", "b.oir"} {
		stages := collected[name]
		if len(stages) == 0 || stages[len(stages)-1] != driver.StageDone {
			t.Errorf("%s: stages = %v, want trailing done", name, stages)
		}
	}
	if _, ok := collected["skip.txt"]; ok {
		t.Error("non-.oir file produced events")
	}
}

// TestRunDirEmpty checks the no-input case.
func TestRunDirEmpty(t *testing.T) {
	_, results, err := driver.RunDir(context.Background(), t.TempDir(), driver.Options{}, nil)
	if err != nil {
		t.Fatalf("RunDir: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("have %d results, want 0", len(results))
	}
}

// TestListFilesSorted checks deterministic input discovery.
func TestListFilesSorted(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "b.oir", simpleInput)
	writeInput(t, dir, "a.oir", simpleInput)
	files, err := driver.ListFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.oir" || filepath.Base(files[1]) != "b.oir" {
		t.Errorf("files = %v", files)
	}
}
