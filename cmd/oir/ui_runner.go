package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"oir/internal/driver"
	"oir/internal/source"
	"oir/internal/ui"
)

type runOutcome struct {
	fset    *source.FileSet
	results []*driver.Result
	err     error
}

// runDirWithUI drives driver.RunDir behind a Bubble Tea progress view.
// The driver closes the event channel when the run finishes, which quits
// the program.
func runDirWithUI(ctx context.Context, title, dir string, files []string, opts driver.Options) (*source.FileSet, []*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		fset, results, err := driver.RunDir(ctx, dir, opts, events)
		outcomeCh <- runOutcome{fset: fset, results: results, err: err}
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// The view can exit before the run does (ctrl+c); keep consuming so
	// the driver never blocks on a full event buffer.
	drainEvents(events)
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fset, outcome.results, uiErr
	}
	return outcome.fset, outcome.results, outcome.err
}

// drainEvents discards progress events until the driver closes the channel.
func drainEvents(events <-chan driver.Event) {
	for range events {
	}
}
