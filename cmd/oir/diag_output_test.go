package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"oir/internal/diag"
	"oir/internal/driver"
	"oir/internal/source"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("color", "off", "")
	cmd.Flags().String("diag-format", "pretty", "")
	cmd.Flags().Int("max-diagnostics", 100, "")
	return cmd
}

func oneErrorBag() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	id := fs.Add("demo.oir", []byte("func @f {\nbb0:\n  destroy %nope\n  return\n}\n"))
	bag := diag.NewBag(10)
	bag.Error(diag.CodeUnknownValue, source.Span{File: id, Start: 17, End: 22}, "unknown value %%nope")
	return bag, fs
}

// TestRenderDiagnosticsJSON checks that --diag-format json switches the
// output to the machine-readable form.
func TestRenderDiagnosticsJSON(t *testing.T) {
	bag, fs := oneErrorBag()
	cmd := newTestCommand()
	if err := cmd.Flags().Set("diag-format", "json"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var sb strings.Builder
	cmd.SetErr(&sb)
	renderDiagnostics(cmd, bag, fs)
	out := sb.String()
	if !strings.Contains(out, `"code": "OIR0002"`) {
		t.Errorf("missing code field in:\n%s", out)
	}
	if !strings.Contains(out, `"path": "demo.oir"`) {
		t.Errorf("missing path field in:\n%s", out)
	}
}

// TestRenderDiagnosticsPrettyDefault checks the human-readable form stays
// the default.
func TestRenderDiagnosticsPrettyDefault(t *testing.T) {
	bag, fs := oneErrorBag()
	cmd := newTestCommand()
	var sb strings.Builder
	cmd.SetErr(&sb)
	renderDiagnostics(cmd, bag, fs)
	if !strings.Contains(sb.String(), "demo.oir:3:3: error OIR0002") {
		t.Errorf("missing pretty header in:\n%s", sb.String())
	}
}

// TestDrainEvents checks that a view exiting early does not leave the
// driver blocked on the event buffer.
func TestDrainEvents(t *testing.T) {
	events := make(chan driver.Event, 1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 16; i++ {
			events <- driver.Event{Path: "a.oir", Stage: driver.StageParse}
		}
		close(events)
		close(done)
	}()
	drainEvents(events)
	select {
	case <-done:
	default:
		t.Error("producer still blocked after drain")
	}
}
