package diagfmt_test

import (
	"strings"
	"testing"

	"oir/internal/diag"
	"oir/internal/diagfmt"
	"oir/internal/source"
)

func sampleBag() (*diag.Bag, *source.FileSet, source.FileID) {
	fs := source.NewFileSet()
	id := fs.Add("demo.oir", []byte("func @f {\nbb0:\n  destroy %nope\n  return\n}\n"))
	bag := diag.NewBag(10)
	bag.Error(diag.CodeUnknownValue, source.Span{File: id, Start: 17, End: 30}, "unknown value %%nope")
	return bag, fs, id
}

// TestPrettyHeaderAndPreview checks the location header and caret line.
func TestPrettyHeaderAndPreview(t *testing.T) {
	bag, fs, _ := sampleBag()
	var sb strings.Builder
	diagfmt.Pretty(&sb, bag, fs, diagfmt.PrettyOpts{ShowPreview: true})
	out := sb.String()
	if !strings.Contains(out, "demo.oir:3:3: error OIR0002: unknown value %nope") {
		t.Errorf("missing header in:\n%s", out)
	}
	if !strings.Contains(out, "destroy %nope") {
		t.Errorf("missing source line in:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("missing caret in:\n%s", out)
	}
}

// TestPrettyNotes checks secondary notes are rendered when enabled.
func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("demo.oir", []byte("line one\nline two\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.CodeMalformedIR,
		Message:  "primary",
		Primary:  source.Span{File: id, Start: 0, End: 4},
		Notes:    []diag.Note{{Span: source.Span{File: id, Start: 9, End: 13}, Msg: "related"}},
	})
	var sb strings.Builder
	diagfmt.Pretty(&sb, bag, fs, diagfmt.PrettyOpts{ShowNotes: true})
	out := sb.String()
	if !strings.Contains(out, "note: related") {
		t.Errorf("missing note in:\n%s", out)
	}
	var noNotes strings.Builder
	diagfmt.Pretty(&noNotes, bag, fs, diagfmt.PrettyOpts{})
	if strings.Contains(noNotes.String(), "related") {
		t.Error("notes rendered while disabled")
	}
}

// TestJSONOutput checks machine-readable rendering.
func TestJSONOutput(t *testing.T) {
	bag, fs, _ := sampleBag()
	var sb strings.Builder
	if err := diagfmt.JSON(&sb, bag, fs, diagfmt.JSONOpts{IncludePositions: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	out := sb.String()
	for _, want := range []string{`"severity": "error"`, `"code": "OIR0002"`, `"path": "demo.oir"`, `"line": 3`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in:\n%s", want, out)
		}
	}
}
