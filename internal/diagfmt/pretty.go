// Package diagfmt renders collected diagnostics for terminals and tooling.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"oir/internal/diag"
	"oir/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждого diag печатает:
// <path>:<line>:<col>: <sev> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if w == nil || bag == nil {
		return
	}
	sevColor := map[diag.Severity]*color.Color{
		diag.SevNote:    color.New(color.FgCyan),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevError:   color.New(color.FgRed, color.Bold),
	}
	paint := func(sev diag.Severity, s string) string {
		if !opts.Color {
			return s
		}
		return sevColor[sev].Sprint(s)
	}

	shown := 0
	for _, d := range bag.Items() {
		if opts.Max > 0 && shown == opts.Max {
			fmt.Fprintf(w, "... and %d more\n", bag.Len()-shown)
			break
		}
		shown++
		writeHeader(w, fs, d.Primary, paint(d.Severity, d.Severity.String()), string(d.Code), d.Message)
		if opts.ShowPreview {
			writePreview(w, fs, d.Primary)
		}
		if opts.ShowNotes {
			for _, note := range d.Notes {
				writeHeader(w, fs, note.Span, paint(diag.SevNote, diag.SevNote.String()), "", note.Msg)
				if opts.ShowPreview {
					writePreview(w, fs, note.Span)
				}
			}
		}
	}
}

func writeHeader(w io.Writer, fs *source.FileSet, span source.Span, sev, code, msg string) {
	loc := "<input>"
	if fs != nil {
		f := fs.Get(span.File)
		pos := fs.Position(span.File, span.Start)
		loc = fmt.Sprintf("%s:%d:%d", f.Path, pos.Line, pos.Col)
	}
	if code != "" {
		fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sev, code, msg)
	} else {
		fmt.Fprintf(w, "%s: %s: %s\n", loc, sev, msg)
	}
}

// writePreview prints the source line under the span with a caret underline.
func writePreview(w io.Writer, fs *source.FileSet, span source.Span) {
	if fs == nil || span.Empty() {
		return
	}
	f := fs.Get(span.File)
	pos := fs.Position(span.File, span.Start)

	lineStart := f.LineIdx[pos.Line-1]
	lineEnd := uint32(len(f.Content))
	if int(pos.Line) < len(f.LineIdx) {
		lineEnd = f.LineIdx[pos.Line] - 1
	}
	line := strings.TrimRight(string(f.Content[lineStart:lineEnd]), "\r")
	fmt.Fprintf(w, "  %s\n", line)

	width := int(span.End - span.Start)
	if span.End > lineEnd {
		width = int(lineEnd - span.Start)
	}
	if width < 1 {
		width = 1
	}
	fmt.Fprintf(w, "  %s^%s\n", strings.Repeat(" ", int(pos.Col-1)), strings.Repeat("~", width-1))
}
