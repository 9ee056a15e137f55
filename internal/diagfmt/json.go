package diagfmt

import (
	"encoding/json"
	"io"

	"oir/internal/diag"
	"oir/internal/source"
)

type jsonPosition struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

type jsonNote struct {
	Message  string        `json:"message"`
	Position *jsonPosition `json:"position,omitempty"`
}

type jsonDiagnostic struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Path     string        `json:"path,omitempty"`
	Position *jsonPosition `json:"position,omitempty"`
	Notes    []jsonNote    `json:"notes,omitempty"`
}

// JSON writes the bag as a JSON array, one object per diagnostic.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	out := make([]jsonDiagnostic, 0, len(items))
	for _, d := range items {
		jd := jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Message:  d.Message,
		}
		if fs != nil {
			jd.Path = fs.Get(d.Primary.File).Path
			if opts.IncludePositions {
				pos := fs.Position(d.Primary.File, d.Primary.Start)
				jd.Position = &jsonPosition{Line: pos.Line, Col: pos.Col}
			}
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				jn := jsonNote{Message: note.Msg}
				if fs != nil && opts.IncludePositions {
					pos := fs.Position(note.Span.File, note.Span.Start)
					jn.Position = &jsonPosition{Line: pos.Line, Col: pos.Col}
				}
				jd.Notes = append(jd.Notes, jn)
			}
		}
		out = append(out, jd)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
