// Package diag accumulates diagnostics produced while parsing and
// processing OIR files.
package diag

import (
	"fmt"

	"oir/internal/source"
)

// Severity orders diagnostics by weight.
type Severity uint8

const (
	// SevNote is informational.
	SevNote Severity = iota
	// SevWarning flags suspicious but acceptable input.
	SevWarning
	// SevError flags input that cannot be processed.
	SevError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SevNote:
		return "note"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	default:
		return "?"
	}
}

// Code is a stable diagnostic identifier.
type Code string

// Diagnostic codes in use.
const (
	CodeSyntax        Code = "OIR0001"
	CodeUnknownValue  Code = "OIR0002"
	CodeUnknownBlock  Code = "OIR0003"
	CodeDuplicateName Code = "OIR0004"
	CodeBadOwnership  Code = "OIR0005"
	CodeMalformedIR   Code = "OIR0006"
)

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one reported finding.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// Bag collects diagnostics up to a fixed cap.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag holding at most max diagnostics.
func NewBag(max int) *Bag {
	return &Bag{items: make([]Diagnostic, 0, 8), max: max}
}

// Add appends d unless the cap was reached. Reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Error is a convenience for Add with SevError.
func (b *Bag) Error(code Code, span source.Span, format string, args ...any) {
	b.Add(Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Primary:  span,
	})
}

// Items returns the collected diagnostics in insertion order.
func (b *Bag) Items() []Diagnostic { return b.items }

// HasErrors reports whether any collected diagnostic is an error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int { return len(b.items) }
