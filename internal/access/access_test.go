package access_test

import (
	"testing"

	"oir/internal/access"
	"oir/internal/irtext"
)

// TestIndexNonLocalEnds distinguishes local, cross-block and unpaired
// region ends.
func TestIndexNonLocalEnds(t *testing.T) {
	m, bag := irtext.ParseString(`
func @f {
bb0:
  %s = stack
  %a = begin_access %s
  end_access %a
  %b = begin_access %s
  br bb1
bb1:
  end_access %b
  br bb2
bb2:
  end_access
  return
}
`)
	if m == nil {
		t.Fatalf("parse failed: %+v", bag.Items())
	}
	fn := m.Funcs[0]
	idx := access.NewIndex(fn)

	if idx.ContainsNonLocalEnd(fn.BlockByName("bb0")) {
		t.Error("bb0 holds only a locally paired end")
	}
	if !idx.ContainsNonLocalEnd(fn.BlockByName("bb1")) {
		t.Error("bb1 ends a region begun in bb0")
	}
	if !idx.ContainsNonLocalEnd(fn.BlockByName("bb2")) {
		t.Error("bb2 holds an unpaired end")
	}
}
