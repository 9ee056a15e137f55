package source_test

import (
	"testing"

	"oir/internal/source"
)

// TestPosition maps byte offsets to line/column pairs.
func TestPosition(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("demo.oir", []byte("abc\ndef\n\nxyz"))

	cases := []struct {
		offset uint32
		line   uint32
		col    uint32
	}{
		{0, 1, 1},
		{2, 1, 3},
		{4, 2, 1},
		{6, 2, 3},
		{8, 3, 1},
		{9, 4, 1},
		{11, 4, 3},
	}
	for _, tc := range cases {
		got := fs.Position(id, tc.offset)
		if got.Line != tc.line || got.Col != tc.col {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", tc.offset, got.Line, got.Col, tc.line, tc.col)
		}
	}
}

// TestLookup finds files by path.
func TestLookup(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("a.oir", []byte("x"))
	got, ok := fs.Lookup("a.oir")
	if !ok || got != id {
		t.Errorf("Lookup = %v, %v", got, ok)
	}
	if _, ok := fs.Lookup("missing.oir"); ok {
		t.Error("Lookup found a missing file")
	}
}

// TestHashDiffers checks content hashing distinguishes files.
func TestHashDiffers(t *testing.T) {
	fs := source.NewFileSet()
	a := fs.Add("a", []byte("one"))
	b := fs.Add("b", []byte("two"))
	if fs.Get(a).Hash == fs.Get(b).Hash {
		t.Error("different contents share a hash")
	}
}
