package ir_test

import (
	"testing"

	"oir/internal/ir"
)

// TestSplitCriticalEdges checks that the edge from a cond_br into a
// multi-predecessor block is routed through a fresh block.
func TestSplitCriticalEdges(t *testing.T) {
	fn := mustParseFunc(t, `func @f {
bb0:
  %c = const 1
  cond_br %c, bb1, bb2
bb1:
  br bb2
bb2:
  return
}`)
	editor, _ := ir.NewEditor(ir.Callbacks{})

	// bb0 -> bb2 is critical: bb0 has two successors, bb2 two predecessors.
	split := ir.SplitCriticalEdges(fn, editor)
	if split != 1 {
		t.Fatalf("split %d edges, want 1", split)
	}
	if fn.NumBlocks() != 4 {
		t.Fatalf("have %d blocks, want 4", fn.NumBlocks())
	}
	if err := ir.ValidateFunc(fn); err != nil {
		t.Fatalf("invalid after split: %v", err)
	}

	bb2 := fn.BlockByName("bb2")
	for _, pred := range bb2.Preds() {
		if len(pred.Succs()) > 1 {
			t.Errorf("predecessor %s of bb2 still has multiple successors", pred.Name())
		}
	}

	// Idempotent: no edge left to split.
	if again := ir.SplitCriticalEdges(fn, editor); again != 0 {
		t.Errorf("second split found %d edges, want 0", again)
	}
}

// TestSplitCriticalEdgesNoop checks an already clean CFG stays untouched.
func TestSplitCriticalEdgesNoop(t *testing.T) {
	fn := mustParseFunc(t, `func @f {
bb0:
  %c = const 1
  cond_br %c, bb1, bb2
bb1:
  br bb3
bb2:
  br bb3
bb3:
  return
}`)
	editor, _ := ir.NewEditor(ir.Callbacks{})
	if split := ir.SplitCriticalEdges(fn, editor); split != 0 {
		t.Errorf("split %d edges, want 0", split)
	}
	if fn.NumBlocks() != 4 {
		t.Errorf("have %d blocks, want 4", fn.NumBlocks())
	}
}
