package ir_test

import (
	"errors"
	"testing"

	"oir/internal/ir"
	"oir/internal/irtext"
)

func mustParseFunc(t *testing.T, input string) *ir.Function {
	t.Helper()
	m, bag := irtext.ParseString(input)
	if m == nil {
		t.Fatalf("parse failed: %+v", bag.Items())
	}
	return m.Funcs[0]
}

// TestEditorInsertAndDelete checks block surgery and the callback sink.
func TestEditorInsertAndDelete(t *testing.T) {
	fn := mustParseFunc(t, `func @f {
bb0:
  %v = alloc
  destroy %v
  return
}`)
	var created, deleted int
	editor, err := ir.NewEditor(ir.Callbacks{
		CreatedInst: func(*ir.Instr) { created++ },
		DeletedInst: func(*ir.Instr) { deleted++ },
	})
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}

	bb := fn.Entry()
	destroy := bb.Instrs()[1]
	cp := ir.NewCopy(destroy.Operand(0).Value())
	editor.InsertBefore(destroy, cp)
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
	if bb.IndexOf(cp) != 1 {
		t.Errorf("copy at index %d, want 1", bb.IndexOf(cp))
	}
	if cp.Result().ID() == ir.NoValueID {
		t.Error("inserted instruction kept the unassigned value id")
	}

	// Redirect the destroy onto the copy, then collapse it again.
	editor.RedirectOperand(destroy.Operand(0), cp.Result())
	if !cp.Result().HasOneUse() {
		t.Fatalf("copy result has %d uses, want 1", len(cp.Result().Uses()))
	}
	editor.ReplaceAllUses(cp.Result(), cp.Operand(0).Value())
	if len(cp.Result().Uses()) != 0 {
		t.Fatalf("copy result still used after ReplaceAllUses")
	}
	editor.Delete(cp)
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if err := ir.ValidateFunc(fn); err != nil {
		t.Errorf("function invalid after edits: %v", err)
	}
}

// TestEditorDeletePanicsOnLiveResult checks the deletion precondition.
func TestEditorDeletePanicsOnLiveResult(t *testing.T) {
	fn := mustParseFunc(t, `func @f {
bb0:
  %v = alloc
  destroy %v
  return
}`)
	editor, err := ir.NewEditor(ir.Callbacks{})
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}
	alloc := fn.Entry().Instrs()[0]
	defer func() {
		if recover() == nil {
			t.Error("Delete of a still-used result did not panic")
		}
	}()
	editor.Delete(alloc)
}

// TestCallbacksValidate checks that unusable hooks are rejected.
func TestCallbacksValidate(t *testing.T) {
	cases := []ir.Callbacks{
		{WillDeleteInst: func(*ir.Instr) {}},
		{SetUseValue: func(*ir.Operand, *ir.Value) {}},
	}
	for i, cb := range cases {
		if _, err := ir.NewEditor(cb); !errors.Is(err, ir.ErrUnsupportedCallback) {
			t.Errorf("case %d: err = %v, want ErrUnsupportedCallback", i, err)
		}
	}
	if _, err := ir.NewEditor(ir.Callbacks{CreatedInst: func(*ir.Instr) {}}); err != nil {
		t.Errorf("created hook rejected: %v", err)
	}
}

// TestInsertAtFront places the instruction ahead of everything in the block.
func TestInsertAtFront(t *testing.T) {
	fn := mustParseFunc(t, `func @f {
bb0:
  %v = alloc
  destroy %v
  return
}`)
	editor, _ := ir.NewEditor(ir.Callbacks{})
	bb := fn.Entry()
	in := ir.NewStack()
	editor.InsertAtFront(bb, in)
	if bb.Instrs()[0] != in {
		t.Error("instruction not at block front")
	}
}
