package ir_test

import (
	"testing"

	"oir/internal/ir"
	"oir/internal/irtext"
)

// firstUseOf returns the first operand using the value named name in the
// first function of input.
func firstUseOf(t *testing.T, input, name string) *ir.Operand {
	t.Helper()
	m, bag := irtext.ParseString(input)
	if m == nil {
		t.Fatalf("parse failed: %+v", bag.Items())
	}
	for _, b := range m.Funcs[0].Blocks() {
		for _, arg := range b.Args() {
			if arg.Name() == name {
				return arg.Uses()[0]
			}
		}
		for _, in := range b.Instrs() {
			if r := in.Result(); r != nil && r.Name() == name {
				return r.Uses()[0]
			}
		}
	}
	t.Fatalf("no value named %%%s", name)
	return nil
}

// TestClassify exercises the per-operand ownership-use oracle across every
// user shape in the textual format.
func TestClassify(t *testing.T) {
	cases := []struct {
		desc  string
		input string
		want  ir.UseCategory
	}{
		{
			desc: "copy is instantaneous",
			input: `func @f {
bb0:
  %v = alloc
  %c = copy %v
  destroy %c
  destroy %v
  return
}`,
			want: ir.InstantaneousUse,
		},
		{
			desc: "destroy consumes",
			input: `func @f {
bb0:
  %v = alloc
  destroy %v
  return
}`,
			want: ir.DestroyingConsume,
		},
		{
			desc: "move forwards the consume",
			input: `func @f {
bb0:
  %v = alloc
  %m = move %v
  destroy %m
  return
}`,
			want: ir.ForwardingConsume,
		},
		{
			desc: "owned apply argument consumes",
			input: `func @f {
bb0:
  %v = alloc
  apply @g(%v: owned)
  return
}`,
			want: ir.ForwardingConsume,
		},
		{
			desc: "guaranteed apply argument is instantaneous",
			input: `func @f {
bb0:
  %v = alloc
  apply @g(%v: guaranteed)
  destroy %v
  return
}`,
			want: ir.InstantaneousUse,
		},
		{
			desc: "unowned apply argument",
			input: `func @f {
bb0:
  %v = alloc
  apply @g(%v: unowned)
  destroy %v
  return
}`,
			want: ir.UnownedInstantaneousUse,
		},
		{
			desc: "store consumes the stored value",
			input: `func @f {
bb0:
  %s = stack
  %v = alloc
  store %v to %s
  return
}`,
			want: ir.DestroyingConsume,
		},
		{
			desc: "borrow opens a scope",
			input: `func @f {
bb0:
  %v = alloc
  %b = borrow %v
  end_borrow %b
  destroy %v
  return
}`,
			want: ir.Borrow,
		},
		{
			desc: "end_borrow closes a scope",
			input: `func @f {
bb0:
  %v = alloc
  %b = borrow %v
  end_borrow %b
  destroy %v
  return
}`,
			want: ir.EndBorrow,
		},
		{
			desc: "extract forwards a borrow",
			input: `func @f {
bb0:
  %v = alloc
  %b = borrow %v
  %e = extract %b
  end_borrow %b
  destroy %v
  return
}`,
			want: ir.ForwardingBorrow,
		},
		{
			desc: "interior_addr projects a pointer",
			input: `func @f {
bb0:
  %v = alloc
  %p = interior_addr %v
  destroy %v
  return
}`,
			want: ir.InteriorPointer,
		},
		{
			desc: "bitcast escapes bitwise",
			input: `func @f {
bb0:
  %v = alloc
  %t = bitcast %v
  destroy %v
  return
}`,
			want: ir.BitwiseEscape,
		},
		{
			desc: "to_unowned forwards unowned",
			input: `func @f {
bb0:
  %v = alloc
  %u = to_unowned %v
  destroy %v
  return
}`,
			want: ir.ForwardingUnowned,
		},
		{
			desc: "escape loses the trail",
			input: `func @f {
bb0:
  %v = alloc
  escape %v
  destroy %v
  return
}`,
			want: ir.PointerEscape,
		},
		{
			desc: "begin_access ignores ownership",
			input: `func @f {
bb0:
  %s = stack
  %a = begin_access %s
  end_access %a
  return
}`,
			want: ir.NonUse,
		},
		{
			desc: "debug observation is instantaneous",
			input: `func @f {
bb0:
  %v = alloc
  debug_value %v, name "x"
  destroy %v
  return
}`,
			want: ir.InstantaneousUse,
		},
		{
			desc: "branch into owned argument consumes",
			input: `func @f {
bb0:
  %v = alloc
  br bb1(%v)
bb1(%p: owned):
  destroy %p
  return
}`,
			want: ir.ForwardingConsume,
		},
		{
			desc: "branch into guaranteed argument reborrows",
			input: `func @f {
bb0:
  %v = alloc
  %b = borrow %v
  br bb1(%b)
bb1(%r: guaranteed):
  end_borrow %r
  destroy %v
  return
}`,
			want: ir.Reborrow,
		},
		{
			desc: "return of an owned value consumes",
			input: `func @f {
bb0:
  %v = alloc
  return %v
}`,
			want: ir.ForwardingConsume,
		},
	}
	names := map[string]string{
		"end_borrow closes a scope":                 "b",
		"extract forwards a borrow":                 "b",
		"begin_access ignores ownership":            "a",
		"branch into guaranteed argument reborrows": "b",
	}
	for _, tc := range cases {
		name := names[tc.desc]
		if name == "" {
			name = "v"
		}
		use := firstUseOf(t, tc.input, name)
		if got := ir.Classify(use); got != tc.want {
			t.Errorf("%s: Classify = %s, want %s", tc.desc, got, tc.want)
		}
	}
}

// TestIsConsuming pins down which categories end the ownership token.
func TestIsConsuming(t *testing.T) {
	consuming := map[ir.UseCategory]bool{
		ir.ForwardingConsume: true,
		ir.DestroyingConsume: true,
	}
	all := []ir.UseCategory{
		ir.NonUse, ir.TrivialUse, ir.InstantaneousUse, ir.UnownedInstantaneousUse,
		ir.BitwiseEscape, ir.ForwardingUnowned, ir.ForwardingConsume,
		ir.DestroyingConsume, ir.Borrow, ir.InteriorPointer, ir.ForwardingBorrow,
		ir.EndBorrow, ir.Reborrow, ir.PointerEscape,
	}
	for _, cat := range all {
		if got := cat.IsConsuming(); got != consuming[cat] {
			t.Errorf("%s.IsConsuming() = %v, want %v", cat, got, consuming[cat])
		}
	}
}
