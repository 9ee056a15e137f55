package irtext_test

import (
	"strings"
	"testing"

	"oir/internal/diag"
	"oir/internal/ir"
	"oir/internal/irtext"
)

// TestParseRoundTrip checks that printing a parsed module reproduces the
// canonical text, and that the canonical text re-parses to itself.
func TestParseRoundTrip(t *testing.T) {
	input := `func @demo {
bb0(%x: owned, %f: none):
  %v = alloc
  %c = copy %x
  %b = borrow %v
  %e = extract %b
  end_borrow %b
  %s = stack
  %a = begin_access %s
  end_access %a
  store %c to %s
  debug_value %v, name "v"
  %r = apply @use(%v: guaranteed, %f: trivial) -> owned
  destroy %r
  cond_br %f, bb1, bb2
bb1:
  br bb3(%v)
bb2:
  destroy %v
  br bb3(%x)
bb3(%p: owned):
  return %p
}
`
	m, bag := irtext.ParseString(input)
	if m == nil {
		t.Fatalf("parse failed: %+v", bag.Items())
	}
	out := irtext.PrintModule(m)
	if out != input {
		t.Errorf("round trip drifted\n--- in ---\n%s--- out ---\n%s", input, out)
	}

	m2, bag2 := irtext.ParseString(out)
	if m2 == nil {
		t.Fatalf("reparse failed: %+v", bag2.Items())
	}
	if again := irtext.PrintModule(m2); again != out {
		t.Errorf("second round trip drifted\n--- first ---\n%s--- second ---\n%s", out, again)
	}
}

// TestParseComments checks that line comments and blank lines are ignored.
func TestParseComments(t *testing.T) {
	m, bag := irtext.ParseString(`
// a module with one function
func @f {
bb0:
  %v = alloc // the tracked value

  destroy %v
  return
}
`)
	if m == nil {
		t.Fatalf("parse failed: %+v", bag.Items())
	}
	if len(m.Funcs[0].Entry().Instrs()) != 3 {
		t.Errorf("have %d instructions, want 3", len(m.Funcs[0].Entry().Instrs()))
	}
}

// TestParseLexicalMarkers checks both lexical spellings.
func TestParseLexicalMarkers(t *testing.T) {
	m, bag := irtext.ParseString(`func @f {
bb0(%x: owned lexical):
  %v = alloc lexical
  destroy %v
  destroy %x
  return
}`)
	if m == nil {
		t.Fatalf("parse failed: %+v", bag.Items())
	}
	fn := m.Funcs[0]
	if !fn.Entry().Args()[0].Lexical() {
		t.Error("block argument not lexical")
	}
	if !fn.Entry().Instrs()[0].Result().Lexical() {
		t.Error("alloc result not lexical")
	}
}

// TestParseErrors checks that malformed inputs produce the right codes.
func TestParseErrors(t *testing.T) {
	cases := []struct {
		desc  string
		input string
		code  diag.Code
	}{
		{
			desc: "unknown value",
			input: `func @f {
bb0:
  destroy %nope
  return
}`,
			code: diag.CodeUnknownValue,
		},
		{
			desc: "unknown block",
			input: `func @f {
bb0:
  br nowhere
}`,
			code: diag.CodeUnknownBlock,
		},
		{
			desc: "duplicate value name",
			input: `func @f {
bb0:
  %v = alloc
  %v = alloc
  return
}`,
			code: diag.CodeDuplicateName,
		},
		{
			desc: "duplicate block label",
			input: `func @f {
bb0:
  return
bb0:
  return
}`,
			code: diag.CodeDuplicateName,
		},
		{
			desc: "bad ownership keyword",
			input: `func @f {
bb0(%x: shared):
  return
}`,
			code: diag.CodeBadOwnership,
		},
		{
			desc: "branch arity mismatch",
			input: `func @f {
bb0:
  %v = alloc
  br bb1
bb1(%p: owned):
  destroy %p
  return
}`,
			code: diag.CodeMalformedIR,
		},
		{
			desc: "instruction after terminator",
			input: `func @f {
bb0:
  return
  %v = alloc
}`,
			code: diag.CodeMalformedIR,
		},
		{
			desc: "unknown mnemonic",
			input: `func @f {
bb0:
  frobnicate
  return
}`,
			code: diag.CodeSyntax,
		},
		{
			desc:  "unterminated function",
			input: `func @f {`,
			code:  diag.CodeSyntax,
		},
		{
			desc: "end_access of a non-begin",
			input: `func @f {
bb0:
  %v = alloc
  end_access %v
  destroy %v
  return
}`,
			code: diag.CodeMalformedIR,
		},
	}
	for _, tc := range cases {
		m, bag := irtext.ParseString(tc.input)
		if m != nil {
			t.Errorf("%s: parse succeeded, want failure", tc.desc)
			continue
		}
		found := false
		for _, d := range bag.Items() {
			if d.Code == tc.code {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s: no %s diagnostic in %+v", tc.desc, tc.code, bag.Items())
		}
	}
}

// TestParseNormalizesIdentifiers checks NFC normalization of names, so two
// spellings of the same identifier resolve to one value.
func TestParseNormalizesIdentifiers(t *testing.T) {
	// "é" composed in the definition, decomposed in the use.
	input := "func @f {\nbb0:\n  %vé = alloc\n  destroy %vé\n  return\n}"
	m, bag := irtext.ParseString(input)
	if m == nil {
		t.Fatalf("parse failed: %+v", bag.Items())
	}
	if bag.HasErrors() {
		t.Errorf("unexpected diagnostics: %+v", bag.Items())
	}
}

// TestParseMultipleFunctions checks module-level structure.
func TestParseMultipleFunctions(t *testing.T) {
	m, bag := irtext.ParseString(`func @a {
bb0:
  return
}

func @b {
bb0:
  return
}`)
	if m == nil {
		t.Fatalf("parse failed: %+v", bag.Items())
	}
	if len(m.Funcs) != 2 {
		t.Fatalf("have %d functions, want 2", len(m.Funcs))
	}
	if m.FuncByName("b") == nil {
		t.Error("FuncByName(b) = nil")
	}
}

// TestPrintUnnamedValues checks that results without names print by id and
// the output still parses.
func TestPrintUnnamedValues(t *testing.T) {
	fn := ir.NewFunction("f")
	bb := fn.NewBlock("entry")
	alloc := bb.Append(ir.NewAlloc())
	bb.Append(ir.NewDestroy(alloc.Result()))
	bb.Append(ir.NewReturn())
	out := irtext.PrintFunc(fn)
	if !strings.Contains(out, "%0 = alloc") || !strings.Contains(out, "destroy %0") {
		t.Errorf("unexpected print:\n%s", out)
	}
	if m, bag := irtext.ParseString(out); m == nil {
		t.Errorf("printed form does not parse: %+v", bag.Items())
	}
}
