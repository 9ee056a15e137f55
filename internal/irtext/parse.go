// Package irtext parses and prints the textual form of OIR modules.
//
// The format is line-oriented: one instruction per line, blocks introduced
// by a label with optional arguments, functions delimited by braces:
//
//	func @demo {
//	bb0(%x: owned):
//	  %1 = copy %x
//	  apply @use(%1: owned)
//	  destroy %x
//	  br bb1
//	bb1:
//	  return
//	}
package irtext

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"oir/internal/diag"
	"oir/internal/ir"
	"oir/internal/source"
)

// MaxDiagnostics bounds the diagnostics reported per file.
const MaxDiagnostics = 100

// Parse reads the file id from fset and builds an OIR module. Diagnostics
// are reported into bag; a nil module is returned when parsing failed.
func Parse(fset *source.FileSet, id source.FileID, bag *diag.Bag) *ir.Module {
	p := &parser{fset: fset, fileID: id, bag: bag}
	p.splitLines(fset.Get(id).Content)
	m := p.parseModule()
	if bag.HasErrors() {
		return nil
	}
	return m
}

// ParseString is a convenience for tests and tools: it parses text as a
// virtual file and returns the module together with the diagnostics bag.
func ParseString(text string) (*ir.Module, *diag.Bag) {
	fset := source.NewFileSet()
	id := fset.Add("<input>", []byte(text))
	bag := diag.NewBag(MaxDiagnostics)
	return Parse(fset, id, bag), bag
}

type parser struct {
	fset   *source.FileSet
	fileID source.FileID
	bag    *diag.Bag

	lines   []string
	offsets []uint32
	cur     int
}

func (p *parser) splitLines(content []byte) {
	text := string(content)
	var off uint32
	for _, line := range strings.Split(text, "\n") {
		p.lines = append(p.lines, line)
		p.offsets = append(p.offsets, off)
		off += uint32(len(line)) + 1
	}
}

func (p *parser) lineSpan(idx int) source.Span {
	end := p.offsets[idx] + uint32(len(p.lines[idx]))
	return source.Span{File: p.fileID, Start: p.offsets[idx], End: end}
}

func (p *parser) errorf(idx int, code diag.Code, format string, args ...any) {
	p.bag.Error(code, p.lineSpan(idx), format, args...)
}

// stripped returns line idx without comment and surrounding space.
func (p *parser) stripped(idx int) string {
	line := p.lines[idx]
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func (p *parser) parseModule() *ir.Module {
	m := &ir.Module{}
	for p.cur < len(p.lines) {
		line := p.stripped(p.cur)
		if line == "" {
			p.cur++
			continue
		}
		if !strings.HasPrefix(line, "func ") {
			p.errorf(p.cur, diag.CodeSyntax, "expected 'func', got %q", line)
			p.cur++
			continue
		}
		f := p.parseFunc()
		if f != nil {
			m.Funcs = append(m.Funcs, f)
		}
	}
	return m
}

// parseFunc consumes `func @name {` through the matching `}`. Blocks are
// created in a first sweep so forward branches resolve; instructions are
// parsed in a second sweep. Values must be defined textually before use.
func (p *parser) parseFunc() *ir.Function {
	header := p.stripped(p.cur)
	rest := strings.TrimPrefix(header, "func ")
	rest = strings.TrimSuffix(strings.TrimSpace(rest), "{")
	name := strings.TrimSpace(rest)
	if !strings.HasPrefix(name, "@") {
		p.errorf(p.cur, diag.CodeSyntax, "function name must start with '@': %q", name)
		return nil
	}
	if !strings.HasSuffix(header, "{") {
		p.errorf(p.cur, diag.CodeSyntax, "expected '{' after function name")
		return nil
	}
	fn := ir.NewFunction(norm.NFC.String(strings.TrimPrefix(name, "@")))
	headerIdx := p.cur
	p.cur++

	start := p.cur
	end := -1
	for i := p.cur; i < len(p.lines); i++ {
		if p.stripped(i) == "}" {
			end = i
			break
		}
	}
	if end < 0 {
		p.errorf(headerIdx, diag.CodeSyntax, "unterminated function body")
		return nil
	}

	values := map[string]*ir.Value{}

	// First sweep: block headers and their arguments.
	for i := start; i < end; i++ {
		line := p.stripped(i)
		if line == "" || !isBlockHeader(line) {
			continue
		}
		p.parseBlockHeader(i, line, fn, values)
	}
	if fn.NumBlocks() == 0 {
		p.errorf(start, diag.CodeSyntax, "function @%s has no blocks", fn.Name)
		return nil
	}

	// Second sweep: instructions.
	var block *ir.Block
	for i := start; i < end; i++ {
		line := p.stripped(i)
		if line == "" {
			continue
		}
		if isBlockHeader(line) {
			label, _, _ := strings.Cut(line, "(")
			label = strings.TrimSuffix(strings.TrimSpace(label), ":")
			block = fn.BlockByName(norm.NFC.String(label))
			continue
		}
		if block == nil {
			p.errorf(i, diag.CodeSyntax, "instruction outside a block")
			continue
		}
		p.parseInstr(i, line, fn, block, values)
	}
	p.cur = end + 1
	return fn
}

// isBlockHeader matches `label:` or `label(...):`.
func isBlockHeader(line string) bool {
	if !strings.HasSuffix(line, ":") {
		return false
	}
	head, _, _ := strings.Cut(line, "(")
	head = strings.TrimSuffix(head, ":")
	if head == "" || strings.ContainsAny(head, " \t=%@") {
		return false
	}
	return true
}

func (p *parser) parseBlockHeader(idx int, line string, fn *ir.Function, values map[string]*ir.Value) {
	line = strings.TrimSuffix(line, ":")
	label, argText, hasArgs := strings.Cut(line, "(")
	label = norm.NFC.String(strings.TrimSpace(label))
	if fn.BlockByName(label) != nil {
		p.errorf(idx, diag.CodeDuplicateName, "duplicate block label %s", label)
		return
	}
	b := fn.NewBlock(label)
	if !hasArgs {
		return
	}
	argText = strings.TrimSuffix(strings.TrimSpace(argText), ")")
	if argText == "" {
		return
	}
	for _, arg := range strings.Split(argText, ",") {
		name, spec, ok := strings.Cut(strings.TrimSpace(arg), ":")
		if !ok || !strings.HasPrefix(name, "%") {
			p.errorf(idx, diag.CodeSyntax, "block argument must look like '%%name: ownership'")
			continue
		}
		fields := strings.Fields(spec)
		if len(fields) == 0 {
			p.errorf(idx, diag.CodeSyntax, "missing ownership on block argument %s", name)
			continue
		}
		ownership, ok := ir.ParseOwnership(fields[0])
		if !ok {
			p.errorf(idx, diag.CodeBadOwnership, "unknown ownership %q", fields[0])
			continue
		}
		v := b.AddArg(ownership)
		if len(fields) > 1 && fields[1] == "lexical" {
			v.SetLexical(true)
		}
		p.defineValue(idx, values, strings.TrimPrefix(name, "%"), v)
	}
}

func (p *parser) defineValue(idx int, values map[string]*ir.Value, name string, v *ir.Value) {
	name = norm.NFC.String(name)
	if _, exists := values[name]; exists {
		p.errorf(idx, diag.CodeDuplicateName, "duplicate value name %%%s", name)
		return
	}
	v.SetName(name)
	values[name] = v
}

func (p *parser) lookupValue(idx int, values map[string]*ir.Value, tok string) *ir.Value {
	if !strings.HasPrefix(tok, "%") {
		p.errorf(idx, diag.CodeSyntax, "expected value reference, got %q", tok)
		return nil
	}
	v, ok := values[norm.NFC.String(strings.TrimPrefix(tok, "%"))]
	if !ok {
		p.errorf(idx, diag.CodeUnknownValue, "unknown value %s", tok)
		return nil
	}
	return v
}

func (p *parser) parseInstr(idx int, line string, fn *ir.Function, b *ir.Block, values map[string]*ir.Value) {
	if b.Terminated() {
		p.errorf(idx, diag.CodeMalformedIR, "instruction after terminator in %s", b.Name())
		return
	}
	resultName := ""
	if strings.HasPrefix(line, "%") {
		lhs, rhs, ok := strings.Cut(line, "=")
		if !ok {
			p.errorf(idx, diag.CodeSyntax, "expected '=' after result name")
			return
		}
		resultName = strings.TrimPrefix(strings.TrimSpace(lhs), "%")
		line = strings.TrimSpace(rhs)
	}
	op, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	in := p.buildInstr(idx, op, rest, fn, values)
	if in == nil {
		return
	}
	b.Append(in)
	if resultName != "" {
		if in.Result() == nil {
			p.errorf(idx, diag.CodeSyntax, "%s produces no result", op)
			return
		}
		p.defineValue(idx, values, resultName, in.Result())
	}
}

func (p *parser) buildInstr(idx int, op, rest string, fn *ir.Function, values map[string]*ir.Value) *ir.Instr {
	one := func() *ir.Value { return p.lookupValue(idx, values, rest) }
	switch op {
	case "const":
		n, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			p.errorf(idx, diag.CodeSyntax, "bad constant %q", rest)
			return nil
		}
		return ir.NewConst(n)
	case "alloc":
		in := ir.NewAlloc()
		if rest == "lexical" {
			in.Result().SetLexical(true)
		} else if rest != "" {
			p.errorf(idx, diag.CodeSyntax, "unexpected %q after alloc", rest)
			return nil
		}
		return in
	case "stack":
		return ir.NewStack()
	case "copy":
		if v := one(); v != nil {
			return ir.NewCopy(v)
		}
	case "destroy":
		if v := one(); v != nil {
			return ir.NewDestroy(v)
		}
	case "borrow":
		if v := one(); v != nil {
			return ir.NewBorrow(v)
		}
	case "end_borrow":
		if v := one(); v != nil {
			return ir.NewEndBorrow(v)
		}
	case "move":
		if v := one(); v != nil {
			return ir.NewMove(v)
		}
	case "apply":
		return p.parseApply(idx, rest, values)
	case "store":
		val, addr, ok := strings.Cut(rest, " to ")
		if !ok {
			p.errorf(idx, diag.CodeSyntax, "store wants '%%value to %%addr'")
			return nil
		}
		v := p.lookupValue(idx, values, strings.TrimSpace(val))
		a := p.lookupValue(idx, values, strings.TrimSpace(addr))
		if v != nil && a != nil {
			return ir.NewStore(v, a)
		}
	case "load":
		if v := one(); v != nil {
			return ir.NewLoad(v)
		}
	case "bitcast":
		if v := one(); v != nil {
			return ir.NewBitCast(v)
		}
	case "to_unowned":
		if v := one(); v != nil {
			return ir.NewToUnowned(v)
		}
	case "extract":
		if v := one(); v != nil {
			return ir.NewExtract(v)
		}
	case "interior_addr":
		if v := one(); v != nil {
			return ir.NewInteriorAddr(v)
		}
	case "escape":
		if v := one(); v != nil {
			return ir.NewEscape(v)
		}
	case "begin_access":
		if v := one(); v != nil {
			return ir.NewBeginAccess(v)
		}
	case "end_access":
		if rest == "" {
			return ir.NewUnpairedEndAccess()
		}
		v := one()
		if v == nil {
			return nil
		}
		begin := v.DefiningInstruction()
		if begin == nil || begin.Kind() != ir.InstrBeginAccess {
			p.errorf(idx, diag.CodeMalformedIR, "end_access operand must be a begin_access result")
			return nil
		}
		return ir.NewEndAccess(begin)
	case "debug_value":
		ref, nameSpec, _ := strings.Cut(rest, ",")
		v := p.lookupValue(idx, values, strings.TrimSpace(ref))
		if v == nil {
			return nil
		}
		varName := strings.TrimSpace(nameSpec)
		varName = strings.TrimPrefix(varName, "name ")
		varName = norm.NFC.String(strings.Trim(varName, `"`))
		return ir.NewDebugValue(v, varName)
	case "br":
		return p.parseBr(idx, rest, fn, values)
	case "cond_br":
		parts := strings.Split(rest, ",")
		if len(parts) != 3 {
			p.errorf(idx, diag.CodeSyntax, "cond_br wants '%%cond, label, label'")
			return nil
		}
		cond := p.lookupValue(idx, values, strings.TrimSpace(parts[0]))
		t := p.lookupBlock(idx, fn, strings.TrimSpace(parts[1]))
		f := p.lookupBlock(idx, fn, strings.TrimSpace(parts[2]))
		if cond != nil && t != nil && f != nil {
			return ir.NewCondBr(cond, t, f)
		}
	case "return":
		if rest == "" {
			return ir.NewReturn()
		}
		if v := one(); v != nil {
			return ir.NewReturn(v)
		}
	default:
		p.errorf(idx, diag.CodeSyntax, "unknown instruction %q", op)
	}
	return nil
}

// parseBr handles `label` or `label(%a, %b)`.
func (p *parser) parseBr(idx int, rest string, fn *ir.Function, values map[string]*ir.Value) *ir.Instr {
	label, argText, hasArgs := strings.Cut(rest, "(")
	b := p.lookupBlock(idx, fn, strings.TrimSpace(label))
	if b == nil {
		return nil
	}
	var args []*ir.Value
	if hasArgs {
		argText = strings.TrimSuffix(strings.TrimSpace(argText), ")")
		for _, ref := range strings.Split(argText, ",") {
			v := p.lookupValue(idx, values, strings.TrimSpace(ref))
			if v == nil {
				return nil
			}
			args = append(args, v)
		}
	}
	if len(args) != len(b.Args()) {
		p.errorf(idx, diag.CodeMalformedIR, "branch carries %d args, block %s expects %d",
			len(args), b.Name(), len(b.Args()))
		return nil
	}
	return ir.NewBr(b, args...)
}

func (p *parser) lookupBlock(idx int, fn *ir.Function, label string) *ir.Block {
	b := fn.BlockByName(norm.NFC.String(label))
	if b == nil {
		p.errorf(idx, diag.CodeUnknownBlock, "unknown block %q", label)
	}
	return b
}

// parseApply handles `@callee(%a: owned, %b: trivial)` with an optional
// `-> ownership` result suffix.
func (p *parser) parseApply(idx int, rest string, values map[string]*ir.Value) *ir.Instr {
	resultOwnership := ir.OwnershipNone
	if body, res, ok := strings.Cut(rest, "->"); ok {
		rest = strings.TrimSpace(body)
		o, okOwn := ir.ParseOwnership(strings.TrimSpace(res))
		if !okOwn {
			p.errorf(idx, diag.CodeBadOwnership, "unknown result ownership %q", strings.TrimSpace(res))
			return nil
		}
		resultOwnership = o
	}
	if !strings.HasPrefix(rest, "@") {
		p.errorf(idx, diag.CodeSyntax, "apply wants '@callee(args)'")
		return nil
	}
	callee, argText, ok := strings.Cut(strings.TrimPrefix(rest, "@"), "(")
	if !ok || !strings.HasSuffix(argText, ")") {
		p.errorf(idx, diag.CodeSyntax, "apply wants '@callee(args)'")
		return nil
	}
	argText = strings.TrimSuffix(argText, ")")
	var args []*ir.Value
	var convs []ir.Convention
	if strings.TrimSpace(argText) != "" {
		for _, arg := range strings.Split(argText, ",") {
			ref, convText, okArg := strings.Cut(strings.TrimSpace(arg), ":")
			if !okArg {
				p.errorf(idx, diag.CodeSyntax, "apply argument must look like '%%v: convention'")
				return nil
			}
			v := p.lookupValue(idx, values, strings.TrimSpace(ref))
			conv, okConv := ir.ParseConvention(strings.TrimSpace(convText))
			if !okConv {
				p.errorf(idx, diag.CodeBadOwnership, "unknown convention %q", strings.TrimSpace(convText))
				return nil
			}
			if v == nil {
				return nil
			}
			args = append(args, v)
			convs = append(convs, conv)
		}
	}
	return ir.NewApply(norm.NFC.String(callee), args, convs, resultOwnership)
}
