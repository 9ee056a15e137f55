package irtext

import (
	"fmt"
	"strings"

	"oir/internal/ir"
)

// PrintModule renders m in the textual format accepted by Parse.
func PrintModule(m *ir.Module) string {
	var sb strings.Builder
	for i, f := range m.Funcs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		printFunc(&sb, f)
	}
	return sb.String()
}

// PrintFunc renders a single function.
func PrintFunc(f *ir.Function) string {
	var sb strings.Builder
	printFunc(&sb, f)
	return sb.String()
}

func printFunc(sb *strings.Builder, f *ir.Function) {
	fmt.Fprintf(sb, "func @%s {\n", f.Name)
	for _, b := range f.Blocks() {
		sb.WriteString(b.Name())
		if len(b.Args()) > 0 {
			sb.WriteByte('(')
			for i, arg := range b.Args() {
				if i > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(sb, "%s: %s", valueRef(arg), arg.Ownership())
				if arg.Lexical() {
					sb.WriteString(" lexical")
				}
			}
			sb.WriteByte(')')
		}
		sb.WriteString(":\n")
		for _, in := range b.Instrs() {
			sb.WriteString("  ")
			printInstr(sb, in)
			sb.WriteByte('\n')
		}
	}
	sb.WriteString("}\n")
}

func valueRef(v *ir.Value) string {
	if v.Name() != "" {
		return "%" + v.Name()
	}
	return fmt.Sprintf("%%%d", v.ID())
}

func printInstr(sb *strings.Builder, in *ir.Instr) {
	if in.Result() != nil {
		fmt.Fprintf(sb, "%s = ", valueRef(in.Result()))
	}
	switch in.Kind() {
	case ir.InstrConst:
		fmt.Fprintf(sb, "const %d", in.ConstValue())
	case ir.InstrAlloc:
		sb.WriteString("alloc")
		if in.Result().Lexical() {
			sb.WriteString(" lexical")
		}
	case ir.InstrStack:
		sb.WriteString("stack")
	case ir.InstrApply:
		fmt.Fprintf(sb, "apply @%s(", in.Callee())
		for i := 0; i < in.NumOperands(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s: %s", valueRef(in.Operand(i).Value()), in.ArgConvention(i))
		}
		sb.WriteByte(')')
		if in.Result() != nil {
			fmt.Fprintf(sb, " -> %s", in.Result().Ownership())
		}
	case ir.InstrStore:
		fmt.Fprintf(sb, "store %s to %s", valueRef(in.Operand(0).Value()), valueRef(in.Operand(1).Value()))
	case ir.InstrEndAccess:
		if in.Unpaired() {
			sb.WriteString("end_access")
		} else {
			fmt.Fprintf(sb, "end_access %s", valueRef(in.Operand(0).Value()))
		}
	case ir.InstrDebugValue:
		fmt.Fprintf(sb, "debug_value %s, name %q", valueRef(in.Operand(0).Value()), in.VarName())
	case ir.InstrBr:
		fmt.Fprintf(sb, "br %s", in.Targets()[0].Name())
		if in.NumOperands() > 0 {
			sb.WriteByte('(')
			for i := 0; i < in.NumOperands(); i++ {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(valueRef(in.Operand(i).Value()))
			}
			sb.WriteByte(')')
		}
	case ir.InstrCondBr:
		fmt.Fprintf(sb, "cond_br %s, %s, %s",
			valueRef(in.Operand(0).Value()), in.Targets()[0].Name(), in.Targets()[1].Name())
	case ir.InstrReturn:
		sb.WriteString("return")
		if in.NumOperands() > 0 {
			fmt.Fprintf(sb, " %s", valueRef(in.Operand(0).Value()))
		}
	default:
		// Unary instructions share one shape.
		sb.WriteString(in.Kind().String())
		if in.NumOperands() > 0 {
			fmt.Fprintf(sb, " %s", valueRef(in.Operand(0).Value()))
		}
	}
}
