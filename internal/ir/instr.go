package ir

// InstrKind enumerates instruction kinds in OIR.
type InstrKind uint8

const (
	// InstrConst materializes a trivial constant.
	InstrConst InstrKind = iota
	// InstrAlloc allocates a new owned object.
	InstrAlloc
	// InstrStack allocates trivial storage and yields its address.
	InstrStack
	// InstrCopy duplicates an owned value, producing an independent
	// ownership token with identical contents.
	InstrCopy
	// InstrDestroy consumes an owned value and ends its lifetime.
	InstrDestroy
	// InstrBorrow begins a borrow scope over a value, producing a
	// guaranteed view.
	InstrBorrow
	// InstrEndBorrow ends the borrow scope of a guaranteed view.
	InstrEndBorrow
	// InstrMove forwards ownership into a new owned value.
	InstrMove
	// InstrApply calls a function; each argument carries a convention.
	InstrApply
	// InstrStore stores an owned value into storage, consuming it.
	InstrStore
	// InstrLoad loads an owned copy out of storage.
	InstrLoad
	// InstrBitCast reinterprets a value's bits; ownership is not forwarded.
	InstrBitCast
	// InstrToUnowned converts a value to an untracked reference.
	InstrToUnowned
	// InstrExtract projects a guaranteed field out of a guaranteed value.
	InstrExtract
	// InstrInteriorAddr projects an interior address out of a value.
	InstrInteriorAddr
	// InstrEscape leaks a value's address; ownership becomes untraceable.
	InstrEscape
	// InstrBeginAccess opens an exclusivity region over storage.
	InstrBeginAccess
	// InstrEndAccess closes an exclusivity region. An end_access may be
	// unpaired, in which case its scope is implicit.
	InstrEndAccess
	// InstrDebugValue records a value for debug visibility; no runtime
	// effect.
	InstrDebugValue
	// InstrBr branches unconditionally, forwarding arguments to the target
	// block's arguments.
	InstrBr
	// InstrCondBr branches on a trivial condition. Carries no block
	// arguments, so both edges are splittable.
	InstrCondBr
	// InstrReturn returns from the function, optionally consuming a value.
	InstrReturn
)

// String returns the instruction mnemonic.
func (k InstrKind) String() string {
	switch k {
	case InstrConst:
		return "const"
	case InstrAlloc:
		return "alloc"
	case InstrStack:
		return "stack"
	case InstrCopy:
		return "copy"
	case InstrDestroy:
		return "destroy"
	case InstrBorrow:
		return "borrow"
	case InstrEndBorrow:
		return "end_borrow"
	case InstrMove:
		return "move"
	case InstrApply:
		return "apply"
	case InstrStore:
		return "store"
	case InstrLoad:
		return "load"
	case InstrBitCast:
		return "bitcast"
	case InstrToUnowned:
		return "to_unowned"
	case InstrExtract:
		return "extract"
	case InstrInteriorAddr:
		return "interior_addr"
	case InstrEscape:
		return "escape"
	case InstrBeginAccess:
		return "begin_access"
	case InstrEndAccess:
		return "end_access"
	case InstrDebugValue:
		return "debug_value"
	case InstrBr:
		return "br"
	case InstrCondBr:
		return "cond_br"
	case InstrReturn:
		return "return"
	default:
		return "?"
	}
}

// Convention is the ownership convention of one apply argument.
type Convention uint8

const (
	// ConvTrivial passes a trivial value.
	ConvTrivial Convention = iota
	// ConvOwned transfers ownership into the callee.
	ConvOwned
	// ConvGuaranteed lends the value for the duration of the call.
	ConvGuaranteed
	// ConvUnowned passes an untracked reference.
	ConvUnowned
)

// String returns the convention keyword.
func (c Convention) String() string {
	switch c {
	case ConvTrivial:
		return "trivial"
	case ConvOwned:
		return "owned"
	case ConvGuaranteed:
		return "guaranteed"
	case ConvUnowned:
		return "unowned"
	default:
		return "?"
	}
}

// ParseConvention maps a convention keyword to its kind.
func ParseConvention(s string) (Convention, bool) {
	switch s {
	case "trivial":
		return ConvTrivial, true
	case "owned":
		return ConvOwned, true
	case "guaranteed":
		return ConvGuaranteed, true
	case "unowned":
		return ConvUnowned, true
	default:
		return ConvTrivial, false
	}
}

// Instr is a single OIR instruction. Operands are fixed at construction;
// only the values they reference may change afterwards.
type Instr struct {
	kind     InstrKind
	block    *Block
	operands []Operand
	result   *Value

	// Kind-specific payload.
	callee      string       // InstrApply
	conventions []Convention // InstrApply, one per operand
	targets     []*Block     // InstrBr (1), InstrCondBr (2)
	begin       *Instr       // InstrEndAccess: matching begin, nil if unpaired
	varName     string       // InstrDebugValue
	constVal    int64        // InstrConst
}

// Kind returns the instruction kind.
func (in *Instr) Kind() InstrKind { return in.kind }

// Parent returns the block containing the instruction, or nil if detached.
func (in *Instr) Parent() *Block { return in.block }

// NumOperands returns the operand count.
func (in *Instr) NumOperands() int { return len(in.operands) }

// Operand returns the i-th operand.
func (in *Instr) Operand(i int) *Operand { return &in.operands[i] }

// OperandValues yields the values referenced by the instruction's operands.
func (in *Instr) OperandValues() []*Value {
	vals := make([]*Value, len(in.operands))
	for i := range in.operands {
		vals[i] = in.operands[i].value
	}
	return vals
}

// Result returns the instruction's result value, or nil.
func (in *Instr) Result() *Value { return in.result }

// Callee returns the target symbol of an apply.
func (in *Instr) Callee() string { return in.callee }

// ArgConvention returns the convention of the i-th apply operand.
func (in *Instr) ArgConvention(i int) Convention { return in.conventions[i] }

// Targets returns the successor blocks of a terminator.
func (in *Instr) Targets() []*Block { return in.targets }

// BeginAccess returns the begin_access paired with an end_access, or nil
// for an unpaired end_access.
func (in *Instr) BeginAccess() *Instr { return in.begin }

// Unpaired reports whether an end_access has no matching begin.
func (in *Instr) Unpaired() bool { return in.kind == InstrEndAccess && in.begin == nil }

// VarName returns the debug variable name of a debug_value.
func (in *Instr) VarName() string { return in.varName }

// ConstValue returns the payload of a const.
func (in *Instr) ConstValue() int64 { return in.constVal }

// IsTerminator reports whether the instruction ends a block.
func (in *Instr) IsTerminator() bool {
	switch in.kind {
	case InstrBr, InstrCondBr, InstrReturn:
		return true
	default:
		return false
	}
}

// newInstr wires the operand slice and use lists. Operands never grow after
// construction, so pointers into the slice stay valid.
func newInstr(kind InstrKind, vals ...*Value) *Instr {
	in := &Instr{kind: kind, operands: make([]Operand, len(vals))}
	for i, v := range vals {
		in.operands[i] = Operand{user: in, index: i, value: v}
		v.addUse(&in.operands[i])
	}
	return in
}

func (in *Instr) attachResult(ownership Ownership) *Value {
	in.result = &Value{id: NoValueID, ownership: ownership, def: in}
	return in.result
}

// NewConst creates a trivial constant.
func NewConst(val int64) *Instr {
	in := newInstr(InstrConst)
	in.constVal = val
	in.attachResult(OwnershipNone)
	return in
}

// NewAlloc creates an allocation producing a fresh owned value.
func NewAlloc() *Instr {
	in := newInstr(InstrAlloc)
	in.attachResult(OwnershipOwned)
	return in
}

// NewStack creates trivial storage and yields its address.
func NewStack() *Instr {
	in := newInstr(InstrStack)
	in.attachResult(OwnershipNone)
	return in
}

// NewCopy duplicates v into an independent owned value.
func NewCopy(v *Value) *Instr {
	in := newInstr(InstrCopy, v)
	in.attachResult(OwnershipOwned)
	return in
}

// NewDestroy consumes v, ending its lifetime.
func NewDestroy(v *Value) *Instr {
	return newInstr(InstrDestroy, v)
}

// NewBorrow begins a borrow scope over v.
func NewBorrow(v *Value) *Instr {
	in := newInstr(InstrBorrow, v)
	in.attachResult(OwnershipGuaranteed)
	return in
}

// NewEndBorrow ends the borrow scope introduced for v.
func NewEndBorrow(v *Value) *Instr {
	return newInstr(InstrEndBorrow, v)
}

// NewMove forwards ownership of v into a new owned value.
func NewMove(v *Value) *Instr {
	in := newInstr(InstrMove, v)
	in.attachResult(OwnershipOwned)
	return in
}

// NewApply calls callee with the given arguments and conventions. If
// resultOwnership is OwnershipNone the apply produces no result.
func NewApply(callee string, args []*Value, convs []Convention, resultOwnership Ownership) *Instr {
	if len(args) != len(convs) {
		panic("ir: apply argument/convention count mismatch")
	}
	in := newInstr(InstrApply, args...)
	in.callee = callee
	in.conventions = convs
	if resultOwnership != OwnershipNone {
		in.attachResult(resultOwnership)
	}
	return in
}

// NewStore stores v into addr, consuming v.
func NewStore(v, addr *Value) *Instr {
	return newInstr(InstrStore, v, addr)
}

// NewLoad loads an owned copy out of addr.
func NewLoad(addr *Value) *Instr {
	in := newInstr(InstrLoad, addr)
	in.attachResult(OwnershipOwned)
	return in
}

// NewBitCast reinterprets v's bits as a trivial value.
func NewBitCast(v *Value) *Instr {
	in := newInstr(InstrBitCast, v)
	in.attachResult(OwnershipNone)
	return in
}

// NewToUnowned converts v to an untracked reference.
func NewToUnowned(v *Value) *Instr {
	in := newInstr(InstrToUnowned, v)
	in.attachResult(OwnershipUnowned)
	return in
}

// NewExtract projects a guaranteed field out of v.
func NewExtract(v *Value) *Instr {
	in := newInstr(InstrExtract, v)
	in.attachResult(OwnershipGuaranteed)
	return in
}

// NewInteriorAddr projects an interior address out of v.
func NewInteriorAddr(v *Value) *Instr {
	in := newInstr(InstrInteriorAddr, v)
	in.attachResult(OwnershipNone)
	return in
}

// NewEscape leaks v's address. It produces no result; past this point
// ownership of v is untraceable.
func NewEscape(v *Value) *Instr {
	return newInstr(InstrEscape, v)
}

// NewBeginAccess opens an exclusivity region over addr.
func NewBeginAccess(addr *Value) *Instr {
	in := newInstr(InstrBeginAccess, addr)
	in.attachResult(OwnershipNone)
	return in
}

// NewEndAccess closes the exclusivity region opened by begin.
func NewEndAccess(begin *Instr) *Instr {
	if begin.kind != InstrBeginAccess {
		panic("ir: end_access must pair with a begin_access")
	}
	in := newInstr(InstrEndAccess, begin.result)
	in.begin = begin
	return in
}

// NewUnpairedEndAccess closes an exclusivity region whose begin is implicit.
func NewUnpairedEndAccess() *Instr {
	return newInstr(InstrEndAccess)
}

// NewDebugValue records v under varName for debug visibility.
func NewDebugValue(v *Value, varName string) *Instr {
	in := newInstr(InstrDebugValue, v)
	in.varName = varName
	return in
}

// NewBr branches to target, forwarding args to its block arguments.
func NewBr(target *Block, args ...*Value) *Instr {
	in := newInstr(InstrBr, args...)
	in.targets = []*Block{target}
	return in
}

// NewCondBr branches to onTrue or onFalse depending on cond.
func NewCondBr(cond *Value, onTrue, onFalse *Block) *Instr {
	in := newInstr(InstrCondBr, cond)
	in.targets = []*Block{onTrue, onFalse}
	return in
}

// NewReturn returns from the function. vals is empty or a single value.
func NewReturn(vals ...*Value) *Instr {
	if len(vals) > 1 {
		panic("ir: return takes at most one value")
	}
	return newInstr(InstrReturn, vals...)
}
