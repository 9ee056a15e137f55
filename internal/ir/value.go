package ir

// Value is an SSA value: either the single result of an instruction or a
// block argument (phi). Every value tracks the operands that use it.
type Value struct {
	id        ValueID
	name      string
	ownership Ownership
	lexical   bool

	def      *Instr // nil for block arguments
	block    *Block // defining block
	argIndex int    // meaningful only for block arguments

	uses []*Operand
}

// ID returns the value's function-unique identifier.
func (v *Value) ID() ValueID { return v.id }

// Name returns the value's textual name, if any.
func (v *Value) Name() string { return v.name }

// SetName assigns a textual name used by the printer.
func (v *Value) SetName(name string) { v.name = name }

// Ownership returns the value's ownership kind.
func (v *Value) Ownership() Ownership { return v.ownership }

// Lexical reports whether the value's lifetime is pinned to a syntactic
// scope. Lexical values are excluded from lifetime canonicalization.
func (v *Value) Lexical() bool { return v.lexical }

// SetLexical pins or unpins the value's lifetime to its syntactic scope.
func (v *Value) SetLexical(lexical bool) { v.lexical = lexical }

// DefiningInstruction returns the instruction producing v, or nil when v is
// a block argument.
func (v *Value) DefiningInstruction() *Instr { return v.def }

// ParentBlock returns the block in which v is defined. For block arguments
// this is the block carrying the argument.
func (v *Value) ParentBlock() *Block { return v.block }

// IsBlockArg reports whether v is a block argument.
func (v *Value) IsBlockArg() bool { return v.def == nil }

// ArgIndex returns the argument position for block arguments.
func (v *Value) ArgIndex() int { return v.argIndex }

// IsReborrow reports whether v is a guaranteed block argument, i.e. a
// re-established borrow flowing across a control-flow edge.
func (v *Value) IsReborrow() bool {
	return v.IsBlockArg() && v.ownership == OwnershipGuaranteed
}

// Uses returns the operands currently using v. The returned slice is the
// live use list; callers iterating while mutating must snapshot it first.
func (v *Value) Uses() []*Operand { return v.uses }

// HasOneUse reports whether v has exactly one use.
func (v *Value) HasOneUse() bool { return len(v.uses) == 1 }

func (v *Value) addUse(op *Operand) {
	v.uses = append(v.uses, op)
}

func (v *Value) removeUse(op *Operand) {
	for i, u := range v.uses {
		if u == op {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
}

// Operand is a single (user instruction, position) pair referencing a value.
type Operand struct {
	user  *Instr
	index int
	value *Value
}

// User returns the instruction owning this operand.
func (o *Operand) User() *Instr { return o.user }

// Index returns the operand's position within its user.
func (o *Operand) Index() int { return o.index }

// Value returns the value currently referenced by the operand.
func (o *Operand) Value() *Value { return o.value }
