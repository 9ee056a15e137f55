package ir

// Block is a basic block: zero or more arguments, a list of instructions,
// and a terminator as the last instruction.
type Block struct {
	id     BlockID
	fn     *Function
	name   string
	args   []*Value
	instrs []*Instr
	preds  []*Block
}

// ID returns the block's function-unique identifier.
func (b *Block) ID() BlockID { return b.id }

// Fn returns the enclosing function.
func (b *Block) Fn() *Function { return b.fn }

// Name returns the block's label.
func (b *Block) Name() string { return b.name }

// Args returns the block's arguments.
func (b *Block) Args() []*Value { return b.args }

// Instrs returns the block's instruction list.
func (b *Block) Instrs() []*Instr { return b.instrs }

// Preds returns the block's predecessors.
func (b *Block) Preds() []*Block { return b.preds }

// Succs returns the block's successors, derived from its terminator.
func (b *Block) Succs() []*Block {
	if t := b.Terminator(); t != nil {
		return t.targets
	}
	return nil
}

// SinglePred returns the unique predecessor, or nil if there is none or
// more than one.
func (b *Block) SinglePred() *Block {
	if len(b.preds) == 1 {
		return b.preds[0]
	}
	return nil
}

// Terminator returns the block's terminator, or nil while under
// construction.
func (b *Block) Terminator() *Instr {
	if n := len(b.instrs); n > 0 && b.instrs[n-1].IsTerminator() {
		return b.instrs[n-1]
	}
	return nil
}

// Terminated reports whether the block ends in a terminator.
func (b *Block) Terminated() bool { return b.Terminator() != nil }

// AddArg appends a block argument with the given ownership.
func (b *Block) AddArg(ownership Ownership) *Value {
	arg := &Value{
		id:        b.fn.nextValueID(),
		ownership: ownership,
		block:     b,
		argIndex:  len(b.args),
	}
	b.args = append(b.args, arg)
	return arg
}

// Append adds in at the end of the block and returns it. Appending a
// terminator registers b as a predecessor of each target.
func (b *Block) Append(in *Instr) *Instr {
	b.insertAt(len(b.instrs), in)
	return in
}

func (b *Block) insertAt(idx int, in *Instr) {
	if in.block != nil {
		panic("ir: instruction already attached to a block")
	}
	in.block = b
	if in.result != nil {
		if in.result.id == NoValueID {
			in.result.id = b.fn.nextValueID()
		}
		in.result.block = b
	}
	b.instrs = append(b.instrs, nil)
	copy(b.instrs[idx+1:], b.instrs[idx:])
	b.instrs[idx] = in
	if in.IsTerminator() {
		for _, t := range in.targets {
			t.preds = append(t.preds, b)
		}
	}
}

func (b *Block) remove(in *Instr) {
	idx := b.indexOf(in)
	if idx < 0 {
		panic("ir: instruction not in block")
	}
	b.instrs = append(b.instrs[:idx], b.instrs[idx+1:]...)
	in.block = nil
	if in.IsTerminator() {
		for _, t := range in.targets {
			t.removePred(b)
		}
	}
}

func (b *Block) removePred(pred *Block) {
	for i, p := range b.preds {
		if p == pred {
			b.preds = append(b.preds[:i], b.preds[i+1:]...)
			return
		}
	}
}

// IndexOf returns in's position within the block, or -1.
func (b *Block) IndexOf(in *Instr) int { return b.indexOf(in) }

func (b *Block) indexOf(in *Instr) int {
	for i, cur := range b.instrs {
		if cur == in {
			return i
		}
	}
	return -1
}
