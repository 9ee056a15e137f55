package ir

import "errors"

// ErrUnsupportedCallback is returned when a consumer installs a callback
// hook the edit surface does not support.
var ErrUnsupportedCallback = errors.New("ir: unsupported mutation callback")

// Callbacks is the mutation-notification sink for an Editor. Only the
// created/deleted hooks are supported by lifetime canonicalization: operand
// rewriting there always precedes instruction deletion, so a
// will-be-deleted or operand-replaced hook would fire on stale state.
// Consumers requiring the unsupported hooks must be rejected at setup.
type Callbacks struct {
	// CreatedInst fires after a new instruction is inserted.
	CreatedInst func(*Instr)
	// DeletedInst fires after an instruction is removed from its block.
	DeletedInst func(*Instr)

	// WillDeleteInst and SetUseValue exist so a misconfigured collaborator
	// can be detected; installing either is an error.
	WillDeleteInst func(*Instr)
	SetUseValue    func(*Operand, *Value)
}

// Validate rejects callback configurations the edit surface cannot honor.
func (cb Callbacks) Validate() error {
	if cb.WillDeleteInst != nil || cb.SetUseValue != nil {
		return ErrUnsupportedCallback
	}
	return nil
}

func (cb Callbacks) created(in *Instr) {
	if cb.CreatedInst != nil {
		cb.CreatedInst(in)
	}
}

func (cb Callbacks) deleted(in *Instr) {
	if cb.DeletedInst != nil {
		cb.DeletedInst(in)
	}
}

// Editor performs SSA-preserving IR edits and notifies a callback sink, so
// callers' bookkeeping (e.g. worklist re-queuing) stays consistent.
type Editor struct {
	cb Callbacks
}

// NewEditor creates an editor over the given callback sink.
func NewEditor(cb Callbacks) (*Editor, error) {
	if err := cb.Validate(); err != nil {
		return nil, err
	}
	return &Editor{cb: cb}, nil
}

// Callbacks returns the editor's callback sink.
func (e *Editor) Callbacks() Callbacks { return e.cb }

// InsertBefore places in immediately before pos.
func (e *Editor) InsertBefore(pos, in *Instr) {
	b := pos.Parent()
	idx := b.indexOf(pos)
	if idx < 0 {
		panic("ir: insertion point not in a block")
	}
	b.insertAt(idx, in)
	e.cb.created(in)
}

// InsertAfter places in immediately after pos. pos must not be a terminator.
func (e *Editor) InsertAfter(pos, in *Instr) {
	if pos.IsTerminator() {
		panic("ir: cannot insert after a terminator")
	}
	b := pos.Parent()
	idx := b.indexOf(pos)
	if idx < 0 {
		panic("ir: insertion point not in a block")
	}
	b.insertAt(idx+1, in)
	e.cb.created(in)
}

// InsertAtFront places in at the beginning of b.
func (e *Editor) InsertAtFront(b *Block, in *Instr) {
	b.insertAt(0, in)
	e.cb.created(in)
}

// Delete removes in from its block, detaching all of its operands from the
// used values. The instruction's own result must be unused.
func (e *Editor) Delete(in *Instr) {
	if in.result != nil && len(in.result.uses) != 0 {
		panic("ir: deleting instruction whose result still has uses")
	}
	for i := range in.operands {
		op := &in.operands[i]
		if op.value != nil {
			op.value.removeUse(op)
			op.value = nil
		}
	}
	in.Parent().remove(in)
	e.cb.deleted(in)
}

// ReplaceAllUses redirects every use of old to new.
func (e *Editor) ReplaceAllUses(old, new *Value) {
	for _, op := range append([]*Operand(nil), old.uses...) {
		e.RedirectOperand(op, new)
	}
}

// RedirectOperand points op at v, keeping both use lists consistent.
func (e *Editor) RedirectOperand(op *Operand, v *Value) {
	if op.value == v {
		return
	}
	op.value.removeUse(op)
	op.value = v
	v.addUse(op)
}
