package canon

import (
	"oir/internal/ir"
)

// valueWorklist is a dedup LIFO over values. Re-inserting a value that was
// ever pushed is a no-op, so fixpoint loops terminate.
type valueWorklist struct {
	seen  map[*ir.Value]bool
	stack []*ir.Value
}

func (w *valueWorklist) initialize(v *ir.Value) {
	w.seen = make(map[*ir.Value]bool)
	w.stack = w.stack[:0]
	w.insert(v)
}

func (w *valueWorklist) insert(v *ir.Value) {
	if w.seen[v] {
		return
	}
	w.seen[v] = true
	w.stack = append(w.stack, v)
}

func (w *valueWorklist) pop() *ir.Value {
	if len(w.stack) == 0 {
		return nil
	}
	v := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	return v
}

func (w *valueWorklist) clear() {
	w.seen = make(map[*ir.Value]bool)
	w.stack = w.stack[:0]
}

// blockWorklist is a dedup FIFO over blocks.
type blockWorklist struct {
	seen  map[*ir.Block]bool
	queue []*ir.Block
	next  int
}

func (w *blockWorklist) initializeRange(blocks []*ir.Block) {
	w.seen = make(map[*ir.Block]bool)
	w.queue = w.queue[:0]
	w.next = 0
	for _, b := range blocks {
		w.insert(b)
	}
}

func (w *blockWorklist) insert(b *ir.Block) {
	if w.seen[b] {
		return
	}
	w.seen[b] = true
	w.queue = append(w.queue, b)
}

func (w *blockWorklist) pop() *ir.Block {
	if w.next >= len(w.queue) {
		return nil
	}
	b := w.queue[w.next]
	w.next++
	return b
}

// blockSetVector is an insertion-ordered block set that supports growing
// while being iterated by index.
type blockSetVector struct {
	seen  map[*ir.Block]bool
	order []*ir.Block
}

func newBlockSetVector() *blockSetVector {
	return &blockSetVector{seen: make(map[*ir.Block]bool)}
}

func (s *blockSetVector) insert(b *ir.Block) bool {
	if s.seen[b] {
		return false
	}
	s.seen[b] = true
	s.order = append(s.order, b)
	return true
}

func (s *blockSetVector) contains(b *ir.Block) bool { return s.seen[b] }
func (s *blockSetVector) len() int                  { return len(s.order) }
func (s *blockSetVector) at(i int) *ir.Block        { return s.order[i] }
func (s *blockSetVector) blocks() []*ir.Block       { return s.order }

func (s *blockSetVector) clear() {
	s.seen = make(map[*ir.Block]bool)
	s.order = s.order[:0]
}

// instrSetVector is an insertion-ordered instruction set.
type instrSetVector struct {
	seen  map[*ir.Instr]bool
	order []*ir.Instr
}

func newInstrSetVector() *instrSetVector {
	return &instrSetVector{seen: make(map[*ir.Instr]bool)}
}

func (s *instrSetVector) insert(in *ir.Instr) bool {
	if s.seen[in] {
		return false
	}
	s.seen[in] = true
	s.order = append(s.order, in)
	return true
}

func (s *instrSetVector) contains(in *ir.Instr) bool { return s.seen[in] }
func (s *instrSetVector) instrs() []*ir.Instr        { return s.order }

func (s *instrSetVector) remove(in *ir.Instr) {
	if !s.seen[in] {
		return
	}
	delete(s.seen, in)
	for i, cur := range s.order {
		if cur == in {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *instrSetVector) clear() {
	s.seen = make(map[*ir.Instr]bool)
	s.order = s.order[:0]
}
