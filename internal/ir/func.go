package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// Function is a CFG of basic blocks. The first block created is the entry.
type Function struct {
	Name string

	blocks    []*Block
	nextValue ValueID
}

// NewFunction creates an empty function.
func NewFunction(name string) *Function {
	return &Function{Name: name}
}

// NewBlock appends a fresh block labeled name. An empty name derives a label
// from the block id.
func (f *Function) NewBlock(name string) *Block {
	id, err := safecast.Conv[uint32](len(f.blocks))
	if err != nil {
		panic(fmt.Errorf("ir: block count overflow: %w", err))
	}
	if name == "" {
		name = fmt.Sprintf("bb%d", id)
	}
	b := &Block{id: BlockID(id), fn: f, name: name}
	f.blocks = append(f.blocks, b)
	return b
}

// Entry returns the entry block, or nil for an empty function.
func (f *Function) Entry() *Block {
	if len(f.blocks) == 0 {
		return nil
	}
	return f.blocks[0]
}

// Blocks returns the function's blocks in creation order.
func (f *Function) Blocks() []*Block { return f.blocks }

// NumBlocks returns the number of blocks, which also bounds BlockID.
func (f *Function) NumBlocks() int { return len(f.blocks) }

// NumValues returns an upper bound on assigned ValueIDs.
func (f *Function) NumValues() int { return int(f.nextValue) }

// BlockByName returns the block labeled name, or nil.
func (f *Function) BlockByName(name string) *Block {
	for _, b := range f.blocks {
		if b.name == name {
			return b
		}
	}
	return nil
}

func (f *Function) nextValueID() ValueID {
	id := f.nextValue
	f.nextValue++
	return id
}

// Module is a collection of functions, as parsed from one OIR file.
type Module struct {
	Funcs []*Function
}

// FuncByName returns the function with the given name, or nil.
func (m *Module) FuncByName(name string) *Function {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
