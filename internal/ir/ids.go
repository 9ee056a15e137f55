package ir

// ValueID identifies a value within a function.
type ValueID uint32

// BlockID identifies a basic block within a function.
type BlockID uint32

// NoValueID indicates the absence of a value.
const NoValueID ValueID = ^ValueID(0)
