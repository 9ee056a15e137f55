package ir

import "fmt"

// UseCategory is the ownership-use category of one operand. The enumeration
// is closed: Classify matches exhaustively over instruction kinds, and an
// unknown kind is a hard error, never a silent default.
type UseCategory uint8

const (
	// NonUse does not use the value's ownership at all.
	NonUse UseCategory = iota
	// TrivialUse handles only trivial (ownership-free) values.
	TrivialUse
	// InstantaneousUse uses the value only at a single point.
	InstantaneousUse
	// UnownedInstantaneousUse uses the value momentarily through an
	// untracked reference.
	UnownedInstantaneousUse
	// BitwiseEscape reinterprets the value's bits without propagating
	// ownership.
	BitwiseEscape
	// ForwardingUnowned forwards the value into an untracked reference.
	ForwardingUnowned
	// ForwardingConsume ends the ownership token by forwarding it into a
	// new owned value.
	ForwardingConsume
	// DestroyingConsume ends the ownership token by destroying it.
	DestroyingConsume
	// Borrow introduces a scoped, non-owning view of the value.
	Borrow
	// InteriorPointer projects an address into the value's storage.
	InteriorPointer
	// ForwardingBorrow forwards a guaranteed view into another guaranteed
	// value.
	ForwardingBorrow
	// EndBorrow ends a borrow scope.
	EndBorrow
	// Reborrow re-establishes a borrow across a control-flow edge.
	Reborrow
	// PointerEscape makes ownership untraceable.
	PointerEscape
)

// String returns the category name.
func (c UseCategory) String() string {
	switch c {
	case NonUse:
		return "NonUse"
	case TrivialUse:
		return "TrivialUse"
	case InstantaneousUse:
		return "InstantaneousUse"
	case UnownedInstantaneousUse:
		return "UnownedInstantaneousUse"
	case BitwiseEscape:
		return "BitwiseEscape"
	case ForwardingUnowned:
		return "ForwardingUnowned"
	case ForwardingConsume:
		return "ForwardingConsume"
	case DestroyingConsume:
		return "DestroyingConsume"
	case Borrow:
		return "Borrow"
	case InteriorPointer:
		return "InteriorPointer"
	case ForwardingBorrow:
		return "ForwardingBorrow"
	case EndBorrow:
		return "EndBorrow"
	case Reborrow:
		return "Reborrow"
	case PointerEscape:
		return "PointerEscape"
	default:
		return "?"
	}
}

// IsConsuming reports whether the category ends the current ownership token.
func (c UseCategory) IsConsuming() bool {
	return c == ForwardingConsume || c == DestroyingConsume
}

// Classify returns the ownership-use category of op. This is the closed
// per-operand oracle: every instruction kind must be handled, and a kind
// outside the enumeration is a contract violation.
func Classify(op *Operand) UseCategory {
	user := op.User()
	switch user.Kind() {
	case InstrCopy:
		return InstantaneousUse
	case InstrDestroy:
		return DestroyingConsume
	case InstrBorrow:
		return Borrow
	case InstrEndBorrow:
		return EndBorrow
	case InstrMove:
		return ForwardingConsume
	case InstrApply:
		switch user.ArgConvention(op.Index()) {
		case ConvOwned:
			return ForwardingConsume
		case ConvGuaranteed:
			return InstantaneousUse
		case ConvUnowned:
			return UnownedInstantaneousUse
		case ConvTrivial:
			return TrivialUse
		}
	case InstrStore:
		if op.Index() == 0 {
			return DestroyingConsume
		}
		return TrivialUse
	case InstrLoad:
		return TrivialUse
	case InstrBitCast:
		return BitwiseEscape
	case InstrToUnowned:
		return ForwardingUnowned
	case InstrExtract:
		return ForwardingBorrow
	case InstrInteriorAddr:
		return InteriorPointer
	case InstrEscape:
		return PointerEscape
	case InstrBeginAccess, InstrEndAccess:
		return NonUse
	case InstrDebugValue:
		return InstantaneousUse
	case InstrBr:
		target := user.targets[0]
		if op.Index() < len(target.args) {
			switch target.args[op.Index()].Ownership() {
			case OwnershipOwned:
				return ForwardingConsume
			case OwnershipGuaranteed:
				return Reborrow
			}
		}
		return TrivialUse
	case InstrCondBr:
		return TrivialUse
	case InstrReturn:
		switch op.Value().Ownership() {
		case OwnershipOwned:
			return ForwardingConsume
		case OwnershipNone:
			return TrivialUse
		default:
			return InstantaneousUse
		}
	case InstrConst, InstrAlloc, InstrStack:
		// No operands.
	}
	panic(fmt.Sprintf("ir: unclassifiable operand %d of %s", op.Index(), user.Kind()))
}
