package ir

// Ownership is the ownership kind carried by a value.
type Ownership uint8

const (
	// OwnershipNone indicates a trivial value with no ownership semantics.
	OwnershipNone Ownership = iota
	// OwnershipOwned indicates an exclusive, transferable claim that must
	// end in exactly one consuming use on every path.
	OwnershipOwned
	// OwnershipGuaranteed indicates a borrowed, non-owning view valid for
	// the duration of an enclosing borrow scope.
	OwnershipGuaranteed
	// OwnershipUnowned indicates a reference whose lifetime is not tracked.
	OwnershipUnowned
	// OwnershipAny is compatible with every ownership kind.
	OwnershipAny
)

// String returns a human-readable representation of the ownership kind.
func (o Ownership) String() string {
	switch o {
	case OwnershipNone:
		return "none"
	case OwnershipOwned:
		return "owned"
	case OwnershipGuaranteed:
		return "guaranteed"
	case OwnershipUnowned:
		return "unowned"
	case OwnershipAny:
		return "any"
	default:
		return "?"
	}
}

// ParseOwnership maps a textual ownership keyword to its kind.
func ParseOwnership(s string) (Ownership, bool) {
	switch s {
	case "none":
		return OwnershipNone, true
	case "owned":
		return OwnershipOwned, true
	case "guaranteed":
		return OwnershipGuaranteed, true
	case "unowned":
		return OwnershipUnowned, true
	case "any":
		return OwnershipAny, true
	default:
		return OwnershipNone, false
	}
}
