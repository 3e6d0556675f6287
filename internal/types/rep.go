package types

// Rep is the binary representation of a value in the target format.
// It decides slot width, load/store shape and boxing needs; it is the
// unit the method-table descriptor strings are built from.
type Rep byte

const (
	RepVoid   Rep = iota // No value (Unit returns)
	RepBool              // 1 slot, primitive
	RepInt               // 1 slot, primitive
	RepLong              // 2 slots, primitive
	RepFloat             // 1 slot, primitive
	RepDouble            // 2 slots, primitive
	RepRef               // 1 slot, reference
)

// repNames maps representations to their descriptor characters.
// The character set is part of the binary format and must not change.
var repNames = [...]struct {
	char byte
	name string
}{
	RepVoid:   {'V', "void"},
	RepBool:   {'Z', "bool"},
	RepInt:    {'I', "int"},
	RepLong:   {'J', "long"},
	RepFloat:  {'F', "float"},
	RepDouble: {'D', "double"},
	RepRef:    {'R', "ref"},
}

// Char returns the single-character descriptor encoding of the representation.
func (r Rep) Char() byte {
	return repNames[r].char
}

func (r Rep) String() string {
	return repNames[r].name
}

// Width returns how many local-variable slots a value of this
// representation occupies: 2 for long/double, 1 otherwise, 0 for void.
func (r Rep) Width() int {
	switch r {
	case RepVoid:
		return 0
	case RepLong, RepDouble:
		return 2
	default:
		return 1
	}
}

// IsPrimitive reports whether the representation is a primitive
// (unboxed) encoding. Void counts as neither primitive nor reference.
func (r Rep) IsPrimitive() bool {
	switch r {
	case RepBool, RepInt, RepLong, RepFloat, RepDouble:
		return true
	default:
		return false
	}
}

// IsReference reports whether the representation is a heap reference.
func (r Rep) IsReference() bool {
	return r == RepRef
}
