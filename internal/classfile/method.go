package classfile

import (
	"fmt"
	"strings"

	"github.com/funvibe/loom/internal/types"
)

// Access flags for method entries. The values are part of the binary format.
const (
	ACC_PUBLIC   uint16 = 0x0001
	ACC_STATIC   uint16 = 0x0008
	ACC_ABSTRACT uint16 = 0x0400
)

// Signature is the target format's identity for a method: name plus the
// ordered binary representations of its parameters and return. Two entries
// with equal signatures collide in the method table regardless of their
// source-level shape, so every synthesized entry must render its signature
// bit-exactly.
type Signature struct {
	Name   string
	Params []types.Rep
	Return types.Rep
}

// Descriptor renders the canonical descriptor string, e.g. "(II)I".
func (s Signature) Descriptor() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range s.Params {
		sb.WriteByte(p.Char())
	}
	sb.WriteByte(')')
	sb.WriteByte(s.Return.Char())
	return sb.String()
}

// Key is the method-table key: name plus descriptor.
func (s Signature) Key() string {
	return s.Name + s.Descriptor()
}

func (s Signature) String() string {
	return s.Key()
}

// Equal reports whether two signatures are identical.
func (s Signature) Equal(o Signature) bool {
	return s.Key() == o.Key()
}

// MethodRef is a constant-pool reference to a method on a named owner.
type MethodRef struct {
	Owner string
	Sig   Signature
}

func (r MethodRef) String() string {
	return r.Owner + "." + r.Sig.Key()
}

// MethodEntry is one row of a class's method table.
type MethodEntry struct {
	Sig      Signature
	Flags    uint16
	Code     *Chunk // nil for abstract entries
	MaxStack int
	MaxLocals int
}

// IsAbstract reports whether the entry carries no code.
func (e *MethodEntry) IsAbstract() bool {
	return e.Flags&ACC_ABSTRACT != 0
}

// IsStatic reports whether the entry is static.
func (e *MethodEntry) IsStatic() bool {
	return e.Flags&ACC_STATIC != 0
}

func (e *MethodEntry) String() string {
	return fmt.Sprintf("%s [flags=0x%04x]", e.Sig.Key(), e.Flags)
}
