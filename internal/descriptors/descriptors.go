// Package descriptors holds the resolved, immutable declaration model the
// back end consumes. The front end builds these during resolution; the
// generator only reads them. Nothing in this package is mutated after
// resolution, which is what makes single-pass generation safe.
package descriptors

import (
	"github.com/funvibe/loom/internal/token"
	"github.com/funvibe/loom/internal/types"
)

// Expr is an opaque handle to a resolved expression (a body, or a default
// value). The back end never inspects it; it is handed to the expression
// lowerer as-is.
type Expr interface {
	GetToken() token.Token
}

// ValueParameter is one declared value parameter of a function.
type ValueParameter struct {
	Name       string
	Type       types.Type
	HasDefault bool
	Default    Expr // nil unless HasDefault
}

// TypeParameter is one declared type parameter. At runtime each type
// parameter is accompanied by a witness object in its own local slot.
type TypeParameter struct {
	Name string
}

// ReceiverParameter is the extension receiver of an extension function.
type ReceiverParameter struct {
	Type types.Type
}

// ClassDescriptor identifies a class, trait or namespace declaration.
type ClassDescriptor struct {
	Name    string
	Super   *ClassDescriptor // nil for roots
	IsTrait bool
	Token   token.Token
}

// FunctionDescriptor is the resolved identity of one function declaration.
type FunctionDescriptor struct {
	Name       string
	Token      token.Token
	ValueParams []*ValueParameter
	TypeParams  []*TypeParameter
	Receiver    *ReceiverParameter // nil for non-extension functions
	ReturnType  types.Type         // nil or Unit for value-less returns
	Containing  *ClassDescriptor

	// Overridden lists the directly overridden ancestor descriptors in
	// resolution order. Kept ordered so generation stays deterministic.
	Overridden []*FunctionDescriptor

	// original is the pre-substitution descriptor, nil when this
	// descriptor is not a substitution result.
	original *FunctionDescriptor
}

// Original returns the pre-substitution descriptor, or the descriptor
// itself when no substitution was applied.
func (f *FunctionDescriptor) Original() *FunctionDescriptor {
	if f.original == nil {
		return f
	}
	return f.original
}

// WithOriginal returns a copy of the descriptor that records orig as its
// pre-substitution form. Used by resolution when instantiating generics.
func (f *FunctionDescriptor) WithOriginal(orig *FunctionDescriptor) *FunctionDescriptor {
	clone := *f
	clone.original = orig
	return &clone
}

// HasDefaults reports whether any value parameter declares a default.
func (f *FunctionDescriptor) HasDefaults() bool {
	for _, p := range f.ValueParams {
		if p.HasDefault {
			return true
		}
	}
	return false
}

// FunctionDeclaration pairs a descriptor with its body, when one exists.
// Bodyless declarations are legal inside trait interfaces.
type FunctionDeclaration struct {
	Descriptor *FunctionDescriptor
	Body       Expr // nil for bodyless declarations
}
