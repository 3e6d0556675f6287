package codegen

import (
	"github.com/funvibe/loom/internal/descriptors"
	"github.com/funvibe/loom/internal/types"
)

// BodyLowerer is the expression-lowering collaborator. It owns everything
// about ordinary statement and expression code: the generator hands it an
// assembler and the target return representation and expects instructions
// plus a terminating return.
type BodyLowerer interface {
	// LowerBody emits the code for a function body, including its return.
	LowerBody(body descriptors.Expr, a *Assembler, ret types.Rep) error

	// LowerDefault emits the code for one default-value expression,
	// leaving exactly one value of the target representation on the stack.
	LowerDefault(expr descriptors.Expr, a *Assembler, target types.Rep) error

	// IsCaptured reports whether a value parameter is captured and
	// mutated by a nested closure; such parameters are re-homed into
	// shared cells before body lowering.
	IsCaptured(p *descriptors.ValueParameter) bool

	// DeclareWitness tells the lowerer which slot holds the runtime
	// witness of a type parameter.
	DeclareWitness(tp *descriptors.TypeParameter, slot int)
}
