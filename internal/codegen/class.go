package codegen

import (
	"fmt"

	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/descriptors"
)

// ClassCodegen drives generation for whole containers: one declaration at
// a time, primary then bridges then dispatcher, fully emitted before the
// next declaration starts. Generation is synchronous and deterministic;
// hosts that parallelize across classes give each call its own writer.
type ClassCodegen struct {
	state   *GenerationState
	lowerer BodyLowerer
}

// NewClassCodegen creates a driver sharing one generation state.
func NewClassCodegen(state *GenerationState, lowerer BodyLowerer) *ClassCodegen {
	return &ClassCodegen{state: state, lowerer: lowerer}
}

// GenerateClass emits all entries for the container's declarations into
// the writer, in declaration order.
func (cc *ClassCodegen) GenerateClass(container descriptors.Container, writer *classfile.ClassWriter, decls []*descriptors.FunctionDeclaration) error {
	fg := NewFunctionCodegen(container, writer, cc.state, cc.lowerer)
	for _, decl := range decls {
		if err := fg.Generate(decl); err != nil {
			return fmt.Errorf("generating %s.%s: %w", writer.ClassName(), decl.Descriptor.Name, err)
		}
	}
	return nil
}
