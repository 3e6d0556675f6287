package codegen

import (
	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/descriptors"
	"github.com/funvibe/loom/internal/types"
)

// MapSignature computes the target signature of a declaration's primary
// entry in its container. The parameter order is fixed by the format:
// the synthetic interface-typed receiver (trait implementations only),
// the extension receiver, value parameters in declaration order, then one
// reference slot per type-parameter witness.
func MapSignature(desc *descriptors.FunctionDescriptor, container descriptors.Container, mapper types.Mapper) classfile.Signature {
	params := make([]types.Rep, 0, len(desc.ValueParams)+len(desc.TypeParams)+2)

	if container.Kind == descriptors.TraitImplementation {
		params = append(params, types.RepRef)
	}
	if desc.Receiver != nil {
		params = append(params, mapper.MapType(desc.Receiver.Type))
	}
	for _, p := range desc.ValueParams {
		params = append(params, mapper.MapType(p.Type))
	}
	for range desc.TypeParams {
		params = append(params, types.RepRef)
	}

	return classfile.Signature{
		Name:   desc.Name,
		Params: params,
		Return: mapper.MapReturn(desc.ReturnType),
	}
}

// fixedParamCount returns how many leading signature parameters precede
// the value parameters: the synthetic trait receiver and the extension
// receiver.
func fixedParamCount(desc *descriptors.FunctionDescriptor, container descriptors.Container) int {
	n := 0
	if container.Kind == descriptors.TraitImplementation {
		n++
	}
	if desc.Receiver != nil {
		n++
	}
	return n
}
