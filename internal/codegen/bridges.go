package codegen

import (
	"errors"
	"fmt"

	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/descriptors"
	"github.com/funvibe/loom/internal/diagnostics"
	"github.com/funvibe/loom/internal/types"
)

// ErrUnsupportedOverrideShape marks an override pair whose
// representations cannot be adapted by downcast and boxing. It fails the
// whole compilation; emitting the entry anyway would break dispatch.
var ErrUnsupportedOverrideShape = errors.New("unsupported override shape")

// generateBridges emits one forwarding entry for every overridden
// ancestor (and the declaration's own pre-substitution form) whose return
// representation differs from the declaration's. Identical bridge
// descriptors are emitted once.
func (fc *FunctionCodegen) generateBridges(decl *descriptors.FunctionDeclaration, sig classfile.Signature, concrete bool) error {
	switch fc.container.Kind {
	case descriptors.TraitInterface, descriptors.TraitImplementation:
		// No implementation to bridge from: the interface holds abstract
		// entries and the implementation class holds static ones.
		return nil
	case descriptors.Namespace:
		// Free functions take no part in override dispatch.
		return nil
	case descriptors.Implementation, descriptors.Delegate:
	}
	if !concrete {
		return nil
	}

	desc := decl.Descriptor
	seen := map[string]struct{}{sig.Descriptor(): {}}

	targets := make([]*descriptors.FunctionDescriptor, 0, len(desc.Overridden)+1)
	targets = append(targets, desc.Overridden...)
	targets = append(targets, desc.Original())

	for _, ancestor := range targets {
		if err := fc.checkOverride(desc, sig, ancestor, seen); err != nil {
			return err
		}
	}
	return nil
}

// checkOverride compares the declaration's return representation with one
// ancestor's and emits a forwarding bridge on mismatch.
func (fc *FunctionCodegen) checkOverride(desc *descriptors.FunctionDescriptor, sig classfile.Signature, ancestor *descriptors.FunctionDescriptor, seen map[string]struct{}) error {
	mapper := fc.state.Mapper

	ancestorRet := mapper.MapReturn(ancestor.Original().ReturnType)
	if ancestorRet == sig.Return {
		return nil
	}

	ancSig := MapSignature(ancestor.Original(), fc.container, mapper)
	if _, dup := seen[ancSig.Descriptor()]; dup {
		return nil
	}
	seen[ancSig.Descriptor()] = struct{}{}

	if len(ancSig.Params) != len(sig.Params) {
		fc.state.Diags.Add(diagnostics.NewError(diagnostics.ErrG003, desc.Token,
			fmt.Sprintf("override of %s has %d parameters, declaration has %d",
				ancestor.Name, len(ancSig.Params), len(sig.Params))))
		return nil
	}

	line := desc.Token.Line
	frame := NewFrameMap()
	frame.EnterThis()
	code := classfile.NewChunk()
	asm := NewAssembler(code, frame, line)

	// Bridge descriptor matches the ancestor exactly; arguments arrive in
	// the ancestor's representations and are adapted to the declaration's.
	asm.EmitLoad(0)
	for i, ancRep := range ancSig.Params {
		slot := frame.EnterTemp(ancRep.Width())
		asm.EmitLoad(slot)
		if err := fc.adaptArgument(desc, ancestor, i, ancRep, sig.Params[i], asm); err != nil {
			return err
		}
	}

	asm.EmitInvoke(classfile.OP_INVOKE_VIRTUAL, classfile.MethodRef{
		Owner: fc.writer.ClassName(),
		Sig:   sig,
	})
	if err := fc.adaptResult(desc, ancestor, sig.Return, ancestorRet, asm); err != nil {
		return err
	}
	asm.EmitReturn(ancestorRet)

	entry := &classfile.MethodEntry{
		Sig:       ancSig,
		Flags:     classfile.ACC_PUBLIC,
		Code:      code,
		MaxLocals: frame.Size(),
	}
	return fc.addEntry(desc, entry)
}

// adaptArgument converts one bridge argument from the ancestor's
// representation to the declaration's own.
func (fc *FunctionCodegen) adaptArgument(desc *descriptors.FunctionDescriptor, ancestor *descriptors.FunctionDescriptor, index int, ancRep, ownRep types.Rep, asm *Assembler) error {
	switch {
	case ancRep == ownRep:
		if ownRep.IsReference() {
			asm.EmitIndexed(classfile.OP_CHECKCAST, fc.ownParamTypeName(desc, index))
		}
	case ancRep.IsReference() && ownRep.IsReference():
		asm.EmitIndexed(classfile.OP_CHECKCAST, fc.ownParamTypeName(desc, index))
	case ancRep.IsReference() && ownRep.IsPrimitive():
		asm.Emit(classfile.OP_UNBOX)
	default:
		return fmt.Errorf("%w: %s overrides %s but parameter %d cannot be adapted from %s to %s",
			ErrUnsupportedOverrideShape, desc.Name, ancestor.Name, index, ancRep, ownRep)
	}
	return nil
}

// adaptResult converts the invoked declaration's result to the ancestor's
// return representation.
func (fc *FunctionCodegen) adaptResult(desc *descriptors.FunctionDescriptor, ancestor *descriptors.FunctionDescriptor, ownRet, ancestorRet types.Rep, asm *Assembler) error {
	switch {
	case ownRet.IsPrimitive() && ancestorRet.IsReference():
		asm.Emit(classfile.OP_BOX)
	case ownRet == types.RepVoid && ancestorRet.IsReference():
		asm.Emit(classfile.OP_NULL)
	default:
		return fmt.Errorf("%w: %s overrides %s but the %s result cannot be adapted to %s",
			ErrUnsupportedOverrideShape, desc.Name, ancestor.Name, ownRet, ancestorRet)
	}
	return nil
}

// ownParamTypeName names the declaration's own type at a signature
// parameter position, for checked downcasts.
func (fc *FunctionCodegen) ownParamTypeName(desc *descriptors.FunctionDescriptor, index int) string {
	i := index
	if fc.container.Kind == descriptors.TraitImplementation {
		if i == 0 {
			return fc.container.Class.Name
		}
		i--
	}
	if desc.Receiver != nil {
		if i == 0 {
			return desc.Receiver.Type.String()
		}
		i--
	}
	if i < len(desc.ValueParams) {
		return desc.ValueParams[i].Type.String()
	}
	// Type-parameter witness slots are plain references.
	return "Witness"
}
