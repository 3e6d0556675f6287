package codegen

import (
	"fmt"

	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/config"
	"github.com/funvibe/loom/internal/descriptors"
	"github.com/funvibe/loom/internal/diagnostics"
	"github.com/funvibe/loom/internal/types"
)

// generateDefaultDispatcher emits the overload that fills omitted default
// arguments. Its descriptor is the primary's plus one trailing int: the
// presence mask. Bit i of the mask corresponds to the value parameter at
// overall positional index i; a set bit means the caller passed the
// argument, a clear bit means the default expression runs.
func (fc *FunctionCodegen) generateDefaultDispatcher(decl *descriptors.FunctionDeclaration, primarySig classfile.Signature) error {
	desc := decl.Descriptor
	if !desc.HasDefaults() {
		return nil
	}

	kind := fc.container.Kind
	switch kind {
	case descriptors.TraitInterface:
		// The trait implementation class carries the dispatcher.
		return nil
	case descriptors.Namespace, descriptors.Implementation, descriptors.TraitImplementation, descriptors.Delegate:
	}

	for i, p := range desc.ValueParams {
		if p.HasDefault && i >= config.MaxDefaultMaskBits {
			fc.state.Diags.Add(diagnostics.NewError(diagnostics.ErrG004, desc.Token,
				fmt.Sprintf("defaulted parameter %s at position %d exceeds the %d-bit presence mask",
					p.Name, i, config.MaxDefaultMaskBits)))
			return nil
		}
	}

	// The invoked form for trait implementations is derived up front so a
	// malformed primary surfaces before anything is emitted.
	invoked := primarySig
	invokeOp := classfile.OP_INVOKE_VIRTUAL
	invokeOwner := fc.writer.ClassName()
	switch kind {
	case descriptors.Namespace:
		invokeOp = classfile.OP_INVOKE_STATIC
	case descriptors.Implementation, descriptors.Delegate:
	case descriptors.TraitImplementation:
		var err error
		invoked, err = interfaceSignature(primarySig)
		if err != nil {
			fc.state.Diags.Add(diagnostics.NewError(diagnostics.ErrG003, desc.Token, err.Error()))
			return nil
		}
		invokeOp = classfile.OP_INVOKE_IFACE
		invokeOwner = fc.container.Class.Name
	case descriptors.TraitInterface:
		panic("dispatcher generation reached a trait interface container")
	}

	isStatic := fc.container.IsStatic()
	line := desc.Token.Line

	params := make([]types.Rep, 0, len(primarySig.Params)+1)
	params = append(params, primarySig.Params...)
	params = append(params, types.RepInt)
	sig := classfile.Signature{
		Name:   desc.Name + config.DefaultDispatcherSuffix,
		Params: params,
		Return: primarySig.Return,
	}

	flags := classfile.ACC_PUBLIC
	if isStatic {
		flags |= classfile.ACC_STATIC
	}

	frame := NewFrameMap()
	if !isStatic {
		frame.EnterThis()
	}
	fixed := fixedParamCount(desc, fc.container)
	fixedSlots := make([]int, fixed)
	for i := 0; i < fixed; i++ {
		fixedSlots[i] = frame.EnterTemp(primarySig.Params[i].Width())
	}
	for i, p := range desc.ValueParams {
		frame.EnterParam(p, primarySig.Params[fixed+i].Width())
	}
	for _, tp := range desc.TypeParams {
		frame.EnterWitness(tp)
	}
	// The mask is the last local before body code and has no other use.
	maskSlot := frame.EnterTemp(types.RepInt.Width())

	code := classfile.NewChunk()
	asm := NewAssembler(code, frame, line)

	if !isStatic {
		asm.EmitLoad(0)
	}
	for _, slot := range fixedSlots {
		asm.EmitLoad(slot)
	}

	for i, p := range desc.ValueParams {
		slot, ok := frame.Index(p)
		if !ok {
			panic("value parameter has no slot")
		}
		if !p.HasDefault {
			asm.EmitLoad(slot)
			continue
		}

		asm.EmitLoad(maskSlot)
		asm.EmitConst(int64(1) << i)
		asm.Emit(classfile.OP_IAND)
		useDefault := asm.EmitJump(classfile.OP_JUMP_IF_ZERO)

		asm.EmitLoad(slot)
		end := asm.EmitJump(classfile.OP_JUMP)

		asm.PatchJump(useDefault)
		// Default-expression code is attributed to its own source line
		asm.SetLine(p.Default.GetToken().Line)
		if err := fc.lowerer.LowerDefault(p.Default, asm, primarySig.Params[fixed+i]); err != nil {
			return fmt.Errorf("lowering default of %s.%s: %w", desc.Name, p.Name, err)
		}
		asm.SetLine(line)
		asm.PatchJump(end)
	}

	for _, tp := range desc.TypeParams {
		slot, ok := frame.WitnessSlot(tp)
		if !ok {
			panic("type parameter has no witness slot")
		}
		asm.EmitLoad(slot)
	}

	asm.EmitInvoke(invokeOp, classfile.MethodRef{Owner: invokeOwner, Sig: invoked})
	asm.EmitReturn(sig.Return)

	entry := &classfile.MethodEntry{
		Sig:       sig,
		Flags:     flags,
		Code:      code,
		MaxLocals: frame.Size(),
	}
	return fc.addEntry(desc, entry)
}

// interfaceSignature derives the interface-side signature from a trait
// implementation's primary: the synthetic leading receiver is dropped.
// The drop is structural; a primary whose first parameter is not a
// reference is a malformed descriptor.
func interfaceSignature(primarySig classfile.Signature) (classfile.Signature, error) {
	if len(primarySig.Params) == 0 || !primarySig.Params[0].IsReference() {
		return classfile.Signature{}, fmt.Errorf(
			"malformed descriptor: trait implementation primary %s lacks the interface-typed receiver", primarySig.Key())
	}
	return classfile.Signature{
		Name:   primarySig.Name,
		Params: primarySig.Params[1:],
		Return: primarySig.Return,
	}, nil
}
