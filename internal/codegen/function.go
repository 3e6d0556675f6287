package codegen

import (
	"errors"
	"fmt"

	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/descriptors"
	"github.com/funvibe/loom/internal/diagnostics"
)

// FunctionCodegen generates all method-table entries for function
// declarations of one container: the primary entry, override bridges and
// the default-argument dispatcher. It writes to a single class writer and
// reads only the immutable descriptor graph.
type FunctionCodegen struct {
	container descriptors.Container
	writer    *classfile.ClassWriter
	state     *GenerationState
	lowerer   BodyLowerer
}

// NewFunctionCodegen creates a generator for one container and sink.
func NewFunctionCodegen(container descriptors.Container, writer *classfile.ClassWriter, state *GenerationState, lowerer BodyLowerer) *FunctionCodegen {
	return &FunctionCodegen{
		container: container,
		writer:    writer,
		state:     state,
		lowerer:   lowerer,
	}
}

// Generate emits every entry one declaration contributes to the class:
// the primary entry (possibly none), bridges for mismatched overrides,
// and the default-argument dispatcher. Bridges and the dispatcher always
// run, whatever the primary decision was.
func (fc *FunctionCodegen) Generate(decl *descriptors.FunctionDeclaration) error {
	sig := MapSignature(decl.Descriptor, fc.container, fc.state.Mapper)

	concrete, err := fc.generatePrimary(decl, sig)
	if err != nil {
		return err
	}
	if err := fc.generateBridges(decl, sig, concrete); err != nil {
		return err
	}
	return fc.generateDefaultDispatcher(decl, sig)
}

// generatePrimary emits the primary entry for the declaration, if the
// container calls for one. It reports whether a concrete (non-abstract)
// entry was produced.
func (fc *FunctionCodegen) generatePrimary(decl *descriptors.FunctionDeclaration, sig classfile.Signature) (bool, error) {
	desc := decl.Descriptor
	kind := fc.container.Kind
	line := desc.Token.Line

	// A bodyless declaration contributes nothing to the trait
	// implementation class; the interface already holds the abstract
	// entry. The dispatcher still runs.
	if kind == descriptors.TraitImplementation && decl.Body == nil {
		return false, nil
	}

	isStatic := fc.container.IsStatic()
	isAbstract := !isStatic && (decl.Body == nil || kind == descriptors.TraitInterface)

	flags := classfile.ACC_PUBLIC
	if isStatic {
		flags |= classfile.ACC_STATIC
	}
	if isAbstract {
		flags |= classfile.ACC_ABSTRACT
	}

	if isAbstract {
		entry := &classfile.MethodEntry{Sig: sig, Flags: flags}
		return false, fc.addEntry(desc, entry)
	}

	frame := NewFrameMap()
	if !isStatic {
		frame.EnterThis()
	}
	code := classfile.NewChunk()
	asm := NewAssembler(code, frame, line)

	// Parameter slots, in declaration order, sized by representation width
	fixed := fixedParamCount(desc, fc.container)
	for i := 0; i < fixed; i++ {
		frame.EnterTemp(sig.Params[i].Width())
	}
	for i, p := range desc.ValueParams {
		frame.EnterParam(p, sig.Params[fixed+i].Width())
	}
	for _, tp := range desc.TypeParams {
		slot := frame.EnterWitness(tp)
		fc.lowerer.DeclareWitness(tp, slot)
	}

	switch kind {
	case descriptors.Delegate:
		// The supplied body, if any, is ignored for delegated members.
		fc.emitDelegationThunk(sig, asm)
	case descriptors.Namespace, descriptors.Implementation, descriptors.TraitInterface, descriptors.TraitImplementation:
		fc.emitClosureBoxing(desc, frame, asm)
		if err := fc.lowerer.LowerBody(decl.Body, asm, sig.Return); err != nil {
			return false, fmt.Errorf("lowering body of %s: %w", desc.Name, err)
		}
	}

	entry := &classfile.MethodEntry{
		Sig:       sig,
		Flags:     flags,
		Code:      code,
		MaxLocals: frame.Size(),
	}
	if err := fc.addEntry(desc, entry); err != nil {
		return false, err
	}
	return true, nil
}

// emitClosureBoxing re-homes every closure-captured value parameter into
// a fresh shared cell, in place, before the body runs. Body and closure
// reads and writes then observe the same storage.
func (fc *FunctionCodegen) emitClosureBoxing(desc *descriptors.FunctionDescriptor, frame *FrameMap, asm *Assembler) {
	for _, p := range desc.ValueParams {
		if !fc.lowerer.IsCaptured(p) {
			continue
		}
		slot, ok := frame.Index(p)
		if !ok {
			panic("captured parameter has no slot")
		}
		asm.Emit(classfile.OP_NEW_CELL)
		asm.Emit(classfile.OP_DUP)
		asm.EmitLoad(slot)
		asm.Emit(classfile.OP_CELL_SET)
		asm.EmitStore(slot)
	}
}

// emitDelegationThunk forwards the member to the delegate value: load
// this, evaluate the delegate, pass every parameter unchanged, invoke the
// member through the declared interface and return its result directly.
func (fc *FunctionCodegen) emitDelegationThunk(sig classfile.Signature, asm *Assembler) {
	asm.EmitLoad(0)
	fc.container.Accessor.EmitLoad(asm.Code, asm.Line())

	slot := 1
	for _, rep := range sig.Params {
		asm.EmitLoad(slot)
		slot += rep.Width()
	}

	asm.EmitInvoke(classfile.OP_INVOKE_IFACE, classfile.MethodRef{
		Owner: fc.container.Interface.Name,
		Sig:   sig,
	})
	asm.EmitReturn(sig.Return)
}

// addEntry appends an entry to the sink, applying the failure policy: a
// stack-accounting rejection is fatal by default and a per-entry
// diagnostic when the lenient policy is on; a duplicate entry is always a
// per-declaration diagnostic. Either way siblings keep generating.
func (fc *FunctionCodegen) addEntry(desc *descriptors.FunctionDescriptor, entry *classfile.MethodEntry) error {
	err := fc.writer.Add(entry)
	if err == nil {
		return nil
	}

	if errors.Is(err, classfile.ErrStackAccounting) {
		if fc.state.Options.LenientSink {
			fc.state.Diags.Add(diagnostics.NewError(diagnostics.ErrG001, desc.Token, err.Error()))
			return nil
		}
		return err
	}
	if errors.Is(err, classfile.ErrDuplicateMethod) {
		fc.state.Diags.Add(diagnostics.NewError(diagnostics.ErrG005, desc.Token, err.Error()))
		return nil
	}
	return err
}
