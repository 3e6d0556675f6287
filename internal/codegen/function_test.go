package codegen

import (
	"errors"
	"testing"

	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/descriptors"
	"github.com/funvibe/loom/internal/diagnostics"
	"github.com/funvibe/loom/internal/types"
	"github.com/funvibe/loom/internal/vm"
)

func TestPrimaryEntryWithoutDefaults(t *testing.T) {
	state := newTestState()
	class := generate(t, namespaceContainer("main"), state, newStubLowerer(),
		declOf(fn("add", intType(), param("a", intType()), param("b", intType()))))

	if len(class.Methods) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(class.Methods))
	}
	entry := findEntry(t, class, "add(II)I")
	if !entry.IsStatic() {
		t.Errorf("namespace entry should be static")
	}
	if entry.IsAbstract() {
		t.Errorf("entry with a body should be concrete")
	}
	if state.Diags.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", state.Diags.Errors())
	}
}

func TestInstanceEntryReservesReceiverSlot(t *testing.T) {
	state := newTestState()
	class := generate(t, classContainer("Point"), state, newStubLowerer(),
		declOf(fn("norm", intType(), param("scale", intType()))))

	entry := findEntry(t, class, "norm(I)I")
	if entry.IsStatic() {
		t.Errorf("class entry should be an instance method")
	}
	// this in slot 0, scale in slot 1
	if entry.MaxLocals != 2 {
		t.Errorf("expected 2 local slots, got %d", entry.MaxLocals)
	}
}

func TestWideParametersTakeTwoSlots(t *testing.T) {
	state := newTestState()
	class := generate(t, namespaceContainer("main"), state, newStubLowerer(),
		declOf(fn("shift", longType(), param("base", longType()), param("by", intType()))))

	entry := findEntry(t, class, "shift(JI)J")
	// base spans slots 0-1, by sits in slot 2
	if entry.MaxLocals != 3 {
		t.Errorf("expected 3 local slots, got %d", entry.MaxLocals)
	}
}

func TestTraitInterfaceEntryIsAbstract(t *testing.T) {
	container := descriptors.Container{
		Kind:  descriptors.TraitInterface,
		Class: &descriptors.ClassDescriptor{Name: "Show", IsTrait: true, Token: testToken(1)},
	}
	state := newTestState()
	class := generate(t, container, state, newStubLowerer(),
		&descriptors.FunctionDeclaration{Descriptor: fn("render", intType(), param("pad", intType()))})

	entry := findEntry(t, class, "render(I)I")
	if !entry.IsAbstract() {
		t.Errorf("trait interface entry should be abstract")
	}
	if entry.Code != nil {
		t.Errorf("abstract entry should carry no code")
	}
}

func TestTraitImplementationSkipsBodylessDeclarations(t *testing.T) {
	container := descriptors.Container{
		Kind:  descriptors.TraitImplementation,
		Class: &descriptors.ClassDescriptor{Name: "Show", IsTrait: true, Token: testToken(1)},
	}
	state := newTestState()
	class := generate(t, container, state, newStubLowerer(),
		&descriptors.FunctionDeclaration{Descriptor: fn("render", intType(), param("pad", intType()))})

	if len(class.Methods) != 0 {
		t.Fatalf("bodyless trait declaration should contribute nothing, got %d entries", len(class.Methods))
	}
}

func TestCapturedParameterIsRehomedIntoCell(t *testing.T) {
	lowerer := newStubLowerer()
	lowerer.captured["counter"] = true

	state := newTestState()
	class := generate(t, namespaceContainer("main"), state, lowerer,
		declOf(fn("tick", intType(), param("counter", intType()))))

	entry := findEntry(t, class, "tick(I)I")
	expectOps(t, entry.Code,
		classfile.OP_NEW_CELL,
		classfile.OP_DUP,
		classfile.OP_LOAD,
		classfile.OP_CELL_SET,
		classfile.OP_STORE,
		classfile.OP_CONST,
		classfile.OP_RETURN_VAL,
	)
}

func TestBodyReadsCapturedParameterThroughCell(t *testing.T) {
	pCounter := param("counter", intType())
	desc := fn("tick", intType(), pCounter)

	lowerer := newStubLowerer()
	lowerer.captured["counter"] = true
	lowerer.body = func(a *Assembler, ret types.Rep) error {
		slot, _ := a.Frame.Index(pCounter)
		a.EmitLoad(slot)
		a.Emit(classfile.OP_CELL_GET)
		a.EmitReturn(ret)
		return nil
	}

	state := newTestState()
	class := generate(t, namespaceContainer("main"), state, lowerer, declOf(desc))
	entry := findEntry(t, class, "tick(I)I")

	machine := vm.New()
	machine.RegisterClass(class)

	result, err := machine.InvokeStatic("main", entry.Sig, []vm.Value{vm.IntVal(6)})
	if err != nil {
		t.Fatalf("invocation failed: %s", err)
	}
	if result.AsInt() != 6 {
		t.Errorf("the preamble should have moved the argument into the cell. got=%d", result.AsInt())
	}
}

func TestUncapturedParameterIsNotBoxed(t *testing.T) {
	state := newTestState()
	class := generate(t, namespaceContainer("main"), state, newStubLowerer(),
		declOf(fn("tick", intType(), param("counter", intType()))))

	entry := findEntry(t, class, "tick(I)I")
	expectOps(t, entry.Code, classfile.OP_CONST, classfile.OP_RETURN_VAL)
}

func TestWitnessSlotsFollowValueParameters(t *testing.T) {
	lowerer := newStubLowerer()
	desc := fn("first", intType(), param("items", refType("List")))
	desc.TypeParams = []*descriptors.TypeParameter{{Name: "T"}}

	state := newTestState()
	class := generate(t, namespaceContainer("main"), state, lowerer, declOf(desc))

	findEntry(t, class, "first(RR)I")
	slot, ok := lowerer.witnesses["T"]
	if !ok {
		t.Fatalf("witness for T was never declared")
	}
	if slot != 1 {
		t.Errorf("witness should follow the value parameters. got slot %d, want 1", slot)
	}
}

func TestDelegationThunkForwardsThroughInterface(t *testing.T) {
	container := descriptors.Container{
		Kind:      descriptors.Delegate,
		Class:     &descriptors.ClassDescriptor{Name: "Wrapper", Token: testToken(1)},
		Interface: &descriptors.ClassDescriptor{Name: "Greeter", Token: testToken(1)},
		Accessor:  &descriptors.FieldAccessor{FieldName: "inner"},
	}
	state := newTestState()
	class := generate(t, container, state, newStubLowerer(),
		declOf(fn("greet", intType(), param("times", intType()))))

	entry := findEntry(t, class, "greet(I)I")
	if entry.IsStatic() {
		t.Errorf("delegated entry should be an instance method")
	}
	expectOps(t, entry.Code,
		classfile.OP_LOAD,      // this
		classfile.OP_GET_FIELD, // delegate value
		classfile.OP_LOAD,      // times
		classfile.OP_INVOKE_IFACE,
		classfile.OP_RETURN_VAL,
	)

	refs := invokeRefs(entry.Code)
	if len(refs) != 1 {
		t.Fatalf("expected one invoke, got %d", len(refs))
	}
	if refs[0].Owner != "Greeter" {
		t.Errorf("thunk should invoke through the declared interface. got owner %s", refs[0].Owner)
	}
	if refs[0].Sig.Key() != "greet(I)I" {
		t.Errorf("thunk should invoke the member's own signature. got %s", refs[0].Sig.Key())
	}
}

func TestDuplicateEntryBecomesDiagnostic(t *testing.T) {
	state := newTestState()
	class := generate(t, namespaceContainer("main"), state, newStubLowerer(),
		declOf(fn("twice", intType(), param("x", intType()))),
		declOf(fn("twice", intType(), param("y", intType()))))

	if len(class.Methods) != 1 {
		t.Fatalf("colliding entry should be dropped, got %d entries", len(class.Methods))
	}
	errs := state.Diags.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(errs))
	}
	if errs[0].Code != diagnostics.ErrG005 {
		t.Errorf("expected %s, got %s", diagnostics.ErrG005, errs[0].Code)
	}
}

func TestStackAccountingFailureIsFatalByDefault(t *testing.T) {
	lowerer := newStubLowerer()
	lowerer.body = func(a *Assembler, ret types.Rep) error {
		a.Emit(classfile.OP_POP) // Underflows on an empty stack
		a.EmitReturn(ret)
		return nil
	}

	state := newTestState()
	writer := classfile.NewClassWriter("main", "")
	cc := NewClassCodegen(state, lowerer)
	err := cc.GenerateClass(namespaceContainer("main"), writer,
		[]*descriptors.FunctionDeclaration{declOf(fn("bad", nil))})

	if err == nil {
		t.Fatalf("expected a fatal error")
	}
	if !errors.Is(err, classfile.ErrStackAccounting) {
		t.Errorf("expected stack accounting failure, got %s", err)
	}
}

func TestStackAccountingFailureIsDiagnosticWhenLenient(t *testing.T) {
	lowerer := newStubLowerer()
	lowerer.body = func(a *Assembler, ret types.Rep) error {
		a.Emit(classfile.OP_POP)
		a.EmitReturn(ret)
		return nil
	}

	state := newTestState()
	state.Options.LenientSink = true
	class := generate(t, namespaceContainer("main"), state, lowerer,
		declOf(fn("bad", nil)))

	if len(class.Methods) != 0 {
		t.Fatalf("rejected entry should be dropped, got %d entries", len(class.Methods))
	}
	errs := state.Diags.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(errs))
	}
	if errs[0].Code != diagnostics.ErrG001 {
		t.Errorf("expected %s, got %s", diagnostics.ErrG001, errs[0].Code)
	}
}

func TestSiblingsSurviveLenientRejection(t *testing.T) {
	bad := false
	lowerer := newStubLowerer()
	lowerer.body = func(a *Assembler, ret types.Rep) error {
		if !bad {
			bad = true
			a.Emit(classfile.OP_POP)
			a.EmitReturn(ret)
			return nil
		}
		a.EmitConst(int64(1))
		a.EmitReturn(ret)
		return nil
	}

	state := newTestState()
	state.Options.LenientSink = true
	class := generate(t, namespaceContainer("main"), state, lowerer,
		declOf(fn("bad", nil)),
		declOf(fn("good", intType())))

	if class.Lookup("bad()V") != nil {
		t.Errorf("rejected entry should not be present")
	}
	findEntry(t, class, "good()I")
}
