package codegen

import (
	"testing"

	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/config"
	"github.com/funvibe/loom/internal/descriptors"
	"github.com/funvibe/loom/internal/diagnostics"
	"github.com/funvibe/loom/internal/token"
	"github.com/funvibe/loom/internal/types"
)

// constExpr is the stand-in for resolved expressions in tests: a single
// integer constant.
type constExpr struct {
	tok   token.Token
	value int64
}

func (e *constExpr) GetToken() token.Token { return e.tok }

// stubLowerer is the test expression lowerer. The default body pushes a
// constant and returns it; tests that need real data flow install a body
// hook that reads parameter slots through the assembler's frame.
type stubLowerer struct {
	captured  map[string]bool
	witnesses map[string]int
	body      func(a *Assembler, ret types.Rep) error

	loweredDefaults int
}

func newStubLowerer() *stubLowerer {
	return &stubLowerer{
		captured:  make(map[string]bool),
		witnesses: make(map[string]int),
	}
}

func (l *stubLowerer) LowerBody(body descriptors.Expr, a *Assembler, ret types.Rep) error {
	if l.body != nil {
		return l.body(a, ret)
	}
	if ret == types.RepVoid {
		a.EmitReturn(ret)
		return nil
	}
	value := int64(0)
	if c, ok := body.(*constExpr); ok {
		value = c.value
	}
	a.EmitConst(value)
	a.EmitReturn(ret)
	return nil
}

func (l *stubLowerer) LowerDefault(expr descriptors.Expr, a *Assembler, target types.Rep) error {
	l.loweredDefaults++
	if c, ok := expr.(*constExpr); ok && target != types.RepRef {
		a.EmitConst(c.value)
		return nil
	}
	a.Emit(classfile.OP_NULL)
	return nil
}

func (l *stubLowerer) IsCaptured(p *descriptors.ValueParameter) bool {
	return l.captured[p.Name]
}

func (l *stubLowerer) DeclareWitness(tp *descriptors.TypeParameter, slot int) {
	l.witnesses[tp.Name] = slot
}

func testToken(line int) token.Token {
	return token.Token{Type: token.FN, Lexeme: "fn", Line: line, Column: 1, File: "test.loom"}
}

func intType() types.Type { return types.TCon{Name: "Int"} }

func longType() types.Type { return types.TCon{Name: "Long"} }

func refType(name string) types.Type { return types.TCon{Name: name} }

func param(name string, t types.Type) *descriptors.ValueParameter {
	return &descriptors.ValueParameter{Name: name, Type: t}
}

func defaulted(name string, t types.Type, value int64) *descriptors.ValueParameter {
	return &descriptors.ValueParameter{
		Name:       name,
		Type:       t,
		HasDefault: true,
		Default:    &constExpr{tok: testToken(1), value: value},
	}
}

func fn(name string, ret types.Type, params ...*descriptors.ValueParameter) *descriptors.FunctionDescriptor {
	return &descriptors.FunctionDescriptor{
		Name:        name,
		Token:       testToken(1),
		ValueParams: params,
		ReturnType:  ret,
	}
}

func declOf(desc *descriptors.FunctionDescriptor) *descriptors.FunctionDeclaration {
	return &descriptors.FunctionDeclaration{
		Descriptor: desc,
		Body:       &constExpr{tok: desc.Token, value: 0},
	}
}

func namespaceContainer(name string) descriptors.Container {
	return descriptors.Container{
		Kind:  descriptors.Namespace,
		Class: &descriptors.ClassDescriptor{Name: name, Token: testToken(1)},
	}
}

func classContainer(name string) descriptors.Container {
	return descriptors.Container{
		Kind:  descriptors.Implementation,
		Class: &descriptors.ClassDescriptor{Name: name, Token: testToken(1)},
	}
}

func newTestState() *GenerationState {
	return NewGenerationState(types.NewDefaultMapper(), diagnostics.NewCollector(), config.DefaultOptions())
}

// generate runs one declaration through a fresh generator and returns the
// finished class.
func generate(t *testing.T, container descriptors.Container, state *GenerationState, lowerer BodyLowerer, decls ...*descriptors.FunctionDeclaration) *classfile.Class {
	t.Helper()
	writer := classfile.NewClassWriter(container.EmissionClassName(), "")
	cc := NewClassCodegen(state, lowerer)
	if err := cc.GenerateClass(container, writer, decls); err != nil {
		t.Fatalf("generation failed: %s", err)
	}
	return writer.Class()
}

func findEntry(t *testing.T, class *classfile.Class, key string) *classfile.MethodEntry {
	t.Helper()
	entry := class.Lookup(key)
	if entry == nil {
		var keys []string
		for _, m := range class.Methods {
			keys = append(keys, m.Sig.Key())
		}
		t.Fatalf("entry %s not found in %s, have %v", key, class.Name, keys)
	}
	return entry
}

// opsOf flattens a chunk to its opcode sequence, skipping operands.
func opsOf(chunk *classfile.Chunk) []classfile.Opcode {
	var ops []classfile.Opcode
	for offset := 0; offset < chunk.Len(); {
		op := classfile.Opcode(chunk.Code[offset])
		ops = append(ops, op)
		offset += 1 + operandWidthForTest(op)
	}
	return ops
}

func operandWidthForTest(op classfile.Opcode) int {
	switch op {
	case classfile.OP_CONST, classfile.OP_CHECKCAST, classfile.OP_JUMP, classfile.OP_JUMP_IF_ZERO,
		classfile.OP_INVOKE_STATIC, classfile.OP_INVOKE_VIRTUAL, classfile.OP_INVOKE_IFACE,
		classfile.OP_GET_FIELD:
		return 2
	case classfile.OP_LOAD, classfile.OP_STORE:
		return 1
	}
	return 0
}

func expectOps(t *testing.T, chunk *classfile.Chunk, want ...classfile.Opcode) {
	t.Helper()
	got := opsOf(chunk)
	if len(got) != len(want) {
		t.Fatalf("opcode count mismatch. got=%v, want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("opcode %d mismatch. got=%s, want=%s (full: %v)", i, got[i], want[i], got)
		}
	}
}

// invokeRefs collects the method references an entry's code invokes.
func invokeRefs(chunk *classfile.Chunk) []classfile.MethodRef {
	var refs []classfile.MethodRef
	for offset := 0; offset < chunk.Len(); {
		op := classfile.Opcode(chunk.Code[offset])
		switch op {
		case classfile.OP_INVOKE_STATIC, classfile.OP_INVOKE_VIRTUAL, classfile.OP_INVOKE_IFACE:
			idx := chunk.ReadConstantIndex(offset + 1)
			if ref, ok := chunk.Constants[idx].(classfile.MethodRef); ok {
				refs = append(refs, ref)
			}
		}
		offset += 1 + operandWidthForTest(op)
	}
	return refs
}
