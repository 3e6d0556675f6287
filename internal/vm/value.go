// Package vm executes generated method tables. It implements just enough
// of the target machine to run emitted entries: typed values, shared
// cells, boxes and the three invocation forms. It is the test bed for the
// generator, not a language runtime.
package vm

import (
	"fmt"
	"math"

	"github.com/funvibe/loom/internal/types"
)

// ValueType identifies the type of value stored in the Value struct
type ValueType uint8

const (
	ValNull ValueType = iota
	ValBool
	ValInt   // Int and Long
	ValFloat // Float and Double
	ValObj   // Cell, Box, Instance
)

// Value is a stack-allocated tagged union.
type Value struct {
	Type ValueType
	Data uint64 // Stores int64 bits, float64 bits, or bool (0/1)
	Obj  Object // Holds heap objects
}

// Object is the interface of heap values the machine manipulates.
type Object interface {
	Inspect() string
}

// Constructors

func NullVal() Value {
	return Value{Type: ValNull}
}

func IntVal(v int64) Value {
	return Value{Type: ValInt, Data: uint64(v)}
}

func FloatVal(v float64) Value {
	return Value{Type: ValFloat, Data: math.Float64bits(v)}
}

func BoolVal(v bool) Value {
	var data uint64
	if v {
		data = 1
	}
	return Value{Type: ValBool, Data: data}
}

func ObjVal(o Object) Value {
	return Value{Type: ValObj, Obj: o}
}

// Accessors

func (v Value) AsInt() int64 {
	return int64(v.Data)
}

func (v Value) AsFloat() float64 {
	return math.Float64frombits(v.Data)
}

func (v Value) AsBool() bool {
	return v.Data != 0
}

func (v Value) IsNull() bool {
	return v.Type == ValNull
}

func (v Value) Inspect() string {
	switch v.Type {
	case ValNull:
		return "null"
	case ValBool:
		return fmt.Sprintf("%t", v.AsBool())
	case ValInt:
		return fmt.Sprintf("%d", v.AsInt())
	case ValFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case ValObj:
		return v.Obj.Inspect()
	}
	return "?"
}

// Cell is the shared mutable storage a closure-captured local is re-homed
// into. Body and closure hold the same cell; writes through one are
// visible through the other.
type Cell struct {
	Ref Value
}

func (c *Cell) Inspect() string {
	return fmt.Sprintf("<cell %s>", c.Ref.Inspect())
}

// Box wraps a primitive result adapted to a reference representation.
type Box struct {
	Rep   types.Rep
	Value Value
}

func (b *Box) Inspect() string {
	return fmt.Sprintf("<box:%s %s>", b.Rep, b.Value.Inspect())
}

// Instance is an object of a generated class.
type Instance struct {
	Class  string
	Fields map[string]Value
}

// NewInstance creates an instance with an empty field map.
func NewInstance(class string) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Value)}
}

func (i *Instance) Inspect() string {
	return fmt.Sprintf("<%s instance>", i.Class)
}
