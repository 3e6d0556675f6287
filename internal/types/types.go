// Package types models the source-level types seen by the back end and
// their lowering to binary representations. Resolution produces fully
// substituted types before generation runs; nothing here performs inference.
package types

import "strings"

// Type is the interface for all source types.
type Type interface {
	String() string
	typeNode()
}

// TCon represents a concrete named type (e.g. Int, String, user classes).
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }
func (t TCon) typeNode()      {}

// TApp represents an applied type constructor (e.g. List<Int>).
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t TApp) String() string {
	var sb strings.Builder
	sb.WriteString(t.Constructor.String())
	sb.WriteString("<")
	for i, arg := range t.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteString(">")
	return sb.String()
}
func (t TApp) typeNode() {}

// TVar represents a type parameter left abstract in a declaration
// (e.g. T in fn id<T>(x: T)). Lowered to a reference representation;
// a runtime witness accompanies it in its own local slot.
type TVar struct {
	Name string
}

func (t TVar) String() string { return t.Name }
func (t TVar) typeNode()      {}

// Unit is the source type of value-less results.
var Unit = TCon{Name: "Unit"}
