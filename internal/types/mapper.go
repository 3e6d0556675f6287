package types

// Mapper decides binary representations for source types. The policy is
// fixed per generation run; generation threads a single Mapper through
// every call instead of consulting package-level state.
type Mapper interface {
	// MapType returns the binary representation of a source type.
	MapType(t Type) Rep

	// MapReturn returns the representation used for a function's return
	// position. Unit lowers to void here, unlike in parameter position.
	MapReturn(t Type) Rep
}

// builtinReps is the representation table for the builtin value types.
// Everything absent from it is a reference.
var builtinReps = map[string]Rep{
	"Bool":   RepBool,
	"Int":    RepInt,
	"Long":   RepLong,
	"Float":  RepFloat,
	"Double": RepDouble,
}

// DefaultMapper is the standard representation policy: builtin value
// types map to their primitive encodings, everything else (including
// type variables and applied constructors) is a reference.
type DefaultMapper struct{}

// NewDefaultMapper creates the standard mapper.
func NewDefaultMapper() *DefaultMapper {
	return &DefaultMapper{}
}

// MapType implements Mapper.
func (m *DefaultMapper) MapType(t Type) Rep {
	switch typ := t.(type) {
	case TCon:
		if rep, ok := builtinReps[typ.Name]; ok {
			return rep
		}
		return RepRef
	case TApp:
		// Applied constructors are always boxed (List<Int>, Option<T>, ...)
		return RepRef
	case TVar:
		return RepRef
	default:
		return RepRef
	}
}

// MapReturn implements Mapper.
func (m *DefaultMapper) MapReturn(t Type) Rep {
	if t == nil {
		return RepVoid
	}
	if con, ok := t.(TCon); ok && con.Name == Unit.Name {
		return RepVoid
	}
	return m.MapType(t)
}
