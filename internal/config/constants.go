package config

// Synthesized entry naming
const (
	// DefaultDispatcherSuffix is appended to a function's name to form
	// its default-argument dispatcher entry.
	DefaultDispatcherSuffix = "$default"

	// TraitImplSuffix is appended to a trait's name to form the class
	// holding its default bodies.
	TraitImplSuffix = "$TImpl"
)

// MaxDefaultMaskBits is the width of the default-argument presence mask.
// A declaration with a defaulted parameter at positional index >= this
// cannot get a dispatcher and is reported as a diagnostic.
const MaxDefaultMaskBits = 32

// MaxLocalSlots bounds the local-variable frame of one method entry.
const MaxLocalSlots = 256
