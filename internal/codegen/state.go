// Package codegen lowers resolved function declarations into per-class
// binary method tables: the primary entry, override bridges, the
// default-argument dispatcher and delegation thunks.
package codegen

import (
	"github.com/funvibe/loom/internal/config"
	"github.com/funvibe/loom/internal/diagnostics"
	"github.com/funvibe/loom/internal/types"
)

// GenerationState carries everything shared across one generation run:
// the representation mapper, the diagnostics collector and the policy
// options. It is threaded explicitly through every call; there is no
// package-level generation state.
type GenerationState struct {
	Mapper  types.Mapper
	Diags   *diagnostics.Collector
	Options config.Options
}

// NewGenerationState creates the shared state for one generation run.
func NewGenerationState(mapper types.Mapper, diags *diagnostics.Collector, opts config.Options) *GenerationState {
	return &GenerationState{
		Mapper:  mapper,
		Diags:   diags,
		Options: opts,
	}
}
