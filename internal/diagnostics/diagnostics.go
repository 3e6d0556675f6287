// Package diagnostics provides coded compile diagnostics for the back end.
// Every user-visible failure is a DiagnosticError attached to the token of
// the declaration that caused it.
package diagnostics

import (
	"fmt"

	"github.com/funvibe/loom/internal/token"
)

// ErrorCode identifies a diagnostic category.
type ErrorCode string

const (
	// Generation errors
	ErrG001 ErrorCode = "G001" // Stack accounting failed for an emitted entry
	ErrG002 ErrorCode = "G002" // Unsupported override shape (unbridgeable representations)
	ErrG003 ErrorCode = "G003" // Malformed descriptor (internal invariant violation)
	ErrG004 ErrorCode = "G004" // Default-argument mask overflow
	ErrG005 ErrorCode = "G005" // Duplicate method entry in class table
)

// messages maps codes to their short descriptions.
var messages = map[ErrorCode]string{
	ErrG001: "stack accounting failed",
	ErrG002: "unsupported override shape",
	ErrG003: "malformed descriptor",
	ErrG004: "default-argument mask overflow",
	ErrG005: "duplicate method entry",
}

// DiagnosticError is a coded error attached to a source position.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	Message string
}

// NewError creates a diagnostic for the given code, position and detail.
func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Token:   tok,
		Message: message,
	}
}

func (e *DiagnosticError) Error() string {
	short, ok := messages[e.Code]
	if !ok {
		short = "unknown error"
	}
	return fmt.Sprintf("%s: [%s] %s: %s", e.Token.Pos(), e.Code, short, e.Message)
}

// Collector accumulates diagnostics during one generation run.
// It is not safe for concurrent use; generation is single-threaded.
type Collector struct {
	errors []*DiagnosticError
}

// NewCollector creates an empty diagnostics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends a diagnostic.
func (c *Collector) Add(err *DiagnosticError) {
	c.errors = append(c.errors, err)
}

// Errors returns all collected diagnostics in emission order.
func (c *Collector) Errors() []*DiagnosticError {
	return c.errors
}

// HasErrors reports whether any diagnostic was collected.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}
