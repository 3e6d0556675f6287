// Package token defines source positions carried by resolved declarations.
// The front end attaches a token to every declaration it resolves; the
// back end only reads them for diagnostics.
package token

import "fmt"

// TokenType identifies the syntactic category of a token.
type TokenType string

const (
	IDENT TokenType = "IDENT"
	FN    TokenType = "FN"
	CLASS TokenType = "CLASS"
	TRAIT TokenType = "TRAIT"
	EOF   TokenType = "EOF"
)

// Token is a single lexical token with its source position.
type Token struct {
	Type    TokenType
	Lexeme  string // Raw source text
	Literal string // Interpreted value (same as Lexeme for identifiers)
	Line    int
	Column  int
	File    string // Source file path, empty for synthesized declarations
}

// Pos returns "file:line:column" for error messages.
func (t Token) Pos() string {
	file := t.File
	if file == "" {
		file = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", file, t.Line, t.Column)
}
