// Package diagnostics defines the numl diagnostic taxonomy shared by the
// lexer, parser, environment, and evaluator.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/numl-lang/numl/pkg/ast"
)

// Diagnostic kind constants. This is the complete error taxonomy; no
// other kind is ever produced.
const (
	LexError               = "LexError"
	SyntaxError             = "SyntaxError"
	UnknownIdentifierError = "UnknownIdentifierError"
	RedeclarationError     = "RedeclarationError"
	AssignToConstError     = "AssignToConstError"
	ArityError             = "ArityError"
	MisuseError            = "MisuseError"
	TimeoutError           = "TimeoutError"
)

// Diagnostic represents a lex, parse, or evaluation diagnostic.
type Diagnostic struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// Error implements the error interface so a Diagnostic can be returned
// directly from Go APIs that expect one.
func (d Diagnostic) Error() string {
	return d.Message
}

// New creates a new Diagnostic.
func New(kind, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{Kind: kind, Message: message, Span: span, Hint: hint}
}

// Format renders a single diagnostic, either as compact JSON (pretty =
// false) or as a human-readable `kind: message` line with a
// `file:line:col` locator (pretty = true).
func Format(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", nonEmpty(d.Span.File, "<input>"), d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("%s: %s\n  --> %s", d.Kind, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatAll renders a slice of diagnostics, joined with blank lines.
func FormatAll(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = Format(d, true)
	}
	return strings.Join(parts, "\n\n")
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
