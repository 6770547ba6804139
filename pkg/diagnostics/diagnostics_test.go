package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/numl-lang/numl/pkg/ast"
	"github.com/numl-lang/numl/pkg/diagnostics"
)

func TestNew(t *testing.T) {
	span := &ast.Span{File: "test.numl", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}
	d := diagnostics.New(diagnostics.SyntaxError, "unexpected token", span, "check syntax")

	assert.Equal(t, diagnostics.SyntaxError, d.Kind)
	assert.Equal(t, "unexpected token", d.Message)
	assert.Equal(t, "unexpected token", d.Error())
}

func TestFormatPretty(t *testing.T) {
	span := &ast.Span{File: "test.numl", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 10}
	d := diagnostics.New(diagnostics.UnknownIdentifierError, "unbound variable 'x'", span, "did you mean 'y'?")

	out := diagnostics.Format(d, true)
	assert.True(t, strings.Contains(out, "UnknownIdentifierError"))
	assert.True(t, strings.Contains(out, "test.numl:3:5"))
	assert.True(t, strings.Contains(out, "hint:"))
}

func TestFormatJSON(t *testing.T) {
	d := diagnostics.New(diagnostics.LexError, "bad token", nil, "")
	out := diagnostics.Format(d, false)
	assert.True(t, strings.Contains(out, `"kind":"LexError"`))
}

func TestFormatAllJSON(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diagnostics.New(diagnostics.LexError, "a", nil, ""),
		diagnostics.New(diagnostics.ArityError, "b", nil, ""),
	}
	out := diagnostics.FormatAll(diags, false)
	assert.True(t, strings.HasPrefix(out, "["))
}
