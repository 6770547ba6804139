package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/numl-lang/numl/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.NumberLit{Value: 42},
		&ast.BoolLit{Value: true},
		&ast.Identifier{Name: "x"},
		&ast.Prefix{Op: ast.OpNeg},
		&ast.Infix{Op: ast.OpAdd},
		&ast.Call{Callee: "sqrt"},
		&ast.Assign{Name: "x"},
		&ast.Block{},
		&ast.If{},
		&ast.LetDecl{Name: "x"},
		&ast.ConstDecl{Name: "x"},
		&ast.ExprStmt{},
		&ast.While{},
		&ast.Break{},
		&ast.Continue{},
		&ast.Return{},
		&ast.End{},
		&ast.FnDecl{Name: "f"},
		&ast.ProcDecl{Name: "p"},
		&ast.Program{},
	}

	expected := []string{
		"NumberLit", "BoolLit", "Identifier", "Prefix", "Infix", "Call",
		"Assign", "Block", "If", "LetDecl", "ConstDecl", "ExprStmt",
		"While", "Break", "Continue", "Return", "End", "FnDecl",
		"ProcDecl", "Program",
	}

	for i, node := range nodes {
		assert.Equal(t, expected[i], node.Kind(), "node %d", i)
	}
}

func TestSpanRoundTrip(t *testing.T) {
	span := ast.Span{File: "a.numl", Start: 4, End: 9, StartLine: 1, StartCol: 5, EndLine: 1, EndCol: 10}
	n := &ast.NumberLit{Span: span, Value: 1}
	assert.Equal(t, span, n.NodeSpan())
}
