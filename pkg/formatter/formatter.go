// Package formatter implements the numl source code pretty-printer.
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/numl-lang/numl/pkg/ast"
)

const indentStep = "  "

// precedence mirrors the parser's binding-power table, used to decide
// when a nested infix expression needs parentheses to round-trip.
var precedence = map[ast.InfixOp]int{
	ast.OpOr:    1,
	ast.OpAnd:   2,
	ast.OpEqEq:  3,
	ast.OpNeq:   3,
	ast.OpLt:    4,
	ast.OpLtEq:  4,
	ast.OpGt:    4,
	ast.OpGtEq:  4,
	ast.OpAdd:   5,
	ast.OpSub:   5,
	ast.OpMul:   6,
	ast.OpDiv:   6,
	ast.OpMod:   6,
	ast.OpPow:   7,
}

const prefixPrecedence = 8

func needsParens(child ast.Expr, parentPrec int, isRight bool) bool {
	switch c := child.(type) {
	case *ast.Infix:
		cp := precedence[c.Op]
		if cp < parentPrec {
			return true
		}
		// ^ is right-associative; every other operator is left-associative,
		// so a same-precedence child on the right needs parens to preserve
		// the original grouping, and on the left for ^ specifically.
		if cp == parentPrec {
			if c.Op == ast.OpPow {
				return !isRight
			}
			return isRight
		}
		return false
	case *ast.Assign:
		return true
	default:
		return false
	}
}

// Format pretty-prints a parsed program back to numl source.
func Format(program *ast.Program) string {
	var b strings.Builder
	for i, s := range program.Stmts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(formatStmt(s, 0))
	}
	b.WriteByte('\n')
	return b.String()
}

func ind(depth int) string { return strings.Repeat(indentStep, depth) }

func formatStmt(s ast.Stmt, depth int) string {
	pad := ind(depth)
	switch n := s.(type) {
	case *ast.LetDecl:
		return pad + "let " + n.Name + " = " + formatExpr(n.Init, 0, false)
	case *ast.ConstDecl:
		return pad + "const " + n.Name + " = " + formatExpr(n.Init, 0, false)
	case *ast.ExprStmt:
		return pad + formatExpr(n.Expr, 0, false)
	case *ast.While:
		return pad + "while " + formatExpr(n.Cond, 0, false) + " " + formatBlock(n.Body, depth)
	case *ast.Break:
		return pad + "break"
	case *ast.Continue:
		return pad + "continue"
	case *ast.Return:
		if n.Value == nil {
			return pad + "return"
		}
		return pad + "return " + formatExpr(n.Value, 0, false)
	case *ast.End:
		if n.Value == nil {
			return pad + "end"
		}
		return pad + "end " + formatExpr(n.Value, 0, false)
	case *ast.FnDecl:
		return pad + "fn " + n.Name + "(" + strings.Join(n.Params, ", ") + ") " + formatBlock(n.Body, depth)
	case *ast.ProcDecl:
		return pad + "proc " + n.Name + "(" + strings.Join(n.Params, ", ") + ") " + formatBlock(n.Body, depth)
	default:
		return pad + fmt.Sprintf("/* unknown statement %T */", s)
	}
}

func formatBlock(b *ast.Block, depth int) string {
	if len(b.Stmts) == 0 && b.Trailing == nil {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		sb.WriteString(formatStmt(s, depth+1))
		sb.WriteByte('\n')
	}
	if b.Trailing != nil {
		sb.WriteString(ind(depth + 1))
		sb.WriteString(formatExpr(b.Trailing, 0, false))
		sb.WriteByte('\n')
	}
	sb.WriteString(ind(depth))
	sb.WriteByte('}')
	return sb.String()
}

// formatExpr renders e. depth controls block indentation when e contains
// one; isRight flags a binary operator's right operand for the
// associativity check in needsParens.
func formatExpr(e ast.Expr, depth int, isRight bool) string {
	switch n := e.(type) {
	case *ast.NumberLit:
		return formatNumber(n.Value)
	case *ast.BoolLit:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.Identifier:
		return n.Name
	case *ast.Assign:
		return n.Name + " = " + formatExpr(n.Value, depth, true)
	case *ast.Prefix:
		operand := formatExpr(n.Operand, depth, false)
		if _, ok := n.Operand.(*ast.Infix); ok {
			operand = "(" + operand + ")"
		}
		return string(n.Op) + operand
	case *ast.Infix:
		prec := precedence[n.Op]
		left := formatExpr(n.Left, depth, false)
		if needsParens(n.Left, prec, false) {
			left = "(" + left + ")"
		}
		right := formatExpr(n.Right, depth, true)
		if needsParens(n.Right, prec, true) {
			right = "(" + right + ")"
		}
		return left + " " + string(n.Op) + " " + right
	case *ast.Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = formatExpr(a, depth, false)
		}
		return n.Callee + "(" + strings.Join(args, ", ") + ")"
	case *ast.Block:
		return formatBlock(n, depth)
	case *ast.If:
		return formatIf(n, depth)
	default:
		return fmt.Sprintf("/* unknown expression %T */", e)
	}
}

func formatIf(n *ast.If, depth int) string {
	out := "if " + formatExpr(n.Cond, depth, false) + " " + formatBlock(n.Then, depth)
	switch e := n.Else.(type) {
	case nil:
		return out
	case *ast.Block:
		return out + " else " + formatBlock(e, depth)
	case *ast.If:
		return out + " else " + formatIf(e, depth)
	default:
		return out
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
