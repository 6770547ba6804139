// Package parser implements the numl language Pratt parser.
package parser

import (
	"fmt"
	"strconv"

	"github.com/numl-lang/numl/pkg/ast"
	"github.com/numl-lang/numl/pkg/diagnostics"
	"github.com/numl-lang/numl/pkg/lexer"
)

// Binding powers, per the operator table: higher binds tighter.
const (
	bpLowest = 0
	bpAssign = 5 // only ever used as the rbp passed into an assignment's RHS
	bpOr     = 10
	bpAnd    = 20
	bpEq     = 30
	bpCmp    = 40
	bpAdd    = 50
	bpMul    = 60
	bpPow    = 70
	bpPrefix = 80
	bpCall   = 90
)

var infixBP = map[lexer.TokenType]int{
	lexer.TokOrOr:    bpOr,
	lexer.TokAndAnd:  bpAnd,
	lexer.TokEqEq:    bpEq,
	lexer.TokBangEq:  bpEq,
	lexer.TokLt:      bpCmp,
	lexer.TokLtEq:    bpCmp,
	lexer.TokGt:      bpCmp,
	lexer.TokGtEq:    bpCmp,
	lexer.TokPlus:    bpAdd,
	lexer.TokMinus:   bpAdd,
	lexer.TokStar:    bpMul,
	lexer.TokSlash:   bpMul,
	lexer.TokPercent: bpMul,
	lexer.TokCaret:   bpPow,
	lexer.TokLParen:  bpCall,
}

var tokenToInfixOp = map[lexer.TokenType]ast.InfixOp{
	lexer.TokPlus: ast.OpAdd, lexer.TokMinus: ast.OpSub,
	lexer.TokStar: ast.OpMul, lexer.TokSlash: ast.OpDiv, lexer.TokPercent: ast.OpMod,
	lexer.TokCaret: ast.OpPow,
	lexer.TokEqEq:  ast.OpEqEq, lexer.TokBangEq: ast.OpNeq,
	lexer.TokLt: ast.OpLt, lexer.TokLtEq: ast.OpLtEq, lexer.TokGt: ast.OpGt, lexer.TokGtEq: ast.OpGtEq,
	lexer.TokAndAnd: ast.OpAnd, lexer.TokOrOr: ast.OpOr,
}

type parser struct {
	tokens    []lexer.Token
	pos       int
	diags     []diagnostics.Diagnostic
	loopDepth int
	fnDepth   int
}

// Parse tokenizes source and parses it into a Program AST. Parsing
// continues past recoverable syntax errors so a single call can surface
// several diagnostics at once; a lex error aborts immediately.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.New(diagnostics.LexError, err.Error(), nil, "")}
	}

	p := &parser{tokens: tokens}
	prog := p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType { return p.current().Type }

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(tt lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != tt {
		span := tok.Span
		p.errorf(&span, "expected %s, got %s", lexer.Name(tt), describe(tok))
		return tok, false
	}
	return p.advance(), true
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Value)
}

func (p *parser) errorf(span *ast.Span, format string, args ...any) {
	p.diags = append(p.diags, diagnostics.New(diagnostics.SyntaxError, fmt.Sprintf(format, args...), span, ""))
}

func spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File: start.File, Start: start.Start, End: end.End,
		StartLine: start.StartLine, StartCol: start.StartCol,
		EndLine: end.EndLine, EndCol: end.EndCol,
	}
}

// --- Program & blocks ---

func (p *parser) parseProgram() *ast.Program {
	start := p.current().Span
	var stmts []ast.Stmt
	for p.peek() != lexer.TokEOF {
		before := p.pos
		stmts = append(stmts, p.parseStmt())
		if p.pos == before {
			p.advance() // guarantee forward progress on unrecoverable tokens
		}
		p.consumeOptionalSemi()
	}
	end := p.current().Span
	return &ast.Program{Span: spanFromTo(start, end), Stmts: stmts}
}

func (p *parser) consumeOptionalSemi() {
	for p.peek() == lexer.TokSemi {
		p.advance()
	}
}

// parseBlock parses `{ stmt* expr? }`. Statement separators (`;`) are
// always optional between statements since the lexer discards newlines
// entirely; a final expression with no trailing `;` before `}` supplies
// the block's value.
func (p *parser) parseBlock() *ast.Block {
	start, _ := p.expect(lexer.TokLBrace)
	var stmts []ast.Stmt
	var trailing ast.Expr

	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		if isStmtKeyword(p.peek()) {
			before := p.pos
			stmts = append(stmts, p.parseStmt())
			if p.pos == before {
				p.advance()
			}
			p.consumeOptionalSemi()
			continue
		}

		expr := p.parseExpr(bpLowest)
		if p.peek() == lexer.TokRBrace {
			trailing = expr
			break
		}
		stmts = append(stmts, &ast.ExprStmt{Span: expr.NodeSpan(), Expr: expr})
		p.consumeOptionalSemi()
	}

	end, _ := p.expect(lexer.TokRBrace)
	return &ast.Block{Span: spanFromTo(start.Span, end.Span), Stmts: stmts, Trailing: trailing}
}

func isStmtKeyword(tt lexer.TokenType) bool {
	switch tt {
	case lexer.TokLet, lexer.TokConst, lexer.TokWhile, lexer.TokBreak,
		lexer.TokContinue, lexer.TokReturn, lexer.TokEnd, lexer.TokFn, lexer.TokProc:
		return true
	}
	return false
}

// --- Statements ---

func (p *parser) parseStmt() ast.Stmt {
	switch p.peek() {
	case lexer.TokLet:
		return p.parseLetOrConst(false)
	case lexer.TokConst:
		return p.parseLetOrConst(true)
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokBreak:
		return p.parseBreak()
	case lexer.TokContinue:
		return p.parseContinue()
	case lexer.TokReturn:
		return p.parseReturn()
	case lexer.TokEnd:
		return p.parseEnd()
	case lexer.TokFn:
		return p.parseFnOrProc(false)
	case lexer.TokProc:
		return p.parseFnOrProc(true)
	default:
		expr := p.parseExpr(bpLowest)
		return &ast.ExprStmt{Span: expr.NodeSpan(), Expr: expr}
	}
}

func (p *parser) parseLetOrConst(isConst bool) ast.Stmt {
	start := p.advance() // 'let' or 'const'
	nameTok, _ := p.expect(lexer.TokIdent)
	p.expect(lexer.TokAssign)
	init := p.parseExpr(bpLowest)
	span := spanFromTo(start.Span, init.NodeSpan())
	if isConst {
		return &ast.ConstDecl{Span: span, Name: nameTok.Value, Init: init}
	}
	return &ast.LetDecl{Span: span, Name: nameTok.Value, Init: init}
}

func (p *parser) parseWhile() ast.Stmt {
	start := p.advance() // 'while'
	cond := p.parseExpr(bpLowest)
	p.loopDepth++
	body := p.parseBlock()
	p.loopDepth--
	return &ast.While{Span: spanFromTo(start.Span, body.Span), Cond: cond, Body: body}
}

func (p *parser) parseBreak() ast.Stmt {
	tok := p.advance()
	if p.loopDepth == 0 {
		span := tok.Span
		p.errorf(&span, "'break' used outside a loop")
	}
	return &ast.Break{Span: tok.Span}
}

func (p *parser) parseContinue() ast.Stmt {
	tok := p.advance()
	if p.loopDepth == 0 {
		span := tok.Span
		p.errorf(&span, "'continue' used outside a loop")
	}
	return &ast.Continue{Span: tok.Span}
}

func startsExpr(tt lexer.TokenType) bool {
	switch tt {
	case lexer.TokSemi, lexer.TokRBrace, lexer.TokEOF:
		return false
	}
	return true
}

func (p *parser) parseReturn() ast.Stmt {
	tok := p.advance()
	if p.fnDepth == 0 {
		span := tok.Span
		p.errorf(&span, "'return' used outside a function or procedure body")
	}
	span := tok.Span
	var value ast.Expr
	if startsExpr(p.peek()) {
		value = p.parseExpr(bpLowest)
		span = spanFromTo(tok.Span, value.NodeSpan())
	}
	return &ast.Return{Span: span, Value: value}
}

func (p *parser) parseEnd() ast.Stmt {
	tok := p.advance()
	span := tok.Span
	var value ast.Expr
	if startsExpr(p.peek()) {
		value = p.parseExpr(bpLowest)
		span = spanFromTo(tok.Span, value.NodeSpan())
	}
	return &ast.End{Span: span, Value: value}
}

func (p *parser) parseParams() []string {
	p.expect(lexer.TokLParen)
	var params []string
	if p.peek() != lexer.TokRParen {
		tok, _ := p.expect(lexer.TokIdent)
		params = append(params, tok.Value)
		for p.peek() == lexer.TokComma {
			p.advance()
			tok, _ := p.expect(lexer.TokIdent)
			params = append(params, tok.Value)
		}
	}
	p.expect(lexer.TokRParen)
	return params
}

func (p *parser) parseFnOrProc(isProc bool) ast.Stmt {
	start := p.advance() // 'fn' or 'proc'
	nameTok, _ := p.expect(lexer.TokIdent)
	params := p.parseParams()

	savedLoop, savedFn := p.loopDepth, p.fnDepth
	p.loopDepth = 0
	p.fnDepth++
	body := p.parseBlock()
	p.loopDepth, p.fnDepth = savedLoop, savedFn

	span := spanFromTo(start.Span, body.Span)
	if isProc {
		return &ast.ProcDecl{Span: span, Name: nameTok.Value, Params: params, Body: body}
	}
	return &ast.FnDecl{Span: span, Name: nameTok.Value, Params: params, Body: body}
}

// --- Expressions (Pratt) ---

func (p *parser) parseExpr(minBP int) ast.Expr {
	left := p.parseNud()

	for {
		tt := p.peek()
		bp, ok := infixBP[tt]
		if !ok || bp <= minBP {
			break
		}

		if tt == lexer.TokLParen {
			left = p.parseCallTail(left)
			continue
		}

		p.advance() // consume operator
		rbp := bp
		if tt == lexer.TokCaret {
			rbp = bp - 1 // right-associative
		}
		right := p.parseExpr(rbp)
		left = &ast.Infix{
			Span:  spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    tokenToInfixOp[tt],
			Left:  left,
			Right: right,
		}
	}

	return left
}

func (p *parser) parseNud() ast.Expr {
	tok := p.current()

	switch tok.Type {
	case lexer.TokNumber:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			span := tok.Span
			p.errorf(&span, "malformed number literal %q", tok.Value)
		}
		return &ast.NumberLit{Span: tok.Span, Value: v}

	case lexer.TokTrue:
		p.advance()
		return &ast.BoolLit{Span: tok.Span, Value: true}

	case lexer.TokFalse:
		p.advance()
		return &ast.BoolLit{Span: tok.Span, Value: false}

	case lexer.TokIdent:
		p.advance()
		if p.peek() == lexer.TokAssign {
			p.advance()
			value := p.parseExpr(bpAssign - 1)
			return &ast.Assign{Span: spanFromTo(tok.Span, value.NodeSpan()), Name: tok.Value, Value: value}
		}
		return &ast.Identifier{Span: tok.Span, Name: tok.Value}

	case lexer.TokPlus:
		p.advance()
		operand := p.parseExpr(bpPrefix)
		return &ast.Prefix{Span: spanFromTo(tok.Span, operand.NodeSpan()), Op: ast.OpPos, Operand: operand}

	case lexer.TokMinus:
		p.advance()
		operand := p.parseExpr(bpPrefix)
		return &ast.Prefix{Span: spanFromTo(tok.Span, operand.NodeSpan()), Op: ast.OpNeg, Operand: operand}

	case lexer.TokBang:
		p.advance()
		operand := p.parseExpr(bpPrefix)
		return &ast.Prefix{Span: spanFromTo(tok.Span, operand.NodeSpan()), Op: ast.OpNot, Operand: operand}

	case lexer.TokLParen:
		p.advance()
		inner := p.parseExpr(bpLowest)
		p.expect(lexer.TokRParen)
		return inner

	case lexer.TokLBrace:
		return p.parseBlock()

	case lexer.TokIf:
		return p.parseIf()

	default:
		span := tok.Span
		p.errorf(&span, "unexpected token %s", describe(tok))
		p.advance()
		return &ast.NumberLit{Span: tok.Span, Value: 0}
	}
}

func (p *parser) parseIf() ast.Expr {
	start := p.advance() // 'if'
	cond := p.parseExpr(bpLowest)
	then := p.parseBlock()

	var elseBranch ast.Expr
	end := then.Span
	if p.peek() == lexer.TokElse {
		p.advance()
		if p.peek() == lexer.TokIf {
			elseBranch = p.parseIf()
		} else {
			elseBranch = p.parseBlock()
		}
		end = elseBranch.NodeSpan()
	}

	return &ast.If{Span: spanFromTo(start.Span, end), Cond: cond, Then: then, Else: elseBranch}
}

func (p *parser) parseCallTail(callee ast.Expr) ast.Expr {
	ident, ok := callee.(*ast.Identifier)
	if !ok {
		span := callee.NodeSpan()
		p.errorf(&span, "only a plain name can be called")
	}

	p.advance() // '('
	var args []ast.Expr
	if p.peek() != lexer.TokRParen {
		args = append(args, p.parseExpr(bpLowest))
		for p.peek() == lexer.TokComma {
			p.advance()
			args = append(args, p.parseExpr(bpLowest))
		}
	}
	end, _ := p.expect(lexer.TokRParen)

	name := ""
	if ok {
		name = ident.Name
	}
	return &ast.Call{Span: spanFromTo(callee.NodeSpan(), end.Span), Callee: name, Args: args}
}
