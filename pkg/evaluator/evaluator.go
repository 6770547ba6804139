package evaluator

import (
	"fmt"
	"math"

	"github.com/numl-lang/numl/pkg/ast"
	"github.com/numl-lang/numl/pkg/diagnostics"
)

// SignalKind tags how evaluating a statement, block, or expression
// completed: normally, or because a break/continue/return/end needs to
// unwind through enclosing constructs.
type SignalKind int

const (
	SigNormal SignalKind = iota
	SigBreak
	SigContinue
	SigReturn
	SigEnd
)

// Signal is the control-flow outcome threaded through every statement and
// block-valued expression, in place of exceptions, so every frame along
// the way gets a chance to unwind.
type Signal struct {
	Kind  SignalKind
	Value Value
}

var normalSignal = Signal{Kind: SigNormal}

func runtimeErr(kind, msg string, span *ast.Span, hint string) error {
	return diagnostics.New(kind, msg, span, hint)
}

// Evaluator walks a parsed Program against an Env, enforcing the
// step-budget, deadline, and call-depth limits in Limits.
type Evaluator struct {
	env       *Env
	limits    Limits
	tracker   *BudgetTracker
	callDepth int
}

// New creates an Evaluator bound to env, subject to limits.
func New(env *Env, limits Limits) *Evaluator {
	return &Evaluator{env: env, limits: limits, tracker: NewBudgetTracker()}
}

// Execute runs prog's top-level statements. An `end` statement anywhere in
// the program — including inside a nested function call — terminates the
// whole run; its value becomes the result. Otherwise the result is the
// value of the last top-level expression statement, or 0 if there is none.
func (ev *Evaluator) Execute(prog *ast.Program) (Value, error) {
	var last Value
	for _, s := range prog.Stmts {
		sig, err := normalSignal, error(nil)
		if es, ok := s.(*ast.ExprStmt); ok {
			if err = ev.checkStep(&es.Span); err == nil {
				last, sig, err = ev.evalExpr(es.Expr)
			}
		} else {
			sig, err = ev.execStmt(s)
		}
		if err != nil {
			return 0, err
		}
		if sig.Kind != SigNormal {
			return sig.Value, nil
		}
	}
	return last, nil
}

// checkStep counts one evaluation step and enforces the step budget and
// deadline. Called between statements and on every loop iteration.
func (ev *Evaluator) checkStep(span *ast.Span) error {
	ev.tracker.Steps++
	if ev.limits.MaxSteps > 0 && ev.tracker.Steps > ev.limits.MaxSteps {
		return runtimeErr(diagnostics.TimeoutError, "step budget exceeded", span,
			fmt.Sprintf("ran for %dms before the budget was hit", ev.tracker.ElapsedMs()))
	}
	if ev.limits.Deadline != nil {
		select {
		case <-ev.limits.Deadline.Done():
			return runtimeErr(diagnostics.TimeoutError, "execution deadline exceeded", span,
				fmt.Sprintf("ran for %dms before the deadline was hit", ev.tracker.ElapsedMs()))
		default:
		}
	}
	return nil
}

// --- Statements ---

func (ev *Evaluator) execStmts(stmts []ast.Stmt) (Signal, error) {
	for _, s := range stmts {
		sig, err := ev.execStmt(s)
		if err != nil {
			return normalSignal, err
		}
		if sig.Kind != SigNormal {
			return sig, nil
		}
	}
	return normalSignal, nil
}

func (ev *Evaluator) execStmt(s ast.Stmt) (Signal, error) {
	span := s.NodeSpan()
	if err := ev.checkStep(&span); err != nil {
		return normalSignal, err
	}

	switch n := s.(type) {
	case *ast.LetDecl:
		v, sig, err := ev.evalExpr(n.Init)
		if err != nil || sig.Kind != SigNormal {
			return sig, err
		}
		return normalSignal, ev.env.Declare(n.Name, &Binding{Kind: BindVar, Value: v}, &n.Span)

	case *ast.ConstDecl:
		v, sig, err := ev.evalExpr(n.Init)
		if err != nil || sig.Kind != SigNormal {
			return sig, err
		}
		return normalSignal, ev.env.Declare(n.Name, &Binding{Kind: BindConst, Value: v}, &n.Span)

	case *ast.ExprStmt:
		_, sig, err := ev.evalExpr(n.Expr)
		return sig, err

	case *ast.While:
		return ev.execWhile(n)

	case *ast.Break:
		return Signal{Kind: SigBreak}, nil

	case *ast.Continue:
		return Signal{Kind: SigContinue}, nil

	case *ast.Return:
		return ev.evalOptionalValue(n.Value, SigReturn)

	case *ast.End:
		return ev.evalOptionalValue(n.Value, SigEnd)

	case *ast.FnDecl:
		return normalSignal, ev.env.Declare(n.Name, &Binding{Kind: BindFn, Fn: n}, &n.Span)

	case *ast.ProcDecl:
		return normalSignal, ev.env.Declare(n.Name, &Binding{Kind: BindProc, Proc: n}, &n.Span)

	default:
		return normalSignal, fmt.Errorf("evaluator: unhandled statement type %T", s)
	}
}

func (ev *Evaluator) evalOptionalValue(e ast.Expr, kind SignalKind) (Signal, error) {
	if e == nil {
		return Signal{Kind: kind}, nil
	}
	v, sig, err := ev.evalExpr(e)
	if err != nil {
		return normalSignal, err
	}
	if sig.Kind != SigNormal {
		return sig, nil
	}
	return Signal{Kind: kind, Value: v}, nil
}

func (ev *Evaluator) execWhile(w *ast.While) (Signal, error) {
	for {
		if err := ev.checkStep(&w.Span); err != nil {
			return normalSignal, err
		}

		cond, sig, err := ev.evalExpr(w.Cond)
		if err != nil || sig.Kind != SigNormal {
			return sig, err
		}
		if !Truthiness(cond) {
			return normalSignal, nil
		}

		_, bodySig, err := ev.evalBlock(w.Body)
		if err != nil {
			return normalSignal, err
		}
		switch bodySig.Kind {
		case SigBreak:
			return normalSignal, nil
		case SigContinue, SigNormal:
			// fall through to next iteration
		default: // SigReturn, SigEnd
			return bodySig, nil
		}
	}
}

// --- Expressions ---

// evalExpr evaluates e. The returned Signal is SigNormal unless evaluating
// e ran into a break/continue/return/end nested inside it (in a Block or
// If, or an `end` raised inside a called function) — that signal must
// keep unwinding through whatever expression or statement contains this one.
func (ev *Evaluator) evalExpr(e ast.Expr) (Value, Signal, error) {
	switch n := e.(type) {
	case *ast.NumberLit:
		return n.Value, normalSignal, nil

	case *ast.BoolLit:
		return BoolValue(n.Value), normalSignal, nil

	case *ast.Identifier:
		b, err := ev.env.Lookup(n.Name, &n.Span)
		if err != nil {
			return 0, normalSignal, err
		}
		if b.Kind != BindVar && b.Kind != BindConst {
			return 0, normalSignal, runtimeErr(diagnostics.MisuseError,
				"'"+n.Name+"' is a "+bindingKindName(b.Kind)+", not a value", &n.Span, "call it with ()")
		}
		return b.Value, normalSignal, nil

	case *ast.Assign:
		v, sig, err := ev.evalExpr(n.Value)
		if err != nil || sig.Kind != SigNormal {
			return 0, sig, err
		}
		if err := ev.env.Assign(n.Name, v, &n.Span); err != nil {
			return 0, normalSignal, err
		}
		return v, normalSignal, nil

	case *ast.Prefix:
		return ev.evalPrefix(n)

	case *ast.Infix:
		return ev.evalInfix(n)

	case *ast.Call:
		return ev.evalCall(n)

	case *ast.Block:
		return ev.evalBlock(n)

	case *ast.If:
		return ev.evalIf(n)

	default:
		return 0, normalSignal, fmt.Errorf("evaluator: unhandled expression type %T", e)
	}
}

func bindingKindName(k BindingKind) string {
	switch k {
	case BindFn:
		return "function"
	case BindProc:
		return "procedure"
	case BindBuiltin:
		return "built-in"
	default:
		return "binding"
	}
}

func (ev *Evaluator) evalPrefix(n *ast.Prefix) (Value, Signal, error) {
	v, sig, err := ev.evalExpr(n.Operand)
	if err != nil || sig.Kind != SigNormal {
		return 0, sig, err
	}
	switch n.Op {
	case ast.OpPos:
		return v, normalSignal, nil
	case ast.OpNeg:
		return -v, normalSignal, nil
	case ast.OpNot:
		return BoolValue(!Truthiness(v)), normalSignal, nil
	default:
		return 0, normalSignal, fmt.Errorf("evaluator: unhandled prefix operator %q", n.Op)
	}
}

func (ev *Evaluator) evalInfix(n *ast.Infix) (Value, Signal, error) {
	left, sig, err := ev.evalExpr(n.Left)
	if err != nil || sig.Kind != SigNormal {
		return 0, sig, err
	}

	// Short-circuit: the right operand is only evaluated when its value
	// could still change the result.
	if n.Op == ast.OpAnd && !Truthiness(left) {
		return BoolValue(false), normalSignal, nil
	}
	if n.Op == ast.OpOr && Truthiness(left) {
		return BoolValue(true), normalSignal, nil
	}

	right, sig, err := ev.evalExpr(n.Right)
	if err != nil || sig.Kind != SigNormal {
		return 0, sig, err
	}

	switch n.Op {
	case ast.OpAdd:
		return left + right, normalSignal, nil
	case ast.OpSub:
		return left - right, normalSignal, nil
	case ast.OpMul:
		return left * right, normalSignal, nil
	case ast.OpDiv:
		return left / right, normalSignal, nil
	case ast.OpMod:
		return math.Mod(left, right), normalSignal, nil
	case ast.OpPow:
		return math.Pow(left, right), normalSignal, nil
	case ast.OpEqEq:
		return BoolValue(left == right), normalSignal, nil
	case ast.OpNeq:
		return BoolValue(left != right), normalSignal, nil
	case ast.OpLt:
		return BoolValue(left < right), normalSignal, nil
	case ast.OpLtEq:
		return BoolValue(left <= right), normalSignal, nil
	case ast.OpGt:
		return BoolValue(left > right), normalSignal, nil
	case ast.OpGtEq:
		return BoolValue(left >= right), normalSignal, nil
	case ast.OpAnd:
		return BoolValue(Truthiness(right)), normalSignal, nil
	case ast.OpOr:
		return BoolValue(Truthiness(right)), normalSignal, nil
	default:
		return 0, normalSignal, fmt.Errorf("evaluator: unhandled infix operator %q", n.Op)
	}
}

// evalBlock pushes a fresh frame for the block's own declarations, runs
// its statements, and — if nothing signaled out of the ordinary — folds
// in its trailing expression as the block's value.
func (ev *Evaluator) evalBlock(b *ast.Block) (Value, Signal, error) {
	var result Value
	sig, err := ev.env.WithFrame(func() (Signal, error) {
		s, err := ev.execStmts(b.Stmts)
		if err != nil || s.Kind != SigNormal {
			return s, err
		}
		if b.Trailing != nil {
			v, trailSig, trailErr := ev.evalExpr(b.Trailing)
			if trailErr != nil {
				return normalSignal, trailErr
			}
			if trailSig.Kind != SigNormal {
				return trailSig, nil
			}
			result = v
		}
		return normalSignal, nil
	})
	if err != nil {
		return 0, normalSignal, err
	}
	return result, sig, nil
}

func (ev *Evaluator) evalIf(n *ast.If) (Value, Signal, error) {
	cond, sig, err := ev.evalExpr(n.Cond)
	if err != nil || sig.Kind != SigNormal {
		return 0, sig, err
	}

	if Truthiness(cond) {
		return ev.evalBlock(n.Then)
	}
	switch e := n.Else.(type) {
	case nil:
		return 0, normalSignal, nil
	case *ast.Block:
		return ev.evalBlock(e)
	case *ast.If:
		return ev.evalIf(e)
	default:
		return 0, normalSignal, fmt.Errorf("evaluator: unhandled if-else type %T", n.Else)
	}
}

func (ev *Evaluator) evalCall(n *ast.Call) (Value, Signal, error) {
	b, err := ev.env.Lookup(n.Callee, &n.Span)
	if err != nil {
		return 0, normalSignal, err
	}

	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, sig, err := ev.evalExpr(a)
		if err != nil || sig.Kind != SigNormal {
			return 0, sig, err
		}
		args[i] = v
	}

	switch b.Kind {
	case BindBuiltin:
		return ev.callBuiltin(b.Builtin, args, n)
	case BindFn:
		return ev.callUser(b.Fn.Name, b.Fn.Params, b.Fn.Body, args, n.Span, false)
	case BindProc:
		return ev.callUser(b.Proc.Name, b.Proc.Params, b.Proc.Body, args, n.Span, true)
	default:
		return 0, normalSignal, runtimeErr(diagnostics.MisuseError,
			"'"+n.Callee+"' is not callable", &n.Span, "")
	}
}

func (ev *Evaluator) callBuiltin(fn *BuiltinFn, args []Value, n *ast.Call) (Value, Signal, error) {
	if !arityOK(fn.MinAri, fn.Arity, len(args)) {
		return 0, normalSignal, runtimeErr(diagnostics.ArityError,
			fmt.Sprintf("'%s' expects %s, got %d", fn.Name, arityDesc(fn.MinAri, fn.Arity), len(args)),
			&n.Span, "")
	}
	v, err := fn.Call(args)
	if err != nil {
		return 0, normalSignal, runtimeErr(diagnostics.MisuseError, err.Error(), &n.Span, "")
	}
	return v, normalSignal, nil
}

func arityOK(minAri, exact, got int) bool {
	if exact >= 0 {
		return got == exact
	}
	return got >= minAri
}

func arityDesc(minAri, exact int) string {
	if exact >= 0 {
		return fmt.Sprintf("%d argument(s)", exact)
	}
	return fmt.Sprintf("at least %d argument(s)", minAri)
}

// callUser invokes a fn/proc declaration. Its body sees ONLY the global
// frame plus a fresh frame holding its own parameters — never the
// caller's locals and never any block enclosing the call, matching the
// language's non-closure scoping rule.
func (ev *Evaluator) callUser(name string, params []string, body *ast.Block, args []Value, span ast.Span, isProc bool) (Value, Signal, error) {
	if len(args) != len(params) {
		return 0, normalSignal, runtimeErr(diagnostics.ArityError,
			fmt.Sprintf("'%s' expects %d argument(s), got %d", name, len(params), len(args)),
			&span, "")
	}

	maxDepth := ev.limits.MaxCallDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxCallDepth
	}
	if ev.callDepth >= maxDepth {
		return 0, normalSignal, runtimeErr(diagnostics.MisuseError,
			"maximum call depth exceeded", &span, "StackOverflow")
	}

	paramFrame := make(Frame, len(params))
	for i, p := range params {
		paramFrame[p] = &Binding{Kind: BindVar, Value: args[i]}
	}

	restore := ev.env.EnterCall(paramFrame)
	ev.callDepth++
	v, sig, err := ev.evalBlock(body)
	ev.callDepth--
	restore()

	if err != nil {
		return 0, normalSignal, err
	}

	switch sig.Kind {
	case SigReturn:
		if isProc {
			return 0, normalSignal, nil // a proc's return value is discarded
		}
		return sig.Value, normalSignal, nil
	case SigEnd:
		return 0, sig, nil // `end` terminates the whole program, proc or not
	case SigBreak, SigContinue:
		return 0, normalSignal, runtimeErr(diagnostics.MisuseError,
			"'break'/'continue' escaped a loop into a function body", &span, "")
	default:
		return v, normalSignal, nil
	}
}
