package evaluator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numl-lang/numl/pkg/diagnostics"
	"github.com/numl-lang/numl/pkg/evaluator"
	"github.com/numl-lang/numl/pkg/parser"
)

func run(t *testing.T, source string) evaluator.Value {
	t.Helper()
	prog, diags := parser.Parse(source, "test.numl")
	require.Empty(t, diags, "unexpected parse diagnostics: %v", diags)
	ev := evaluator.New(evaluator.NewEnv(), evaluator.NewLimits(0, 0, nil))
	v, err := ev.Execute(prog)
	require.NoError(t, err)
	return v
}

func runErr(t *testing.T, source string) error {
	t.Helper()
	prog, diags := parser.Parse(source, "test.numl")
	require.Empty(t, diags, "unexpected parse diagnostics: %v", diags)
	ev := evaluator.New(evaluator.NewEnv(), evaluator.NewLimits(0, 0, nil))
	_, err := ev.Execute(prog)
	require.Error(t, err)
	return err
}

// --- arithmetic & precedence ---

func TestArithmeticPrecedence(t *testing.T) {
	assert.Equal(t, 14.0, run(t, `2 + 3 * 4`))
	assert.Equal(t, 20.0, run(t, `(2 + 3) * 4`))
}

func TestPowRightAssociative(t *testing.T) {
	assert.Equal(t, 512.0, run(t, `2 ^ 3 ^ 2`)) // 2^(3^2) = 2^9
}

func TestModIsFloatAware(t *testing.T) {
	assert.InDelta(t, 0.5, run(t, `2.5 % 1`), 1e-9)
}

func TestDivisionByZeroIsInfNotError(t *testing.T) {
	assert.True(t, run(t, `1 / 0`) > 0)
}

// --- comparisons & booleans ---

func TestComparisonsProduceZeroOrOne(t *testing.T) {
	assert.Equal(t, 1.0, run(t, `3 > 2`))
	assert.Equal(t, 0.0, run(t, `3 < 2`))
}

func TestShortCircuitAndSkipsRightSideEffect(t *testing.T) {
	src := `
let x = 0
let y = false && (x = 1)
x`
	assert.Equal(t, 0.0, run(t, src))
}

func TestShortCircuitOrSkipsRightSideEffect(t *testing.T) {
	src := `
let x = 0
let y = true || (x = 1)
x`
	assert.Equal(t, 0.0, run(t, src))
}

func TestTruthinessInIf(t *testing.T) {
	assert.Equal(t, 1.0, run(t, `if 5 { 1 } else { 0 }`))
	assert.Equal(t, 0.0, run(t, `if 0 { 1 } else { 0 }`))
}

// --- let/const, scoping ---

func TestLetAndReassign(t *testing.T) {
	src := `
let x = 1
x = x + 1
x`
	assert.Equal(t, 2.0, run(t, src))
}

func TestConstCannotBeAssigned(t *testing.T) {
	runErr(t, `const PI2 = 6.28
PI2 = 1`)
}

func TestRedeclarationInSameFrameIsError(t *testing.T) {
	runErr(t, `let x = 1
let x = 2`)
}

func TestShadowingAcrossFramesIsAllowed(t *testing.T) {
	src := `
let x = 1
let y = if true { let x = 2; x } else { 0 }
x + y`
	assert.Equal(t, 3.0, run(t, src))
}

func TestUnknownIdentifierIsError(t *testing.T) {
	runErr(t, `x + 1`)
}

// --- blocks as expressions ---

func TestBlockValueIsTrailingExpr(t *testing.T) {
	assert.Equal(t, 3.0, run(t, `{ let a = 1; let b = 2; a + b }`))
}

func TestBlockWithoutTrailingExprIsZero(t *testing.T) {
	assert.Equal(t, 0.0, run(t, `{ let a = 1; }`))
}

func TestIfWithoutElseAndFalseCondIsZero(t *testing.T) {
	assert.Equal(t, 0.0, run(t, `if false { 1 }`))
}

// --- while / break / continue ---

func TestWhileAccumulates(t *testing.T) {
	src := `
let i = 0
let total = 0
while i < 5 {
  total = total + i
  i = i + 1
}
total`
	assert.Equal(t, 10.0, run(t, src))
}

func TestBreakStopsLoop(t *testing.T) {
	src := `
let i = 0
while true {
  if i == 3 { break }
  i = i + 1
}
i`
	assert.Equal(t, 3.0, run(t, src))
}

func TestContinueSkipsRestOfBody(t *testing.T) {
	src := `
let i = 0
let evens = 0
while i < 6 {
  i = i + 1
  if i % 2 != 0 { continue }
  evens = evens + 1
}
evens`
	assert.Equal(t, 3.0, run(t, src))
}

// --- fn / proc, no closures ---

func TestFnCallAndReturn(t *testing.T) {
	src := `
fn square(n) { return n * n }
square(5)`
	assert.Equal(t, 25.0, run(t, src))
}

func TestFnBodySeesOnlyGlobalsAndOwnParams(t *testing.T) {
	src := `
let shadowed = 100
fn f(shadowed) { return shadowed + 1 }
f(1)`
	assert.Equal(t, 2.0, run(t, src))
}

func TestFnBodyCannotSeeCallersBlockLocals(t *testing.T) {
	src := `
fn f() { return unseen }
if true {
  let unseen = 1
  f()
}`
	runErr(t, src)
}

func TestProcDiscardsReturnValue(t *testing.T) {
	src := `
proc p() { return 99 }
p()`
	assert.Equal(t, 0.0, run(t, src))
}

func TestRecursion(t *testing.T) {
	src := `
fn fact(n) {
  if n <= 1 { return 1 }
  return n * fact(n - 1)
}
fact(5)`
	assert.Equal(t, 120.0, run(t, src))
}

func TestCallArityMismatchIsError(t *testing.T) {
	runErr(t, `fn add(a, b) { return a + b }
add(1)`)
}

func TestMaxCallDepthExceeded(t *testing.T) {
	prog, diags := parser.Parse(`
fn loop(n) { return loop(n + 1) }
loop(0)`, "test.numl")
	require.Empty(t, diags)
	ev := evaluator.New(evaluator.NewEnv(), evaluator.NewLimits(0, 10, nil))
	_, err := ev.Execute(prog)
	require.Error(t, err)
}

// --- return / end ---

func TestEndTerminatesWholeProgram(t *testing.T) {
	src := `
fn f() {
  end 7
  return 0
}
let x = f()
x + 1000`
	assert.Equal(t, 7.0, run(t, src))
}

func TestBareReturnYieldsZero(t *testing.T) {
	src := `
fn f() { return }
f()`
	assert.Equal(t, 0.0, run(t, src))
}

// --- builtins ---

func TestBuiltinCallThroughRegisteredBinding(t *testing.T) {
	prog, diags := parser.Parse(`double(21)`, "test.numl")
	require.Empty(t, diags)

	env := evaluator.NewEnv()
	env.Global()["double"] = &evaluator.Binding{
		Kind: evaluator.BindBuiltin,
		Builtin: &evaluator.BuiltinFn{
			Name: "double", Arity: 1, MinAri: 1,
			Call: func(args []evaluator.Value) (evaluator.Value, error) {
				return args[0] * 2, nil
			},
		},
	}
	ev := evaluator.New(env, evaluator.NewLimits(0, 0, nil))
	v, err := ev.Execute(prog)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestListVariablesOmitsInstalledBindings(t *testing.T) {
	prog, diags := parser.Parse(`let x = 1`, "test.numl")
	require.Empty(t, diags)

	env := evaluator.NewEnv()
	env.Global()["PI"] = &evaluator.Binding{Kind: evaluator.BindConst, Value: 3.14, Installed: true}
	env.Global()["double"] = &evaluator.Binding{
		Kind:      evaluator.BindBuiltin,
		Installed: true,
		Builtin:   &evaluator.BuiltinFn{Name: "double", Arity: 1, MinAri: 1},
	}

	ev := evaluator.New(env, evaluator.NewLimits(0, 0, nil))
	_, err := ev.Execute(prog)
	require.NoError(t, err)

	vars := env.ListVariables()
	require.Len(t, vars, 1)
	assert.Equal(t, "x", vars[0].Name)
}

// --- budget & deadline ---

func TestStepBudgetExceeded(t *testing.T) {
	prog, diags := parser.Parse(`
let i = 0
while true { i = i + 1 }`, "test.numl")
	require.Empty(t, diags)
	ev := evaluator.New(evaluator.NewEnv(), evaluator.NewLimits(50, 0, nil))
	_, err := ev.Execute(prog)
	require.Error(t, err)
	d, ok := err.(diagnostics.Diagnostic)
	require.True(t, ok)
	assert.Contains(t, d.Hint, "ms")
}

func TestDeadlineExceeded(t *testing.T) {
	prog, diags := parser.Parse(`
let i = 0
while true { i = i + 1 }`, "test.numl")
	require.Empty(t, diags)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ev := evaluator.New(evaluator.NewEnv(), evaluator.NewLimits(0, 0, ctx))
	_, err := ev.Execute(prog)
	require.Error(t, err)
}
