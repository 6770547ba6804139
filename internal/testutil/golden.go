// Package testutil provides shared test helpers for numl Go tests: an
// in-process table of source -> expected-value scenarios, run directly
// against the runtime rather than shelled out to an external binary.
package testutil

import (
	"context"

	"github.com/numl-lang/numl/pkg/runtime"
)

// Scenario is one source program and its expected outcome.
type Scenario struct {
	Name      string
	Source    string
	Want      float64 // meaningful only when WantErr is false
	WantErr   bool    // true if Interpret should return diagnostics or an error
	WantPanic bool    // not read by Run; a panic inside Interpret fails the calling test regardless
}

// Scenarios is the shared conformance table: every behavior spec.md
// names, expressed as a runnable program and its expected result.
var Scenarios = []Scenario{
	{Name: "arithmetic precedence", Source: `2 + 3 * 4`, Want: 14},
	{Name: "parens override precedence", Source: `(2 + 3) * 4`, Want: 20},
	{Name: "pow right associative", Source: `2 ^ 3 ^ 2`, Want: 512},
	{Name: "comparison yields 0 or 1", Source: `3 > 2`, Want: 1},
	{Name: "truthiness in if", Source: `if 0 { 1 } else { 2 }`, Want: 2},
	{Name: "block trailing expr", Source: `{ let a = 1; let b = 2; a + b }`, Want: 3},
	{Name: "while accumulates", Source: `
let i = 0
let total = 0
while i < 5 { total = total + i; i = i + 1 }
total`, Want: 10},
	{Name: "break stops loop", Source: `
let i = 0
while true { if i == 3 { break }; i = i + 1 }
i`, Want: 3},
	{Name: "recursion", Source: `
fn fact(n) { if n <= 1 { return 1 }; return n * fact(n - 1) }
fact(5)`, Want: 120},
	{Name: "fn has no closure over caller locals", Source: `
fn f() { return unseen }
if true { let unseen = 1; f() }`, WantErr: true},
	{Name: "const reassignment is an error", Source: `
const PI2 = 6.28
PI2 = 1`, WantErr: true},
	{Name: "redeclaration in same frame is an error", Source: `
let x = 1
let x = 2`, WantErr: true},
	{Name: "unknown identifier is an error", Source: `x + 1`, WantErr: true},
	{Name: "arity mismatch is an error", Source: `
fn add(a, b) { return a + b }
add(1)`, WantErr: true},
	{Name: "end terminates the whole program", Source: `
fn f() { end 7; return 0 }
let x = f()
x + 1000`, Want: 7},
}

// Run executes one Scenario against a fresh Runtime and reports whether
// its outcome matches expectations. The bool return is true on match.
func Run(ctx context.Context, s Scenario) (got float64, diagCount int, err error, ok bool) {
	rt := runtime.New()
	result, diags, runErr := rt.Interpret(ctx, s.Source, s.Name)

	if s.WantErr {
		return 0, len(diags), runErr, len(diags) > 0 || runErr != nil
	}
	if len(diags) > 0 || runErr != nil {
		return 0, len(diags), runErr, false
	}
	return result.Value, 0, nil, result.Value == s.Want
}
