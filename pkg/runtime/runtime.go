// Package runtime provides the top-level numl runtime orchestrator: the
// interpret / new_environment / clear_environment / list_variables
// façade a host embeds to run numl programs.
package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/numl-lang/numl/pkg/diagnostics"
	"github.com/numl-lang/numl/pkg/evaluator"
	"github.com/numl-lang/numl/pkg/formatter"
	"github.com/numl-lang/numl/pkg/parser"
	"github.com/numl-lang/numl/pkg/stdlib"
)

// Result holds the outcome of an interpret call.
type Result struct {
	Value evaluator.Value
}

// Runtime wires together the parser, evaluator, and standard library for
// a single logical numl session. It owns one persistent Env across calls
// to Interpret, so `let`/`fn`/`proc` declarations from one call remain
// visible to the next — the same way a REPL session behaves.
type Runtime struct {
	stdlib    *stdlib.Registry
	env       *evaluator.Env
	limits    evaluator.Limits
	constants map[string]float64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithStdlib overrides the built-in registry a Runtime is constructed
// with. Mostly useful for tests that want a reduced built-in surface.
func WithStdlib(r *stdlib.Registry) Option {
	return func(rt *Runtime) { rt.stdlib = r }
}

// WithLimits sets the step-budget/deadline/call-depth limits every
// Interpret call is evaluated under.
func WithLimits(l evaluator.Limits) Option {
	return func(rt *Runtime) { rt.limits = l }
}

// WithExtraConstants installs a host-supplied table of named constants
// into the global frame alongside the standard library's own, every
// time the environment is (re)seeded — e.g. a config file's per-project
// constants. They are installed exactly like PI/E/etc.: immutable,
// omitted from ListVariables, and re-seeded by ClearEnvironment.
func WithExtraConstants(constants map[string]float64) Option {
	return func(rt *Runtime) { rt.constants = constants }
}

// New creates a Runtime with a fresh environment seeded with the default
// standard library.
func New(opts ...Option) *Runtime {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)

	rt := &Runtime{
		stdlib: reg,
		limits: evaluator.NewLimits(0, 0, nil),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.NewEnvironment()
	return rt
}

// NewEnvironment discards the current environment and seeds a fresh one
// with the Runtime's standard library plus any extra constants supplied
// via WithExtraConstants — the `new_environment` operation.
func (rt *Runtime) NewEnvironment() {
	env := evaluator.NewEnv()
	rt.stdlib.Install(env)
	if len(rt.constants) > 0 {
		stdlib.InstallExtra(env, rt.constants)
	}
	rt.env = env
}

// ClearEnvironment removes every user-declared var/const/fn/proc while
// keeping the standard library in place — the `clear_environment`
// operation. Equivalent to NewEnvironment but named for intent.
func (rt *Runtime) ClearEnvironment() {
	rt.NewEnvironment()
}

// ListVariables reports every user-declared binding currently visible at
// global scope, omitting installed built-ins and extra constants — the
// `list_variables` operation.
func (rt *Runtime) ListVariables() []evaluator.ListedVar {
	return rt.env.ListVariables()
}

// Interpret parses and evaluates source against the Runtime's persistent
// environment — the `interpret` operation. Parse diagnostics abort
// before any evaluation; a runtime error is returned as-is (it already
// satisfies the error interface via diagnostics.Diagnostic).
func (rt *Runtime) Interpret(ctx context.Context, source, filename string) (*Result, []diagnostics.Diagnostic, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return nil, diags, nil
	}

	limits := rt.limits
	if limits.Deadline == nil {
		limits.Deadline = ctx
	}

	ev := evaluator.New(rt.env, limits)
	v, err := ev.Execute(program)
	if err != nil {
		return nil, nil, err
	}
	return &Result{Value: v}, nil, nil
}

// Format parses and pretty-prints a numl program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

// DiagnosticError wraps one or more diagnostics as a single error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return strings.Join(msgs, "; ")
}
