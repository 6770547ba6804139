// Package stdlib provides numl's built-in functions and constants: the
// fixed set of math functions and named constants every fresh environment
// starts with.
package stdlib

import "github.com/numl-lang/numl/pkg/evaluator"

// Registry holds the built-in functions numl ships with.
type Registry struct {
	fns map[string]*evaluator.BuiltinFn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]*evaluator.BuiltinFn)}
}

// Register adds fn to the registry, keyed by its Name.
func (r *Registry) Register(fn *evaluator.BuiltinFn) {
	r.fns[fn.Name] = fn
}

// Get looks up a built-in by name.
func (r *Registry) Get(name string) *evaluator.BuiltinFn {
	return r.fns[name]
}

// All returns every registered built-in, keyed by name.
func (r *Registry) All() map[string]*evaluator.BuiltinFn {
	return r.fns
}

// Install binds every registered function and constant into env's global
// frame, marked Installed so `list_variables` treats them as built-ins
// rather than user bindings. Called once when a fresh environment is
// created.
func (r *Registry) Install(env *evaluator.Env) {
	g := env.Global()
	for name, fn := range r.fns {
		g[name] = &evaluator.Binding{Kind: evaluator.BindBuiltin, Builtin: fn, Installed: true}
	}
	for name, v := range Constants() {
		g[name] = &evaluator.Binding{Kind: evaluator.BindConst, Value: v, Installed: true}
	}
}

// InstallExtra binds a host-supplied table of extra named constants into
// env's global frame, marked Installed exactly like the standard
// library's own constants — so they are re-seeded by clear_environment
// and omitted from list_variables the same way PI/E/etc. are.
func InstallExtra(env *evaluator.Env, constants map[string]float64) {
	g := env.Global()
	for name, v := range constants {
		g[name] = &evaluator.Binding{Kind: evaluator.BindConst, Value: v, Installed: true}
	}
}
