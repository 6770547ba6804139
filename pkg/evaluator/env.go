package evaluator

import (
	"github.com/numl-lang/numl/pkg/ast"
	"github.com/numl-lang/numl/pkg/diagnostics"
)

// BindingKind identifies what a name in a Frame refers to.
type BindingKind int

const (
	BindVar BindingKind = iota
	BindConst
	BindFn
	BindProc
	BindBuiltin
)

// Binding is whatever a name resolves to inside a Frame.
type Binding struct {
	Kind      BindingKind
	Value     Value // valid for BindVar, BindConst
	Fn        *ast.FnDecl
	Proc      *ast.ProcDecl
	Builtin   *BuiltinFn
	Installed bool // set for bindings seeded at construction time (stdlib or config), not declared by a program
}

// BuiltinFn is a registered built-in function or procedure.
type BuiltinFn struct {
	Name   string
	MinAri int // minimum argument count; consulted only when Arity is -1
	Arity  int // exact argument count, or -1 for variadic (bounded by MinAri..)
	Call   func(args []Value) (Value, error)
}

// Frame is one lexical scope: a flat set of name -> Binding.
type Frame map[string]*Binding

// Env is a stack of frames. Frame 0 is the global frame, created once per
// interpreter session and outliving every call; every other frame's
// lifetime equals the dynamic extent of the block, call, or loop
// iteration that pushed it.
type Env struct {
	frames []Frame
}

// NewEnv creates an environment with a single, empty global frame.
func NewEnv() *Env {
	return &Env{frames: []Frame{make(Frame)}}
}

// PushFrame opens a new, empty innermost frame.
func (e *Env) PushFrame() {
	e.frames = append(e.frames, make(Frame))
}

// PopFrame discards the innermost frame.
func (e *Env) PopFrame() {
	e.frames = e.frames[:len(e.frames)-1]
}

// WithFrame pushes a new frame, runs fn, and pops the frame again even if
// fn panics or returns early — the frame's lifetime never outlives fn.
func (e *Env) WithFrame(fn func() (Signal, error)) (Signal, error) {
	e.PushFrame()
	defer e.PopFrame()
	return fn()
}

// EnterCall temporarily replaces the frame stack with just the global
// frame plus params, so a fn/proc body sees only its own parameters and
// the globals — never the caller's locals or any block enclosing the
// call. The returned closure restores the caller's frame stack; it must
// be called exactly once, after the call returns.
func (e *Env) EnterCall(params Frame) func() {
	saved := e.frames
	e.frames = []Frame{saved[0], params}
	return func() { e.frames = saved }
}

// Global returns the outermost (session-lifetime) frame.
func (e *Env) Global() Frame {
	return e.frames[0]
}

// Depth reports how many frames (beyond the global one) are currently
// pushed. The evaluator's call-depth limit does not use it; that limit
// counts nested calls separately.
func (e *Env) Depth() int {
	return len(e.frames) - 1
}

func (e *Env) innermost() Frame {
	return e.frames[len(e.frames)-1]
}

// Declare installs a new binding in the innermost frame. It is a
// RedeclarationError for a name to already exist in that same frame —
// shadowing a name from an outer frame is always permitted.
func (e *Env) Declare(name string, b *Binding, span *ast.Span) error {
	frame := e.innermost()
	if _, exists := frame[name]; exists {
		return diagnostics.New(diagnostics.RedeclarationError,
			"'"+name+"' is already declared in this scope", span, "")
	}
	frame[name] = b
	return nil
}

// Lookup resolves name by searching frames innermost-first.
func (e *Env) Lookup(name string, span *ast.Span) (*Binding, error) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if b, ok := e.frames[i][name]; ok {
			return b, nil
		}
	}
	return nil, diagnostics.New(diagnostics.UnknownIdentifierError,
		"unbound identifier '"+name+"'", span, "")
}

// Assign rebinds the value of the nearest Var binding named name. It is an
// AssignToConstError if the nearest binding with that name is a Const,
// Fn, Proc, or Builtin, and an UnknownIdentifierError if no binding with
// that name exists at all.
func (e *Env) Assign(name string, v Value, span *ast.Span) error {
	for i := len(e.frames) - 1; i >= 0; i-- {
		b, ok := e.frames[i][name]
		if !ok {
			continue
		}
		if b.Kind != BindVar {
			return diagnostics.New(diagnostics.AssignToConstError,
				"cannot assign to '"+name+"'; it is not a mutable variable", span, "")
		}
		b.Value = v
		return nil
	}
	return diagnostics.New(diagnostics.UnknownIdentifierError,
		"unbound identifier '"+name+"'", span, "")
}

// ListedVar describes one binding for the list_variables façade operation.
type ListedVar struct {
	Name  string
	Kind  string
	Value Value // only meaningful when Kind is "var" or "const"
	Arity int   // -1 for var/const; parameter count for fn/proc; the builtin's Arity for builtin
}

// ListVariables reports every user-installed binding reachable in the
// current frame stack, omitting built-ins (standard-library and
// config-seeded alike) per the `list_variables` façade operation.
// Innermost occurrence of a name wins over an outer shadowed one,
// ordered innermost-frame-first.
func (e *Env) ListVariables() []ListedVar {
	seen := make(map[string]bool)
	var out []ListedVar
	for i := len(e.frames) - 1; i >= 0; i-- {
		for name, b := range e.frames[i] {
			if seen[name] {
				continue
			}
			seen[name] = true
			if b.Installed {
				continue
			}
			out = append(out, listedVarFrom(name, b))
		}
	}
	return out
}

func listedVarFrom(name string, b *Binding) ListedVar {
	switch b.Kind {
	case BindVar:
		return ListedVar{Name: name, Kind: "var", Value: b.Value, Arity: -1}
	case BindConst:
		return ListedVar{Name: name, Kind: "const", Value: b.Value, Arity: -1}
	case BindFn:
		return ListedVar{Name: name, Kind: "fn", Arity: len(b.Fn.Params)}
	case BindProc:
		return ListedVar{Name: name, Kind: "proc", Arity: len(b.Proc.Params)}
	default:
		arity := -1
		if b.Builtin != nil {
			arity = b.Builtin.Arity
		}
		return ListedVar{Name: name, Kind: "builtin", Arity: arity}
	}
}
