// Package help holds the text numl's CLI and REPL show for `numl help`.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/numl-lang/numl/pkg/stdlib"
)

// QUICKREF is printed by `numl help` with no topic.
const QUICKREF = `numl v0.1 — a small embedded numeric expression language

Topics: syntax, types, control, functions, builtins, diagnostics, examples
Run 'numl help <topic>' for details on one of them.

  let x = 10
  fn square(n) { n * n }
  square(x) + 1
`

// TopicList is the ordered list of help topic names.
var TopicList = []string{"syntax", "types", "control", "functions", "builtins", "diagnostics", "examples"}

// Topics maps each topic name to its help text.
var Topics = map[string]string{
	"syntax": `Syntax
------
Statements: let, const, fn, proc, while, break, continue, return, end,
and bare expressions. Semicolons between statements are optional.
A block's value is its trailing expression, if it has one:

  { let a = 1; a + 1 }   // evaluates to 2
`,
	"types": `Types
-----
numl has exactly one value type: a 64-bit float. Booleans are the
numbers 0 and 1. A value is "truthy" unless it is 0 or NaN.
`,
	"control": `Control flow
------------
if/else works as an expression or a statement; while, break,
continue, fn and proc are statements only:

  let sign = if x > 0 { 1 } else if x < 0 { -1 } else { 0 }
`,
	"functions": `Functions and procedures
-------------------------
fn declares a function that returns a value with 'return'; proc
declares a procedure whose return value is discarded. Neither captures
its surrounding scope — a fn/proc body sees only its own parameters
and top-level (global) bindings, never a caller's locals.

  fn square(n) { return n * n }
  proc log(n) { print(n) }   // (print is illustrative; not a real builtin)
`,
	"builtins": `Built-ins
---------
Constants: PI, E, TAU, PHI, SQRT2, LN2, LN10
Unary:   sin cos tan asin acos atan sinh cosh tanh log log10 log2 exp
         sqrt abs floor ceil round sign
Binary:  min max atan2 pow hypot
Other:   rand() -> [0,1), rand(lo, hi) -> [lo, hi)
`,
	"diagnostics": `Diagnostics
-----------
LexError, SyntaxError, UnknownIdentifierError, RedeclarationError,
AssignToConstError, ArityError, MisuseError, TimeoutError — that is
the complete list; no other diagnostic kind is ever produced.
`,
	"examples": `Examples
--------
  let total = 0
  let i = 0
  while i < 10 { total = total + i; i = i + 1 }
  total

  fn fib(n) {
    if n <= 1 { return n }
    return fib(n - 1) + fib(n - 2)
  }
  fib(10)
`,
}

// MatchTopic resolves name to a topic, first by exact match, then by
// unique prefix match among TopicList. It is an error for name to match
// no topic, or to match more than one by prefix.
func MatchTopic(name string) (string, string, error) {
	if content, ok := Topics[name]; ok {
		return name, content, nil
	}

	var matched []string
	for _, t := range TopicList {
		if strings.HasPrefix(t, name) {
			matched = append(matched, t)
		}
	}
	switch len(matched) {
	case 1:
		return matched[0], Topics[matched[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q", name)
	default:
		return "", "", fmt.Errorf("ambiguous help topic %q: matches %s", name, strings.Join(matched, ", "))
	}
}

// StdlibIndex lists every built-in function and constant, for
// `numl help builtins-index`.
func StdlibIndex() string {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)

	names := make([]string, 0, len(reg.All()))
	for name := range reg.All() {
		names = append(names, name)
	}
	for name := range stdlib.Constants() {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Total: %d names\n", len(names))
	return b.String()
}
