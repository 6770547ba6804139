package stdlib

import (
	"errors"
	"math"
	"math/rand"

	"github.com/numl-lang/numl/pkg/evaluator"
)

var errArity = errors.New("rand: expects 0 or 2 arguments")

func unary(name string, f func(float64) float64) *evaluator.BuiltinFn {
	return &evaluator.BuiltinFn{
		Name: name, MinAri: 1, Arity: 1,
		Call: func(args []evaluator.Value) (evaluator.Value, error) {
			return f(args[0]), nil
		},
	}
}

func binary(name string, f func(a, b float64) float64) *evaluator.BuiltinFn {
	return &evaluator.BuiltinFn{
		Name: name, MinAri: 2, Arity: 2,
		Call: func(args []evaluator.Value) (evaluator.Value, error) {
			return f(args[0], args[1]), nil
		},
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

var unaryFns = []*evaluator.BuiltinFn{
	unary("sin", math.Sin),
	unary("cos", math.Cos),
	unary("tan", math.Tan),
	unary("asin", math.Asin),
	unary("acos", math.Acos),
	unary("atan", math.Atan),
	unary("sinh", math.Sinh),
	unary("cosh", math.Cosh),
	unary("tanh", math.Tanh),
	unary("log", math.Log),
	unary("log10", math.Log10),
	unary("log2", math.Log2),
	unary("exp", math.Exp),
	unary("sqrt", math.Sqrt),
	unary("abs", math.Abs),
	unary("floor", math.Floor),
	unary("ceil", math.Ceil),
	unary("round", math.Round),
	unary("sign", sign),
}

var binaryFns = []*evaluator.BuiltinFn{
	binary("min", math.Min),
	binary("max", math.Max),
	binary("atan2", math.Atan2),
	binary("pow", math.Pow),
	binary("hypot", math.Hypot),
}

// randFn implements rand()  -> [0, 1) and rand(lo, hi) -> [lo, hi).
func randFn() *evaluator.BuiltinFn {
	return &evaluator.BuiltinFn{
		Name: "rand", MinAri: 0, Arity: -1,
		Call: func(args []evaluator.Value) (evaluator.Value, error) {
			switch len(args) {
			case 0:
				return rand.Float64(), nil
			case 2:
				lo, hi := args[0], args[1]
				return lo + rand.Float64()*(hi-lo), nil
			default:
				return 0, errArity
			}
		},
	}
}
