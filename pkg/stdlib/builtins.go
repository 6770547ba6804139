package stdlib

import "math"

// goldenRatio is (1+sqrt(5))/2; the math package has no named constant for it.
const goldenRatio = 1.618033988749895

// Constants returns the numeric constants every fresh environment exposes
// at global scope, bound as BindConst.
func Constants() map[string]float64 {
	return map[string]float64{
		"PI":    math.Pi,
		"E":     math.E,
		"TAU":   2 * math.Pi,
		"PHI":   goldenRatio,
		"SQRT2": math.Sqrt2,
		"LN2":   math.Ln2,
		"LN10":  math.Ln10,
	}
}

// RegisterDefaults registers every built-in function numl ships with.
func RegisterDefaults(r *Registry) {
	for _, fn := range unaryFns {
		r.Register(fn)
	}
	for _, fn := range binaryFns {
		r.Register(fn)
	}
	r.Register(randFn())
}
