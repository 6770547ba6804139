package evaluator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/numl-lang/numl/pkg/evaluator"
)

func TestTruthinessZeroIsFalsy(t *testing.T) {
	assert.False(t, evaluator.Truthiness(0))
	assert.False(t, evaluator.Truthiness(-0.0))
}

func TestTruthinessNaNIsFalsy(t *testing.T) {
	assert.False(t, evaluator.Truthiness(math.NaN()))
}

func TestTruthinessEverythingElseIsTruthy(t *testing.T) {
	for _, v := range []float64{1, -1, 0.0001, math.Inf(1), math.Inf(-1), 42} {
		assert.True(t, evaluator.Truthiness(v), "expected %v to be truthy", v)
	}
}

func TestBoolValue(t *testing.T) {
	assert.Equal(t, 1.0, evaluator.BoolValue(true))
	assert.Equal(t, 0.0, evaluator.BoolValue(false))
}
