package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numl-lang/numl/pkg/runtime"
)

func TestExtraConstantsAreInstalledAndImmutable(t *testing.T) {
	rt := runtime.New(runtime.WithExtraConstants(map[string]float64{"G": 9.81}))

	result, diags, err := rt.Interpret(context.Background(), "G", "test.numl")
	require.Empty(t, diags)
	require.NoError(t, err)
	assert.Equal(t, 9.81, result.Value)

	_, diags, err = rt.Interpret(context.Background(), "G = 1", "test.numl")
	require.Empty(t, diags)
	require.Error(t, err)
}

func TestExtraConstantsOmittedFromListVariables(t *testing.T) {
	rt := runtime.New(runtime.WithExtraConstants(map[string]float64{"G": 9.81}))

	_, diags, err := rt.Interpret(context.Background(), "let x = 1", "test.numl")
	require.Empty(t, diags)
	require.NoError(t, err)

	vars := rt.ListVariables()
	require.Len(t, vars, 1)
	assert.Equal(t, "x", vars[0].Name)
}

func TestClearEnvironmentReseedsExtraConstants(t *testing.T) {
	rt := runtime.New(runtime.WithExtraConstants(map[string]float64{"G": 9.81}))

	_, diags, err := rt.Interpret(context.Background(), "let x = 1", "test.numl")
	require.Empty(t, diags)
	require.NoError(t, err)

	rt.ClearEnvironment()

	result, diags, err := rt.Interpret(context.Background(), "G", "test.numl")
	require.Empty(t, diags)
	require.NoError(t, err)
	assert.Equal(t, 9.81, result.Value)

	assert.Empty(t, rt.ListVariables())
}

func TestInterpretPersistsBindingsAcrossCalls(t *testing.T) {
	rt := runtime.New()

	_, diags, err := rt.Interpret(context.Background(), "let total = 10", "test.numl")
	require.Empty(t, diags)
	require.NoError(t, err)

	result, diags, err := rt.Interpret(context.Background(), "total + 5", "test.numl")
	require.Empty(t, diags)
	require.NoError(t, err)
	assert.Equal(t, 15.0, result.Value)
}
