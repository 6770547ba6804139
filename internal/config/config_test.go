package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numl-lang/numl/internal/config"
)

func TestLoadFallsBackToDefaultsWhenNoFileExists(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Load(dir)
	assert.Equal(t, config.DefaultLimits(), cfg.Limits)
	assert.Empty(t, cfg.Constants)
}

func TestLoadReadsProjectLimitsAndConstants(t *testing.T) {
	dir := t.TempDir()
	yaml := `
limits:
  max_steps: 500
  max_call_depth: 8
  deadline_ms: 1500
constants:
  G: 9.81
  C: 299792458
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".numlrc.yaml"), []byte(yaml), 0644))

	cfg := config.Load(dir)
	assert.Equal(t, int64(500), cfg.Limits.MaxSteps)
	assert.Equal(t, 8, cfg.Limits.MaxCallDepth)
	assert.Equal(t, int64(1500), cfg.Limits.DeadlineMs)
	assert.Equal(t, 9.81, cfg.Constants["G"])
	assert.Equal(t, 299792458.0, cfg.Constants["C"])
}

func TestToEvaluatorLimitsDerivesDeadline(t *testing.T) {
	l := config.Limits{MaxSteps: 10, MaxCallDepth: 4, DeadlineMs: 50}
	evalLimits, cancel := l.ToEvaluatorLimits(context.Background())
	defer cancel()

	assert.Equal(t, int64(10), evalLimits.MaxSteps)
	assert.Equal(t, 4, evalLimits.MaxCallDepth)
	require.NotNil(t, evalLimits.Deadline)
}
