// Package config loads execution limits from project and user config
// files, the same project-then-user-then-default precedence the original
// capability policy loader used.
package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/numl-lang/numl/pkg/evaluator"
)

// Limits is the YAML-decodable form of evaluator.Limits: a deadline is
// expressed as a duration in milliseconds rather than a context.Context.
type Limits struct {
	MaxSteps     int64 `yaml:"max_steps"`
	MaxCallDepth int   `yaml:"max_call_depth"`
	DeadlineMs   int64 `yaml:"deadline_ms"`
}

// File is the on-disk shape of a numl config file: execution limits
// plus a table of extra named constants a host wants installed into
// the global frame at new_environment time, alongside the language's
// own built-ins (e.g. a house value of `G` for gravitational
// acceleration).
type File struct {
	Limits    Limits             `yaml:"limits"`
	Constants map[string]float64 `yaml:"constants"`
}

// Config is the resolved, in-memory form of a loaded config file.
type Config struct {
	Limits    Limits
	Constants map[string]float64
}

// DefaultLimits returns the limits a session starts with absent any
// config file: a million-step budget, the evaluator's default call
// depth, and a five-second deadline.
func DefaultLimits() Limits {
	return Limits{
		MaxSteps:     1_000_000,
		MaxCallDepth: evaluator.DefaultMaxCallDepth,
		DeadlineMs:   5000,
	}
}

// Load reads a config file from a project config file
// (<projectDir>/.numlrc.yaml), falling back to a user config file
// (~/.numl/config.yaml), falling back to DefaultLimits with no extra
// constants. Project config always wins over user config; neither is
// required to exist.
func Load(projectDir string) Config {
	if f, err := loadFile(filepath.Join(projectDir, ".numlrc.yaml")); err == nil {
		return Config{Limits: f.Limits, Constants: f.Constants}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if f, err := loadFile(filepath.Join(home, ".numl", "config.yaml")); err == nil {
			return Config{Limits: f.Limits, Constants: f.Constants}
		}
	}
	return Config{Limits: DefaultLimits()}
}

func loadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ToEvaluatorLimits converts l into an evaluator.Limits, deriving a
// deadline context from parent (use context.Background() when there is
// no enclosing deadline to inherit). The returned cancel func must be
// called once the evaluation finishes to release the timer.
func (l Limits) ToEvaluatorLimits(parent context.Context) (evaluator.Limits, context.CancelFunc) {
	ctx := parent
	cancel := func() {}
	if l.DeadlineMs > 0 {
		ctx, cancel = context.WithTimeout(parent, time.Duration(l.DeadlineMs)*time.Millisecond)
	}
	return evaluator.NewLimits(l.MaxSteps, l.MaxCallDepth, ctx), cancel
}
