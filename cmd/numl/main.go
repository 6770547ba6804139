// Command numl is the native numl CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"

	"github.com/numl-lang/numl/internal/config"
	"github.com/numl-lang/numl/pkg/diagnostics"
	"github.com/numl-lang/numl/pkg/help"
	"github.com/numl-lang/numl/pkg/repl"
	"github.com/numl-lang/numl/pkg/runtime"
)

// CLI is the top-level numl command-line interface.
type CLI struct {
	Profile string `help:"Enable profiling (cpu, mem, goroutine, block, mutex, trace)" enum:",cpu,mem,goroutine,block,mutex,trace" default:""`

	Run  RunCmd  `cmd:"" default:"withargs" help:"Run a numl source file"`
	REPL REPLCmd `cmd:"" help:"Start an interactive numl shell"`
	Fmt  FmtCmd  `cmd:"" help:"Pretty-print a numl source file"`
	Help HelpCmd `cmd:"" help:"Show language help"`
}

// RunCmd runs a numl program to completion and prints its result.
type RunCmd struct {
	File     string `arg:"" help:"Source file, or '-' for stdin"`
	JSON     bool   `help:"Emit the result (and any diagnostics) as JSON"`
	Steps    int64  `help:"Maximum evaluation steps (0 = use config default)"`
	Deadline int64  `help:"Deadline in milliseconds (0 = use config default)"`
}

func (c *RunCmd) Run(ctx context.Context) error {
	source, filename, err := readSource(c.File)
	if err != nil {
		return err
	}

	cwd, _ := os.Getwd()
	cfg := config.Load(cwd)
	if c.Steps > 0 {
		cfg.Limits.MaxSteps = c.Steps
	}
	if c.Deadline > 0 {
		cfg.Limits.DeadlineMs = c.Deadline
	}
	evalLimits, cancel := cfg.Limits.ToEvaluatorLimits(ctx)
	defer cancel()

	rt := runtime.New(runtime.WithLimits(evalLimits), runtime.WithExtraConstants(cfg.Constants))
	result, diags, err := rt.Interpret(ctx, source, filename)

	if len(diags) > 0 {
		printDiagnostics(diags, c.JSON)
		return errExit{code: 2}
	}
	if err != nil {
		printRuntimeErr(err, c.JSON)
		return errExit{code: 4}
	}

	if c.JSON {
		b, _ := json.Marshal(map[string]float64{"value": result.Value})
		fmt.Println(string(b))
	} else {
		fmt.Printf("%g\n", result.Value)
	}
	return nil
}

// REPLCmd starts the interactive shell.
type REPLCmd struct{}

func (c *REPLCmd) Run(ctx context.Context) error {
	cwd, _ := os.Getwd()
	cfg := config.Load(cwd)
	evalLimits, cancel := cfg.Limits.ToEvaluatorLimits(ctx)
	defer cancel()

	return repl.Run(ctx, runtime.WithLimits(evalLimits), runtime.WithExtraConstants(cfg.Constants))
}

// FmtCmd pretty-prints a source file.
type FmtCmd struct {
	File  string `arg:"" help:"Source file to format"`
	Write bool   `help:"Write the formatted output back to the file"`
}

func (c *FmtCmd) Run(ctx context.Context) error {
	source, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	rt := runtime.New()
	formatted, err := rt.Format(string(source), c.File)
	if err != nil {
		if diagErr, ok := err.(*runtime.DiagnosticError); ok {
			printDiagnostics(diagErr.Diagnostics, false)
			return errExit{code: 2}
		}
		return err
	}
	if c.Write {
		return os.WriteFile(c.File, []byte(formatted), 0644)
	}
	fmt.Print(formatted)
	return nil
}

// HelpCmd prints a language help topic.
type HelpCmd struct {
	Topic string `arg:"" optional:"" help:"Topic name; omit for the quick reference"`
}

func (c *HelpCmd) Run(ctx context.Context) error {
	if c.Topic == "" {
		fmt.Print(help.QUICKREF)
		return nil
	}
	if c.Topic == "builtins-index" {
		fmt.Print(help.StdlibIndex())
		return nil
	}
	_, content, err := help.MatchTopic(c.Topic)
	if err != nil {
		return err
	}
	fmt.Println(content)
	return nil
}

func readSource(file string) (source, filename string, err error) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", "", err
	}
	return string(data), file, nil
}

func printDiagnostics(diags []diagnostics.Diagnostic, asJSON bool) {
	fmt.Fprintln(os.Stderr, diagnostics.FormatAll(diags, !asJSON))
}

func printRuntimeErr(err error, asJSON bool) {
	if d, ok := err.(diagnostics.Diagnostic); ok {
		printDiagnostics([]diagnostics.Diagnostic{d}, asJSON)
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}

// errExit carries a process exit code through kong's error path without
// printing anything extra — the diagnostic has already been printed.
type errExit struct{ code int }

func (e errExit) Error() string { return "" }

func main() {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("numl"),
		kong.Description("The numl numeric expression language."),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ktx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if cli.Profile != "" {
		stop := startProfile(cli.Profile)
		defer stop()
	}

	ctx := context.Background()
	if err := ktx.Run(ctx); err != nil {
		if ee, ok := err.(errExit); ok {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func startProfile(mode string) func() {
	var p interface{ Stop() }
	switch mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile)
	case "mem":
		p = profile.Start(profile.MemProfile)
	case "goroutine":
		p = profile.Start(profile.GoroutineProfile)
	case "block":
		p = profile.Start(profile.BlockProfile)
	case "mutex":
		p = profile.Start(profile.MutexProfile)
	case "trace":
		p = profile.Start(profile.TraceProfile)
	default:
		return func() {}
	}
	return p.Stop
}
