// Command stellar runs Stellar scripts and the interactive REPL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/thomasrohde/stellar/pkg/config"
	"github.com/thomasrohde/stellar/pkg/diagnostics"
	"github.com/thomasrohde/stellar/pkg/evaluator"
	"github.com/thomasrohde/stellar/pkg/formatter"
	"github.com/thomasrohde/stellar/pkg/help"
	"github.com/thomasrohde/stellar/pkg/runtime"
	"github.com/thomasrohde/stellar/pkg/telemetry"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	exitOK          = 0
	exitUsage       = 1
	exitDiagnostics = 2
	exitRuntime     = 4
	exitInterrupted = 130
)

func main() {
	os.Exit(dispatch(os.Args[1:]))
}

func dispatch(args []string) int {
	if len(args) == 0 {
		return cmdRepl(nil)
	}

	switch args[0] {
	case "run":
		return cmdRun(args[1:])
	case "repl":
		return cmdRepl(args[1:])
	case "check":
		return cmdCheck(args[1:])
	case "fmt":
		return cmdFmt(args[1:])
	case "trace":
		return cmdTrace(args[1:])
	case "help", "--help", "-h":
		return cmdHelp(args[1:])
	case "version", "--version":
		fmt.Printf("stellar %s (%s) %s/%s\n", version, commit, goruntime.GOOS, goruntime.GOARCH)
		return exitOK
	}

	// stellar <script>
	if len(args) == 1 && !strings.HasPrefix(args[0], "-") {
		return cmdRun(args)
	}
	printUsage(os.Stderr)
	return exitUsage
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: stellar <script>")
	fmt.Fprintln(w, "       stellar <command> [options]")
	fmt.Fprintln(w, "Args:")
	fmt.Fprintln(w, "\tscript: source filepath")
	fmt.Fprintln(w, "Commands: run, repl, check, fmt, trace, help, version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "(Hint: Run Stellar with no args to start the interactive REPL)")
}

// ---------------------------------------------------------------------------
// Shared setup
// ---------------------------------------------------------------------------

// commonFlags are accepted by every command that runs the pipeline.
type commonFlags struct {
	diagnostics string
	color       string
	debug       bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.diagnostics, "diagnostics", "", "diagnostic style: plain, pretty or json")
	fs.StringVar(&c.color, "color", "", "color output: auto, always or never")
	fs.BoolVar(&c.debug, "debug", false, "log pipeline stages to stderr")
}

// session carries the settings and services shared by one CLI invocation.
type session struct {
	settings config.Settings
	style    diagnostics.Style
	palette  diagnostics.Palette
	profile  termenv.Profile
	log      *slog.Logger
	tel      telemetry.Instrumenter
}

func newSession(flags commonFlags) (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	settings, handle, err := config.LoadSettings(cwd)
	if err != nil {
		return nil, err
	}
	if flags.diagnostics != "" {
		settings.Diagnostics = flags.diagnostics
	}
	if flags.color != "" {
		settings.Color = strings.ToLower(flags.color)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s := &session{settings: settings}
	s.style, _ = diagnostics.ParseStyle(settings.Diagnostics)
	s.profile = colorProfile(settings.Color, os.Stderr)
	lipgloss.SetColorProfile(s.profile)
	s.palette = diagnostics.PlainPalette()
	if s.profile != termenv.Ascii {
		s.palette = diagnostics.DefaultPalette()
	}

	s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	if flags.debug {
		s.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	if handle.Path != "" {
		s.log.Debug("loaded settings", "path", handle.Path, "format", handle.Format)
	}

	telCfg := telemetry.ConfigFromEnv(os.Getenv)
	telCfg.Version = version
	s.tel, err = telemetry.New(telCfg)
	if err != nil {
		s.log.Warn("telemetry disabled", "error", err)
		s.tel = telemetry.Noop()
	}
	return s, nil
}

func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.tel.Shutdown(ctx); err != nil {
		s.log.Warn("telemetry shutdown", "error", err)
	}
}

func (s *session) runtime(mode evaluator.Mode, extra ...runtime.Option) *runtime.Runtime {
	opts := []runtime.Option{
		runtime.WithMode(mode),
		runtime.WithStdout(os.Stdout),
		runtime.WithStderr(os.Stderr),
		runtime.WithDiagnosticStyle(s.style, s.palette),
		runtime.WithLogger(s.log),
		runtime.WithTelemetry(s.tel),
	}
	return runtime.New(append(opts, extra...)...)
}

// colorProfile resolves the color setting for w.
func colorProfile(setting string, w *os.File) termenv.Profile {
	switch setting {
	case config.ColorAlways:
		return termenv.TrueColor
	case config.ColorNever:
		return termenv.Ascii
	}
	if !isatty.IsTerminal(w.Fd()) && !isatty.IsCygwinTerminal(w.Fd()) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

func reportError(err error) {
	d := diagnostics.MakeDiag(diagnostics.EIO, err.Error(), nil, "")
	fmt.Fprintln(os.Stderr, d.Error())
}

// readSource reads file, or stdin when file is "-".
func readSource(file string) (string, string, error) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("cannot read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", "", fmt.Errorf("cannot read file: %s", file)
	}
	return string(data), file, nil
}

// singleFile parses fs and returns its only positional argument.
func singleFile(fs *flag.FlagSet, args []string) (string, bool) {
	if err := fs.Parse(args); err != nil {
		return "", false
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", false
	}
	return fs.Arg(0), true
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	tracePath := fs.String("trace", "", "write trace events as JSON lines to `file`")
	runID := fs.String("run-id", "", "run ID recorded in trace events (default: random)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: stellar run [options] <file|->")
		fs.PrintDefaults()
	}
	file, ok := singleFile(fs, args)
	if !ok {
		return exitUsage
	}

	source, filename, err := readSource(file)
	if err != nil {
		reportError(err)
		return exitUsage
	}

	s, err := newSession(common)
	if err != nil {
		reportError(err)
		return exitUsage
	}
	defer s.close()

	id := *runID
	if id == "" {
		id = uuid.NewString()
	}
	opts := []runtime.Option{runtime.WithRunID(id)}
	if *tracePath != "" {
		f, err := os.Create(*tracePath)
		if err != nil {
			reportError(fmt.Errorf("cannot create trace file: %w", err))
			return exitUsage
		}
		defer f.Close()
		enc := json.NewEncoder(f)
		opts = append(opts, runtime.WithTrace(func(ev evaluator.TraceEvent) {
			if err := enc.Encode(ev); err != nil {
				s.log.Warn("trace write failed", "error", err)
			}
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt := s.runtime(evaluator.ModeScript, opts...)
	res, err := rt.Run(ctx, source, filename)
	return exitCodeFor(res, err)
}

// exitCodeFor maps the outcome of a run to a process exit code.
func exitCodeFor(res *runtime.Result, err error) int {
	var derr *runtime.DiagnosticError
	switch {
	case errors.As(err, &derr):
		return exitDiagnostics
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case err != nil:
		reportError(err)
		return exitUsage
	case res != nil && len(res.RuntimeErrors) > 0:
		return exitRuntime
	}
	return exitOK
}

func cmdCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: stellar check [options] <file|->")
		fs.PrintDefaults()
	}
	file, ok := singleFile(fs, args)
	if !ok {
		return exitUsage
	}

	source, filename, err := readSource(file)
	if err != nil {
		reportError(err)
		return exitUsage
	}
	s, err := newSession(common)
	if err != nil {
		reportError(err)
		return exitUsage
	}
	defer s.close()

	rt := s.runtime(evaluator.ModeScript)
	diags := rt.Check(context.Background(), source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, rt.Render(source, diags))
		return exitDiagnostics
	}
	fmt.Println("ok")
	return exitOK
}

func cmdFmt(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	write := fs.Bool("write", false, "rewrite the file in place")
	diff := fs.Bool("diff", false, "print a unified diff instead of the formatted source")
	highlight := fs.Bool("highlight", false, "syntax-highlight the formatted source")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: stellar fmt [--write|--diff|--highlight] <file|->")
		fs.PrintDefaults()
	}
	file, ok := singleFile(fs, args)
	if !ok {
		return exitUsage
	}

	source, filename, err := readSource(file)
	if err != nil {
		reportError(err)
		return exitUsage
	}
	s, err := newSession(common)
	if err != nil {
		reportError(err)
		return exitUsage
	}
	defer s.close()

	rt := s.runtime(evaluator.ModeScript)
	formatted, err := rt.Format(context.Background(), source, filename)
	var derr *runtime.DiagnosticError
	if errors.As(err, &derr) {
		fmt.Fprintln(os.Stderr, rt.Render(source, derr.Diagnostics))
		return exitDiagnostics
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(os.Stderr, "warning: comments are not preserved by the formatter")
	}

	switch {
	case *write:
		if file == "-" {
			reportError(errors.New("--write needs a file"))
			return exitUsage
		}
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			reportError(fmt.Errorf("error writing file: %w", err))
			return exitUsage
		}
	case *diff:
		fmt.Print(udiff.Unified(filename, filename+" (formatted)", source, formatted))
	case *highlight:
		profile := colorProfile(s.settings.Color, os.Stdout)
		if err := formatter.Highlight(os.Stdout, formatted, formatter.FormatterFor(profile), formatter.DefaultStyle); err != nil {
			reportError(err)
			return exitUsage
		}
	default:
		fmt.Print(formatted)
	}
	return exitOK
}

func cmdHelp(args []string) int {
	topic := ""
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if topic == "" {
		fmt.Print(help.QUICKREF)
		return exitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return exitUsage
	}
	fmt.Print(content)
	return exitOK
}
