// Package runtime drives one chunk of Stellar source through the pipeline:
// lex, parse and interpret, reporting diagnostics as they are produced.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/thomasrohde/stellar/pkg/diagnostics"
	"github.com/thomasrohde/stellar/pkg/evaluator"
	"github.com/thomasrohde/stellar/pkg/formatter"
	"github.com/thomasrohde/stellar/pkg/lexer"
	"github.com/thomasrohde/stellar/pkg/parser"
	"github.com/thomasrohde/stellar/pkg/telemetry"
	"github.com/thomasrohde/stellar/pkg/validator"
)

// Result holds the outcome of one chunk.
type Result struct {
	// Diagnostics are the lexical or syntax errors that stopped the chunk
	// before interpretation.
	Diagnostics   []diagnostics.Diagnostic
	RuntimeErrors []*evaluator.RuntimeError
	Statements    int
}

// Runtime wires together the Stellar components. Its global frame persists
// across calls to Run.
type Runtime struct {
	mode    evaluator.Mode
	stdout  io.Writer
	stderr  io.Writer
	style   diagnostics.Style
	palette diagnostics.Palette
	runID   string
	trace   func(event evaluator.TraceEvent)
	log     *slog.Logger
	tel     telemetry.Instrumenter
	interp  *evaluator.Interpreter
	source  string
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithMode selects script or REPL behavior.
func WithMode(m evaluator.Mode) Option {
	return func(rt *Runtime) {
		rt.mode = m
	}
}

// WithStdout sets where program output goes.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithStderr sets where diagnostics and runtime errors go.
func WithStderr(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stderr = w
	}
}

// WithDiagnosticStyle sets how diagnostics are rendered.
func WithDiagnosticStyle(s diagnostics.Style, p diagnostics.Palette) Option {
	return func(rt *Runtime) {
		rt.style = s
		rt.palette = p
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.log = l
		}
	}
}

// WithTelemetry sets the span instrumenter.
func WithTelemetry(inst telemetry.Instrumenter) Option {
	return func(rt *Runtime) {
		if inst != nil {
			rt.tel = inst
		}
	}
}

// New creates a new Runtime with the given options. By default output is
// discarded, diagnostics are plain and telemetry is off.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		stdout:  io.Discard,
		stderr:  io.Discard,
		style:   diagnostics.StylePlain,
		palette: diagnostics.PlainPalette(),
		runID:   "cli",
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tel:     telemetry.Noop(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.interp = evaluator.New(evaluator.Options{
		Mode:    rt.mode,
		Stdout:  rt.stdout,
		OnError: rt.reportRuntime,
		Trace:   rt.trace,
		RunID:   rt.runID,
		Logger:  rt.log,
	})
	return rt
}

// Interpreter exposes the underlying interpreter, for example to list or
// reset globals.
func (rt *Runtime) Interpreter() *evaluator.Interpreter { return rt.interp }

// Run lexes, parses and interprets one chunk. Lexical and syntax errors are
// written to stderr and returned as a *DiagnosticError; no statement of the
// chunk runs in that case. Runtime errors are written to stderr as they
// happen and collected in the Result. The Result is never nil.
func (rt *Runtime) Run(ctx context.Context, source, filename string) (res *Result, err error) {
	res = &Result{}
	ctx, span := rt.tel.Start(ctx, rt.stage(telemetry.StageRun, source, filename))
	defer func() {
		span.End(telemetry.StageResult{
			Err:           err,
			Diagnostics:   len(res.Diagnostics),
			Statements:    res.Statements,
			RuntimeErrors: len(res.RuntimeErrors),
		})
	}()
	rt.source = source

	_, lexSpan := rt.tel.Start(ctx, rt.stage(telemetry.StageLex, source, filename))
	tokens, diags := lexer.Tokenize(source, filename)
	lexSpan.End(telemetry.StageResult{Diagnostics: len(diags)})
	rt.log.Debug("lexed chunk", "file", filename, "tokens", len(tokens), "diagnostics", len(diags))
	if len(diags) > 0 {
		return rt.fail(res, diags)
	}
	if len(tokens) == 1 {
		return res, nil
	}

	_, parseSpan := rt.tel.Start(ctx, rt.stage(telemetry.StageParse, source, filename))
	prog, diags := parser.ParseTokens(tokens)
	parseSpan.End(telemetry.StageResult{Diagnostics: len(diags)})
	rt.log.Debug("parsed chunk", "file", filename, "diagnostics", len(diags))
	if len(diags) > 0 {
		return rt.fail(res, diags)
	}

	ictx, interpSpan := rt.tel.Start(ctx, rt.stage(telemetry.StageInterpret, source, filename))
	out, ierr := rt.interp.Interpret(ictx, prog)
	interpSpan.End(telemetry.StageResult{
		Err:           ierr,
		Statements:    out.Statements,
		RuntimeErrors: len(out.Errors),
	})
	res.Statements = out.Statements
	res.RuntimeErrors = out.Errors
	return res, ierr
}

func (rt *Runtime) fail(res *Result, diags []diagnostics.Diagnostic) (*Result, error) {
	res.Diagnostics = diags
	rt.writeDiagnostics(diags)
	return res, &DiagnosticError{Diagnostics: diags}
}

// Check lexes, parses and validates source without executing it. Names
// already bound in the global frame count as declared.
func (rt *Runtime) Check(ctx context.Context, source, filename string) []diagnostics.Diagnostic {
	_, span := rt.tel.Start(ctx, rt.stage(telemetry.StageCheck, source, filename))
	program, diags := parser.Parse(source, filename)
	if len(diags) == 0 {
		diags = validator.Validate(program, rt.interp.Globals().Names()...)
	}
	span.End(telemetry.StageResult{Diagnostics: len(diags)})
	return diags
}

// Format parses source and returns it in canonical layout.
func (rt *Runtime) Format(ctx context.Context, source, filename string) (string, error) {
	_, span := rt.tel.Start(ctx, rt.stage(telemetry.StageFormat, source, filename))
	program, diags := parser.Parse(source, filename)
	span.End(telemetry.StageResult{Diagnostics: len(diags)})
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

// Render formats diagnostics for source in the runtime's style.
func (rt *Runtime) Render(source string, diags []diagnostics.Diagnostic) string {
	if rt.style == diagnostics.StyleJSON {
		return diagnostics.FormatDiagnostics(diags, diagnostics.StyleJSON)
	}
	p := rt.printer(source)
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = p.Render(d)
	}
	sep := "\n"
	if rt.style == diagnostics.StylePretty {
		sep = "\n\n"
	}
	return strings.Join(parts, sep)
}

func (rt *Runtime) printer(source string) *diagnostics.Printer {
	p := diagnostics.NewPrinter(rt.style, source)
	p.Palette = rt.palette
	return p
}

func (rt *Runtime) writeDiagnostics(diags []diagnostics.Diagnostic) {
	p := rt.printer(rt.source)
	for _, d := range diags {
		fmt.Fprintln(rt.stderr, p.Render(d))
	}
}

func (rt *Runtime) reportRuntime(err *evaluator.RuntimeError) {
	fmt.Fprintln(rt.stderr, rt.printer(rt.source).Render(err.Diagnostic()))
}

func (rt *Runtime) stage(s telemetry.Stage, source, filename string) telemetry.StageStart {
	return telemetry.StageStart{
		Stage:  s,
		File:   filename,
		Mode:   rt.mode.String(),
		RunID:  rt.runID,
		Source: len(source),
	}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
