package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/thomasrohde/stellar/pkg/ast"
	"github.com/thomasrohde/stellar/pkg/evaluator"
	"github.com/thomasrohde/stellar/pkg/help"
	"github.com/thomasrohde/stellar/pkg/parser"
	"github.com/thomasrohde/stellar/pkg/runtime"
)

const replFilename = "<repl>"

// lineReader is the part of liner.State the REPL loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// scanReader feeds piped input to the REPL without prompts.
type scanReader struct {
	sc *bufio.Scanner
}

func (r scanReader) Prompt(string) (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	noBanner := fs.Bool("no-banner", false, "do not print the welcome banner")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	s, err := newSession(common)
	if err != nil {
		reportError(err)
		return exitUsage
	}
	defer s.close()

	mode := evaluator.ModeRepl
	if !s.settings.EchoEnabled() {
		mode = evaluator.ModeScript
	}
	r := &repl{
		rt:     s.runtime(mode),
		out:    os.Stdout,
		prompt: s.settings.Prompt,
		cont:   s.settings.ContinuationPrompt,
	}

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if !interactive {
		r.in = scanReader{sc: bufio.NewScanner(os.Stdin)}
		return r.loop(context.Background())
	}

	if s.settings.BannerEnabled() && !*noBanner {
		fmt.Fprintln(r.out, banner())
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	r.in = ln
	r.history = func(chunk string) { ln.AppendHistory(strings.ReplaceAll(chunk, "\n", " ")) }

	histPath := s.settings.HistoryPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		saveHistory := func() {
			_ = os.MkdirAll(filepath.Dir(histPath), 0o755)
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
		defer saveHistory()

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigc)
		go func() {
			if _, ok := <-sigc; ok {
				saveHistory()
				ln.Close()
				os.Exit(exitInterrupted)
			}
		}()
	}

	return r.loop(context.Background())
}

func banner() string {
	return fmt.Sprintf("Welcome to Stellar %s, running %s on platform %s", version, goruntime.GOARCH, goruntime.GOOS)
}

// repl reads chunks and runs each against one persistent runtime.
type repl struct {
	rt      *runtime.Runtime
	in      lineReader
	out     io.Writer
	prompt  string
	cont    string
	history func(chunk string)
}

func (r *repl) loop(ctx context.Context) int {
	for {
		chunk, err := r.readChunk()
		if errors.Is(err, io.EOF) {
			return exitOK
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			reportError(err)
			return exitUsage
		}

		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if r.command(trimmed) {
				return exitOK
			}
			continue
		}

		if r.history != nil {
			r.history(chunk)
		}
		// Diagnostics and runtime errors are already reported by the runtime.
		if _, err := r.rt.Run(ctx, chunk, replFilename); errors.Is(err, context.Canceled) {
			return exitInterrupted
		}
	}
}

// readChunk reads one line, plus continuation lines while the input is
// still open. End of input inside a chunk returns what was read so far.
func (r *repl) readChunk() (string, error) {
	var b strings.Builder
	for {
		prompt := r.prompt
		if b.Len() > 0 {
			prompt = r.cont
		}
		line, err := r.in.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !parser.NeedsMore(src) {
			return src, nil
		}
	}
}

// command runs a ':' command. It reports true when the REPL should exit.
func (r *repl) command(cmd string) bool {
	fields := strings.Fields(strings.ToLower(cmd))
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprint(r.out, help.Topics["repl"])
	case ":env":
		if len(fields) > 1 && fields[1] == "--json" {
			r.printGlobalsJSON()
			return false
		}
		r.printGlobals()
	case ":reset":
		r.rt.Interpreter().Reset()
		fmt.Fprintln(r.out, "globals cleared")
	default:
		fmt.Fprintf(r.out, "unknown command %s. Type :help for commands, :quit to exit.\n", cmd)
	}
	return false
}

func (r *repl) printGlobals() {
	globals := r.rt.Interpreter().Globals()
	names := globals.Names()
	if len(names) == 0 {
		fmt.Fprintln(r.out, "(no globals)")
		return
	}
	for _, name := range names {
		val, _ := globals.Get(name)
		fmt.Fprintf(r.out, "%s = %s\n", name, describe(val))
	}
}

func (r *repl) printGlobalsJSON() {
	globals := r.rt.Interpreter().Globals()
	values := make(map[string]json.RawMessage)
	for _, name := range globals.Names() {
		val, _ := globals.Get(name)
		b, err := evaluator.LiteralToJSON(val)
		if err != nil {
			reportError(fmt.Errorf("encoding %s: %w", name, err))
			return
		}
		values[name] = b
	}
	out, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		reportError(err)
		return
	}
	fmt.Fprintln(r.out, string(out))
}

// describe renders a binding for :env.
func describe(val ast.Literal) string {
	switch v := val.(type) {
	case nil:
		return "<uninitialized>"
	case ast.String:
		return fmt.Sprintf("%q (string)", string(v))
	case ast.Char:
		return fmt.Sprintf("'%c' (char)", rune(v))
	default:
		return fmt.Sprintf("%s (%s)", v.String(), v.Type())
	}
}
