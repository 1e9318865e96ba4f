package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/thomasrohde/stellar/pkg/evaluator"
	"github.com/thomasrohde/stellar/pkg/runtime"
)

// scriptedReader replays lines and records the prompts it was shown.
type scriptedReader struct {
	lines   []string
	prompts []string
}

func (r *scriptedReader) Prompt(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func newTestREPL(lines ...string) (*repl, *scriptedReader, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	in := &scriptedReader{lines: lines}
	r := &repl{
		rt: runtime.New(
			runtime.WithMode(evaluator.ModeRepl),
			runtime.WithStdout(&stdout),
			runtime.WithStderr(&stderr),
		),
		in:     in,
		out:    &stdout,
		prompt: ">> ",
		cont:   ".. ",
	}
	return r, in, &stdout, &stderr
}

func TestREPLEchoAndPersistence(t *testing.T) {
	r, _, stdout, stderr := newTestREPL("let x = 10;", "x * 2;", "x += 1;", "print x;")
	if code := r.loop(context.Background()); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if got, want := stdout.String(), "20\n11\n11\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestREPLContinuationLines(t *testing.T) {
	r, in, stdout, _ := newTestREPL("let s = 0;", "{", "  s = s + 5;", "}", "s;")
	r.loop(context.Background())

	if got, want := stdout.String(), "5\n5\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	want := []string{">> ", ">> ", ".. ", ".. ", ">> ", ">> "}
	if strings.Join(in.prompts, "|") != strings.Join(want, "|") {
		t.Errorf("prompts = %q, want %q", in.prompts, want)
	}
}

func TestREPLRecoversFromErrors(t *testing.T) {
	r, _, stdout, stderr := newTestREPL("let a = ;", "let a = 1;", "a / 0;", "a;")
	r.loop(context.Background())

	if stdout.String() != "1\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	wantErr := "[Line: 1] Error: at ';', Expected expression\n" +
		"Runtime Error: Division by zero: cannot divide by zero\n"
	if stderr.String() != wantErr {
		t.Errorf("stderr = %q, want %q", stderr.String(), wantErr)
	}
}

func TestREPLUnterminatedInputAtEOF(t *testing.T) {
	r, _, stdout, stderr := newTestREPL("print 1;", "{ print 2;")
	if code := r.loop(context.Background()); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if stdout.String() != "1\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Expected '}' after block") {
		t.Errorf("expected unclosed block diagnostic, got %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func TestREPLCommands(t *testing.T) {
	r, _, stdout, _ := newTestREPL(
		"let n = 2; let s = \"hi\"; let c = 'z'; let u;",
		":env",
		":reset",
		":env",
		":bogus",
		":quit",
		"print 99;",
	)
	if code := r.loop(context.Background()); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}

	want := "c = 'z' (char)\n" +
		"n = 2 (number)\n" +
		"s = \"hi\" (string)\n" +
		"u = <uninitialized>\n" +
		"globals cleared\n" +
		"(no globals)\n" +
		"unknown command :bogus. Type :help for commands, :quit to exit.\n"
	if stdout.String() != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout.String(), want)
	}
}

func TestREPLEnvJSON(t *testing.T) {
	r, _, stdout, _ := newTestREPL(
		":env --json",
		"let n = 2; let s = \"hi\"; let c = 'z'; let u;",
		":env --json",
	)
	r.loop(context.Background())

	want := "{}\n" +
		"{\n" +
		"  \"c\": \"z\",\n" +
		"  \"n\": 2,\n" +
		"  \"s\": \"hi\",\n" +
		"  \"u\": null\n" +
		"}\n"
	if stdout.String() != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout.String(), want)
	}
}

func TestREPLHelpCommand(t *testing.T) {
	r, _, stdout, _ := newTestREPL(":help")
	r.loop(context.Background())
	if !strings.Contains(stdout.String(), ":reset") {
		t.Errorf("expected command list, got %q", stdout.String())
	}
}

func TestREPLHistory(t *testing.T) {
	r, _, _, _ := newTestREPL("let x = 1;", "", ":env", "{", "x;", "}")
	var history []string
	r.history = func(chunk string) { history = append(history, chunk) }
	r.loop(context.Background())

	want := []string{"let x = 1;", "{\nx;\n}"}
	if strings.Join(history, "|") != strings.Join(want, "|") {
		t.Errorf("history = %q, want %q", history, want)
	}
}

func TestScanReader(t *testing.T) {
	in := scanReader{sc: bufioScanner("a\nb\n")}
	for _, want := range []string{"a", "b"} {
		got, err := in.Prompt(">> ")
		if err != nil || got != want {
			t.Fatalf("Prompt = %q, %v; want %q", got, err, want)
		}
	}
	if _, err := in.Prompt(">> "); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}
