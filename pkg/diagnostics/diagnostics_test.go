package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/thomasrohde/stellar/pkg/ast"
	"github.com/thomasrohde/stellar/pkg/diagnostics"
)

func TestMakeDiag(t *testing.T) {
	span := &ast.Span{File: "test.st", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}
	d := diagnostics.MakeDiag(diagnostics.EParse, "Expected expression", span, "check syntax")

	if d.Code != diagnostics.EParse {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.EParse)
	}
	if d.Message != "Expected expression" {
		t.Errorf("got Message = %q, want %q", d.Message, "Expected expression")
	}
	if d.Line() != 1 {
		t.Errorf("got Line() = %d, want 1", d.Line())
	}
}

func TestFormatPlain(t *testing.T) {
	span := &ast.Span{File: "test.st", StartLine: 3, StartCol: 5}
	tests := []struct {
		name string
		d    diagnostics.Diagnostic
		want string
	}{
		{
			name: "lexical",
			d:    diagnostics.Diagnostic{Code: diagnostics.ELex, Message: "Unexpected symbol '@'", Span: span, Stage: diagnostics.StageLex},
			want: "[Line: 3] Error: Unexpected symbol '@'",
		},
		{
			name: "syntax",
			d:    diagnostics.Diagnostic{Code: diagnostics.EParse, Message: "Expected ';' after expression", Span: span, Near: "}", Stage: diagnostics.StageParse},
			want: "[Line: 3] Error: at '}', Expected ';' after expression",
		},
		{
			name: "syntax at end of input",
			d:    diagnostics.Diagnostic{Code: diagnostics.EParse, Message: "Expected expression", Span: span, Stage: diagnostics.StageParse},
			want: "[Line: 3] Error: at '', Expected expression",
		},
		{
			name: "runtime",
			d:    diagnostics.Diagnostic{Code: diagnostics.EZeroDiv, Message: "cannot divide by zero", Span: span, Stage: diagnostics.StageRuntime},
			want: "Runtime Error: Division by zero: cannot divide by zero",
		},
		{
			name: "static finding",
			d:    diagnostics.Diagnostic{Code: diagnostics.EUndefined, Message: "'y' is not declared", Span: span, Stage: diagnostics.StageCheck},
			want: "[Line: 3] Error: Undefined variable: 'y' is not declared",
		},
		{
			name: "io without span",
			d:    diagnostics.Diagnostic{Code: diagnostics.EIO, Message: "open x.st: no such file"},
			want: "Error: open x.st: no such file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := diagnostics.FormatDiagnostic(tt.d, diagnostics.StylePlain); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRuntimeLabels(t *testing.T) {
	want := map[string]string{
		diagnostics.EOperator:     "Operator not defined",
		diagnostics.EZeroDiv:      "Division by zero",
		diagnostics.ETypeMismatch: "Type mismatch",
		diagnostics.EUninit:       "Uninitialized access",
		diagnostics.EUndefined:    "Undefined variable",
	}
	for code, label := range want {
		got, ok := diagnostics.RuntimeLabel(code)
		if !ok || got != label {
			t.Errorf("RuntimeLabel(%s) = %q, %v; want %q", code, got, ok, label)
		}
	}
	if _, ok := diagnostics.RuntimeLabel(diagnostics.ELex); ok {
		t.Error("E_LEX must not be a runtime code")
	}
}

func TestFormatDiagnosticPretty(t *testing.T) {
	span := &ast.Span{File: "test.st", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 10}
	d := diagnostics.MakeDiag(diagnostics.EUndefined, "'x' is not declared", span, "declare it with let")

	out := diagnostics.FormatDiagnostic(d, diagnostics.StylePretty)
	if !strings.Contains(out, "error[E_UNDEFINED]") {
		t.Errorf("expected error code in output, got: %s", out)
	}
	if !strings.Contains(out, "test.st:3:5") {
		t.Errorf("expected location in output, got: %s", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Errorf("expected hint in output, got: %s", out)
	}
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.ELex, "bad token", nil, "")
	out := diagnostics.FormatDiagnostic(d, diagnostics.StyleJSON)
	if !strings.Contains(out, `"code":"E_LEX"`) {
		t.Errorf("expected JSON code in output, got: %s", out)
	}
}

func TestParseStyle(t *testing.T) {
	for name, want := range map[string]diagnostics.Style{
		"":       diagnostics.StylePlain,
		"plain":  diagnostics.StylePlain,
		"Pretty": diagnostics.StylePretty,
		"json":   diagnostics.StyleJSON,
	} {
		got, err := diagnostics.ParseStyle(name)
		if err != nil || got != want {
			t.Errorf("ParseStyle(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := diagnostics.ParseStyle("xml"); err == nil {
		t.Error("expected error for unknown style")
	}
}

// --- Printer ---

func TestPrinterPrettyExcerpt(t *testing.T) {
	source := "let a = 1;\nlet b = a @ 2;\n"
	span := &ast.Span{File: "demo.st", StartLine: 2, StartCol: 11}
	d := diagnostics.Diagnostic{Code: diagnostics.ELex, Message: "Unexpected symbol '@'", Span: span}

	p := diagnostics.NewPrinter(diagnostics.StylePretty, source)
	p.Palette = diagnostics.DefaultPalette()
	out := ansi.Strip(p.Render(d))

	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), out)
	}
	if lines[0] != "error[E_LEX]: Unexpected symbol '@'" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[3] != "2 | let b = a @ 2;" {
		t.Errorf("source line = %q", lines[3])
	}
	if lines[4] != "  |           ^" {
		t.Errorf("caret line = %q", lines[4])
	}
}

func TestExcerptWideRunes(t *testing.T) {
	// "日本" occupies four terminal cells and six bytes.
	text, caret, ok := diagnostics.Excerpt("\"日本\" @", 1, 10)
	if !ok {
		t.Fatal("expected excerpt")
	}
	if text != "\"日本\" @" {
		t.Errorf("text = %q", text)
	}
	if caret != "       ^" {
		t.Errorf("caret = %q", caret)
	}
}

func TestExcerptOutOfRange(t *testing.T) {
	if _, _, ok := diagnostics.Excerpt("one line", 4, 1); ok {
		t.Error("expected no excerpt past the last line")
	}
}
