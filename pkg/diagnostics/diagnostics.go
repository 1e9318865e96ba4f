// Package diagnostics defines Stellar diagnostics for lexical, syntax and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomasrohde/stellar/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex          = "E_LEX"
	EParse        = "E_PARSE"
	EOperator     = "E_OPERATOR"
	EZeroDiv      = "E_ZERO_DIV"
	ETypeMismatch = "E_TYPE"
	EUninit       = "E_UNINIT"
	EUndefined    = "E_UNDEFINED"
	EIO           = "E_IO"
)

var runtimeLabels = map[string]string{
	EOperator:     "Operator not defined",
	EZeroDiv:      "Division by zero",
	ETypeMismatch: "Type mismatch",
	EUninit:       "Uninitialized access",
	EUndefined:    "Undefined variable",
}

// RuntimeLabel returns the display name of a runtime error code.
func RuntimeLabel(code string) (string, bool) {
	label, ok := runtimeLabels[code]
	return label, ok
}

// Diagnostic represents a lexical, syntax, validation, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	// Near is the offending lexeme of a syntax error. It is empty at end of input.
	Near  string `json:"near,omitempty"`
	Hint  string `json:"hint,omitempty"`
	Stage Stage  `json:"stage,omitempty"`
}

// Stage names the pipeline step that produced a diagnostic.
type Stage string

const (
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageCheck   Stage = "check"
	StageRuntime Stage = "runtime"
)

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// Line returns the 1-based line of the diagnostic, or 0 when it has no span.
func (d Diagnostic) Line() int {
	if d.Span == nil {
		return 0
	}
	return d.Span.StartLine
}

func (d Diagnostic) Error() string {
	return FormatDiagnostic(d, StylePlain)
}

// Style selects how diagnostics are rendered.
type Style int

const (
	// StylePlain renders the one-line forms printed by the interpreter.
	StylePlain Style = iota
	// StylePretty renders a multi-line report with location and hint.
	StylePretty
	// StyleJSON renders machine-readable JSON.
	StyleJSON
)

func (s Style) String() string {
	switch s {
	case StylePretty:
		return "pretty"
	case StyleJSON:
		return "json"
	default:
		return "plain"
	}
}

// ParseStyle maps a settings or flag value to a Style.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "plain":
		return StylePlain, nil
	case "pretty":
		return StylePretty, nil
	case "json":
		return StyleJSON, nil
	default:
		return StylePlain, fmt.Errorf("unknown diagnostics style %q (want plain, pretty or json)", name)
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, style Style) string {
	switch style {
	case StyleJSON:
		b, _ := json.Marshal(d)
		return string(b)
	case StylePretty:
		loc := "<unknown>"
		if d.Span != nil {
			loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
		}
		out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, headline(d), loc)
		if d.Hint != "" {
			out += fmt.Sprintf("\n  hint: %s", d.Hint)
		}
		return out
	}
	return plain(d)
}

func headline(d Diagnostic) string {
	if d.Code == EParse {
		return fmt.Sprintf("at '%s', %s", d.Near, d.Message)
	}
	if label, ok := RuntimeLabel(d.Code); ok {
		return label + ": " + d.Message
	}
	return d.Message
}

func plain(d Diagnostic) string {
	if d.Stage == StageRuntime {
		return "Runtime Error: " + headline(d)
	}
	if d.Span == nil {
		return "Error: " + d.Message
	}
	return fmt.Sprintf("[Line: %d] Error: %s", d.Span.StartLine, headline(d))
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, style Style) string {
	if style == StyleJSON {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, style)
	}
	sep := "\n"
	if style == StylePretty {
		sep = "\n\n"
	}
	return strings.Join(parts, sep)
}
