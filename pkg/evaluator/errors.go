package evaluator

import (
	"fmt"

	"github.com/thomasrohde/stellar/pkg/ast"
	"github.com/thomasrohde/stellar/pkg/diagnostics"
)

// ErrorKind classifies a runtime error.
type ErrorKind int

const (
	OperatorNotDefined ErrorKind = iota
	ZeroDivision
	TypeMismatch
	UninitializedAccess
	UndefinedVariable
)

var kindCodes = map[ErrorKind]string{
	OperatorNotDefined:  diagnostics.EOperator,
	ZeroDivision:        diagnostics.EZeroDiv,
	TypeMismatch:        diagnostics.ETypeMismatch,
	UninitializedAccess: diagnostics.EUninit,
	UndefinedVariable:   diagnostics.EUndefined,
}

// Code returns the diagnostic code for k.
func (k ErrorKind) Code() string {
	return kindCodes[k]
}

// String returns the display name printed in runtime error reports.
func (k ErrorKind) String() string {
	label, ok := diagnostics.RuntimeLabel(k.Code())
	if !ok {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return label
}

// RuntimeError is raised while evaluating a statement. It aborts that
// statement only.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Diagnostic converts e for rendering alongside lexical and syntax errors.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	d := diagnostics.MakeDiag(e.Kind.Code(), e.Message, e.Span, "")
	d.Stage = diagnostics.StageRuntime
	return d
}

func runtimeErr(kind ErrorKind, span ast.Span, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: &span}
}
