// Package evaluator executes Stellar programs by walking the syntax tree.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/thomasrohde/stellar/pkg/ast"
)

// Mode selects between interactive and script behavior.
type Mode int

const (
	// ModeScript runs whole files. Expression statement results are discarded.
	ModeScript Mode = iota
	// ModeRepl echoes the value of each bare expression statement.
	ModeRepl
)

func (m Mode) String() string {
	if m == ModeRepl {
		return "repl"
	}
	return "script"
}

// Options configures an Interpreter.
type Options struct {
	Mode   Mode
	Stdout io.Writer
	// OnError is called as soon as a statement fails.
	OnError func(*RuntimeError)
	Trace   func(event TraceEvent)
	RunID   string
	Logger  *slog.Logger
}

// Result summarizes one call to Interpret.
type Result struct {
	Statements int
	Errors     []*RuntimeError
}

// Interpreter executes programs against a global frame that persists across
// calls, so successive REPL lines share their variables.
type Interpreter struct {
	opts    Options
	log     *slog.Logger
	globals *Env
	env     *Env
	errs    []*RuntimeError
}

// New creates an Interpreter with an empty global frame.
func New(opts Options) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	globals := NewEnv(nil)
	return &Interpreter{opts: opts, log: log, globals: globals, env: globals}
}

// Mode returns the mode the interpreter was created with.
func (in *Interpreter) Mode() Mode { return in.opts.Mode }

// Globals returns the outermost frame.
func (in *Interpreter) Globals() *Env { return in.globals }

// Reset discards every global binding.
func (in *Interpreter) Reset() {
	in.globals = NewEnv(nil)
	in.env = in.globals
}

// Interpret executes the program's statements in order. A runtime error
// aborts only the statement that raised it; it is reported through
// Options.OnError and collected in the Result. The returned error is non-nil
// only when ctx is done before every top-level statement has run.
func (in *Interpreter) Interpret(ctx context.Context, prog *ast.Program) (*Result, error) {
	in.errs = nil
	in.env = in.globals

	span := prog.Span
	in.emit(TraceRunStart, &span)
	defer in.emit(TraceRunEnd, &span)

	res := &Result{}
	for _, stmt := range prog.Statements {
		if err := ctx.Err(); err != nil {
			res.Errors = in.errs
			return res, err
		}
		in.exec(stmt)
		res.Statements++
	}
	res.Errors = in.errs
	in.log.Debug("interpreted chunk", "statements", res.Statements, "errors", len(res.Errors), "mode", in.opts.Mode)
	return res, nil
}

// exec runs one statement and reports its runtime error, if any.
func (in *Interpreter) exec(stmt ast.Stmt) {
	span := stmt.NodeSpan()
	in.emit(TraceStmtStart, &span)
	if err := in.execute(stmt); err != nil {
		in.report(err, span)
	}
	in.emit(TraceStmtEnd, &span)
}

func (in *Interpreter) report(err error, span ast.Span) {
	var re *RuntimeError
	if !errors.As(err, &re) {
		re = &RuntimeError{Kind: TypeMismatch, Message: err.Error()}
	}
	if re.Span == nil {
		re.Span = &span
	}
	in.errs = append(in.errs, re)
	in.log.Debug("runtime error", "kind", re.Kind.String(), "line", re.Span.StartLine, "message", re.Message)
	in.emitWithData(TraceRuntimeError, re.Span, map[string]any{
		"code":    re.Kind.Code(),
		"message": re.Message,
	})
	if in.opts.OnError != nil {
		in.opts.OnError(re)
	}
}

func (in *Interpreter) execute(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		val, err := in.evaluate(s.Expr)
		if err != nil {
			return err
		}
		if in.opts.Mode == ModeRepl {
			in.print(val, s.Span)
		}

	case *ast.PrintStmt:
		val, err := in.evaluate(s.Expr)
		if err != nil {
			return err
		}
		in.print(val, s.Span)

	case *ast.LetStmt:
		var val ast.Literal
		if s.Init != nil {
			v, err := in.evaluate(s.Init)
			if err != nil {
				// The name is still declared, uninitialized.
				in.env.Define(s.Name, nil)
				return err
			}
			val = v
		}
		in.env.Define(s.Name, val)

	case *ast.BlockStmt:
		in.executeBlock(s.Stmts, in.env.Child())

	case *ast.IfStmt:
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return err
		}
		if Truthy(cond) {
			in.executeBlock(s.Then.Stmts, in.env.Child())
		} else if s.Else != nil {
			in.executeBlock(s.Else.Stmts, in.env.Child())
		}

	default:
		return fmt.Errorf("unsupported statement %s", stmt.Kind())
	}
	return nil
}

// executeBlock runs stmts in env and restores the current frame afterwards.
// Errors are reported per inner statement.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Env) {
	prev := in.env
	in.env = env
	defer func() { in.env = prev }()

	for _, stmt := range stmts {
		in.exec(stmt)
	}
}

func (in *Interpreter) print(val ast.Literal, span ast.Span) {
	fmt.Fprintln(in.opts.Stdout, val.String())
	if in.opts.Trace != nil {
		in.emitWithData(TracePrint, &span, map[string]any{
			"type":  val.Type().String(),
			"value": literalToRaw(val),
		})
	}
}

func (in *Interpreter) evaluate(expr ast.Expr) (ast.Literal, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return e.Value, nil

	case *ast.GroupingExpr:
		return in.evaluate(e.Inner)

	case *ast.VariableExpr:
		val, ok := in.env.Get(e.Name)
		if !ok {
			return nil, runtimeErr(UndefinedVariable, e.Span, "'%s'", e.Name)
		}
		if val == nil {
			return nil, runtimeErr(UninitializedAccess, e.Span,
				"variable '%s' was not initialized, cannot read from uninitialized memory", e.Name)
		}
		return val, nil

	case *ast.AssignExpr:
		if !in.env.Contains(e.Name) {
			return nil, runtimeErr(UndefinedVariable, e.Span, "'%s'", e.Name)
		}
		val, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if !in.env.Assign(e.Name, val) {
			return nil, runtimeErr(UndefinedVariable, e.Span, "'%s'", e.Name)
		}
		return val, nil

	case *ast.LogicalExpr:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Op == ast.OpOr {
			if Truthy(left) {
				return left, nil
			}
		} else if !Truthy(left) {
			return left, nil
		}
		return in.evaluate(e.Right)

	case *ast.UnaryExpr:
		val, err := in.evaluate(e.Operand)
		if err != nil {
			return nil, err
		}
		if e.Op == ast.OpBang {
			return ast.Bool(Truthy(val)), nil
		}
		res, err := Negate(val)
		return res, attachSpan(err, e.Span)

	case *ast.BinaryExpr:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := in.evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		res, err := Binary(e.Op, left, right)
		return res, attachSpan(err, e.Span)
	}
	return nil, fmt.Errorf("unsupported expression %s", expr.Kind())
}

// attachSpan sets span on a span-less RuntimeError and returns err.
func attachSpan(err error, span ast.Span) error {
	var re *RuntimeError
	if errors.As(err, &re) && re.Span == nil {
		re.Span = &span
	}
	return err
}
