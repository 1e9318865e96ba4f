// Package validator implements static checks of Stellar programs. Each
// finding describes a statement that fails at runtime whenever it is reached.
package validator

import (
	"errors"
	"fmt"

	"github.com/thomasrohde/stellar/pkg/ast"
	"github.com/thomasrohde/stellar/pkg/diagnostics"
	"github.com/thomasrohde/stellar/pkg/evaluator"
)

type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	if s.bindings[name] {
		return true
	}
	if s.parent != nil {
		return s.parent.has(name)
	}
	return false
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

type validator struct {
	diags []diagnostics.Diagnostic
	scope *scope
}

// Validate walks program and returns its findings in source order.
// Names listed in predeclared are treated as global bindings.
func Validate(program *ast.Program, predeclared ...string) []diagnostics.Diagnostic {
	v := &validator{scope: newScope(nil)}
	for _, name := range predeclared {
		v.scope.add(name)
	}
	v.validateStatements(program.Statements)
	return v.diags
}

func (v *validator) addDiag(code, msg, hint string, span ast.Span) {
	d := diagnostics.MakeDiag(code, msg, &span, hint)
	d.Stage = diagnostics.StageCheck
	v.diags = append(v.diags, d)
}

func (v *validator) validateStatements(stmts []ast.Stmt) {
	for _, s := range stmts {
		v.validateStmt(s)
	}
}

func (v *validator) validateStmt(s ast.Stmt) {
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		v.validateExpr(stmt.Expr)
	case *ast.PrintStmt:
		v.validateExpr(stmt.Expr)
	case *ast.LetStmt:
		// The initializer cannot see the name it declares.
		if stmt.Init != nil {
			v.validateExpr(stmt.Init)
		}
		v.scope.add(stmt.Name)
	case *ast.BlockStmt:
		v.validateBlock(stmt)
	case *ast.IfStmt:
		v.validateExpr(stmt.Cond)
		v.validateBlock(stmt.Then)
		if stmt.Else != nil {
			v.validateBlock(stmt.Else)
		}
	}
}

func (v *validator) validateBlock(block *ast.BlockStmt) {
	prev := v.scope
	v.scope = newScope(prev)
	v.validateStatements(block.Stmts)
	v.scope = prev
}

func (v *validator) validateExpr(e ast.Expr) {
	switch expr := e.(type) {
	case *ast.VariableExpr:
		if !v.scope.has(expr.Name) {
			v.addDiag(diagnostics.EUndefined,
				fmt.Sprintf("'%s' is not declared", expr.Name),
				fmt.Sprintf("declare it first with 'let %s;'", expr.Name),
				expr.Span)
		}
	case *ast.AssignExpr:
		if !v.scope.has(expr.Name) {
			v.addDiag(diagnostics.EUndefined,
				fmt.Sprintf("cannot assign to undeclared '%s'", expr.Name),
				fmt.Sprintf("assignment never declares a variable; use 'let %s = ...;'", expr.Name),
				expr.Span)
		}
		v.validateExpr(expr.Value)
	case *ast.GroupingExpr:
		v.validateExpr(expr.Inner)
	case *ast.LogicalExpr:
		v.validateExpr(expr.Left)
		v.validateExpr(expr.Right)
	case *ast.UnaryExpr:
		v.validateExpr(expr.Operand)
		if expr.Op == ast.OpNeg {
			if lit, ok := literalOf(expr.Operand); ok {
				if _, err := evaluator.Negate(lit); err != nil {
					v.addDiag(diagnostics.EOperator, messageOf(err), "", expr.Span)
				}
			}
		}
	case *ast.BinaryExpr:
		v.validateExpr(expr.Left)
		v.validateExpr(expr.Right)
		v.validateBinary(expr)
	}
}

func (v *validator) validateBinary(expr *ast.BinaryExpr) {
	right, rok := literalOf(expr.Right)
	if expr.Op == ast.OpDiv && rok && right == ast.Literal(ast.Number(0)) {
		v.addDiag(diagnostics.EZeroDiv, "cannot divide by zero", "", expr.Span)
		return
	}
	left, lok := literalOf(expr.Left)
	if !lok || !rok {
		return
	}
	if !evaluator.Supports(expr.Op, left.Type(), right.Type()) {
		_, err := evaluator.Binary(expr.Op, left, right)
		v.addDiag(diagnostics.EOperator, messageOf(err), "", expr.Span)
	}
}

// literalOf returns the value of e when it is a literal, possibly inside
// groupings.
func literalOf(e ast.Expr) (ast.Literal, bool) {
	for {
		switch expr := e.(type) {
		case *ast.GroupingExpr:
			e = expr.Inner
		case *ast.LiteralExpr:
			return expr.Value, true
		default:
			return nil, false
		}
	}
}

func messageOf(err error) string {
	var re *evaluator.RuntimeError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}
