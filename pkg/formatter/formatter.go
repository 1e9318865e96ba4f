// Package formatter implements the Stellar source code formatter.
package formatter

import (
	"strings"

	"github.com/thomasrohde/stellar/pkg/ast"
)

const indent = "  "

// Format pretty-prints a Stellar AST back to source code: one statement per
// line, two-space indentation, and else on the closing-brace line.
func Format(program *ast.Program) string {
	if len(program.Statements) == 0 {
		return ""
	}
	lines := make([]string, len(program.Statements))
	for i, s := range program.Statements {
		lines[i] = formatStmt(s, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments reports whether source contains a line or block comment
// outside string and character literals.
func HasComments(source string) bool {
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '"':
			end := strings.IndexByte(source[i+1:], '"')
			if end < 0 {
				return false
			}
			i += end + 1
		case '\'':
			// A character literal is a quote, one rune and a quote.
			if j := strings.IndexByte(source[i+1:], '\''); j >= 0 && j <= 4 {
				i += j + 1
			}
		case '/':
			if i+1 < len(source) && (source[i+1] == '/' || source[i+1] == '*') {
				return true
			}
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		return prefix + formatExpr(stmt.Expr) + ";"
	case *ast.PrintStmt:
		return prefix + "print " + formatExpr(stmt.Expr) + ";"
	case *ast.LetStmt:
		if stmt.Init == nil {
			return prefix + "let " + stmt.Name + ";"
		}
		return prefix + "let " + stmt.Name + " = " + formatExpr(stmt.Init) + ";"
	case *ast.BlockStmt:
		return prefix + formatBlock(stmt, depth)
	case *ast.IfStmt:
		out := prefix + "if (" + formatExpr(stmt.Cond) + ") " + formatBlock(stmt.Then, depth)
		if stmt.Else != nil {
			out += " else " + formatBlock(stmt.Else, depth)
		}
		return out
	}
	return ""
}

// formatBlock renders a brace-delimited block whose opening brace continues
// the current line.
func formatBlock(block *ast.BlockStmt, depth int) string {
	if len(block.Stmts) == 0 {
		return "{}"
	}
	lines := make([]string, len(block.Stmts))
	for i, s := range block.Stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

// Precedence levels, lowest first.
const (
	precAssign = iota + 1
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precPrimary
)

var binaryPrec = map[ast.BinaryOp]int{
	ast.OpEqEq: precEquality,
	ast.OpNeq:  precEquality,
	ast.OpGt:   precComparison,
	ast.OpGtEq: precComparison,
	ast.OpLt:   precComparison,
	ast.OpLtEq: precComparison,
	ast.OpAdd:  precTerm,
	ast.OpSub:  precTerm,
	ast.OpMul:  precFactor,
	ast.OpDiv:  precFactor,
}

func precedence(e ast.Expr) int {
	switch expr := e.(type) {
	case *ast.AssignExpr:
		return precAssign
	case *ast.LogicalExpr:
		if expr.Op == ast.OpOr {
			return precOr
		}
		return precAnd
	case *ast.BinaryExpr:
		return binaryPrec[expr.Op]
	case *ast.UnaryExpr:
		return precUnary
	}
	return precPrimary
}

func formatExpr(e ast.Expr) string {
	return formatOperand(e, precAssign)
}

// formatOperand renders e in a position that binds at least as tightly as
// minPrec, adding parentheses when e binds more loosely.
func formatOperand(e ast.Expr, minPrec int) string {
	out := formatBare(e)
	if precedence(e) < minPrec {
		return "(" + out + ")"
	}
	return out
}

func formatBare(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.LiteralExpr:
		return formatLiteral(expr.Value)
	case *ast.VariableExpr:
		return expr.Name
	case *ast.GroupingExpr:
		return "(" + formatExpr(expr.Inner) + ")"
	case *ast.UnaryExpr:
		return string(expr.Op) + formatOperand(expr.Operand, precUnary)
	case *ast.BinaryExpr:
		p := binaryPrec[expr.Op]
		return formatOperand(expr.Left, p) + " " + string(expr.Op) + " " + formatOperand(expr.Right, p+1)
	case *ast.LogicalExpr:
		p := precedence(expr)
		return formatOperand(expr.Left, p) + " " + string(expr.Op) + " " + formatOperand(expr.Right, p+1)
	case *ast.AssignExpr:
		if rhs, ok := compoundOperand(expr); ok {
			return expr.Name + " " + string(expr.Compound) + "= " + formatOperand(rhs, precAssign)
		}
		return expr.Name + " = " + formatOperand(expr.Value, precAssign)
	}
	return ""
}

// compoundOperand returns e for an assignment that still has the
// x = x op e shape of a compound assignment.
func compoundOperand(a *ast.AssignExpr) (ast.Expr, bool) {
	if a.Compound == "" {
		return nil, false
	}
	bin, ok := a.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != a.Compound {
		return nil, false
	}
	if v, ok := bin.Left.(*ast.VariableExpr); !ok || v.Name != a.Name {
		return nil, false
	}
	return bin.Right, true
}

func formatLiteral(v ast.Literal) string {
	switch val := v.(type) {
	case ast.String:
		// String literals are verbatim and cannot contain a quote.
		return `"` + string(val) + `"`
	case ast.Char:
		return "'" + val.String() + "'"
	}
	return v.String()
}
