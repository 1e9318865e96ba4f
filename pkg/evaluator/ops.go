package evaluator

import (
	"errors"

	"github.com/thomasrohde/stellar/pkg/ast"
)

// binaryKey selects an operator implementation by the runtime types of both
// operands.
type binaryKey struct {
	left  ast.Type
	right ast.Type
	op    ast.BinaryOp
}

type binaryFn func(l, r ast.Literal) (ast.Literal, error)

var errDivideByZero = errors.New("cannot divide by zero")

// binaryOps is the complete operator matrix. Any key missing here is an
// OperatorNotDefined error.
var binaryOps = map[binaryKey]binaryFn{}

func register(left, right ast.Type, op ast.BinaryOp, fn binaryFn) {
	binaryOps[binaryKey{left: left, right: right, op: op}] = fn
}

func init() {
	num := func(f func(a, b float64) ast.Literal) binaryFn {
		return func(l, r ast.Literal) (ast.Literal, error) {
			return f(float64(l.(ast.Number)), float64(r.(ast.Number))), nil
		}
	}
	register(ast.TypeNumber, ast.TypeNumber, ast.OpAdd, num(func(a, b float64) ast.Literal { return ast.Number(a + b) }))
	register(ast.TypeNumber, ast.TypeNumber, ast.OpSub, num(func(a, b float64) ast.Literal { return ast.Number(a - b) }))
	register(ast.TypeNumber, ast.TypeNumber, ast.OpMul, num(func(a, b float64) ast.Literal { return ast.Number(a * b) }))
	register(ast.TypeNumber, ast.TypeNumber, ast.OpDiv, func(l, r ast.Literal) (ast.Literal, error) {
		if r.(ast.Number) == 0 {
			return nil, errDivideByZero
		}
		return l.(ast.Number) / r.(ast.Number), nil
	})
	register(ast.TypeNumber, ast.TypeNumber, ast.OpEqEq, num(func(a, b float64) ast.Literal { return ast.Bool(a == b) }))
	register(ast.TypeNumber, ast.TypeNumber, ast.OpNeq, num(func(a, b float64) ast.Literal { return ast.Bool(a != b) }))
	register(ast.TypeNumber, ast.TypeNumber, ast.OpGt, num(func(a, b float64) ast.Literal { return ast.Bool(a > b) }))
	register(ast.TypeNumber, ast.TypeNumber, ast.OpGtEq, num(func(a, b float64) ast.Literal { return ast.Bool(a >= b) }))
	register(ast.TypeNumber, ast.TypeNumber, ast.OpLt, num(func(a, b float64) ast.Literal { return ast.Bool(a < b) }))
	register(ast.TypeNumber, ast.TypeNumber, ast.OpLtEq, num(func(a, b float64) ast.Literal { return ast.Bool(a <= b) }))

	// Strings, bools and chars compare structurally.
	for _, t := range []ast.Type{ast.TypeString, ast.TypeBool, ast.TypeChar} {
		register(t, t, ast.OpEqEq, func(l, r ast.Literal) (ast.Literal, error) { return ast.Bool(l == r), nil })
		register(t, t, ast.OpNeq, func(l, r ast.Literal) (ast.Literal, error) { return ast.Bool(l != r), nil })
	}

	// Concatenation coerces the right operand to its printed form.
	concat := func(l, r ast.Literal) (ast.Literal, error) {
		return l.(ast.String) + ast.String(r.String()), nil
	}
	register(ast.TypeString, ast.TypeString, ast.OpAdd, concat)
	register(ast.TypeString, ast.TypeNumber, ast.OpAdd, concat)
	register(ast.TypeString, ast.TypeChar, ast.OpAdd, concat)
}

// Supports reports whether op is defined for operands of types l and r.
func Supports(op ast.BinaryOp, l, r ast.Type) bool {
	_, ok := binaryOps[binaryKey{left: l, right: r, op: op}]
	return ok
}

// Binary applies op to two evaluated operands. Failures are *RuntimeError
// values without a span.
func Binary(op ast.BinaryOp, l, r ast.Literal) (ast.Literal, error) {
	fn, ok := binaryOps[binaryKey{left: l.Type(), right: r.Type(), op: op}]
	if !ok {
		return nil, &RuntimeError{
			Kind:    OperatorNotDefined,
			Message: "'" + string(op) + "' not supported for types '" + l.Type().String() + "' and '" + r.Type().String() + "'",
		}
	}
	v, err := fn(l, r)
	if errors.Is(err, errDivideByZero) {
		return nil, &RuntimeError{Kind: ZeroDivision, Message: err.Error()}
	}
	return v, err
}

// Negate applies unary minus, which is defined for numbers only.
func Negate(v ast.Literal) (ast.Literal, error) {
	if n, ok := v.(ast.Number); ok {
		return -n, nil
	}
	return nil, &RuntimeError{
		Kind:    OperatorNotDefined,
		Message: "unary negate not supported for type '" + v.Type().String() + "'",
	}
}

// Truthy coerces any value to a boolean: numbers are true when > 0, strings
// when non-empty, chars unless '0', and null is always false.
func Truthy(v ast.Literal) bool {
	switch val := v.(type) {
	case ast.Number:
		return val > 0
	case ast.String:
		return val != ""
	case ast.Bool:
		return bool(val)
	case ast.Char:
		return val != '0'
	default:
		return false
	}
}
