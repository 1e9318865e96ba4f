package evaluator_test

import (
	"errors"
	"testing"

	"github.com/thomasrohde/stellar/pkg/ast"
	"github.com/thomasrohde/stellar/pkg/evaluator"
)

var allOps = []ast.BinaryOp{
	ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv,
	ast.OpGt, ast.OpGtEq, ast.OpLt, ast.OpLtEq, ast.OpEqEq, ast.OpNeq,
}

var samples = []ast.Literal{
	ast.Number(2), ast.String("s"), ast.Bool(true), ast.Char('c'), ast.Null{},
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		value    ast.Literal
		expected bool
	}{
		{ast.Null{}, false},
		{ast.Bool(false), false},
		{ast.Bool(true), true},
		{ast.Number(0), false},
		{ast.Number(-1), false},
		{ast.Number(0.5), true},
		{ast.String(""), false},
		{ast.String("0"), true},
		{ast.Char('0'), false},
		{ast.Char('a'), true},
		{ast.Char(' '), true},
	}
	for _, tt := range tests {
		if got := evaluator.Truthy(tt.value); got != tt.expected {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

// defined lists the operator pairings that must succeed.
func defined(op ast.BinaryOp, l, r ast.Type) bool {
	switch {
	case l == ast.TypeNumber && r == ast.TypeNumber:
		return true
	case l == ast.TypeString && r == ast.TypeString:
		return op == ast.OpEqEq || op == ast.OpNeq || op == ast.OpAdd
	case l == ast.TypeString && (r == ast.TypeNumber || r == ast.TypeChar):
		return op == ast.OpAdd
	case (l == ast.TypeBool || l == ast.TypeChar) && l == r:
		return op == ast.OpEqEq || op == ast.OpNeq
	}
	return false
}

func TestOperatorMatrix(t *testing.T) {
	for _, l := range samples {
		for _, r := range samples {
			for _, op := range allOps {
				want := defined(op, l.Type(), r.Type())
				if got := evaluator.Supports(op, l.Type(), r.Type()); got != want {
					t.Errorf("Supports(%s, %s, %s) = %v, want %v", op, l.Type(), r.Type(), got, want)
				}
				_, err := evaluator.Binary(op, l, r)
				if want && err != nil {
					t.Errorf("%s %s %s: unexpected error %v", l.Type(), op, r.Type(), err)
				}
				if !want {
					var re *evaluator.RuntimeError
					if !errors.As(err, &re) || re.Kind != evaluator.OperatorNotDefined {
						t.Errorf("%s %s %s: expected OperatorNotDefined, got %v", l.Type(), op, r.Type(), err)
					}
				}
			}
		}
	}
}

func TestOperatorNotDefinedMessage(t *testing.T) {
	_, err := evaluator.Binary(ast.OpSub, ast.String("a"), ast.Bool(true))
	want := "Operator not defined: '-' not supported for types 'string' and 'bool'"
	if err == nil || err.Error() != want {
		t.Errorf("got %v, want %q", err, want)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		op   ast.BinaryOp
		l, r float64
		want ast.Literal
	}{
		{ast.OpAdd, 1, 2, ast.Number(3)},
		{ast.OpSub, 1, 2, ast.Number(-1)},
		{ast.OpMul, 3, 4, ast.Number(12)},
		{ast.OpDiv, 7, 2, ast.Number(3.5)},
		{ast.OpGt, 2, 1, ast.Bool(true)},
		{ast.OpGtEq, 2, 2, ast.Bool(true)},
		{ast.OpLt, 2, 1, ast.Bool(false)},
		{ast.OpLtEq, 1, 2, ast.Bool(true)},
		{ast.OpEqEq, 1, 1, ast.Bool(true)},
		{ast.OpNeq, 1, 1, ast.Bool(false)},
	}
	for _, tt := range tests {
		got, err := evaluator.Binary(tt.op, ast.Number(tt.l), ast.Number(tt.r))
		if err != nil {
			t.Fatalf("%v %s %v: %v", tt.l, tt.op, tt.r, err)
		}
		if got != tt.want {
			t.Errorf("%v %s %v = %v, want %v", tt.l, tt.op, tt.r, got, tt.want)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	for _, a := range []float64{0, 1, -1, 1e300} {
		for _, zero := range []float64{0, negZero()} {
			_, err := evaluator.Binary(ast.OpDiv, ast.Number(a), ast.Number(zero))
			var re *evaluator.RuntimeError
			if !errors.As(err, &re) || re.Kind != evaluator.ZeroDivision {
				t.Errorf("%v / %v: expected ZeroDivision, got %v", a, zero, err)
			}
		}
	}
}

func negZero() float64 {
	z := 0.0
	return -z
}

func TestConcatenation(t *testing.T) {
	tests := []struct {
		r    ast.Literal
		want ast.String
	}{
		{ast.String("b"), "ab"},
		{ast.Number(1), "a1"},
		{ast.Number(2.5), "a2.5"},
		{ast.Char('z'), "az"},
	}
	for _, tt := range tests {
		got, err := evaluator.Binary(ast.OpAdd, ast.String("a"), tt.r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("\"a\" + %v = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestStructuralEquality(t *testing.T) {
	tests := []struct {
		l, r ast.Literal
		eq   bool
	}{
		{ast.String("x"), ast.String("x"), true},
		{ast.String("x"), ast.String("y"), false},
		{ast.Bool(true), ast.Bool(true), true},
		{ast.Char('a'), ast.Char('b'), false},
	}
	for _, tt := range tests {
		got, _ := evaluator.Binary(ast.OpEqEq, tt.l, tt.r)
		if got != ast.Bool(tt.eq) {
			t.Errorf("%v == %v = %v, want %v", tt.l, tt.r, got, tt.eq)
		}
		got, _ = evaluator.Binary(ast.OpNeq, tt.l, tt.r)
		if got != ast.Bool(!tt.eq) {
			t.Errorf("%v != %v = %v, want %v", tt.l, tt.r, got, !tt.eq)
		}
	}
}

func TestNegate(t *testing.T) {
	got, err := evaluator.Negate(ast.Number(4))
	if err != nil || got != ast.Number(-4) {
		t.Errorf("Negate(4) = %v, %v", got, err)
	}
	for _, v := range samples[1:] {
		_, err := evaluator.Negate(v)
		var re *evaluator.RuntimeError
		if !errors.As(err, &re) || re.Kind != evaluator.OperatorNotDefined {
			t.Errorf("Negate(%v): expected OperatorNotDefined, got %v", v, err)
		}
	}
}

func TestErrorKindLabels(t *testing.T) {
	want := map[evaluator.ErrorKind]string{
		evaluator.OperatorNotDefined:  "Operator not defined",
		evaluator.ZeroDivision:        "Division by zero",
		evaluator.TypeMismatch:        "Type mismatch",
		evaluator.UninitializedAccess: "Uninitialized access",
		evaluator.UndefinedVariable:   "Undefined variable",
	}
	for kind, label := range want {
		if kind.String() != label {
			t.Errorf("%d: got %q, want %q", kind, kind.String(), label)
		}
	}
}

func TestLiteralToJSON(t *testing.T) {
	tests := []struct {
		v    ast.Literal
		want string
	}{
		{ast.Number(3), "3"},
		{ast.Number(0.5), "0.5"},
		{ast.String("hi"), `"hi"`},
		{ast.Bool(true), "true"},
		{ast.Char('c'), `"c"`},
		{ast.Null{}, "null"},
		{nil, "null"},
	}
	for _, tt := range tests {
		b, err := evaluator.LiteralToJSON(tt.v)
		if err != nil {
			t.Fatalf("LiteralToJSON(%v): %v", tt.v, err)
		}
		if string(b) != tt.want {
			t.Errorf("LiteralToJSON(%v) = %s, want %s", tt.v, b, tt.want)
		}
	}
}
