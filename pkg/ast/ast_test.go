package ast_test

import (
	"math"
	"testing"

	"github.com/thomasrohde/stellar/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.BinaryExpr{Op: ast.OpAdd},
		&ast.LogicalExpr{Op: ast.OpOr},
		&ast.GroupingExpr{},
		&ast.UnaryExpr{Op: ast.OpNeg},
		&ast.LiteralExpr{Value: ast.Number(1)},
		&ast.VariableExpr{Name: "x"},
		&ast.AssignExpr{Name: "x"},
		&ast.ExprStmt{},
		&ast.PrintStmt{},
		&ast.LetStmt{Name: "x"},
		&ast.BlockStmt{},
		&ast.IfStmt{},
	}

	expected := []string{
		"BinaryExpr", "LogicalExpr", "GroupingExpr", "UnaryExpr", "LiteralExpr",
		"VariableExpr", "AssignExpr", "ExprStmt", "PrintStmt", "LetStmt",
		"BlockStmt", "IfStmt",
	}

	for i, node := range nodes {
		if got := node.Kind(); got != expected[i] {
			t.Errorf("node %d: got Kind() = %q, want %q", i, got, expected[i])
		}
	}
}

func TestLiteralString(t *testing.T) {
	tests := []struct {
		lit  ast.Literal
		want string
	}{
		{ast.Number(7), "7"},
		{ast.Number(0.5), "0.5"},
		{ast.Number(-3.25), "-3.25"},
		{ast.Number(1e21), "1000000000000000000000"},
		{ast.Number(math.Nextafter(0.3, 1)), "0.30000000000000004"},
		{ast.Number(math.Inf(1)), "inf"},
		{ast.Number(math.Inf(-1)), "-inf"},
		{ast.String("hi there"), "hi there"},
		{ast.Bool(true), "true"},
		{ast.Bool(false), "false"},
		{ast.Char('x'), "x"},
		{ast.Char('é'), "é"},
		{ast.Null{}, "null"},
	}
	for _, tt := range tests {
		if got := tt.lit.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.lit, got, tt.want)
		}
	}
}

func TestLiteralTypeNames(t *testing.T) {
	tests := []struct {
		lit  ast.Literal
		want string
	}{
		{ast.Number(1), "number"},
		{ast.String(""), "string"},
		{ast.Bool(false), "bool"},
		{ast.Char('0'), "char"},
		{ast.Null{}, "null"},
	}
	for _, tt := range tests {
		if got := tt.lit.Type().String(); got != tt.want {
			t.Errorf("type name = %q, want %q", got, tt.want)
		}
	}
}
