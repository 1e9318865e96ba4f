// Package ast defines the Stellar syntax tree produced by the parser.
//
// Nodes are immutable once built. Every node exclusively owns its children,
// so a program is always an acyclic tree.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents an eagerly evaluated binary operator.
type BinaryOp string

const (
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpMul  BinaryOp = "*"
	OpDiv  BinaryOp = "/"
	OpGt   BinaryOp = ">"
	OpLt   BinaryOp = "<"
	OpGtEq BinaryOp = ">="
	OpLtEq BinaryOp = "<="
	OpEqEq BinaryOp = "=="
	OpNeq  BinaryOp = "!="
)

// LogicalOp represents a short-circuit operator.
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
)

// UnaryOp represents a prefix operator.
type UnaryOp string

const (
	OpNeg  UnaryOp = "-"
	OpBang UnaryOp = "!"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Expressions ---

type BinaryExpr struct {
	Span  Span
	Left  Expr
	Op    BinaryOp
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

// LogicalExpr is kept apart from BinaryExpr because Right may never run.
type LogicalExpr struct {
	Span  Span
	Left  Expr
	Op    LogicalOp
	Right Expr
}

func (n *LogicalExpr) Kind() string   { return "LogicalExpr" }
func (n *LogicalExpr) NodeSpan() Span { return n.Span }
func (n *LogicalExpr) exprNode()      {}

type GroupingExpr struct {
	Span  Span
	Inner Expr
}

func (n *GroupingExpr) Kind() string   { return "GroupingExpr" }
func (n *GroupingExpr) NodeSpan() Span { return n.Span }
func (n *GroupingExpr) exprNode()      {}

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

type LiteralExpr struct {
	Span  Span
	Value Literal
}

func (n *LiteralExpr) Kind() string   { return "LiteralExpr" }
func (n *LiteralExpr) NodeSpan() Span { return n.Span }
func (n *LiteralExpr) exprNode()      {}

type VariableExpr struct {
	Span Span
	Name string
}

func (n *VariableExpr) Kind() string   { return "VariableExpr" }
func (n *VariableExpr) NodeSpan() Span { return n.Span }
func (n *VariableExpr) exprNode()      {}

// AssignExpr is name = Value. For a compound assignment (x += e) Compound
// holds the operator and Value is already the expanded x + e.
type AssignExpr struct {
	Span     Span
	Name     string
	Value    Expr
	Compound BinaryOp
}

func (n *AssignExpr) Kind() string   { return "AssignExpr" }
func (n *AssignExpr) NodeSpan() Span { return n.Span }
func (n *AssignExpr) exprNode()      {}

// --- Statements ---

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

type PrintStmt struct {
	Span Span
	Expr Expr
}

func (n *PrintStmt) Kind() string   { return "PrintStmt" }
func (n *PrintStmt) NodeSpan() Span { return n.Span }
func (n *PrintStmt) stmtNode()      {}

// LetStmt declares Name in the current frame. A nil Init leaves it uninitialized.
type LetStmt struct {
	Span Span
	Name string
	Init Expr
}

func (n *LetStmt) Kind() string   { return "LetStmt" }
func (n *LetStmt) NodeSpan() Span { return n.Span }
func (n *LetStmt) stmtNode()      {}

type BlockStmt struct {
	Span  Span
	Stmts []Stmt
}

func (n *BlockStmt) Kind() string   { return "BlockStmt" }
func (n *BlockStmt) NodeSpan() Span { return n.Span }
func (n *BlockStmt) stmtNode()      {}

// IfStmt runs Then or Else. Else is nil when there is no else branch.
type IfStmt struct {
	Span Span
	Cond Expr
	Then *BlockStmt
	Else *BlockStmt
}

func (n *IfStmt) Kind() string   { return "IfStmt" }
func (n *IfStmt) NodeSpan() Span { return n.Span }
func (n *IfStmt) stmtNode()      {}

// Program is a parsed chunk of source.
type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
