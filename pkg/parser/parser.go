// Package parser implements the Stellar parser.
//
// The grammar, lowest precedence first:
//
//	program     -> declaration* EOF
//	declaration -> "let" IDENT ( "=" expression )? ";" | statement
//	statement   -> "if" "(" expression ")" block ( "else" block )?
//	             | "print" expression ";" | block | expression ";"
//	block       -> "{" declaration* "}"
//	expression  -> assignment
//	assignment  -> IDENT ( "=" | "+=" | "-=" | "*=" | "/=" ) assignment | or
//	or          -> and ( "or" and )*
//	and         -> equality ( "and" equality )*
//	equality    -> comparison ( ( "==" | "!=" ) comparison )*
//	comparison  -> term ( ( ">" | ">=" | "<" | "<=" ) term )*
//	term        -> factor ( ( "+" | "-" ) factor )*
//	factor      -> unary ( ( "*" | "/" ) unary )*
//	unary       -> ( "!" | "-" ) unary | atom
//	atom        -> NUMBER | STRING | CHAR | "true" | "false" | "null"
//	             | IDENT | "(" expression ")"
//
// Parse functions return nil after reporting an error. The nearest enclosing
// declaration then synchronizes to the next statement boundary, so one chunk
// can report several independent syntax errors.
package parser

import (
	"strconv"

	"github.com/thomasrohde/stellar/pkg/ast"
	"github.com/thomasrohde/stellar/pkg/diagnostics"
	"github.com/thomasrohde/stellar/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
	// atEOF is set when an error was reported at the end of input.
	atEOF bool
}

// Parse tokenizes source and parses it into an AST. Parsing is skipped when
// lexing reports errors. The program is nil whenever diagnostics are returned.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, diags := lexer.Tokenize(source, filename)
	if len(diags) > 0 {
		return nil, diags
	}
	return ParseTokens(tokens)
}

// ParseTokens parses a token stream terminated by TokEOF.
func ParseTokens(tokens []lexer.Token) (*ast.Program, []diagnostics.Diagnostic) {
	p := newParser(tokens)
	prog := p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

// NeedsMore reports whether source stops inside an open string, comment,
// brace or parenthesis, so that further input could complete it. A missing
// trailing ';' alone does not count.
func NeedsMore(source string) bool {
	if lexer.IsIncomplete(source) {
		return true
	}
	tokens, diags := lexer.Tokenize(source, "")
	if len(diags) > 0 {
		return false
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.TokLBrace, lexer.TokLParen:
			depth++
		case lexer.TokRBrace, lexer.TokRParen:
			depth--
		}
	}
	if depth <= 0 {
		return false
	}
	p := newParser(tokens)
	p.parseProgram()
	return p.atEOF
}

func newParser(tokens []lexer.Token) *parser {
	if len(tokens) == 0 {
		tokens = []lexer.Token{{Type: lexer.TokEOF}}
	}
	return &parser{tokens: tokens, pos: 0}
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) atEnd() bool {
	return p.peek() == lexer.TokEOF
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType, msg string) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(tok, msg)
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) addError(at lexer.Token, msg string) {
	span := at.Span
	d := diagnostics.MakeDiag(diagnostics.EParse, msg, &span, "")
	d.Near = at.Lexeme
	d.Stage = diagnostics.StageParse
	p.diags = append(p.diags, d)
	if at.Type == lexer.TokEOF {
		p.atEOF = true
	}
}

// synchronize discards tokens until just after a ';' or just before a token
// that starts a statement.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == lexer.TokSemicolon {
			return
		}
		switch p.peek() {
		case lexer.TokStruct, lexer.TokFun, lexer.TokLet, lexer.TokFor,
			lexer.TokIf, lexer.TokWhile, lexer.TokReturn:
			return
		}
		p.advance()
	}
}

func (p *parser) spanFrom(start ast.Span) ast.Span {
	end := p.previous().Span
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func (p *parser) parseProgram() *ast.Program {
	startSpan := p.current().Span

	var stmts []ast.Stmt
	for !p.atEnd() {
		if stmt := p.parseDeclaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	return &ast.Program{
		Span:       p.spanFromTo(startSpan, p.current().Span),
		Statements: stmts,
	}
}

// --- Statements ---

func (p *parser) parseDeclaration() ast.Stmt {
	var stmt ast.Stmt
	if p.peek() == lexer.TokLet {
		stmt = p.parseLetStmt()
	} else {
		stmt = p.parseStmt()
	}
	if stmt == nil {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *parser) parseStmt() ast.Stmt {
	// Each case checks for nil so that a typed nil pointer never becomes a
	// non-nil ast.Stmt.
	switch p.peek() {
	case lexer.TokIf:
		if s := p.parseIfStmt(); s != nil {
			return s
		}
	case lexer.TokPrint:
		if s := p.parsePrintStmt(); s != nil {
			return s
		}
	case lexer.TokLBrace:
		if s := p.parseBlock("Expected '}' after block"); s != nil {
			return s
		}
	default:
		if s := p.parseExprStmt(); s != nil {
			return s
		}
	}
	return nil
}

func (p *parser) parseLetStmt() ast.Stmt {
	start := p.advance() // consume 'let'
	name, ok := p.expect(lexer.TokIdent, "Expected identifier")
	if !ok {
		return nil
	}

	var init ast.Expr
	if p.peek() == lexer.TokEquals {
		p.advance()
		init = p.parseExpr()
		if init == nil {
			return nil
		}
	}

	if _, ok := p.expect(lexer.TokSemicolon, "Expected ';' after declaration"); !ok {
		return nil
	}
	return &ast.LetStmt{
		Span: p.spanFrom(start.Span),
		Name: name.Lexeme,
		Init: init,
	}
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	start := p.advance() // consume 'if'
	if _, ok := p.expect(lexer.TokLParen, "Expected '(' before expression"); !ok {
		return nil
	}
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokRParen, "Expected ')' after expression"); !ok {
		return nil
	}
	if p.peek() != lexer.TokLBrace {
		p.addError(p.current(), "Expected '{' after condition")
		return nil
	}
	then := p.parseBlock("Expected '}' after statement")
	if then == nil {
		return nil
	}

	var els *ast.BlockStmt
	if p.peek() == lexer.TokElse {
		p.advance()
		if p.peek() != lexer.TokLBrace {
			p.addError(p.current(), "Expected '{' after else branch")
			return nil
		}
		els = p.parseBlock("Expected '}' after statement")
		if els == nil {
			return nil
		}
	}

	return &ast.IfStmt{
		Span: p.spanFrom(start.Span),
		Cond: cond,
		Then: then,
		Else: els,
	}
}

func (p *parser) parsePrintStmt() *ast.PrintStmt {
	start := p.advance() // consume 'print'
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokSemicolon, "Expected ';' after expression"); !ok {
		return nil
	}
	return &ast.PrintStmt{Span: p.spanFrom(start.Span), Expr: expr}
}

// parseBlock parses "{" declaration* "}". Declarations that fail are dropped
// after synchronizing; only a missing closing brace fails the block.
func (p *parser) parseBlock(closeMsg string) *ast.BlockStmt {
	start := p.advance() // consume '{'

	stmts := []ast.Stmt{}
	for p.peek() != lexer.TokRBrace && !p.atEnd() {
		if stmt := p.parseDeclaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	if _, ok := p.expect(lexer.TokRBrace, closeMsg); !ok {
		return nil
	}
	return &ast.BlockStmt{Span: p.spanFrom(start.Span), Stmts: stmts}
}

func (p *parser) parseExprStmt() *ast.ExprStmt {
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokSemicolon, "Expected ';' after expression"); !ok {
		return nil
	}
	return &ast.ExprStmt{Span: p.spanFrom(expr.NodeSpan()), Expr: expr}
}

// --- Expressions ---

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

var compoundOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokPlusEq:  ast.OpAdd,
	lexer.TokMinusEq: ast.OpSub,
	lexer.TokStarEq:  ast.OpMul,
	lexer.TokSlashEq: ast.OpDiv,
}

func (p *parser) parseAssignment() ast.Expr {
	left := p.parseOr()
	if left == nil {
		return nil
	}

	tt := p.peek()
	compound, isCompound := compoundOps[tt]
	if tt != lexer.TokEquals && !isCompound {
		return left
	}

	opTok := p.advance()
	value := p.parseAssignment()
	if value == nil {
		return nil
	}

	target, ok := left.(*ast.VariableExpr)
	if !ok {
		p.addError(opTok, "lvalue required")
		return nil
	}

	if isCompound {
		// x op= e is x = x op e.
		value = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), value.NodeSpan()),
			Left:  &ast.VariableExpr{Span: target.Span, Name: target.Name},
			Op:    compound,
			Right: value,
		}
	}
	return &ast.AssignExpr{
		Span:     p.spanFromTo(left.NodeSpan(), value.NodeSpan()),
		Name:     target.Name,
		Value:    value,
		Compound: compound,
	}
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if left == nil {
		return nil
	}

	for p.peek() == lexer.TokOr {
		p.advance()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = &ast.LogicalExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    ast.OpOr,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	if left == nil {
		return nil
	}

	for p.peek() == lexer.TokAnd {
		p.advance()
		right := p.parseEquality()
		if right == nil {
			return nil
		}
		left = &ast.LogicalExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    ast.OpAnd,
			Left:  left,
			Right: right,
		}
	}
	return left
}

// binaryTier parses a left-associative chain of operators drawn from ops,
// with operands produced by next.
func (p *parser) binaryTier(ops map[lexer.TokenType]ast.BinaryOp, next func() ast.Expr) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}

	for {
		op, ok := ops[p.peek()]
		if !ok {
			return left
		}
		p.advance()
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

var (
	equalityOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokEqEq:   ast.OpEqEq,
		lexer.TokBangEq: ast.OpNeq,
	}
	comparisonOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokGt:   ast.OpGt,
		lexer.TokGtEq: ast.OpGtEq,
		lexer.TokLt:   ast.OpLt,
		lexer.TokLtEq: ast.OpLtEq,
	}
	termOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokPlus:  ast.OpAdd,
		lexer.TokMinus: ast.OpSub,
	}
	factorOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokStar:  ast.OpMul,
		lexer.TokSlash: ast.OpDiv,
	}
)

func (p *parser) parseEquality() ast.Expr {
	return p.binaryTier(equalityOps, p.parseComparison)
}

func (p *parser) parseComparison() ast.Expr {
	return p.binaryTier(comparisonOps, p.parseTerm)
}

func (p *parser) parseTerm() ast.Expr {
	return p.binaryTier(termOps, p.parseFactor)
}

func (p *parser) parseFactor() ast.Expr {
	return p.binaryTier(factorOps, p.parseUnary)
}

func (p *parser) parseUnary() ast.Expr {
	var op ast.UnaryOp
	switch p.peek() {
	case lexer.TokMinus:
		op = ast.OpNeg
	case lexer.TokBang:
		op = ast.OpBang
	default:
		return p.parseAtom()
	}

	start := p.advance()
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	return &ast.UnaryExpr{
		Span:    p.spanFromTo(start.Span, operand.NodeSpan()),
		Op:      op,
		Operand: operand,
	}
}

func (p *parser) parseAtom() ast.Expr {
	switch p.peek() {
	case lexer.TokLParen:
		start := p.advance()
		inner := p.parseExpr()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRParen, "Expected ')' after expression"); !ok {
			return nil
		}
		return &ast.GroupingExpr{Span: p.spanFrom(start.Span), Inner: inner}

	case lexer.TokNumber:
		tok := p.advance()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.addError(tok, "Invalid number literal")
			return nil
		}
		return &ast.LiteralExpr{Span: tok.Span, Value: ast.Number(val)}

	case lexer.TokString:
		tok := p.advance()
		return &ast.LiteralExpr{Span: tok.Span, Value: ast.String(tok.Lexeme)}

	case lexer.TokChar:
		tok := p.advance()
		r := []rune(tok.Lexeme)
		if len(r) != 1 {
			p.addError(tok, "Invalid character literal")
			return nil
		}
		return &ast.LiteralExpr{Span: tok.Span, Value: ast.Char(r[0])}

	case lexer.TokTrue:
		tok := p.advance()
		return &ast.LiteralExpr{Span: tok.Span, Value: ast.Bool(true)}

	case lexer.TokFalse:
		tok := p.advance()
		return &ast.LiteralExpr{Span: tok.Span, Value: ast.Bool(false)}

	case lexer.TokNull:
		tok := p.advance()
		return &ast.LiteralExpr{Span: tok.Span, Value: ast.Null{}}

	case lexer.TokIdent:
		tok := p.advance()
		return &ast.VariableExpr{Span: tok.Span, Name: tok.Lexeme}

	default:
		p.addError(p.current(), "Expected expression")
		return nil
	}
}
