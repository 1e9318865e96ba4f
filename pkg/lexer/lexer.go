// Package lexer implements the Stellar tokenizer.
package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/thomasrohde/stellar/pkg/ast"
	"github.com/thomasrohde/stellar/pkg/diagnostics"
)

// Lexical error messages.
const (
	MsgUnterminatedString  = "Unterminated string literal"
	MsgUnterminatedChar    = "Unterminated character literal"
	MsgUnterminatedComment = "Unterminated block comment"
)

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
	diags    []diagnostics.Diagnostic
	// unfinished is set when input ends inside a string or block comment.
	unfinished bool
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

// advanceRune consumes one UTF-8 encoded rune.
func (s *scanner) advanceRune() rune {
	r, size := utf8.DecodeRuneInString(s.source[s.pos:])
	for i := 0; i < size; i++ {
		s.advance()
	}
	return r
}

// match consumes the next byte if it equals want.
func (s *scanner) match(want byte) bool {
	if s.atEnd() || s.peek() != want {
		return false
	}
	s.advance()
	return true
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) token(t TokenType, lexeme string, startLine, startCol int) Token {
	return Token{Type: t, Lexeme: lexeme, Span: s.span(startLine, startCol)}
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.peekAt(1) == '/':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		case ch == '/' && s.peekAt(1) == '*':
			s.skipBlockComment()
		default:
			return
		}
	}
}

func (s *scanner) skipBlockComment() {
	startLine, startCol := s.line, s.col
	s.advance() // consume /
	s.advance() // consume *
	for !s.atEnd() {
		if s.peek() == '*' && s.peekAt(1) == '/' {
			s.advance()
			s.advance()
			return
		}
		s.advance()
	}
	s.unfinished = true
	s.lexError(startLine, startCol, MsgUnterminatedComment)
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

// scanString collects everything between the quotes verbatim. Strings may
// span lines.
func (s *scanner) scanString() (Token, bool) {
	startLine, startCol := s.line, s.col
	s.advance() // consume opening "

	startPos := s.pos
	for !s.atEnd() && s.peek() != '"' {
		s.advance()
	}
	if s.atEnd() {
		s.unfinished = true
		s.lexError(startLine, startCol, MsgUnterminatedString)
		return Token{}, false
	}
	value := s.source[startPos:s.pos]
	s.advance() // consume closing "
	return s.token(TokString, value, startLine, startCol), true
}

// scanChar reads a single character between apostrophes.
func (s *scanner) scanChar() (Token, bool) {
	startLine, startCol := s.line, s.col
	s.advance() // consume opening '

	if s.atEnd() {
		s.lexError(startLine, startCol, MsgUnterminatedChar)
		return Token{}, false
	}
	r := s.advanceRune()
	if !s.match('\'') {
		s.lexError(startLine, startCol, MsgUnterminatedChar)
		if !s.atEnd() {
			s.advanceRune()
		}
		return Token{}, false
	}
	return s.token(TokChar, string(r), startLine, startCol), true
}

func (s *scanner) scanNumber() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	// A dot belongs to the number only when a digit follows it.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance() // consume '.'
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	return s.token(TokNumber, s.source[startPos:s.pos], startLine, startCol)
}

func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	if tokType, ok := keywords[text]; ok {
		return s.token(tokType, text, startLine, startCol)
	}
	return s.token(TokIdent, text, startLine, startCol)
}

func (s *scanner) lexError(line, col int, msg string) {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	diag.Stage = diagnostics.StageLex
	s.diags = append(s.diags, diag)
}

// either returns the two-character token when the next byte is '=' and the
// one-character token otherwise. The leading byte is already consumed.
func (s *scanner) either(single TokenType, double TokenType, lead string, startLine, startCol int) Token {
	if s.match('=') {
		return s.token(double, lead+"=", startLine, startCol)
	}
	return s.token(single, lead, startLine, startCol)
}

// nextToken returns the next token. ok is false when the characters consumed
// produced an error instead of a token.
func (s *scanner) nextToken() (Token, bool) {
	s.skipWhitespaceAndComments()

	if s.atEnd() {
		return s.token(TokEOF, "", s.line, s.col), true
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	// Single-char tokens
	switch ch {
	case '{':
		s.advance()
		return s.token(TokLBrace, "{", startLine, startCol), true
	case '}':
		s.advance()
		return s.token(TokRBrace, "}", startLine, startCol), true
	case '(':
		s.advance()
		return s.token(TokLParen, "(", startLine, startCol), true
	case ')':
		s.advance()
		return s.token(TokRParen, ")", startLine, startCol), true
	case ',':
		s.advance()
		return s.token(TokComma, ",", startLine, startCol), true
	case '.':
		s.advance()
		return s.token(TokDot, ".", startLine, startCol), true
	case ':':
		s.advance()
		return s.token(TokColon, ":", startLine, startCol), true
	case ';':
		s.advance()
		return s.token(TokSemicolon, ";", startLine, startCol), true
	}

	// Maximal munch: '=' may extend the operator.
	switch ch {
	case '!':
		s.advance()
		return s.either(TokBang, TokBangEq, "!", startLine, startCol), true
	case '=':
		s.advance()
		return s.either(TokEquals, TokEqEq, "=", startLine, startCol), true
	case '>':
		s.advance()
		return s.either(TokGt, TokGtEq, ">", startLine, startCol), true
	case '<':
		s.advance()
		return s.either(TokLt, TokLtEq, "<", startLine, startCol), true
	case '+':
		s.advance()
		return s.either(TokPlus, TokPlusEq, "+", startLine, startCol), true
	case '-':
		s.advance()
		return s.either(TokMinus, TokMinusEq, "-", startLine, startCol), true
	case '*':
		s.advance()
		return s.either(TokStar, TokStarEq, "*", startLine, startCol), true
	case '/':
		s.advance()
		return s.either(TokSlash, TokSlashEq, "/", startLine, startCol), true
	}

	if isDigit(ch) {
		return s.scanNumber(), true
	}
	if ch == '"' {
		return s.scanString()
	}
	if ch == '\'' {
		return s.scanChar()
	}
	if isAlpha(ch) {
		return s.scanIdentOrKeyword(), true
	}

	r := s.advanceRune()
	s.lexError(startLine, startCol, fmt.Sprintf("Unexpected symbol '%c'", r))
	return Token{}, false
}

// Tokenize breaks source code into tokens terminated by a single TokEOF.
// Lexical errors do not stop scanning; every error found is returned and the
// offending characters are left out of the token stream.
func Tokenize(source, filename string) ([]Token, []diagnostics.Diagnostic) {
	tokens, diags, _ := scan(source, filename)
	return tokens, diags
}

// IsIncomplete reports whether source ends inside a string literal or block
// comment, so that more input could still make it valid.
func IsIncomplete(source string) bool {
	_, _, unfinished := scan(source, "")
	return unfinished
}

func scan(source, filename string) ([]Token, []diagnostics.Diagnostic, bool) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, ok := s.nextToken()
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, s.diags, s.unfinished
}
