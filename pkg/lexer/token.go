package lexer

import (
	"fmt"

	"github.com/thomasrohde/stellar/pkg/ast"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Punctuation
	TokLBrace TokenType = iota // {
	TokRBrace                  // }
	TokLParen                  // (
	TokRParen                  // )
	TokComma                   // ,
	TokDot                     // .
	TokColon                   // :
	TokSemicolon               // ;

	// Comparison and assignment
	TokBang   // !
	TokEquals // =
	TokEqEq   // ==
	TokBangEq // !=
	TokGt     // >
	TokGtEq   // >=
	TokLt     // <
	TokLtEq   // <=

	// Arithmetic and compound assignment
	TokPlus     // +
	TokPlusEq   // +=
	TokMinus    // -
	TokMinusEq  // -=
	TokStar     // *
	TokStarEq   // *=
	TokSlash    // /
	TokSlashEq  // /=

	// Keywords
	TokIf
	TokElse
	TokAnd
	TokOr
	TokLet
	TokStruct
	TokSelf
	TokWhile
	TokFor
	TokReturn
	TokFun
	TokTrue
	TokFalse
	TokNull
	TokPrint

	// Literals
	TokIdent
	TokNumber
	TokString
	TokChar

	// Special
	TokEOF
)

var tokenNames = map[TokenType]string{
	TokLBrace: "LCurly", TokRBrace: "RCurly", TokLParen: "LParen", TokRParen: "RParen",
	TokComma: "Comma", TokDot: "Dot", TokColon: "Colon", TokSemicolon: "Semicolon",
	TokBang: "Bang", TokEquals: "Eq", TokEqEq: "EqEq", TokBangEq: "Ne",
	TokGt: "Gt", TokGtEq: "Gte", TokLt: "Lt", TokLtEq: "Lte",
	TokPlus: "Plus", TokPlusEq: "PlusEq", TokMinus: "Minus", TokMinusEq: "MinusEq",
	TokStar: "Star", TokStarEq: "StarEq", TokSlash: "Slash", TokSlashEq: "SlashEq",
	TokIf: "If", TokElse: "Else", TokAnd: "And", TokOr: "Or", TokLet: "Let",
	TokStruct: "Struct", TokSelf: "Self", TokWhile: "While", TokFor: "For",
	TokReturn: "Return", TokFun: "Fun", TokTrue: "True", TokFalse: "False",
	TokNull: "Null", TokPrint: "Print",
	TokIdent: "Ident", TokNumber: "Number", TokString: "String", TokChar: "Char",
	TokEOF: "Eof",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"if":     TokIf,
	"else":   TokElse,
	"and":    TokAnd,
	"or":     TokOr,
	"let":    TokLet,
	"struct": TokStruct,
	"self":   TokSelf,
	"while":  TokWhile,
	"for":    TokFor,
	"return": TokReturn,
	"fun":    TokFun,
	"true":   TokTrue,
	"false":  TokFalse,
	"null":   TokNull,
	"print":  TokPrint,
}

// Token represents a single lexer token. Lexeme holds the source text, except
// for string and char literals where it holds the contents between the quotes.
type Token struct {
	Type   TokenType
	Lexeme string
	Span   ast.Span
}

// Line returns the line the token starts on.
func (t Token) Line() int { return t.Span.StartLine }

func (t Token) String() string {
	return fmt.Sprintf("%s %q (line %d)", t.Type, t.Lexeme, t.Span.StartLine)
}
