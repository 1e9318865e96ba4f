package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// The lexer must always terminate with exactly one EOF token.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		// Keywords
		`if else and or let struct self`,
		`while for return fun true false null print`,
		// Literals
		`42 3.14 0 007 1.`,
		`"hello" "multi
line" ""`,
		`'a' '0' 'é'`,
		// Operators
		`+ - * / ! = == != > >= < <= += -= *= /=`,
		// Delimiters
		`{ } ( ) , . : ;`,
		// Comments
		`// line comment`,
		`/* block */ /* multi
line */`,
		// Edge cases
		``,
		`   `,
		"\t\n\r",
		`"unterminated`,
		`/* unterminated`,
		`'`,
		`''`,
		`'ab'`,
		`@#$^&`,
		"\xff\xfe",
		`let aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa = 1;`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		var tokens []Token
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Tokenize panicked on input %q: %v", input, r)
				}
			}()
			tokens, _ = Tokenize(input, "fuzz.st")
		}()
		if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF {
			t.Fatalf("token stream for %q does not end in EOF", input)
		}
		for _, tok := range tokens[:len(tokens)-1] {
			if tok.Type == TokEOF {
				t.Fatalf("EOF in the middle of the stream for %q", input)
			}
		}
	})
}
