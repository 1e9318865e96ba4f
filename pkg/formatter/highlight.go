package formatter

import (
	"io"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/styles"
	"github.com/muesli/termenv"
)

// DefaultStyle is the chroma style used for terminal highlighting.
const DefaultStyle = "monokai"

// Lexer tokenizes Stellar source for syntax highlighting.
var Lexer = chroma.MustNewLexer(
	&chroma.Config{
		Name:      "Stellar",
		Aliases:   []string{"stellar"},
		Filenames: []string{"*.st"},
	},
	chroma.Rules{
		"root": {
			{Pattern: `\s+`, Type: chroma.Text},
			{Pattern: `//[^\n]*`, Type: chroma.CommentSingle},
			{Pattern: `/\*[\s\S]*?\*/`, Type: chroma.CommentMultiline},
			{Pattern: `"[^"]*"`, Type: chroma.LiteralString},
			{Pattern: `'.'`, Type: chroma.LiteralStringChar},
			{Pattern: `\d+(\.\d+)?`, Type: chroma.LiteralNumber},
			{Pattern: `(true|false|null)\b`, Type: chroma.KeywordConstant},
			{Pattern: `(if|else|and|or|let|print|struct|self|while|for|return|fun)\b`, Type: chroma.Keyword},
			{Pattern: `[A-Za-z_]\w*`, Type: chroma.Name},
			{Pattern: `[-+*/=!<>]=?`, Type: chroma.Operator},
			{Pattern: `[{}();,.:]`, Type: chroma.Punctuation},
			{Pattern: `.`, Type: chroma.Error},
		},
	},
)

// FormatterFor maps a terminal color profile to a chroma formatter name.
func FormatterFor(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal"
	default:
		return "noop"
	}
}

// Highlight writes source to w with syntax highlighting. Unknown formatter
// or style names fall back to chroma's defaults.
func Highlight(w io.Writer, source, formatterName, styleName string) error {
	it, err := Lexer.Tokenise(nil, source)
	if err != nil {
		return err
	}
	style := styles.Get(styleName)
	f := formatters.Get(formatterName)
	if f == nil {
		f = formatters.Fallback
	}
	return f.Format(w, style, it)
}
