package evaluator

import (
	"encoding/json"
	"math"

	"github.com/thomasrohde/stellar/pkg/ast"
)

// LiteralToJSON marshals a Literal to JSON bytes. Chars become one-character
// strings and an uninitialized (nil) value becomes null.
func LiteralToJSON(v ast.Literal) ([]byte, error) {
	return json.Marshal(literalToRaw(v))
}

func literalToRaw(v ast.Literal) any {
	switch val := v.(type) {
	case ast.Number:
		f := float64(val)
		// JSON has no infinities; use the printed form.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return val.String()
		}
		return f
	case ast.String:
		return string(val)
	case ast.Bool:
		return bool(val)
	case ast.Char:
		return val.String()
	}
	return nil
}
