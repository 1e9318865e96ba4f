package ast

import (
	"math"
	"strconv"
)

// Type tags the variant held by a Literal.
type Type int

const (
	TypeNumber Type = iota
	TypeString
	TypeBool
	TypeChar
	TypeNull
)

// String returns the type name used in runtime error messages.
func (t Type) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeChar:
		return "char"
	case TypeNull:
		return "null"
	default:
		return "unknown"
	}
}

// Literal is a Stellar value. It is shared by the syntax tree and the
// evaluator; all variants are plain values and safe to copy.
type Literal interface {
	Type() Type
	// String returns the plain textual form written by print.
	String() string
	literal() // sealed marker
}

type (
	Number float64
	String string
	Bool   bool
	Char   rune
	Null   struct{}
)

func (Number) Type() Type { return TypeNumber }
func (String) Type() Type { return TypeString }
func (Bool) Type() Type   { return TypeBool }
func (Char) Type() Type   { return TypeChar }
func (Null) Type() Type   { return TypeNull }

func (n Number) String() string { return FormatNumber(float64(n)) }
func (s String) String() string { return string(s) }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (c Char) String() string   { return string(rune(c)) }
func (Null) String() string     { return "null" }

func (Number) literal() {}
func (String) literal() {}
func (Bool) literal()   {}
func (Char) literal()   {}
func (Null) literal()   {}

// FormatNumber renders f as the shortest decimal that round-trips,
// without exponent notation.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
