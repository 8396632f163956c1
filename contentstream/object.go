package contentstream

import (
	"strconv"
	"strings"
)

// Object represents a content-stream operand.
type Object interface {
	// String returns a debug representation of the operand.
	String() string
}

// Null represents a null operand.
type Null struct{}

func (n Null) String() string { return "null" }

// Bool represents a boolean operand.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int represents an integer operand.
type Int int64

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Real represents a real-number operand.
type Real float64

func (r Real) String() string { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String represents a string operand. It holds raw bytes: string operands
// carry character codes, and decoding them to text is the font resolver's
// job, not the tokenizer's.
type String []byte

func (s String) String() string { return "(" + string(s) + ")" }

// Name represents a name operand, without the leading slash.
type Name string

func (n Name) String() string { return "/" + string(n) }

// Array represents an array operand.
type Array []Object

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = obj.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Dict represents a dictionary operand, keyed by name (without the slash).
type Dict map[string]Object

func (d Dict) String() string {
	var sb strings.Builder
	sb.WriteString("<<")
	for k, v := range d {
		sb.WriteString(" /" + k + " " + v.String())
	}
	sb.WriteString(" >>")
	return sb.String()
}

// ToFloat converts a numeric operand to float64. The second return value is
// false when the operand is not a number.
func ToFloat(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	default:
		return 0, false
	}
}

// ToInt converts a numeric operand to int. The second return value is false
// when the operand is not a number.
func ToInt(obj Object) (int, bool) {
	switch v := obj.(type) {
	case Int:
		return int(v), true
	case Real:
		return int(v), true
	default:
		return 0, false
	}
}
