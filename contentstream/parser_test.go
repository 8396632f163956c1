package contentstream

import (
	"testing"
)

// TestParseSimpleOperations tests basic operator/operand parsing.
func TestParseSimpleOperations(t *testing.T) {
	data := []byte("BT /F1 12 Tf (Hello) Tj ET")

	ops := NewParser(data).Parse()

	if len(ops) != 4 {
		t.Fatalf("expected 4 operations, got %d", len(ops))
	}

	if ops[0].Operator != "BT" {
		t.Errorf("ops[0] = %q, want BT", ops[0].Operator)
	}

	if ops[1].Operator != "Tf" {
		t.Errorf("ops[1] = %q, want Tf", ops[1].Operator)
	}
	if len(ops[1].Operands) != 2 {
		t.Fatalf("Tf operands = %d, want 2", len(ops[1].Operands))
	}
	if name, ok := ops[1].Operands[0].(Name); !ok || name != "F1" {
		t.Errorf("Tf operand 0 = %v, want /F1", ops[1].Operands[0])
	}
	if size, ok := ops[1].Operands[1].(Int); !ok || size != 12 {
		t.Errorf("Tf operand 1 = %v, want 12", ops[1].Operands[1])
	}

	if ops[2].Operator != "Tj" {
		t.Errorf("ops[2] = %q, want Tj", ops[2].Operator)
	}
	if s, ok := ops[2].Operands[0].(String); !ok || string(s) != "Hello" {
		t.Errorf("Tj operand = %v, want (Hello)", ops[2].Operands[0])
	}
}

// TestParseNumbers tests integer and real operand parsing.
func TestParseNumbers(t *testing.T) {
	data := []byte("1 0 0 1 72.5 -40 cm")

	ops := NewParser(data).Parse()

	if len(ops) != 1 || ops[0].Operator != "cm" {
		t.Fatalf("expected one cm operation, got %v", ops)
	}
	if len(ops[0].Operands) != 6 {
		t.Fatalf("cm operands = %d, want 6", len(ops[0].Operands))
	}

	if v, ok := ToFloat(ops[0].Operands[4]); !ok || v != 72.5 {
		t.Errorf("operand 4 = %v, want 72.5", ops[0].Operands[4])
	}
	if v, ok := ToFloat(ops[0].Operands[5]); !ok || v != -40 {
		t.Errorf("operand 5 = %v, want -40", ops[0].Operands[5])
	}
}

// TestParseStringEscapes tests literal string escape handling.
func TestParseStringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`(plain)`, "plain"},
		{`(with \(parens\))`, "with (parens)"},
		{`(nested (parens))`, "nested (parens)"},
		{`(tab\there)`, "tab\there"},
		{`(octal \101)`, "octal A"},
		{`(back\\slash)`, `back\slash`},
	}

	for _, tt := range tests {
		ops := NewParser([]byte(tt.input + " Tj")).Parse()
		if len(ops) != 1 {
			t.Errorf("%q: expected 1 op, got %d", tt.input, len(ops))
			continue
		}
		s, ok := ops[0].Operands[0].(String)
		if !ok || string(s) != tt.want {
			t.Errorf("%q: got %q, want %q", tt.input, string(s), tt.want)
		}
	}
}

// TestParseHexString tests hex string parsing, including odd digit counts.
func TestParseHexString(t *testing.T) {
	ops := NewParser([]byte("<48656C6C6F> Tj")).Parse()
	if len(ops) != 1 {
		t.Fatalf("expected 1 op, got %d", len(ops))
	}
	if s := ops[0].Operands[0].(String); string(s) != "Hello" {
		t.Errorf("got %q, want Hello", string(s))
	}

	// Odd digit count implies a trailing zero nibble.
	ops = NewParser([]byte("<48656C6C6F7> Tj")).Parse()
	s := ops[0].Operands[0].(String)
	if s[len(s)-1] != 0x70 {
		t.Errorf("trailing byte = %#x, want 0x70", s[len(s)-1])
	}
}

// TestParseTJArray tests mixed string/number arrays.
func TestParseTJArray(t *testing.T) {
	ops := NewParser([]byte("[(Hel) -20 (lo)] TJ")).Parse()

	if len(ops) != 1 || ops[0].Operator != "TJ" {
		t.Fatalf("expected one TJ operation, got %v", ops)
	}

	arr, ok := ops[0].Operands[0].(Array)
	if !ok || len(arr) != 3 {
		t.Fatalf("expected 3-element array, got %v", ops[0].Operands[0])
	}
	if string(arr[0].(String)) != "Hel" {
		t.Errorf("arr[0] = %v, want (Hel)", arr[0])
	}
	if v, _ := ToFloat(arr[1]); v != -20 {
		t.Errorf("arr[1] = %v, want -20", arr[1])
	}
}

// TestParseNameEscapes tests # escapes in names.
func TestParseNameEscapes(t *testing.T) {
	ops := NewParser([]byte("/A#20B gs")).Parse()
	if len(ops) != 1 {
		t.Fatalf("expected 1 op, got %d", len(ops))
	}
	if name := ops[0].Operands[0].(Name); name != "A B" {
		t.Errorf("name = %q, want %q", name, "A B")
	}
}

// TestParseQuoteOperators tests the ' and " show-text operators.
func TestParseQuoteOperators(t *testing.T) {
	ops := NewParser([]byte("(next) ' 2 3 (spaced) \"")).Parse()

	if len(ops) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(ops))
	}
	if ops[0].Operator != "'" {
		t.Errorf("ops[0] = %q, want '", ops[0].Operator)
	}
	if ops[1].Operator != `"` {
		t.Errorf("ops[1] = %q, want \"", ops[1].Operator)
	}
	if len(ops[1].Operands) != 3 {
		t.Errorf(`" operands = %d, want 3`, len(ops[1].Operands))
	}
}

// TestParseInlineImage tests that BI...ID...EI collapses into one operation.
func TestParseInlineImage(t *testing.T) {
	data := []byte("q BI /W 4 /H 4 /BPC 8 /CS /G ID \x00\x01\x02\x03binarydata EI Q")

	ops := NewParser(data).Parse()

	if len(ops) != 3 {
		t.Fatalf("expected q, BI, Q — got %d ops", len(ops))
	}
	if ops[1].Operator != "BI" {
		t.Fatalf("ops[1] = %q, want BI", ops[1].Operator)
	}

	dict, ok := ops[1].Operands[0].(Dict)
	if !ok {
		t.Fatalf("BI operand is %T, want Dict", ops[1].Operands[0])
	}
	if w, _ := ToInt(dict["W"]); w != 4 {
		t.Errorf("W = %v, want 4", dict["W"])
	}
	if cs, ok := dict["CS"].(Name); !ok || cs != "G" {
		t.Errorf("CS = %v, want /G", dict["CS"])
	}
}

// TestParseMalformedInput tests that junk bytes are skipped, not fatal.
func TestParseMalformedInput(t *testing.T) {
	// An unterminated string followed by valid operations: the parser
	// must resync and still find the later operator.
	data := []byte(")junk} 1 0 0 1 0 0 cm q Q")

	ops := NewParser(data).Parse()

	found := false
	for _, op := range ops {
		if op.Operator == "cm" && len(op.Operands) == 6 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected to recover the cm operation, got %v", ops)
	}
}

// TestParseEmptyStream tests that an empty stream yields no operations.
func TestParseEmptyStream(t *testing.T) {
	if ops := NewParser(nil).Parse(); len(ops) != 0 {
		t.Errorf("expected no operations, got %d", len(ops))
	}
	if ops := NewParser([]byte("   \n\t  ")).Parse(); len(ops) != 0 {
		t.Errorf("whitespace-only stream: expected no operations, got %d", len(ops))
	}
}

// TestParseComments tests that % comments are ignored.
func TestParseComments(t *testing.T) {
	data := []byte("% a comment\nq % inline\nQ")

	ops := NewParser(data).Parse()
	if len(ops) != 2 || ops[0].Operator != "q" || ops[1].Operator != "Q" {
		t.Errorf("expected q and Q, got %v", ops)
	}
}
