package contentstream

import (
	"bytes"
	"errors"
	"strconv"
)

// Operation is a single content-stream operation: an operator and the
// operands that preceded it.
type Operation struct {
	Operator string
	Operands []Object
}

// Parser tokenizes a content stream into a sequence of operations.
type Parser struct {
	data     []byte
	pos      int
	ops      []Operation
	operands []Object
}

// NewParser creates a parser for the given content-stream bytes.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Parse tokenizes the whole stream and returns the operations in order.
// Malformed tokens are skipped; Parse never fails on bad input, it simply
// returns whatever operations it could recognize.
func (p *Parser) Parse() []Operation {
	for p.pos < len(p.data) {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			break
		}

		if err := p.parseNext(); err != nil {
			// Drop pending operands and resync at the next byte.
			p.operands = p.operands[:0]
			p.pos++
		}
	}
	return p.ops
}

var errMalformed = errors.New("malformed token")

// parseNext consumes one token: an operand is pushed onto the pending stack,
// an operator consumes the stack into an Operation.
func (p *Parser) parseNext() error {
	c := p.data[p.pos]

	if isOperatorStart(c) {
		return p.parseOperator()
	}

	operand, err := p.parseOperand()
	if err != nil {
		return err
	}
	p.operands = append(p.operands, operand)
	return nil
}

// parseOperator reads an operator name and emits an Operation with the
// pending operands.
func (p *Parser) parseOperator() error {
	var op bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isLetter(c) || c == '\'' || c == '"' || c == '*' {
			// * covers T*, B*, b*, W*.
			op.WriteByte(c)
			p.pos++
		} else {
			break
		}
	}

	operator := op.String()
	if operator == "" {
		return errMalformed
	}

	// true/false/null are operands spelled with letters.
	switch operator {
	case "true":
		p.operands = append(p.operands, Bool(true))
		return nil
	case "false":
		p.operands = append(p.operands, Bool(false))
		return nil
	case "null":
		p.operands = append(p.operands, Null{})
		return nil
	}

	if operator == "BI" {
		return p.parseInlineImage()
	}

	operation := Operation{
		Operator: operator,
		Operands: make([]Object, len(p.operands)),
	}
	copy(operation.Operands, p.operands)
	p.ops = append(p.ops, operation)
	p.operands = p.operands[:0]
	return nil
}

// parseInlineImage consumes a BI ... ID <data> EI sequence and emits a single
// BI operation carrying the image dictionary. The binary sample data is
// discarded.
func (p *Parser) parseInlineImage() error {
	dict := make(Dict)

	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			return errMalformed
		}

		if p.data[p.pos] == '/' {
			keyObj, err := p.parseName()
			if err != nil {
				return err
			}
			p.skipWhitespaceAndComments()
			val, err := p.parseImageValue()
			if err != nil {
				return err
			}
			dict[string(keyObj.(Name))] = val
			continue
		}

		// Expect the ID keyword next.
		if p.pos+1 < len(p.data) && p.data[p.pos] == 'I' && p.data[p.pos+1] == 'D' {
			p.pos += 2
			break
		}
		return errMalformed
	}

	// One whitespace byte separates ID from the sample data.
	if p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}

	// Scan for EI delimited by whitespace (or end of stream).
	for p.pos < len(p.data) {
		if p.data[p.pos] == 'E' && p.pos+1 < len(p.data) && p.data[p.pos+1] == 'I' {
			after := p.pos + 2
			if after >= len(p.data) || isWhitespace(p.data[after]) || isDelimiter(p.data[after]) {
				p.pos = after
				p.ops = append(p.ops, Operation{Operator: "BI", Operands: []Object{dict}})
				p.operands = p.operands[:0]
				return nil
			}
		}
		p.pos++
	}
	return errMalformed
}

// parseImageValue parses one inline-image dictionary value, which may be a
// bare keyword abbreviation (e.g. /DCT) as well as any ordinary operand.
func (p *Parser) parseImageValue() (Object, error) {
	if p.pos < len(p.data) && isLetter(p.data[p.pos]) {
		start := p.pos
		for p.pos < len(p.data) && !isWhitespace(p.data[p.pos]) && !isDelimiter(p.data[p.pos]) {
			p.pos++
		}
		token := string(p.data[start:p.pos])
		switch token {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		default:
			return Name(token), nil
		}
	}
	return p.parseOperand()
}

// parseOperand parses a single operand: number, string, hex string, name,
// array, dictionary, boolean, or null.
func (p *Parser) parseOperand() (Object, error) {
	p.skipWhitespaceAndComments()
	if p.pos >= len(p.data) {
		return nil, errMalformed
	}

	c := p.data[p.pos]

	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == '(':
		return p.parseString()
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString()
	case c == '/':
		return p.parseName()
	case c == '[':
		return p.parseArray()
	}

	return nil, errMalformed
}

// parseNumber parses an integer or real operand.
func (p *Parser) parseNumber() (Object, error) {
	start := p.pos
	hasDecimal := false

	if p.data[p.pos] == '+' || p.data[p.pos] == '-' {
		p.pos++
	}

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !hasDecimal {
			hasDecimal = true
			p.pos++
		} else {
			break
		}
	}

	numStr := string(p.data[start:p.pos])

	if hasDecimal {
		val, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return nil, errMalformed
		}
		return Real(val), nil
	}

	val, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return nil, errMalformed
	}
	return Int(val), nil
}

// parseString parses a literal string (...) with escapes and nested parens.
func (p *Parser) parseString() (Object, error) {
	p.pos++ // skip '('

	var result bytes.Buffer
	depth := 1

	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]

		if c == '\\' && p.pos+1 < len(p.data) {
			p.pos++
			next := p.data[p.pos]
			switch next {
			case 'n':
				result.WriteByte('\n')
				p.pos++
			case 'r':
				result.WriteByte('\r')
				p.pos++
			case 't':
				result.WriteByte('\t')
				p.pos++
			case 'b':
				result.WriteByte('\b')
				p.pos++
			case 'f':
				result.WriteByte('\f')
				p.pos++
			case '(', ')', '\\':
				result.WriteByte(next)
				p.pos++
			case '\r':
				// Line continuation
				p.pos++
				if p.pos < len(p.data) && p.data[p.pos] == '\n' {
					p.pos++
				}
			case '\n':
				p.pos++
			case '0', '1', '2', '3', '4', '5', '6', '7':
				// Octal escape: 1-3 octal digits
				octal := int(next - '0')
				p.pos++
				for i := 0; i < 2 && p.pos < len(p.data); i++ {
					d := p.data[p.pos]
					if d < '0' || d > '7' {
						break
					}
					octal = octal*8 + int(d-'0')
					p.pos++
				}
				result.WriteByte(byte(octal & 0xFF))
			default:
				// Unknown escape: the backslash is ignored.
				result.WriteByte(next)
				p.pos++
			}
			continue
		}

		switch c {
		case '(':
			depth++
			result.WriteByte(c)
		case ')':
			depth--
			if depth > 0 {
				result.WriteByte(c)
			}
		default:
			result.WriteByte(c)
		}
		p.pos++
	}

	if depth != 0 {
		return nil, errMalformed
	}
	return String(result.Bytes()), nil
}

// parseHexString parses a hexadecimal string <...>. An odd number of digits
// implies a trailing zero nibble.
func (p *Parser) parseHexString() (Object, error) {
	p.pos++ // skip '<'

	var result bytes.Buffer
	var pending byte
	havePending := false

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++

		if c == '>' {
			if havePending {
				result.WriteByte(pending << 4)
			}
			return String(result.Bytes()), nil
		}
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, errMalformed
		}
		if havePending {
			result.WriteByte((pending << 4) | hexValue(c))
			havePending = false
		} else {
			pending = hexValue(c)
			havePending = true
		}
	}
	return nil, errMalformed
}

// parseName parses a name /Name with # escape handling.
func (p *Parser) parseName() (Object, error) {
	p.pos++ // skip '/'

	var result bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) && isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			result.WriteByte((hexValue(p.data[p.pos+1]) << 4) | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		result.WriteByte(c)
		p.pos++
	}
	return Name(result.String()), nil
}

// parseArray parses an array [...] of operands.
func (p *Parser) parseArray() (Object, error) {
	p.pos++ // skip '['

	var arr Array
	for p.pos < len(p.data) {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			return nil, errMalformed
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}

		// TJ arrays mix strings and numbers; keywords can appear in
		// malformed files.
		if isLetter(p.data[p.pos]) {
			val, err := p.parseImageValue()
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
			continue
		}

		obj, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
	return nil, errMalformed
}

// parseDict parses a dictionary <<...>>.
func (p *Parser) parseDict() (Object, error) {
	p.pos += 2 // skip '<<'

	dict := make(Dict)
	for p.pos < len(p.data) {
		p.skipWhitespaceAndComments()
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.pos >= len(p.data) || p.data[p.pos] != '/' {
			return nil, errMalformed
		}

		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		p.skipWhitespaceAndComments()
		val, err := p.parseImageValue()
		if err != nil {
			return nil, err
		}
		dict[string(key.(Name))] = val
	}
	return nil, errMalformed
}

// skipWhitespaceAndComments advances past whitespace and % comments.
func (p *Parser) skipWhitespaceAndComments() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) {
			p.pos++
			continue
		}
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		break
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isOperatorStart(c byte) bool {
	return isLetter(c) || c == '\'' || c == '"'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
