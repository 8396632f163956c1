package font

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// NormalizeUnicode normalizes decoded text to NFC so that visually identical
// strings compare equal regardless of how the producer composed them.
func NormalizeUnicode(s string) string {
	return norm.NFC.String(s)
}

// DecodeUTF16BE decodes big-endian UTF-16 bytes (without BOM) to a string.
// A trailing odd byte is dropped.
func DecodeUTF16BE(data []byte) string {
	if len(data) < 2 {
		return ""
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
	}
	return string(utf16.Decode(units))
}

// baseEncodingTable returns the code→text table for a named base encoding.
// Unknown names fall back to StandardEncoding.
func baseEncodingTable(name string) *[256]string {
	switch name {
	case "WinAnsiEncoding":
		return &winAnsiTable
	case "MacRomanEncoding":
		return &macRomanTable
	default:
		return &standardTable
	}
}

var (
	standardTable [256]string
	winAnsiTable  [256]string
	macRomanTable [256]string
)

func init() {
	// Printable ASCII is shared by all three encodings.
	for c := 0x20; c <= 0x7E; c++ {
		s := string(rune(c))
		standardTable[c] = s
		winAnsiTable[c] = s
		macRomanTable[c] = s
	}

	// WinAnsi and MacRoman high ranges come from their charmaps.
	for c := 0x80; c <= 0xFF; c++ {
		if r := charmap.Windows1252.DecodeByte(byte(c)); r != 0 && r != '�' {
			winAnsiTable[c] = string(r)
		}
		if r := charmap.Macintosh.DecodeByte(byte(c)); r != 0 && r != '�' {
			macRomanTable[c] = string(r)
		}
	}

	// StandardEncoding deviations from ASCII and its high range.
	standardTable[0x27] = "’" // quoteright
	standardTable[0x60] = "‘" // quoteleft
	for code, r := range standardHigh {
		standardTable[code] = string(r)
	}
}

// standardHigh holds the Adobe StandardEncoding positions above 0x7E that
// appear in real documents.
var standardHigh = map[int]rune{
	0xA1: '¡', // exclamdown
	0xA2: '¢', // cent
	0xA3: '£', // sterling
	0xA4: '⁄', // fraction
	0xA5: '¥', // yen
	0xA7: '§', // section
	0xA8: '¤', // currency
	0xA9: '\'', // quotesingle
	0xAA: '“', // quotedblleft
	0xAB: '«', // guillemotleft
	0xB4: '·', // periodcentered
	0xB6: '¶', // paragraph
	0xB7: '•', // bullet
	0xB8: '‚', // quotesinglbase
	0xB9: '„', // quotedblbase
	0xBA: '”', // quotedblright
	0xBB: '»', // guillemotright
	0xBC: '…', // ellipsis
	0xBD: '‰', // perthousand
	0xBF: '¿', // questiondown
	0xD0: '—', // emdash
	0xAE: 'ﬁ', // fi
	0xAF: 'ﬂ', // fl
	0xB1: '–', // endash
}

// glyphNameToText resolves a glyph name from a Differences table to its
// text. It understands the common Adobe glyph list names, uniXXXX and uXXXX
// forms, and single-character names. Unknown names yield "".
func glyphNameToText(name string) string {
	if name == "" {
		return ""
	}
	if r, ok := glyphNames[name]; ok {
		return string(r)
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		if v, err := strconv.ParseUint(name[3:7], 16, 32); err == nil {
			return string(rune(v))
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return string(rune(v))
		}
	}
	if len(name) == 1 {
		return name
	}
	return ""
}

// glyphNames maps the Adobe glyph list names seen in practice to runes.
var glyphNames = map[string]rune{
	"space":          ' ',
	"exclam":         '!',
	"quotedbl":       '"',
	"numbersign":     '#',
	"dollar":         '$',
	"percent":        '%',
	"ampersand":      '&',
	"quotesingle":    '\'',
	"parenleft":      '(',
	"parenright":     ')',
	"asterisk":       '*',
	"plus":           '+',
	"comma":          ',',
	"hyphen":         '-',
	"period":         '.',
	"slash":          '/',
	"zero":           '0',
	"one":            '1',
	"two":            '2',
	"three":          '3',
	"four":           '4',
	"five":           '5',
	"six":            '6',
	"seven":          '7',
	"eight":          '8',
	"nine":           '9',
	"colon":          ':',
	"semicolon":      ';',
	"less":           '<',
	"equal":          '=',
	"greater":        '>',
	"question":       '?',
	"at":             '@',
	"bracketleft":    '[',
	"backslash":      '\\',
	"bracketright":   ']',
	"asciicircum":    '^',
	"underscore":     '_',
	"grave":          '`',
	"braceleft":      '{',
	"bar":            '|',
	"braceright":     '}',
	"asciitilde":     '~',
	"quoteleft":      '‘',
	"quoteright":     '’',
	"quotedblleft":   '“',
	"quotedblright":  '”',
	"endash":         '–',
	"emdash":         '—',
	"bullet":         '•',
	"ellipsis":       '…',
	"fi":             'ﬁ',
	"fl":             'ﬂ',
	"dagger":         '†',
	"daggerdbl":      '‡',
	"section":        '§',
	"paragraph":      '¶',
	"sterling":       '£',
	"yen":            '¥',
	"cent":           '¢',
	"currency":       '¤',
	"copyright":      '©',
	"registered":     '®',
	"trademark":      '™',
	"degree":         '°',
	"plusminus":      '±',
	"multiply":       '×',
	"divide":         '÷',
	"exclamdown":     '¡',
	"questiondown":   '¿',
	"guillemotleft":  '«',
	"guillemotright": '»',
	"periodcentered": '·',
	"middot":         '·',
	"Euro":           '€',
	"florin":         'ƒ',
	"fraction":       '⁄',
	"perthousand":    '‰',
	"minus":          '−',
	"nbspace":        ' ',
	"adieresis":      'ä',
	"odieresis":      'ö',
	"udieresis":      'ü',
	"Adieresis":      'Ä',
	"Odieresis":      'Ö',
	"Udieresis":      'Ü',
	"germandbls":     'ß',
	"aacute":         'á',
	"eacute":         'é',
	"iacute":         'í',
	"oacute":         'ó',
	"uacute":         'ú',
	"agrave":         'à',
	"egrave":         'è',
	"ccedilla":       'ç',
	"ntilde":         'ñ',
	"atilde":         'ã',
	"aring":          'å',
	"oslash":         'ø',
	"ae":             'æ',
	"oe":             'œ',
	"AE":             'Æ',
	"OE":             'Œ',
}

func init() {
	// Letters and digits name themselves in the Adobe glyph list.
	for r := 'A'; r <= 'Z'; r++ {
		glyphNames[string(r)] = r
	}
	for r := 'a'; r <= 'z'; r++ {
		glyphNames[string(r)] = r
	}
}
