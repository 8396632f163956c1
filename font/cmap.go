package font

import (
	"encoding/hex"
	"strings"
)

// CMap maps character codes to Unicode text, built from a ToUnicode stream.
type CMap struct {
	// Single-code mappings: code -> text.
	chars map[uint32]string

	// Range mappings, consulted when no single mapping exists.
	ranges []cmapRange

	// codeBytes is the code width in bytes declared by the codespace
	// ranges (1 or 2). 0 when no codespace range was present.
	codeBytes int
}

type cmapRange struct {
	lo, hi uint32
	dst    uint32
}

// NewCMap returns an empty CMap.
func NewCMap() *CMap {
	return &CMap{chars: make(map[uint32]string)}
}

// CodeBytes returns the declared code width in bytes, or 0 when the CMap
// declared no codespace range.
func (cm *CMap) CodeBytes() int {
	return cm.codeBytes
}

// Lookup returns the text for a code and whether a mapping exists.
func (cm *CMap) Lookup(code uint32) (string, bool) {
	if s, ok := cm.chars[code]; ok {
		return s, true
	}
	for _, r := range cm.ranges {
		if code >= r.lo && code <= r.hi {
			return string(rune(r.dst + (code - r.lo))), true
		}
	}
	return "", false
}

// ParseCMap parses a decoded ToUnicode CMap stream. Sections it does not
// understand are skipped; a badly damaged CMap yields a sparse but usable
// map rather than an error.
func ParseCMap(data []byte) *CMap {
	cm := NewCMap()
	content := string(data)

	cm.parseCodespace(content)
	cm.parseBfChar(content)
	cm.parseBfRange(content)

	return cm
}

// parseCodespace reads begincodespacerange sections to learn the code width.
func (cm *CMap) parseCodespace(content string) {
	forEachSection(content, "begincodespacerange", "endcodespacerange", func(section string) {
		toks := hexTokens(section)
		for i := 0; i+1 < len(toks); i += 2 {
			width := len(toks[i])
			if width > cm.codeBytes {
				cm.codeBytes = width
			}
		}
	})
	if cm.codeBytes > 2 {
		cm.codeBytes = 2
	}
}

// parseBfChar reads beginbfchar sections: <src> <dst> pairs.
func (cm *CMap) parseBfChar(content string) {
	forEachSection(content, "beginbfchar", "endbfchar", func(section string) {
		toks := hexTokens(section)
		for i := 0; i+1 < len(toks); i += 2 {
			src := bytesToCode(toks[i])
			dst := utf16BytesToString(toks[i+1])
			if dst != "" {
				cm.chars[src] = dst
			}
		}
	})
}

// parseBfRange reads beginbfrange sections: <lo> <hi> <dstStart> triplets,
// or <lo> <hi> [<dst> <dst> ...] with one destination per code.
func (cm *CMap) parseBfRange(content string) {
	forEachSection(content, "beginbfrange", "endbfrange", func(section string) {
		rest := section
		for {
			lo, ok, tail := nextHexToken(rest)
			if !ok {
				return
			}
			hi, ok, tail2 := nextHexToken(tail)
			if !ok {
				return
			}
			rest = tail2

			rest = strings.TrimLeft(rest, " \t\r\n")
			if strings.HasPrefix(rest, "[") {
				// Array form: one destination per code.
				end := strings.Index(rest, "]")
				if end == -1 {
					return
				}
				dsts := hexTokens(rest[1:end])
				loCode := bytesToCode(lo)
				for i, d := range dsts {
					if s := utf16BytesToString(d); s != "" {
						cm.chars[loCode+uint32(i)] = s
					}
				}
				rest = rest[end+1:]
				continue
			}

			dst, ok, tail3 := nextHexToken(rest)
			if !ok {
				return
			}
			rest = tail3

			loCode := bytesToCode(lo)
			hiCode := bytesToCode(hi)
			if hiCode < loCode {
				continue
			}
			dstStr := utf16BytesToString(dst)
			if len([]rune(dstStr)) == 1 {
				cm.ranges = append(cm.ranges, cmapRange{
					lo:  loCode,
					hi:  hiCode,
					dst: uint32([]rune(dstStr)[0]),
				})
			} else if dstStr != "" {
				// Multi-rune destination: only the exact low code is
				// representable.
				cm.chars[loCode] = dstStr
			}
		}
	})
}

// forEachSection invokes fn with the content of every begin/end section.
func forEachSection(content, begin, end string, fn func(section string)) {
	start := 0
	for {
		b := strings.Index(content[start:], begin)
		if b == -1 {
			return
		}
		b += start + len(begin)
		e := strings.Index(content[b:], end)
		if e == -1 {
			return
		}
		fn(content[b : b+e])
		start = b + e + len(end)
	}
}

// hexTokens extracts every <...> hex token in a section as raw bytes.
func hexTokens(section string) [][]byte {
	var out [][]byte
	rest := section
	for {
		tok, ok, tail := nextHexToken(rest)
		if !ok {
			return out
		}
		out = append(out, tok)
		rest = tail
	}
}

// nextHexToken scans for the next <...> token, returning its decoded bytes
// and the remaining input.
func nextHexToken(s string) ([]byte, bool, string) {
	open := strings.Index(s, "<")
	if open == -1 {
		return nil, false, ""
	}
	close := strings.Index(s[open:], ">")
	if close == -1 {
		return nil, false, ""
	}
	raw := s[open+1 : open+close]
	raw = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, raw)
	if len(raw)%2 != 0 {
		raw += "0"
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return nil, false, s[open+close+1:]
	}
	return decoded, true, s[open+close+1:]
}

// bytesToCode interprets up to 4 big-endian bytes as a code.
func bytesToCode(b []byte) uint32 {
	var code uint32
	for _, by := range b {
		code = code<<8 | uint32(by)
	}
	return code
}

// utf16BytesToString decodes a destination token as UTF-16BE text.
func utf16BytesToString(b []byte) string {
	if len(b) == 1 {
		return string(rune(b[0]))
	}
	return DecodeUTF16BE(b)
}
