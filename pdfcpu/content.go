package pdfcpu

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// kerningSpace is the TJ displacement, in thousandths of an em, beyond which
// a gap between two strings is treated as a word break.
const kerningSpace = -200

// operand is a content stream operand the text decoder cares about.
type operand struct {
	str   *string
	name  string
	num   float64
	isNum bool
	array []operand
	isArr bool
}

// textFromContent decodes the text shown by a page content stream.
// Text-showing operators (Tj, TJ, ' and ") contribute their strings; line
// moves and text object ends break lines. Lines are trimmed and empty lines
// dropped. Strings shown with a font that has an entry in fonts are decoded
// through its ToUnicode map.
func textFromContent(data []byte, fonts map[string]*cmap) string {
	var (
		out   strings.Builder
		stack []operand
		arrs  [][]operand
		font  *cmap
	)

	push := func(op operand) {
		if n := len(arrs); n > 0 {
			arrs[n-1] = append(arrs[n-1], op)
			return
		}
		stack = append(stack, op)
	}
	lastString := func() (string, bool) {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].str != nil {
				return *stack[i].str, true
			}
		}
		return "", false
	}

	s := &scanner{data: data}
	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokString:
			var str string
			if font != nil {
				str = font.decode(tok.raw)
			} else {
				str = decodeString(tok.raw)
			}
			push(operand{str: &str})
		case tokNumber:
			push(operand{num: tok.num, isNum: true})
		case tokArrayStart:
			arrs = append(arrs, nil)
		case tokArrayEnd:
			if n := len(arrs); n > 0 {
				arr := arrs[n-1]
				arrs = arrs[:n-1]
				push(operand{array: arr, isArr: true})
			}
		case tokOther:
			if strings.HasPrefix(tok.text, "/") {
				push(operand{name: tok.text[1:]})
			}
			// Dictionaries and booleans are ignored.
		case tokOperator:
			switch tok.text {
			case "Tj":
				if str, ok := lastString(); ok {
					out.WriteString(str)
				}
			case "'", `"`:
				out.WriteByte('\n')
				if str, ok := lastString(); ok {
					out.WriteString(str)
				}
			case "TJ":
				if n := len(stack); n > 0 && stack[n-1].isArr {
					for _, el := range stack[n-1].array {
						switch {
						case el.str != nil:
							out.WriteString(*el.str)
						case el.isNum && el.num <= kerningSpace:
							out.WriteByte(' ')
						}
					}
				}
			case "Tf":
				font = nil
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i].name != "" {
						font = fonts[stack[i].name]
						break
					}
				}
			case "T*", "Td", "TD", "Tm", "ET":
				out.WriteByte('\n')
			case "ID":
				s.skipInlineImage()
			}
			stack = stack[:0]
			arrs = arrs[:0]
		}
	}

	lines := strings.Split(out.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

type tokenKind int

const (
	tokOperator tokenKind = iota
	tokString
	tokNumber
	tokArrayStart
	tokArrayEnd
	tokOther
)

type token struct {
	kind tokenKind
	text string
	raw  []byte
	num  float64
}

// scanner tokenizes a PDF content stream.
type scanner struct {
	data []byte
	pos  int
}

func isWhite(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func (s *scanner) next() (token, bool) {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isWhite(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		case c == '(':
			s.pos++
			return token{kind: tokString, raw: s.literal()}, true
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.pos += 2
				return token{kind: tokOther, text: "<<"}, true
			}
			s.pos++
			return token{kind: tokString, raw: s.hex()}, true
		case c == '>':
			s.pos++
			if s.pos < len(s.data) && s.data[s.pos] == '>' {
				s.pos++
			}
			return token{kind: tokOther, text: ">>"}, true
		case c == '[':
			s.pos++
			return token{kind: tokArrayStart}, true
		case c == ']':
			s.pos++
			return token{kind: tokArrayEnd}, true
		case c == '/':
			s.pos++
			return token{kind: tokOther, text: "/" + s.regular()}, true
		case c == '{' || c == '}' || c == ')':
			s.pos++
		default:
			word := s.regular()
			if word == "" {
				s.pos++
				continue
			}
			if n, err := strconv.ParseFloat(word, 64); err == nil {
				return token{kind: tokNumber, num: n}, true
			}
			if word == "true" || word == "false" || word == "null" {
				return token{kind: tokOther, text: word}, true
			}
			return token{kind: tokOperator, text: word}, true
		}
	}
	return token{}, false
}

// regular consumes a run of regular characters.
func (s *scanner) regular() string {
	start := s.pos
	for s.pos < len(s.data) && !isWhite(s.data[s.pos]) && !isDelim(s.data[s.pos]) {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

// literal consumes a literal string body after the opening parenthesis,
// honouring nested parentheses and escape sequences.
func (s *scanner) literal() []byte {
	var buf []byte
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return buf
			}
			buf = append(buf, c)
		case '\\':
			if s.pos >= len(s.data) {
				return buf
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '\r':
				// Line continuation.
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '7'; i++ {
						v = v*8 + int(s.data[s.pos]-'0')
						s.pos++
					}
					buf = append(buf, byte(v))
				} else {
					buf = append(buf, e)
				}
			}
		default:
			buf = append(buf, c)
		}
	}
	return buf
}

// hex consumes a hex string body after the opening angle bracket.
// An odd final digit is padded with zero.
func (s *scanner) hex() []byte {
	var buf []byte
	var hi byte
	half := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			break
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if half {
			buf = append(buf, hi<<4|v)
			half = false
		} else {
			hi = v
			half = true
		}
	}
	if half {
		buf = append(buf, hi<<4)
	}
	return buf
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// skipInlineImage skips binary inline image data up to and including EI.
func (s *scanner) skipInlineImage() {
	if s.pos < len(s.data) && isWhite(s.data[s.pos]) {
		s.pos++
	}
	for s.pos+1 < len(s.data) {
		if s.data[s.pos] == 'E' && s.data[s.pos+1] == 'I' &&
			s.pos > 0 && isWhite(s.data[s.pos-1]) &&
			(s.pos+2 == len(s.data) || isWhite(s.data[s.pos+2])) {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.pos = len(s.data)
}

// decodeString converts raw string bytes to text. UTF-16BE with a byte order
// mark and valid UTF-8 are decoded as such; anything else is read as Latin-1.
func decodeString(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		b = b[2:]
		units := make([]uint16, 0, len(b)/2)
		for i := 0; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}
	if utf8.Valid(b) {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
