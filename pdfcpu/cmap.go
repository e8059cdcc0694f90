package pdfcpu

import (
	"strings"
	"unicode/utf16"
)

// codespace is one codespacerange entry: codes of n bytes within [lo, hi].
type codespace struct {
	n      int
	lo, hi uint32
}

// bfrange maps the codes [lo, hi] either to consecutive text starting at
// dst or to one entry of list per code.
type bfrange struct {
	lo, hi uint32
	dst    []uint16
	list   []string
}

// cmap is a parsed ToUnicode CMap: it turns the byte codes a font shows into
// Unicode text. Type0 fonts with Identity-H encoding use two-byte codes;
// simple fonts use one.
type cmap struct {
	spaces   []codespace
	fallback int
	chars    map[uint32]string
	ranges   []bfrange
}

// parseCMap reads the codespacerange, bfchar and bfrange sections of a
// ToUnicode stream. It returns nil if the stream maps nothing.
func parseCMap(data []byte) *cmap {
	c := &cmap{chars: make(map[uint32]string)}

	var (
		section string
		args    [][]byte
		list    []string
		inList  bool
	)

	s := &scanner{data: data}
	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokString:
			if inList {
				list = append(list, utf16Text(tok.raw))
				continue
			}
			args = append(args, tok.raw)
		case tokArrayStart:
			inList, list = true, nil
		case tokArrayEnd:
			inList = false
		case tokOperator:
			switch tok.text {
			case "begincodespacerange", "beginbfchar", "beginbfrange":
				section = tok.text
				args = nil
			case "endcodespacerange", "endbfchar", "endbfrange":
				section = ""
				args = nil
			}
		}

		switch section {
		case "begincodespacerange":
			if len(args) == 2 {
				c.spaces = append(c.spaces, codespace{n: len(args[0]), lo: code(args[0]), hi: code(args[1])})
				args = nil
			}
		case "beginbfchar":
			if len(args) == 2 {
				c.chars[code(args[0])] = utf16Text(args[1])
				c.noteWidth(len(args[0]))
				args = nil
			}
		case "beginbfrange":
			switch {
			case len(args) == 3:
				c.ranges = append(c.ranges, bfrange{lo: code(args[0]), hi: code(args[1]), dst: utf16Units(args[2])})
				c.noteWidth(len(args[0]))
				args = nil
			case len(args) == 2 && tok.kind == tokArrayEnd:
				c.ranges = append(c.ranges, bfrange{lo: code(args[0]), hi: code(args[1]), list: list})
				c.noteWidth(len(args[0]))
				args, list = nil, nil
			}
		}
	}

	if len(c.chars) == 0 && len(c.ranges) == 0 {
		return nil
	}
	return c
}

// noteWidth records the width of the first mapped code, used when the CMap
// declares no codespace.
func (c *cmap) noteWidth(n int) {
	if c.fallback == 0 {
		c.fallback = n
	}
}

// decode converts the bytes of a shown string to text. Codes without a
// mapping are dropped, except single-byte codes which fall back to Latin-1.
func (c *cmap) decode(b []byte) string {
	var out strings.Builder
	for len(b) > 0 {
		n := c.width(b)
		v := code(b[:n])
		b = b[n:]
		if s, ok := c.lookup(v); ok {
			out.WriteString(s)
		} else if n == 1 {
			out.WriteRune(rune(v))
		}
	}
	return out.String()
}

// width returns the length of the code at the start of b, which is never
// empty.
func (c *cmap) width(b []byte) int {
	for _, sp := range c.spaces {
		if sp.n > 0 && sp.n <= len(b) {
			if v := code(b[:sp.n]); v >= sp.lo && v <= sp.hi {
				return sp.n
			}
		}
	}
	n := c.fallback
	if n == 0 && len(c.spaces) > 0 {
		n = c.spaces[0].n
	}
	return min(max(n, 1), len(b))
}

func (c *cmap) lookup(v uint32) (string, bool) {
	if s, ok := c.chars[v]; ok {
		return s, true
	}
	for _, r := range c.ranges {
		if v < r.lo || v > r.hi {
			continue
		}
		off := v - r.lo
		if r.list != nil {
			if int(off) < len(r.list) {
				return r.list[off], true
			}
			return "", false
		}
		if len(r.dst) == 0 {
			return "", false
		}
		units := append([]uint16(nil), r.dst...)
		units[len(units)-1] += uint16(off)
		return string(utf16.Decode(units)), true
	}
	return "", false
}

// code reads b as a big-endian character code.
func code(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

func utf16Units(b []byte) []uint16 {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	if len(b)%2 == 1 {
		units = append(units, uint16(b[len(b)-1]))
	}
	return units
}

func utf16Text(b []byte) string {
	return string(utf16.Decode(utf16Units(b)))
}
