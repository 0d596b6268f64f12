// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// scanner.go — parses interchange text into a structural value. Recursive
// descent over the JSON-superset grammar: NaN/Infinity/-Infinity literals,
// int64 for numbers without a fraction or exponent, float64 otherwise.
// Objects become *Dict preserving source key order; tagged-value envelopes
// are recognized later by the decoder walk, never here.

package gridio

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// parseText parses a complete payload. Any syntax problem, including feeding
// it an encrypted envelope, surfaces as ErrMalformedPayload.
func parseText(data []byte) (any, error) {
	s := &scanner{data: data}
	s.skipSpace()
	v, err := s.value()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	s.skipSpace()
	if s.pos != len(s.data) {
		return nil, fmt.Errorf("%w: trailing data at offset %d", ErrMalformedPayload, s.pos)
	}
	return v, nil
}

type scanner struct {
	data []byte
	pos  int
}

func (s *scanner) errf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", s.pos, fmt.Sprintf(format, args...))
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) literal(lit string) error {
	if strings.HasPrefix(string(s.data[s.pos:]), lit) {
		s.pos += len(lit)
		return nil
	}
	return s.errf("expected %q", lit)
}

func (s *scanner) value() (any, error) {
	if s.pos >= len(s.data) {
		return nil, s.errf("unexpected end of input")
	}
	switch c := s.data[s.pos]; {
	case c == '{':
		return s.object()
	case c == '[':
		return s.array()
	case c == '"':
		return s.string()
	case c == 't':
		return true, s.literal("true")
	case c == 'f':
		return false, s.literal("false")
	case c == 'n':
		return nil, s.literal("null")
	case c == 'N':
		return nan, s.literal("NaN")
	case c == 'I':
		return posInf, s.literal("Infinity")
	case c == '-' || (c >= '0' && c <= '9'):
		return s.number()
	default:
		return nil, s.errf("unexpected character %q", c)
	}
}

func (s *scanner) number() (any, error) {
	start := s.pos
	if s.data[s.pos] == '-' {
		s.pos++
		if s.pos < len(s.data) && s.data[s.pos] == 'I' {
			if err := s.literal("Infinity"); err != nil {
				return nil, err
			}
			return negInf, nil
		}
	}
	isFloat := false
	digits := 0
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case c >= '0' && c <= '9':
			digits++
			s.pos++
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
			isFloat = true
			s.pos++
		default:
			goto done
		}
	}
done:
	if digits == 0 {
		return nil, s.errf("malformed number")
	}
	text := string(s.data[start:s.pos])
	if !isFloat {
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return n, nil
		}
		// Magnitude beyond int64: fall through to float.
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, s.errf("malformed number %q", text)
	}
	return f, nil
}

func (s *scanner) string() (string, error) {
	if s.pos >= len(s.data) || s.data[s.pos] != '"' {
		return "", s.errf("expected string")
	}
	s.pos++
	var b strings.Builder
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case c == '"':
			s.pos++
			return b.String(), nil
		case c == '\\':
			s.pos++
			if s.pos >= len(s.data) {
				return "", s.errf("unterminated escape")
			}
			switch e := s.data[s.pos]; e {
			case '"', '\\', '/':
				b.WriteByte(e)
				s.pos++
			case 'n':
				b.WriteByte('\n')
				s.pos++
			case 't':
				b.WriteByte('\t')
				s.pos++
			case 'r':
				b.WriteByte('\r')
				s.pos++
			case 'b':
				b.WriteByte('\b')
				s.pos++
			case 'f':
				b.WriteByte('\f')
				s.pos++
			case 'u':
				r, err := s.unicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
			default:
				return "", s.errf("invalid escape \\%c", e)
			}
		case c < 0x20:
			return "", s.errf("raw control character in string")
		default:
			r, size := utf8.DecodeRune(s.data[s.pos:])
			b.WriteRune(r)
			s.pos += size
		}
	}
	return "", s.errf("unterminated string")
}

func (s *scanner) unicodeEscape() (rune, error) {
	s.pos++ // consume 'u'
	r1, err := s.hex4()
	if err != nil {
		return 0, err
	}
	if utf16.IsSurrogate(r1) && s.pos+1 < len(s.data) && s.data[s.pos] == '\\' && s.data[s.pos+1] == 'u' {
		s.pos += 2
		r2, err := s.hex4()
		if err != nil {
			return 0, err
		}
		if r := utf16.DecodeRune(r1, r2); r != utf8.RuneError {
			return r, nil
		}
		return utf8.RuneError, nil
	}
	if utf16.IsSurrogate(r1) {
		return utf8.RuneError, nil
	}
	return r1, nil
}

func (s *scanner) hex4() (rune, error) {
	if s.pos+4 > len(s.data) {
		return 0, s.errf("truncated \\u escape")
	}
	n, err := strconv.ParseUint(string(s.data[s.pos:s.pos+4]), 16, 32)
	if err != nil {
		return 0, s.errf("invalid \\u escape")
	}
	s.pos += 4
	return rune(n), nil
}

func (s *scanner) array() ([]any, error) {
	s.pos++ // consume '['
	out := []any{}
	s.skipSpace()
	if s.pos < len(s.data) && s.data[s.pos] == ']' {
		s.pos++
		return out, nil
	}
	for {
		s.skipSpace()
		v, err := s.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		s.skipSpace()
		if s.pos >= len(s.data) {
			return nil, s.errf("unterminated array")
		}
		switch s.data[s.pos] {
		case ',':
			s.pos++
		case ']':
			s.pos++
			return out, nil
		default:
			return nil, s.errf("expected ',' or ']'")
		}
	}
}

func (s *scanner) object() (*Dict, error) {
	s.pos++ // consume '{'
	d := NewDict()
	s.skipSpace()
	if s.pos < len(s.data) && s.data[s.pos] == '}' {
		s.pos++
		return d, nil
	}
	for {
		s.skipSpace()
		key, err := s.string()
		if err != nil {
			return nil, err
		}
		s.skipSpace()
		if s.pos >= len(s.data) || s.data[s.pos] != ':' {
			return nil, s.errf("expected ':' after object key")
		}
		s.pos++
		s.skipSpace()
		v, err := s.value()
		if err != nil {
			return nil, err
		}
		d.Set(key, v)
		s.skipSpace()
		if s.pos >= len(s.data) {
			return nil, s.errf("unterminated object")
		}
		switch s.data[s.pos] {
		case ',':
			s.pos++
		case '}':
			s.pos++
			return d, nil
		default:
			return nil, s.errf("expected ',' or '}'")
		}
	}
}
