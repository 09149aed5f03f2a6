// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lua

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// unquoteShort decodes a quoted string literal including its delimiters.
func unquoteShort(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != raw[len(raw)-1] || (raw[0] != '"' && raw[0] != '\'') {
		return "", errors.New("unfinished string")
	}
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	b.Grow(len(body))
	for x := 0; x < len(body); x = x + 1 {
		c := body[x]
		if c != '\\' {
			_ = b.WriteByte(c)
			continue
		}
		x = x + 1
		if x >= len(body) {
			return "", errors.New("unfinished string")
		}
		switch c = body[x]; c {
		case 'a':
			_ = b.WriteByte('\a')
		case 'b':
			_ = b.WriteByte('\b')
		case 'f':
			_ = b.WriteByte('\f')
		case 'n':
			_ = b.WriteByte('\n')
		case 'r':
			_ = b.WriteByte('\r')
		case 't':
			_ = b.WriteByte('\t')
		case 'v':
			_ = b.WriteByte('\v')
		case '\\', '"', '\'':
			_ = b.WriteByte(c)
		case '\n', '\r':
			_ = b.WriteByte('\n')
			if x+1 < len(body) && (body[x+1] == '\n' || body[x+1] == '\r') && body[x+1] != c {
				x = x + 1
			}
		case 'x':
			if x+2 >= len(body) || !isHexDigit(body[x+1]) || !isHexDigit(body[x+2]) {
				return "", errors.New("hexadecimal digit expected")
			}
			v, _ := strconv.ParseUint(body[x+1:x+3], 16, 8)
			_ = b.WriteByte(byte(v))
			x = x + 2
		case 'z':
			for x+1 < len(body) && isSpace(body[x+1]) {
				x = x + 1
			}
		case 'u':
			if x+1 >= len(body) || body[x+1] != '{' {
				return "", errors.New("missing '{' in \\u{xxxx}")
			}
			end := x + 2
			var r uint64
			for end < len(body) && isHexDigit(body[end]) {
				r = r<<4 | uint64(hexValue(body[end]))
				if r > 0x7FFFFFFF {
					return "", errors.New("UTF-8 value too large")
				}
				end = end + 1
			}
			if end == x+2 {
				return "", errors.New("hexadecimal digit expected")
			}
			if end >= len(body) || body[end] != '}' {
				return "", errors.New("missing '}' in \\u{xxxx}")
			}
			_, _ = b.WriteString(encodeUTF8(uint32(r)))
			x = end
		default:
			if !isDigit(c) {
				return "", fmt.Errorf("invalid escape sequence '\\%c'", c)
			}
			end := x
			for end < len(body) && end < x+3 && isDigit(body[end]) {
				end = end + 1
			}
			v, _ := strconv.Atoi(body[x:end])
			if v > math.MaxUint8 {
				return "", errors.New("decimal escape too large")
			}
			_ = b.WriteByte(byte(v))
			x = end - 1
		}
	}
	return b.String(), nil
}

// longBracketLevel returns the number of '=' between the brackets that open
// a long string or long comment body.
func longBracketLevel(open string) int {
	return strings.Count(open[:strings.IndexByte(open[1:], '[')+1], "=")
}

// longStringValue returns the content of a long bracket literal. A newline
// directly after the opening bracket is not part of the value and every
// other line break becomes "\n".
func longStringValue(raw string) string {
	level := longBracketLevel(raw)
	body := raw[level+2 : len(raw)-level-2]
	switch {
	case strings.HasPrefix(body, "\r\n"), strings.HasPrefix(body, "\n\r"):
		body = body[2:]
	case strings.HasPrefix(body, "\n"), strings.HasPrefix(body, "\r"):
		body = body[1:]
	}
	return normalizeNewlines(body)
}

// normalizeNewlines pairs line breaks the same way the lexer does: "\r\n"
// and "\n\r" are one break, a lone "\r" or "\n" is another.
func normalizeNewlines(s string) string {
	if strings.IndexByte(s, '\r') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for x := 0; x < len(s); x = x + 1 {
		c := s[x]
		if c != '\n' && c != '\r' {
			b.WriteByte(c)
			continue
		}
		if x+1 < len(s) && (s[x+1] == '\n' || s[x+1] == '\r') && s[x+1] != c {
			x = x + 1
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// encodeUTF8 follows the six byte UTF-8 scheme of RFC 2279 so that every value
// up to 2^31 can be escaped.
func encodeUTF8(r uint32) string {
	if r < 0x80 {
		return string([]byte{byte(r)})
	}
	var buf [8]byte
	n := 7
	mfb := uint32(0x3f)
	for {
		buf[n] = byte(0x80 | (r & 0x3f))
		n = n - 1
		r = r >> 6
		mfb = mfb >> 1
		if r <= mfb {
			break
		}
	}
	buf[n] = byte((^mfb << 1) | r)
	return string(buf[n:])
}

// numberValue converts a numeral to its value. Integers that do not fit in
// 64 bits become floats, except hexadecimal integers which wrap around.
func numberValue(text string) (int64, float64, bool, error) {
	malformed := fmt.Errorf("malformed number near '%s'", text)
	if len(text) > 1 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		return hexNumberValue(text[2:], malformed)
	}
	for x := 0; x < len(text); x = x + 1 {
		c := text[x]
		if !isDigit(c) && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return 0, 0, false, malformed
		}
	}
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, 0, false, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, 0, false, malformed
	}
	return 0, f, true, nil
}

func hexNumberValue(digits string, malformed error) (int64, float64, bool, error) {
	if digits == "" {
		return 0, 0, false, malformed
	}
	if !strings.ContainsAny(digits, ".pP") {
		var v uint64
		for x := 0; x < len(digits); x = x + 1 {
			if !isHexDigit(digits[x]) {
				return 0, 0, false, malformed
			}
			v = v<<4 | uint64(hexValue(digits[x]))
		}
		return int64(v), 0, false, nil
	}
	mantissa := digits
	exponent := "0"
	if idx := strings.IndexAny(digits, "pP"); idx >= 0 {
		mantissa = digits[:idx]
		exponent = digits[idx+1:]
	}
	if mantissa == "" || mantissa == "." || strings.Count(mantissa, ".") > 1 {
		return 0, 0, false, malformed
	}
	for x := 0; x < len(mantissa); x = x + 1 {
		if mantissa[x] != '.' && !isHexDigit(mantissa[x]) {
			return 0, 0, false, malformed
		}
	}
	f, err := strconv.ParseFloat("0x"+mantissa+"p"+exponent, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, 0, false, malformed
	}
	return 0, f, true, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c)
}
