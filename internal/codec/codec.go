// Package codec encodes free-text fields for the comma-separated canonical
// form that secrets are persisted in.
//
// Only the bytes that would break line framing are escaped, so ordinary
// names and values are stored exactly as typed.
package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Separator delimits the fields of a canonical line.
const Separator = ","

// ErrBadEscape is returned by Decode for a truncated or unknown escape.
var ErrBadEscape = errors.New("bad escape sequence")

var encoder = strings.NewReplacer(
	"%", "%25",
	",", "%2C",
	"\n", "%0A",
	"\r", "%0D",
)

// Encode escapes s so that it contains no separator and no line break.
func Encode(s string) string {
	return encoder.Replace(s)
}

// Decode is the exact inverse of Encode.
func Decode(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("%w at offset %d", ErrBadEscape, i)
		}
		switch s[i+1 : i+3] {
		case "25":
			b.WriteByte('%')
		case "2C":
			b.WriteByte(',')
		case "0A":
			b.WriteByte('\n')
		case "0D":
			b.WriteByte('\r')
		default:
			return "", fmt.Errorf("%w at offset %d", ErrBadEscape, i)
		}
		i += 2
	}
	return b.String(), nil
}

// Join concatenates already encoded fields into one line.
func Join(fields ...string) string {
	return strings.Join(fields, Separator)
}

// Split breaks a canonical line into its raw (still encoded) fields.
func Split(line string) []string {
	return strings.Split(line, Separator)
}
