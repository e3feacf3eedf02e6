// SPDX-License-Identifier: MIT

// Package escape quotes strings for inclusion in JSON text.
package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// Quote escapes src for inclusion between the double quotes of a JSON string.
//
// The enclosing quotes are not added.
func Quote(src mem.RO) []byte {
	return AppendQuote(make([]byte, 0, src.Len()), src)
}

// AppendQuote appends the escaped form of src to buf.
func AppendQuote(buf []byte, src mem.RO) []byte {
	for src.Len() > 0 {
		r, n := mem.DecodeRune(src)
		if n == 0 {
			n = 1
		}

		switch {
		case r < ' ':
			if b := controlEsc[r]; b != 0 && b != ' ' {
				buf = append(buf, '\\', b)
			} else {
				buf = append(buf, '\\', 'u', '0', '0', hexDigit[int(r>>4)], hexDigit[int(r&15)])
			}
		case r == '\\' || r == '"':
			buf = append(buf, '\\', byte(r))
		case r < utf8.RuneSelf:
			buf = append(buf, byte(r))
		case r == utf8.RuneError && n == 1:
			buf = append(buf, `\ufffd`...)
		case r == '\u2028':
			buf = append(buf, `\u2028`...)
		case r == '\u2029':
			buf = append(buf, `\u2029`...)
		default:
			buf = mem.Append(buf, src.SliceTo(n))
		}

		src = src.SliceFrom(n)
	}

	return buf
}
