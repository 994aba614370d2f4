// Package minify compresses generated CSS. It removes comments and
// insignificant whitespace, drops the last semicolon of each block and
// shortens hex colors in declaration values. Strings and urls are copied
// unchanged.
package minify

import (
	"bytes"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// String returns the compressed form of s.
func String(s string) string {
	return string(Bytes([]byte(s)))
}

// Bytes returns the compressed form of b.
func Bytes(b []byte) []byte {
	l := css.NewLexer(parse.NewInputBytes(b))

	var out bytes.Buffer
	var stmt []item
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			writeStatement(&out, stmt, true)
			return out.Bytes()
		case css.LeftBraceToken:
			writeStatement(&out, stmt, false)
			out.WriteByte('{')
			stmt = stmt[:0]
		case css.SemicolonToken:
			if writeStatement(&out, stmt, true) {
				out.WriteByte(';')
			}
			stmt = stmt[:0]
		case css.RightBraceToken:
			writeStatement(&out, stmt, true)
			if n := out.Len(); n > 0 && out.Bytes()[n-1] == ';' {
				out.Truncate(n - 1)
			}
			out.WriteByte('}')
			stmt = stmt[:0]
		case css.CommentToken, css.WhitespaceToken:
			// Comments separate tokens like whitespace does.
			if n := len(stmt); n > 0 && stmt[n-1].tt != css.WhitespaceToken {
				stmt = append(stmt, item{tt: css.WhitespaceToken})
			}
		default:
			stmt = append(stmt, item{tt: tt, data: append([]byte{}, data...)})
		}
	}
}

// item is a buffered token.
type item struct {
	tt   css.TokenType
	data []byte
}

// writeStatement writes the tokens of a selector, at-rule prelude or
// declaration. It returns false if there was nothing to write.
func writeStatement(out *bytes.Buffer, stmt []item, decl bool) bool {
	for len(stmt) > 0 && stmt[len(stmt)-1].tt == css.WhitespaceToken {
		stmt = stmt[:len(stmt)-1]
	}
	if len(stmt) == 0 {
		return false
	}

	colon := -1
	if decl {
		for i, it := range stmt {
			if it.tt == css.ColonToken {
				colon = i
				break
			}
		}
	}

	depth := 0
	for i, it := range stmt {
		switch it.tt {
		case css.WhitespaceToken:
			if !dropSpace(stmt[i-1], stmt[i+1], decl, depth, i-1 == colon || i+1 == colon) {
				out.WriteByte(' ')
			}
			continue
		case css.LeftParenthesisToken, css.FunctionToken:
			depth++
		case css.RightParenthesisToken:
			depth--
		case css.HashToken:
			if colon != -1 && i > colon {
				out.Write(shortHex(it.data))
				continue
			}
		}
		out.Write(it.data)
	}
	return true
}

// dropSpace returns true if the whitespace between prev and next can be
// removed. Whitespace before "(" is kept as it separates media query terms.
func dropSpace(prev, next item, decl bool, depth int, nearColon bool) bool {
	switch {
	case prev.tt == css.CommaToken, next.tt == css.CommaToken:
		return true
	case prev.tt == css.LeftParenthesisToken, prev.tt == css.FunctionToken, next.tt == css.RightParenthesisToken:
		return true
	case prev.tt == css.LeftBracketToken, next.tt == css.RightBracketToken:
		return true
	case decl && nearColon:
		return true
	case depth > 0 && prev.tt == css.ColonToken:
		return true
	case decl && isDelim(next, '!'):
		return true
	case !decl && (isCombinator(prev) || isCombinator(next)):
		return true
	}
	return false
}

func isDelim(it item, ch byte) bool {
	return it.tt == css.DelimToken && len(it.data) == 1 && it.data[0] == ch
}

func isCombinator(it item) bool {
	return isDelim(it, '>') || isDelim(it, '+') || isDelim(it, '~')
}

// shortHex returns "#abc" for a hash of the form "#aabbcc".
func shortHex(b []byte) []byte {
	if len(b) != 7 || b[0] != '#' {
		return b
	}
	for _, ch := range b[1:] {
		if !isHex(ch) {
			return b
		}
	}
	if lower(b[1]) != lower(b[2]) || lower(b[3]) != lower(b[4]) || lower(b[5]) != lower(b[6]) {
		return b
	}
	return []byte{'#', b[1], b[3], b[5]}
}

func isHex(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func lower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + 'a' - 'A'
	}
	return ch
}
