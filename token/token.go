package token

import (
	"fmt"
	"strings"
)

// Token represents a lexical token.
type Token interface {
	token()
	String() string
	Position() Pos
}

func (_ *Ident) token()          {}
func (_ *Function) token()       {}
func (_ *AtKeyword) token()      {}
func (_ *Interpolation) token()  {}
func (_ *Hash) token()           {}
func (_ *String) token()         {}
func (_ *BadString) token()      {}
func (_ *URL) token()            {}
func (_ *BadURL) token()         {}
func (_ *Delim) token()          {}
func (_ *Number) token()         {}
func (_ *Percentage) token()     {}
func (_ *Dimension) token()      {}
func (_ *UnicodeRange) token()   {}
func (_ *IncludeMatch) token()   {}
func (_ *DashMatch) token()      {}
func (_ *PrefixMatch) token()    {}
func (_ *SuffixMatch) token()    {}
func (_ *SubstringMatch) token() {}
func (_ *Column) token()         {}
func (_ *Whitespace) token()     {}
func (_ *Comment) token()        {}
func (_ *BadComment) token()     {}
func (_ *CDO) token()            {}
func (_ *CDC) token()            {}
func (_ *Colon) token()          {}
func (_ *Semicolon) token()      {}
func (_ *Comma) token()          {}
func (_ *LBrack) token()         {}
func (_ *RBrack) token()         {}
func (_ *LParen) token()         {}
func (_ *RParen) token()         {}
func (_ *LBrace) token()         {}
func (_ *RBrace) token()         {}
func (_ *EOF) token()            {}

// Ident represents an identifier such as a property name or keyword.
// Escapes are kept in their source form.
type Ident struct {
	Value string
	Pos   Pos
}

func (t *Ident) String() string { return t.Value }
func (t *Ident) Position() Pos  { return t.Pos }

// Function represents an identifier immediately followed by "(".
type Function struct {
	Value string
	Pos   Pos
}

func (t *Function) String() string { return t.Value + "(" }
func (t *Function) Position() Pos  { return t.Pos }

// AtKeyword represents "@" followed by a name. Variables and at-rules
// both scan as at-keywords.
type AtKeyword struct {
	Value string
	Pos   Pos
}

func (t *AtKeyword) String() string { return "@" + t.Value }
func (t *AtKeyword) Position() Pos  { return t.Pos }

// Interpolation represents a "@{name}" variable interpolation.
type Interpolation struct {
	Value string
	Pos   Pos
}

func (t *Interpolation) String() string { return "@{" + t.Value + "}" }
func (t *Interpolation) Position() Pos  { return t.Pos }

// Hash represents "#" followed by a name. Type is "id" when the name is a
// valid identifier and "unrestricted" otherwise.
type Hash struct {
	Type  string
	Value string
	Pos   Pos
}

func (t *Hash) String() string { return "#" + t.Value }
func (t *Hash) Position() Pos  { return t.Pos }

// String represents a quoted string. Value holds the raw text between the
// quotes, escapes included.
type String struct {
	Ending rune
	Value  string
	Pos    Pos
}

func (t *String) String() string { return string(t.Ending) + t.Value + string(t.Ending) }
func (t *String) Position() Pos  { return t.Pos }

// BadString represents an unterminated string.
type BadString struct {
	Pos Pos
}

func (t *BadString) String() string { return "''" }
func (t *BadString) Position() Pos  { return t.Pos }

// URL represents a url() token. Ending is the quote character used inside
// the parentheses or zero if the url was unquoted.
type URL struct {
	Ending rune
	Value  string
	Pos    Pos
}

func (t *URL) String() string {
	if t.Ending != 0 {
		return "url(" + string(t.Ending) + t.Value + string(t.Ending) + ")"
	}
	return "url(" + t.Value + ")"
}
func (t *URL) Position() Pos { return t.Pos }

// BadURL represents a malformed url() token.
type BadURL struct {
	Pos Pos
}

func (t *BadURL) String() string { return "url()" }
func (t *BadURL) Position() Pos  { return t.Pos }

// Delim represents a single code point that has no other meaning.
type Delim struct {
	Value string
	Pos   Pos
}

func (t *Delim) String() string { return t.Value }
func (t *Delim) Position() Pos  { return t.Pos }

// Number represents a unitless number. Type is "integer" or "number".
type Number struct {
	Type   string
	Number float64
	Value  string
	Pos    Pos
}

func (t *Number) String() string { return t.Value }
func (t *Number) Position() Pos  { return t.Pos }

// Percentage represents a number followed by "%".
type Percentage struct {
	Type   string
	Number float64
	Value  string
	Pos    Pos
}

func (t *Percentage) String() string { return t.Value }
func (t *Percentage) Position() Pos  { return t.Pos }

// Dimension represents a number followed by a unit.
type Dimension struct {
	Type   string
	Number float64
	Unit   string
	Value  string
	Pos    Pos
}

func (t *Dimension) String() string { return t.Value }
func (t *Dimension) Position() Pos  { return t.Pos }

// UnicodeRange represents a "U+" range.
type UnicodeRange struct {
	Start int
	End   int
	Pos   Pos
}

func (t *UnicodeRange) String() string {
	if t.Start == t.End {
		return fmt.Sprintf("U+%X", t.Start)
	}
	return fmt.Sprintf("U+%X-%X", t.Start, t.End)
}
func (t *UnicodeRange) Position() Pos { return t.Pos }

type IncludeMatch struct {
	Pos Pos
}
type DashMatch struct {
	Pos Pos
}
type PrefixMatch struct {
	Pos Pos
}
type SuffixMatch struct {
	Pos Pos
}
type SubstringMatch struct {
	Pos Pos
}

func (t *IncludeMatch) String() string   { return "~=" }
func (t *IncludeMatch) Position() Pos    { return t.Pos }
func (t *DashMatch) String() string      { return "|=" }
func (t *DashMatch) Position() Pos       { return t.Pos }
func (t *PrefixMatch) String() string    { return "^=" }
func (t *PrefixMatch) Position() Pos     { return t.Pos }
func (t *SuffixMatch) String() string    { return "$=" }
func (t *SuffixMatch) Position() Pos     { return t.Pos }
func (t *SubstringMatch) String() string { return "*=" }
func (t *SubstringMatch) Position() Pos  { return t.Pos }

type Column struct {
	Pos Pos
}

func (t *Column) String() string { return "||" }
func (t *Column) Position() Pos  { return t.Pos }

type Whitespace struct {
	Value string
	Pos   Pos
}

func (t *Whitespace) String() string { return t.Value }
func (t *Whitespace) Position() Pos  { return t.Pos }

// Comment represents a block comment, delimiters included.
// Line comments are discarded by the scanner.
type Comment struct {
	Value string
	Pos   Pos
}

func (t *Comment) String() string { return t.Value }
func (t *Comment) Position() Pos  { return t.Pos }

// BadComment represents an unterminated block comment.
type BadComment struct {
	Pos Pos
}

func (t *BadComment) String() string { return "/**/" }
func (t *BadComment) Position() Pos  { return t.Pos }

type CDO struct {
	Pos Pos
}
type CDC struct {
	Pos Pos
}

func (t *CDO) String() string { return "<!--" }
func (t *CDO) Position() Pos  { return t.Pos }
func (t *CDC) String() string { return "-->" }
func (t *CDC) Position() Pos  { return t.Pos }

type Colon struct {
	Pos Pos
}
type Semicolon struct {
	Pos Pos
}
type Comma struct {
	Pos Pos
}
type LBrack struct {
	Pos Pos
}
type RBrack struct {
	Pos Pos
}
type LParen struct {
	Pos Pos
}
type RParen struct {
	Pos Pos
}
type LBrace struct {
	Pos Pos
}
type RBrace struct {
	Pos Pos
}

func (t *Colon) String() string     { return ":" }
func (t *Colon) Position() Pos      { return t.Pos }
func (t *Semicolon) String() string { return ";" }
func (t *Semicolon) Position() Pos  { return t.Pos }
func (t *Comma) String() string     { return "," }
func (t *Comma) Position() Pos      { return t.Pos }
func (t *LBrack) String() string    { return "[" }
func (t *LBrack) Position() Pos     { return t.Pos }
func (t *RBrack) String() string    { return "]" }
func (t *RBrack) Position() Pos     { return t.Pos }
func (t *LParen) String() string    { return "(" }
func (t *LParen) Position() Pos     { return t.Pos }
func (t *RParen) String() string    { return ")" }
func (t *RParen) Position() Pos     { return t.Pos }
func (t *LBrace) String() string    { return "{" }
func (t *LBrace) Position() Pos     { return t.Pos }
func (t *RBrace) String() string    { return "}" }
func (t *RBrace) Position() Pos     { return t.Pos }

type EOF struct {
	Pos Pos
}

func (t *EOF) String() string { return "EOF" }
func (t *EOF) Position() Pos  { return t.Pos }

// Pos specifies the file, line and character position of a token.
// The Char and Line are both zero-based indexes.
type Pos struct {
	Filename string
	Line     int
	Char     int
}

// String returns a "file:line:col" representation with one-based numbers.
func (p Pos) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line+1, p.Char+1)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line+1, p.Char+1)
}

// Join concatenates the string form of a token list.
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.String())
	}
	return sb.String()
}
