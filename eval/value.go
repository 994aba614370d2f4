package eval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// Value represents an evaluated expression. String returns the CSS form.
type Value interface {
	value()
	String() string
}

func (_ *Number) value()    {}
func (_ *Color) value()     {}
func (_ *Keyword) value()   {}
func (_ *Quoted) value()    {}
func (_ *URL) value()       {}
func (_ *List) value()      {}
func (_ *Anonymous) value() {}

// Number represents a number with an optional unit.
type Number struct {
	Value float64
	Unit  string
}

func (n *Number) String() string { return formatNumber(n.Value) + n.Unit }

// Color represents an RGBA color. Channels are 0-255 and alpha is 0-1.
// Raw holds the source text of a literal that has not been modified.
type Color struct {
	R, G, B float64
	A       float64
	Raw     string
}

func (c *Color) String() string {
	if c.A < 1 {
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", channel(c.R), channel(c.G), channel(c.B), formatNumber(clamp(c.A, 0, 1)))
	} else if c.Raw != "" {
		return c.Raw
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

// Keyword represents a bare identifier.
type Keyword struct {
	Value string
}

func (k *Keyword) String() string { return k.Value }

// Quoted represents a string. Escaped strings print without quotes.
type Quoted struct {
	Value   string
	Quote   rune
	Escaped bool
}

func (q *Quoted) String() string {
	if q.Escaped {
		return q.Value
	}
	quote := q.Quote
	if quote == 0 {
		quote = '"'
	}
	return string(quote) + q.Value + string(quote)
}

// URL represents a url() value.
type URL struct {
	Value string
	Quote rune
}

func (u *URL) String() string {
	if u.Quote != 0 {
		return "url(" + string(u.Quote) + u.Value + string(u.Quote) + ")"
	}
	return "url(" + u.Value + ")"
}

// List represents a comma or space separated list of values.
type List struct {
	Items []Value
	Sep   string
}

func (l *List) String() string {
	a := make([]string, len(l.Items))
	for i, v := range l.Items {
		a[i] = v.String()
	}
	return strings.Join(a, l.Sep)
}

// Anonymous represents text that is emitted unchanged.
type Anonymous struct {
	Value string
}

func (a *Anonymous) String() string { return a.Value }

// Boolean returns the keyword form of a boolean.
func Boolean(v bool) *Keyword {
	if v {
		return &Keyword{Value: "true"}
	}
	return &Keyword{Value: "false"}
}

// ParseColor parses a hex color or a named color.
func ParseColor(s string) (*Color, bool) {
	if !strings.HasPrefix(s, "#") && !isColorName(s) {
		return nil, false
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return nil, false
	}
	return &Color{R: c.R * 255, G: c.G * 255, B: c.B * 255, A: c.A}, true
}

// isColorName returns true if s is a CSS named color. Keywords such as
// "inherit" or "currentColor" are not colors.
func isColorName(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')) {
			return false
		}
	}
	_, err := csscolorparser.Parse(s)
	return err == nil
}

// toColor converts v to a color if it is a color or a named color keyword.
func toColor(v Value) (*Color, bool) {
	switch v := v.(type) {
	case *Color:
		return v, true
	case *Keyword:
		return ParseColor(v.Value)
	}
	return nil, false
}

// formatNumber formats v with at most eight decimal places.
func formatNumber(v float64) string {
	v = math.Round(v*1e8) / 1e8
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

func channel(v float64) int { return int(math.Round(clamp(v, 0, 255))) }

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// equal returns true if two values compare equal in a guard or pattern.
func equal(a, b Value) bool {
	switch a := a.(type) {
	case *Number:
		if b, ok := b.(*Number); ok {
			return a.Value == b.Value && (a.Unit == b.Unit || a.Unit == "" || b.Unit == "")
		}
		return false
	case *Quoted:
		if b, ok := b.(*Quoted); ok {
			return a.Value == b.Value
		}
	}
	if ca, ok := toColor(a); ok {
		if cb, ok := toColor(b); ok {
			return channel(ca.R) == channel(cb.R) && channel(ca.G) == channel(cb.G) &&
				channel(ca.B) == channel(cb.B) && ca.A == cb.A
		}
	}
	return unquote(a) == unquote(b)
}

// unquote returns the text of a string without its quotes, or the CSS form
// of any other value.
func unquote(v Value) string {
	if q, ok := v.(*Quoted); ok {
		return q.Value
	}
	return v.String()
}
