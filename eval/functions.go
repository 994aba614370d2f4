package eval

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/benbjohnson/less/ast"
)

// function implements a built-in function. A nil return value means the call
// is emitted unchanged with its evaluated arguments.
type function func(e *evaluator, call *ast.Call, args []Value) Value

// functions holds the built-in functions by lowercase name.
var functions = map[string]function{
	// Color constructors.
	"rgb":  fnRGB,
	"rgba": fnRGBA,
	"hsl":  fnHSL,
	"hsla": fnHSLA,

	// Color operations.
	"lighten":    adjustHSL(func(h, s, l, amt float64) (float64, float64, float64) { return h, s, l + amt }),
	"darken":     adjustHSL(func(h, s, l, amt float64) (float64, float64, float64) { return h, s, l - amt }),
	"saturate":   adjustHSL(func(h, s, l, amt float64) (float64, float64, float64) { return h, s + amt, l }),
	"desaturate": adjustHSL(func(h, s, l, amt float64) (float64, float64, float64) { return h, s - amt, l }),
	"fadein":     adjustAlpha(func(a, amt float64) float64 { return a + amt }),
	"fadeout":    adjustAlpha(func(a, amt float64) float64 { return a - amt }),
	"fade":       adjustAlpha(func(a, amt float64) float64 { return amt }),
	"spin":       fnSpin,
	"mix":        fnMix,
	"greyscale":  fnGreyscale,
	"contrast":   fnContrast,

	// Color channels.
	"red":        colorChannel(func(c *Color) *Number { return &Number{Value: math.Round(clamp(c.R, 0, 255))} }),
	"green":      colorChannel(func(c *Color) *Number { return &Number{Value: math.Round(clamp(c.G, 0, 255))} }),
	"blue":       colorChannel(func(c *Color) *Number { return &Number{Value: math.Round(clamp(c.B, 0, 255))} }),
	"alpha":      colorChannel(func(c *Color) *Number { return &Number{Value: c.A} }),
	"hue":        colorChannel(func(c *Color) *Number { h, _, _ := c.hsl(); return &Number{Value: math.Round(h)} }),
	"saturation": colorChannel(func(c *Color) *Number { _, s, _ := c.hsl(); return &Number{Value: math.Round(s * 100), Unit: "%"} }),
	"lightness":  colorChannel(func(c *Color) *Number { _, _, l := c.hsl(); return &Number{Value: math.Round(l * 100), Unit: "%"} }),

	// Math.
	"round":      fnRound,
	"ceil":       mathFunc(math.Ceil),
	"floor":      mathFunc(math.Floor),
	"abs":        mathFunc(math.Abs),
	"sqrt":       mathFunc(math.Sqrt),
	"percentage": fnPercentage,
	"min":        extremum(func(a, b float64) bool { return a < b }),
	"max":        extremum(func(a, b float64) bool { return a > b }),
	"unit":       fnUnit,

	// Strings.
	"e":      fnE,
	"escape": fnEscape,

	// Type checks.
	"iscolor":      isType(func(v Value) bool { _, ok := toColor(v); return ok }),
	"isnumber":     isType(func(v Value) bool { _, ok := v.(*Number); return ok }),
	"isstring":     isType(func(v Value) bool { _, ok := v.(*Quoted); return ok }),
	"iskeyword":    isType(func(v Value) bool { k, ok := v.(*Keyword); return ok && !isColorName(k.Value) }),
	"isurl":        isType(func(v Value) bool { _, ok := v.(*URL); return ok }),
	"ispixel":      isUnit("px"),
	"ispercentage": isUnit("%"),
	"isem":         isUnit("em"),
	"isunit":       fnIsUnit,

	// Guards.
	"default": fnDefault,
}

// arity fails unless args has between min and max values.
func (e *evaluator) arity(call *ast.Call, args []Value, min, max int) {
	if len(args) < min || len(args) > max {
		e.fail(call.Pos, "wrong number of arguments for %s()", call.Name)
	}
}

// color returns args[i] as a color or fails.
func (e *evaluator) color(call *ast.Call, args []Value, i int) *Color {
	c, ok := toColor(args[i])
	if !ok {
		e.fail(call.Pos, "argument %d of %s() must be a color, got %s", i+1, call.Name, args[i])
	}
	return c
}

// number returns args[i] as a number or fails.
func (e *evaluator) number(call *ast.Call, args []Value, i int) *Number {
	n, ok := args[i].(*Number)
	if !ok {
		e.fail(call.Pos, "argument %d of %s() must be a number, got %s", i+1, call.Name, args[i])
	}
	return n
}

// hsl returns the hue in degrees and the saturation and lightness as 0-1.
func (c *Color) hsl() (h, s, l float64) {
	return colorful.Color{R: clamp(c.R, 0, 255) / 255, G: clamp(c.G, 0, 255) / 255, B: clamp(c.B, 0, 255) / 255}.Hsl()
}

// hsla returns a color from hue, saturation, lightness and alpha.
func hsla(h, s, l, a float64) *Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := colorful.Hsl(h, clamp(s, 0, 1), clamp(l, 0, 1))
	return &Color{R: c.R * 255, G: c.G * 255, B: c.B * 255, A: clamp(a, 0, 1)}
}

// fraction returns a percentage as 0-1. Plain numbers are used as-is.
func fraction(n *Number) float64 {
	if n.Unit == "%" {
		return n.Value / 100
	}
	return n.Value
}

// numbers returns args as numbers or false if any argument is not a number.
func numbers(args []Value) ([]*Number, bool) {
	a := make([]*Number, len(args))
	for i, v := range args {
		n, ok := v.(*Number)
		if !ok {
			return nil, false
		}
		a[i] = n
	}
	return a, true
}

func rgbChannel(n *Number) float64 {
	if n.Unit == "%" {
		return n.Value * 2.55
	}
	return n.Value
}

func fnRGB(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 3, 3)
	a, ok := numbers(args)
	if !ok {
		return nil
	}
	return &Color{R: clamp(rgbChannel(a[0]), 0, 255), G: clamp(rgbChannel(a[1]), 0, 255), B: clamp(rgbChannel(a[2]), 0, 255), A: 1}
}

func fnRGBA(e *evaluator, call *ast.Call, args []Value) Value {
	if len(args) == 2 {
		c, ok := toColor(args[0])
		n, nok := args[1].(*Number)
		if !ok || !nok {
			return nil
		}
		return &Color{R: c.R, G: c.G, B: c.B, A: clamp(fraction(n), 0, 1)}
	}
	e.arity(call, args, 4, 4)
	a, ok := numbers(args)
	if !ok {
		return nil
	}
	return &Color{R: clamp(rgbChannel(a[0]), 0, 255), G: clamp(rgbChannel(a[1]), 0, 255), B: clamp(rgbChannel(a[2]), 0, 255), A: clamp(fraction(a[3]), 0, 1)}
}

func fnHSL(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 3, 3)
	a, ok := numbers(args)
	if !ok {
		return nil
	}
	return hsla(a[0].Value, fraction(a[1]), fraction(a[2]), 1)
}

func fnHSLA(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 4, 4)
	a, ok := numbers(args)
	if !ok {
		return nil
	}
	return hsla(a[0].Value, fraction(a[1]), fraction(a[2]), fraction(a[3]))
}

// adjustHSL returns a function that changes a color in HSL space by a
// percentage amount.
func adjustHSL(fn func(h, s, l, amt float64) (float64, float64, float64)) function {
	return func(e *evaluator, call *ast.Call, args []Value) Value {
		e.arity(call, args, 2, 2)
		c, amt := e.color(call, args, 0), e.number(call, args, 1)
		h, s, l := c.hsl()
		h, s, l = fn(h, s, l, amt.Value/100)
		return hsla(h, s, l, c.A)
	}
}

// adjustAlpha returns a function that changes the alpha of a color by a
// percentage amount.
func adjustAlpha(fn func(a, amt float64) float64) function {
	return func(e *evaluator, call *ast.Call, args []Value) Value {
		e.arity(call, args, 2, 2)
		c, amt := e.color(call, args, 0), e.number(call, args, 1)
		return &Color{R: c.R, G: c.G, B: c.B, A: clamp(fn(c.A, amt.Value/100), 0, 1)}
	}
}

func fnSpin(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 2, 2)
	c, deg := e.color(call, args, 0), e.number(call, args, 1)
	h, s, l := c.hsl()
	return hsla(h+deg.Value, s, l, c.A)
}

// fnMix blends two colors. The weight is the share of the first color and
// the blend accounts for the difference in alpha.
func fnMix(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 2, 3)
	c1, c2 := e.color(call, args, 0), e.color(call, args, 1)
	p := 0.5
	if len(args) == 3 {
		p = e.number(call, args, 2).Value / 100
	}

	w := p*2 - 1
	a := c1.A - c2.A
	var w1 float64
	if w*a == -1 {
		w1 = (w + 1) / 2
	} else {
		w1 = ((w+a)/(1+w*a) + 1) / 2
	}
	w2 := 1 - w1

	return &Color{
		R: c1.R*w1 + c2.R*w2,
		G: c1.G*w1 + c2.G*w2,
		B: c1.B*w1 + c2.B*w2,
		A: c1.A*p + c2.A*(1-p),
	}
}

func fnGreyscale(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 1, 1)
	c := e.color(call, args, 0)
	h, _, l := c.hsl()
	return hsla(h, 0, l, c.A)
}

// fnContrast returns the light color for dark inputs and the dark color for
// light inputs, using the luma of the first argument.
func fnContrast(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 1, 4)
	c := e.color(call, args, 0)
	dark, light := &Color{A: 1}, &Color{R: 255, G: 255, B: 255, A: 1}
	threshold := 0.43
	if len(args) > 1 {
		dark = e.color(call, args, 1)
	}
	if len(args) > 2 {
		light = e.color(call, args, 2)
	}
	if len(args) > 3 {
		threshold = fraction(e.number(call, args, 3))
	}

	luma := (0.2126*clamp(c.R, 0, 255)/255 + 0.7152*clamp(c.G, 0, 255)/255 + 0.0722*clamp(c.B, 0, 255)/255) * c.A
	if luma < threshold {
		return light
	}
	return dark
}

// colorChannel returns a function that extracts a component of a color.
func colorChannel(fn func(c *Color) *Number) function {
	return func(e *evaluator, call *ast.Call, args []Value) Value {
		e.arity(call, args, 1, 1)
		return fn(e.color(call, args, 0))
	}
}

func fnRound(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 1, 2)
	n := e.number(call, args, 0)
	places := 0.0
	if len(args) == 2 {
		places = e.number(call, args, 1).Value
	}
	scale := math.Pow(10, places)
	return &Number{Value: math.Round(n.Value*scale) / scale, Unit: n.Unit}
}

// mathFunc returns a function that applies fn to a number, keeping its unit.
func mathFunc(fn func(float64) float64) function {
	return func(e *evaluator, call *ast.Call, args []Value) Value {
		e.arity(call, args, 1, 1)
		n := e.number(call, args, 0)
		return &Number{Value: fn(n.Value), Unit: n.Unit}
	}
}

func fnPercentage(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 1, 1)
	return &Number{Value: e.number(call, args, 0).Value * 100, Unit: "%"}
}

// extremum returns a function that picks the argument for which less
// returns true against every other argument.
func extremum(less func(a, b float64) bool) function {
	return func(e *evaluator, call *ast.Call, args []Value) Value {
		if len(args) == 0 {
			e.fail(call.Pos, "%s() requires at least one argument", call.Name)
		}
		best := e.number(call, args, 0)
		for i := range args[1:] {
			if n := e.number(call, args, i+1); less(n.Value, best.Value) {
				best = n
			}
		}
		return best
	}
}

func fnUnit(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 1, 2)
	n := e.number(call, args, 0)
	if len(args) == 1 {
		return &Number{Value: n.Value}
	}
	return &Number{Value: n.Value, Unit: unquote(args[1])}
}

func fnE(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 1, 1)
	return &Anonymous{Value: unquote(args[0])}
}

// fnEscape percent-encodes characters that are special in URLs.
func fnEscape(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 1, 1)
	var sb strings.Builder
	for _, b := range []byte(unquote(args[0])) {
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
			sb.WriteByte(b)
		case strings.IndexByte("-_.!~*'/?@&+$,", b) != -1:
			sb.WriteByte(b)
		default:
			fmt.Fprintf(&sb, "%%%02X", b)
		}
	}
	return &Anonymous{Value: sb.String()}
}

// isType returns a type check function.
func isType(fn func(Value) bool) function {
	return func(e *evaluator, call *ast.Call, args []Value) Value {
		e.arity(call, args, 1, 1)
		return Boolean(fn(args[0]))
	}
}

// fnDefault is true inside the guard of a mixin candidate only when no
// other candidate of the same call matches.
func fnDefault(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 0, 0)
	return Boolean(e.isDefault)
}

// isUnit returns a function that checks for a number with the given unit.
func isUnit(unit string) function {
	return isType(func(v Value) bool {
		n, ok := v.(*Number)
		return ok && n.Unit == unit
	})
}

func fnIsUnit(e *evaluator, call *ast.Call, args []Value) Value {
	e.arity(call, args, 2, 2)
	n, ok := args[0].(*Number)
	return Boolean(ok && n.Unit == unquote(args[1]))
}
