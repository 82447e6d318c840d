package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declarations maps lower-case property names to their value text
type Declarations map[string]string

type rule struct {
	selector string
	decls    Declarations
}

// Stylesheet is the subset of CSS the native renderer understands: simple
// type, class and type.class selectors plus the @page margin
type Stylesheet struct {
	rules []rule
	page  Declarations
}

// ParseStylesheet reads CSS text. Unsupported constructs are skipped.
func ParseStylesheet(text string) (*Stylesheet, error) {
	sheet := &Stylesheet{page: Declarations{}}
	p := css.NewParser(parse.NewInputString(text), false)

	var current []string
	inPage := false
	depth := 0
	lastErr := -1

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.HasParseError() && p.Offset() > lastErr {
				lastErr = p.Offset()
				continue
			}
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) && !p.HasParseError() {
				return nil, fmt.Errorf("stylesheet: %w", err)
			}
			return sheet, nil

		case css.BeginAtRuleGrammar:
			depth++
			inPage = depth == 1 && string(data) == "@page"

		case css.EndAtRuleGrammar:
			depth--
			inPage = false

		case css.BeginRulesetGrammar:
			current = nil
			if depth == 0 {
				for _, sel := range strings.Split(tokensText(p.Values()), ",") {
					if sel = strings.TrimSpace(sel); sel != "" {
						current = append(current, strings.ToLower(sel))
					}
				}
			}

		case css.EndRulesetGrammar:
			current = nil

		case css.DeclarationGrammar:
			prop := strings.ToLower(string(data))
			value := strings.TrimSpace(tokensText(p.Values()))
			if inPage {
				sheet.page[prop] = value
				continue
			}
			for _, sel := range current {
				sheet.add(sel, prop, value)
			}
		}
	}
}

func (s *Stylesheet) add(selector, prop, value string) {
	for i := range s.rules {
		if s.rules[i].selector == selector {
			s.rules[i].decls[prop] = value
			return
		}
	}
	s.rules = append(s.rules, rule{selector: selector, decls: Declarations{prop: value}})
}

// Page returns the @page declarations
func (s *Stylesheet) Page() Declarations {
	return s.page
}

// Lookup returns the declarations of the given selectors merged in order,
// later selectors overriding earlier ones
func (s *Stylesheet) Lookup(selectors ...string) Declarations {
	out := Declarations{}
	for _, sel := range selectors {
		for _, r := range s.rules {
			if r.selector != sel {
				continue
			}
			for k, v := range r.decls {
				out[k] = v
			}
		}
	}
	return out
}

// Selectors returns the selectors that apply to an element, least specific first
func Selectors(tag string, classes []string) []string {
	out := []string{tag}
	for _, c := range classes {
		out = append(out, "."+c)
	}
	for _, c := range classes {
		out = append(out, tag+"."+c)
	}
	return out
}

func tokensText(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken:
			b.WriteByte(' ')
		case css.StringToken:
			b.WriteString(unquote(string(t.Data)))
		default:
			b.Write(t.Data)
		}
	}
	return b.String()
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Length converts a CSS length to millimetres. em is relative to fontPt.
func Length(value string, fontPt float64) (float64, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return 0, false
	}
	if v == "0" {
		return 0, true
	}

	units := []struct {
		suffix string
		mm     float64
	}{
		{"mm", 1},
		{"cm", 10},
		{"in", 25.4},
		{"pt", 25.4 / 72},
		{"px", 25.4 / 96},
		{"rem", 12 * 25.4 / 72},
		{"em", fontPt * 25.4 / 72},
	}

	for _, u := range units {
		if strings.HasSuffix(v, u.suffix) {
			n, err := strconv.ParseFloat(strings.TrimSuffix(v, u.suffix), 64)
			if err != nil {
				return 0, false
			}
			return n * u.mm, true
		}
	}
	return 0, false
}

// FontSize converts a CSS font-size to points
func FontSize(value string, parentPt float64) (float64, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	switch {
	case strings.HasSuffix(v, "pt"):
		return parseNumber(strings.TrimSuffix(v, "pt"), 1)
	case strings.HasSuffix(v, "px"):
		return parseNumber(strings.TrimSuffix(v, "px"), 0.75)
	case strings.HasSuffix(v, "rem"):
		return parseNumber(strings.TrimSuffix(v, "rem"), 12)
	case strings.HasSuffix(v, "em"):
		return parseNumber(strings.TrimSuffix(v, "em"), parentPt)
	case strings.HasSuffix(v, "%"):
		return parseNumber(strings.TrimSuffix(v, "%"), parentPt/100)
	}

	named := map[string]float64{
		"xx-small": 7, "x-small": 7.5, "small": 10, "medium": 12,
		"large": 13.5, "x-large": 18, "xx-large": 24,
	}
	if pt, ok := named[v]; ok {
		return pt, true
	}
	return 0, false
}

func parseNumber(s string, scale float64) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n * scale, true
}

// Margins expands the CSS margin shorthand into top, right, bottom, left
func Margins(value string, fontPt float64) ([4]float64, bool) {
	var out [4]float64
	parts := strings.Fields(value)
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		mm, ok := Length(p, fontPt)
		if !ok {
			return out, false
		}
		vals = append(vals, mm)
	}

	switch len(vals) {
	case 1:
		out = [4]float64{vals[0], vals[0], vals[0], vals[0]}
	case 2:
		out = [4]float64{vals[0], vals[1], vals[0], vals[1]}
	case 3:
		out = [4]float64{vals[0], vals[1], vals[2], vals[1]}
	case 4:
		out = [4]float64{vals[0], vals[1], vals[2], vals[3]}
	default:
		return out, false
	}
	return out, true
}

// Color is an RGB triple
type Color struct {
	R, G, B int
}

var namedColors = map[string]Color{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"navy":   {0, 0, 128},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
	"silver": {192, 192, 192},
	"maroon": {128, 0, 0},
	"orange": {255, 165, 0},
	"yellow": {255, 255, 0},
	"teal":   {0, 128, 128},
	"purple": {128, 0, 128},
}

// ParseColor reads #rgb, #rrggbb, rgb(r,g,b) and a few named colors
func ParseColor(value string) (Color, bool) {
	v := strings.TrimSpace(strings.ToLower(value))

	if c, ok := namedColors[v]; ok {
		return c, true
	}

	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return Color{}, false
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, false
		}
		return Color{int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)}, true
	}

	if strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")") {
		parts := strings.Split(v[4:len(v)-1], ",")
		if len(parts) != 3 {
			return Color{}, false
		}
		var rgb [3]int
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return Color{}, false
			}
			rgb[i] = n
		}
		return Color{rgb[0], rgb[1], rgb[2]}, true
	}

	return Color{}, false
}

// Border is a parsed border shorthand
type Border struct {
	Width float64
	Color Color
}

// ParseBorder reads "<width> <style> <color>" in any order
func ParseBorder(value string) (Border, bool) {
	b := Border{Width: 0.26}
	found := false
	for _, part := range strings.Fields(value) {
		if part == "none" || part == "hidden" {
			return Border{}, false
		}
		if mm, ok := Length(part, 12); ok {
			b.Width = mm
			found = true
			continue
		}
		if c, ok := ParseColor(part); ok {
			b.Color = c
			found = true
			continue
		}
		switch part {
		case "solid", "dashed", "dotted", "double":
			found = true
		}
	}
	return b, found && b.Width > 0
}
