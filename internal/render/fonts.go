package render

import (
	"errors"
	"fmt"
	"sync"
	"unicode"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// ErrUnsupportedGlyph is returned when the text uses a character the embedded
// fonts cannot draw
var ErrUnsupportedGlyph = errors.New("character not supported by the embedded fonts")

const (
	fontProportional = "Go"
	fontMono         = "GoMono"
)

// faces holds the TrueType data for each family and fpdf style string
var faces = map[string]map[string][]byte{
	fontProportional: {
		"":   goregular.TTF,
		"B":  gobold.TTF,
		"I":  goitalic.TTF,
		"BI": gobolditalic.TTF,
	},
	fontMono: {
		"":   gomono.TTF,
		"B":  gomonobold.TTF,
		"I":  gomonoitalic.TTF,
		"BI": gomonobolditalic.TTF,
	},
}

var (
	coverageOnce sync.Once
	coverage     []*sfnt.Font
	coverageErr  error
)

// registerFont embeds a face the first time it is used so unused faces stay
// out of the file
func registerFont(pdf *fpdf.Fpdf, registered map[string]bool, family, style string) {
	key := family + style
	if registered[key] {
		return
	}
	registered[key] = true
	pdf.AddUTF8FontFromBytes(family, style, faces[family][style])
}

// checkGlyphs reports the first rune in text that no embedded family can draw
func checkGlyphs(texts ...string) error {
	coverageOnce.Do(func() {
		for _, data := range [][]byte{goregular.TTF, gomono.TTF} {
			f, err := sfnt.Parse(data)
			if err != nil {
				coverageErr = fmt.Errorf("parse font: %w", err)
				return
			}
			coverage = append(coverage, f)
		}
	})
	if coverageErr != nil {
		return coverageErr
	}

	var buf sfnt.Buffer
	for _, text := range texts {
		for _, r := range text {
			if unicode.IsSpace(r) || unicode.IsControl(r) {
				continue
			}
			ok := false
			for _, f := range coverage {
				if idx, err := f.GlyphIndex(&buf, r); err == nil && idx != 0 {
					ok = true
					break
				}
			}
			if !ok {
				return fmt.Errorf("%w: %q (U+%04X)", ErrUnsupportedGlyph, r, r)
			}
		}
	}
	return nil
}
