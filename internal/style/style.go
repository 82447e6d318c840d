// Package style holds the closed catalog of report styles. Every style-specific
// decision (instruction template, output format, stylesheet, artifact naming)
// is read from a single Info record.
package style

import (
	"embed"
	"fmt"
	"strings"

	"github.com/sant0-9/reportgenie/internal/errs"
)

//go:embed css/*.css
var stylesheets embed.FS

// Style is one of the supported report styles
type Style int

const (
	Simple Style = iota
	Modern
	Academic
)

// Format is the markup family a style produces
type Format int

const (
	FormatHTML Format = iota
	FormatLaTeX
)

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatLaTeX:
		return "latex"
	default:
		return "unknown"
	}
}

// Info describes everything downstream components need to know about a style
type Info struct {
	Style       Style
	Name        string
	Slug        string
	Caption     string
	Description string
	Template    string
	Format      Format
	Stylesheet  string
	Filename    string
	MIMEType    string
}

const (
	MIMEPDF  = "application/pdf"
	MIMEText = "text/plain"
)

var catalog = []Info{
	{
		Style:       Simple,
		Name:        "Simple",
		Slug:        "simple",
		Caption:     "Plain Text (Times New Roman)",
		Description: "Clean document with headings and bullet lists, rendered to PDF",
		Template:    "SIMPLE_HTML",
		Format:      FormatHTML,
		Stylesheet:  mustStylesheet("simple"),
		Filename:    "simple_report.pdf",
		MIMEType:    MIMEPDF,
	},
	{
		Style:       Modern,
		Name:        "Modern",
		Slug:        "modern",
		Caption:     "Corporate (McKinsey Style)",
		Description: "Executive summary, table of contents and highlighted metrics, rendered to PDF",
		Template:    "MODERN_HTML",
		Format:      FormatHTML,
		Stylesheet:  mustStylesheet("modern"),
		Filename:    "modern_report.pdf",
		MIMEType:    MIMEPDF,
	},
	{
		Style:       Academic,
		Name:        "Academic",
		Slug:        "academic",
		Caption:     "LaTeX Source (Research)",
		Description: "Complete LaTeX article with abstract and references, delivered as source",
		Template:    "ACADEMIC_LATEX",
		Format:      FormatLaTeX,
		Filename:    "report.tex",
		MIMEType:    MIMEText,
	},
}

func mustStylesheet(name string) string {
	data, err := stylesheets.ReadFile("css/" + name + ".css")
	if err != nil {
		panic(fmt.Sprintf("style: missing stylesheet %s: %v", name, err))
	}
	return string(data)
}

// Lookup returns the catalog record for s
func Lookup(s Style) (Info, error) {
	if s < 0 || int(s) >= len(catalog) {
		return Info{}, errs.New(errs.KindUnknownStyle, fmt.Sprintf("unknown style: %d", int(s)))
	}
	return catalog[s], nil
}

// All returns every style in display order
func All() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Parse resolves a style by name or slug, ignoring case
func Parse(name string) (Style, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, info := range catalog {
		if n == info.Slug || n == strings.ToLower(info.Name) {
			return info.Style, nil
		}
	}
	return 0, errs.New(errs.KindUnknownStyle, fmt.Sprintf("unknown style: %q", name))
}

// Names returns the slugs of all styles
func Names() []string {
	names := make([]string, len(catalog))
	for i, info := range catalog {
		names[i] = info.Slug
	}
	return names
}

func (s Style) String() string {
	if info, err := Lookup(s); err == nil {
		return info.Name
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// Next cycles forward through the catalog
func (s Style) Next() Style {
	return Style((int(s) + 1) % len(catalog))
}

// Prev cycles backward through the catalog
func (s Style) Prev() Style {
	return Style((int(s) + len(catalog) - 1) % len(catalog))
}
