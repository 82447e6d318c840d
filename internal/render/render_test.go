package render

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/reportgenie/internal/style"
)

func TestParseStylesheetSimple(t *testing.T) {
	info, err := style.Lookup(style.Simple)
	require.NoError(t, err)

	sheet, err := ParseStylesheet(info.Stylesheet)
	require.NoError(t, err)

	body := sheet.Lookup("body")
	assert.Equal(t, "Times New Roman", body["font-family"])
	assert.Equal(t, "12pt", body["font-size"])
	assert.Equal(t, "2cm", body["margin"])

	assert.Equal(t, "bold", sheet.Lookup("h1")["font-weight"])
	assert.Equal(t, "bold", sheet.Lookup("h2")["font-weight"])
	assert.Equal(t, "20px", sheet.Lookup("ul")["padding-left"])
	assert.Empty(t, sheet.Page())
}

func TestParseStylesheetModern(t *testing.T) {
	info, err := style.Lookup(style.Modern)
	require.NoError(t, err)

	sheet, err := ParseStylesheet(info.Stylesheet)
	require.NoError(t, err)

	assert.Equal(t, "2.5cm", sheet.Page()["margin"])
	assert.Equal(t, "Helvetica,sans-serif", sheet.Lookup("body")["font-family"])
	assert.Equal(t, "1.6", sheet.Lookup("body")["line-height"])

	title := sheet.Lookup(Selectors("h1", []string{"title"})...)
	assert.Equal(t, "#2c3e50", title["color"])
	assert.Equal(t, "24pt", title["font-size"])
	assert.Equal(t, "2px solid #2c3e50", title["border-bottom"])
	assert.Equal(t, "center", title["text-align"])
}

func TestStylesheetLaterRulesWin(t *testing.T) {
	sheet, err := ParseStylesheet(`p { color: red } .note { color: blue } p { font-size: 9pt }
@media print { p { color: green } }`)
	require.NoError(t, err)

	d := sheet.Lookup(Selectors("p", []string{"note"})...)
	assert.Equal(t, "blue", d["color"])
	assert.Equal(t, "9pt", d["font-size"])
	assert.Equal(t, "red", sheet.Lookup("p")["color"])
}

func TestStylesheetTolerant(t *testing.T) {
	sheet, err := ParseStylesheet(`p { color: ; } h1 { font-weight: bold`)
	require.NoError(t, err)
	assert.NotNil(t, sheet)
}

func TestLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2cm", 20, true},
		{"2.5cm", 25, true},
		{"10mm", 10, true},
		{"1in", 25.4, true},
		{"72pt", 25.4, true},
		{"96px", 25.4, true},
		{"0", 0, true},
		{"auto", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := Length(tt.in, 12)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.want, got, 0.001, tt.in)
	}
}

func TestFontSize(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12pt", 12},
		{"16px", 12},
		{"2em", 24},
		{"150%", 18},
		{"large", 13.5},
	}
	for _, tt := range tests {
		got, ok := FontSize(tt.in, 12)
		require.True(t, ok, tt.in)
		assert.InDelta(t, tt.want, got, 0.001, tt.in)
	}
}

func TestMargins(t *testing.T) {
	m, ok := Margins("1cm 2cm", 12)
	require.True(t, ok)
	assert.Equal(t, [4]float64{10, 20, 10, 20}, m)

	_, ok = Margins("auto", 12)
	assert.False(t, ok)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#2c3e50", Color{44, 62, 80}, true},
		{"#fff", Color{255, 255, 255}, true},
		{"rgb(1, 2, 3)", Color{1, 2, 3}, true},
		{"Navy", Color{0, 0, 128}, true},
		{"#12", Color{}, false},
		{"chartreuse-ish", Color{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseBorder(t *testing.T) {
	b, ok := ParseBorder("2px solid #2c3e50")
	require.True(t, ok)
	assert.InDelta(t, 0.529, b.Width, 0.001)
	assert.Equal(t, Color{44, 62, 80}, b.Color)

	_, ok = ParseBorder("none")
	assert.False(t, ok)
}

func TestParseMarkup(t *testing.T) {
	markup := `<h1 class="title">Q3 <em>Review</em></h1>
<p>Revenue grew <span class="highlight">12%</span> this quarter.</p>
<ul class="toc"><li>Summary</li><li>Risks<ul><li>Churn</li></ul></li></ul>
<ol><li>First</li><li>Second</li></ol>
<table><thead><tr><th>Metric</th><th>Value</th></tr></thead><tbody><tr><td>ARR</td><td>$4M</td></tr></tbody></table>
<img src="x.png"><script>alert(1)</script>
<hr>
trailing text`

	blocks, err := ParseMarkup(markup)
	require.NoError(t, err)

	var kinds []BlockKind
	for _, b := range blocks {
		kinds = append(kinds, b.Kind)
	}
	assert.Equal(t, []BlockKind{
		BlockHeading, BlockParagraph,
		BlockListItem, BlockListItem, BlockListItem,
		BlockListItem, BlockListItem,
		BlockTableRow, BlockTableRow,
		BlockRule, BlockParagraph,
	}, kinds)

	title := blocks[0]
	assert.Equal(t, "h1", title.Tag)
	assert.Equal(t, []string{"title"}, title.Classes)
	assert.Equal(t, "Q3 Review", title.Text())
	assert.True(t, title.Spans[1].Italic)

	para := blocks[1]
	assert.Equal(t, "Revenue grew 12% this quarter.", para.Text())
	assert.True(t, para.Spans[1].Highlight)

	assert.Equal(t, []string{"toc"}, blocks[2].List)
	assert.Equal(t, "Churn", blocks[4].Text())
	assert.Equal(t, 1, blocks[4].Depth)
	assert.Equal(t, "•", blocks[2].Marker)
	assert.Equal(t, "2.", blocks[6].Marker)

	assert.True(t, blocks[7].Header)
	assert.False(t, blocks[8].Header)
	assert.Equal(t, "ARR $4M", blocks[8].Text())
	assert.True(t, blocks[7].Cells[0][0].Bold)

	assert.Equal(t, "trailing text", blocks[10].Text())
	for _, b := range blocks {
		assert.NotContains(t, b.Text(), "alert")
	}
}

func TestParseMarkupFullDocument(t *testing.T) {
	blocks, err := ParseMarkup(Document("<h2>Body</h2>", "h2 { color: red }"))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Body", blocks[0].Text())
}

func newTestNative() *Native {
	n := NewNative()
	n.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return n
}

func TestNativeRender(t *testing.T) {
	for _, info := range style.All() {
		if info.Format != style.FormatHTML {
			continue
		}
		t.Run(info.Name, func(t *testing.T) {
			markup := `<h1 class="title">Annual Report</h1><h2>Executive Summary</h2>
<p>Sales reached <span class="highlight">€1.2M</span>, up from last year.</p>
<ul class="toc"><li>Results</li><li>Outlook</li></ul>
<table><tr><th>Region</th><th>Sales</th></tr><tr><td>EMEA</td><td>600k</td></tr></table>`

			out, err := newTestNative().Render(context.Background(), markup, info.Stylesheet)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
			assert.Contains(t, string(out[len(out)-16:]), "%%EOF")
		})
	}
}

func TestNativeRenderDeterministic(t *testing.T) {
	a, err := newTestNative().Render(context.Background(), "<p>same</p>", "")
	require.NoError(t, err)
	b, err := newTestNative().Render(context.Background(), "<p>same</p>", "")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNativeRenderManyPages(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("<h2>Section</h2><p>")
		b.WriteString(strings.Repeat("Lorem ipsum dolor sit amet. ", 20))
		b.WriteString("</p><table><tr><td>a</td><td>b</td></tr></table>")
	}

	out, err := newTestNative().Render(context.Background(), b.String(), "body { margin: 1in; }")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestNativeRenderEmpty(t *testing.T) {
	for _, markup := range []string{"", "   ", "<p></p>", "<img src=a.png><script>x()</script>"} {
		_, err := newTestNative().Render(context.Background(), markup, "")
		assert.ErrorIs(t, err, ErrEmptyDocument, "%q", markup)
	}
}

func TestNativeRenderUnicode(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		wantErr bool
	}{
		{"greek and arrows", "<h1>Growth → 10% Ω</h1><p>Δ margin ≈ 2.5 pts, β = 0.8</p>", false},
		{"accents in table", "<table><tr><td>Zürich</td><td>Łódź</td></tr></table>", false},
		{"mono family", `<p class="code">x ≤ y</p>`, false},
		{"cjk", "<p>增长 10%</p>", true},
		{"cjk in list", "<ul><li>Growth</li><li>收入</li></ul>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newTestNative().Render(context.Background(), tt.markup, ".code { font-family: monospace; }")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedGlyph)
				return
			}
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		})
	}
}

func TestFontFamily(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"Times New Roman", fontProportional},
		{"Helvetica,sans-serif", fontProportional},
		{"'Courier New', monospace", fontMono},
		{"", fontProportional},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fontFamily(tt.value), tt.value)
	}
}

func TestNativeRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestNative().Render(ctx, "<p>x</p>", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, EngineNative, r.Name())

	r, err = New(Options{Engine: EngineAuto})
	require.NoError(t, err)
	assert.NotEmpty(t, r.Name())

	_, err = New(Options{Engine: "latex"})
	assert.Error(t, err)
}

func TestDocument(t *testing.T) {
	doc := Document("<h1>T</h1>", "body { margin: 2cm; }")
	assert.Equal(t, `<html><head><meta charset="utf-8"><style>body { margin: 2cm; }</style></head><body><h1>T</h1></body></html>`, doc)
}

func fakeEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "engine")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

func TestCommandRender(t *testing.T) {
	bin := fakeEngine(t, `cat > /dev/null; printf '%%PDF-1.7 fake'`)

	c, err := NewCommand(EngineWeasyPrint, bin, time.Second*10)
	require.NoError(t, err)
	assert.Equal(t, EngineWeasyPrint, c.Name())

	out, err := c.Render(context.Background(), "<p>x</p>", "")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(out))
}

func TestCommandRenderFailure(t *testing.T) {
	bin := fakeEngine(t, `cat > /dev/null; echo "bad markup" >&2; exit 1`)

	c, err := NewCommand(EngineWkhtmltopdf, bin, time.Second*10)
	require.NoError(t, err)

	_, err = c.Render(context.Background(), "<p>x</p>", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad markup")

	_, err = c.Render(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestCommandMissingBinary(t *testing.T) {
	_, err := NewCommand(EngineWeasyPrint, "/nonexistent/weasyprint", 0)
	assert.Error(t, err)
}
