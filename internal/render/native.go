package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
)

// ErrEmptyDocument is returned when the markup has no renderable text
var ErrEmptyDocument = errors.New("markup contains no renderable text")

const ptToMM = 25.4 / 72

// Native lays out HTML on A4 pages with the embedded Go fonts. It supports the
// block elements and CSS properties found in report markup, not the full
// CSS box model.
type Native struct {
	now func() time.Time
}

func NewNative() *Native {
	return &Native{now: time.Now}
}

func (n *Native) Name() string {
	return EngineNative
}

func (n *Native) Render(ctx context.Context, markup, stylesheet string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocks, err := ParseMarkup(markup)
	if err != nil {
		return nil, err
	}
	if !hasText(blocks) {
		return nil, ErrEmptyDocument
	}
	if err := checkBlocks(blocks); err != nil {
		return nil, err
	}

	sheet, err := ParseStylesheet(stylesheet)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	now := n.now()
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("reportgenie", true)
	pdf.SetCompression(true)

	l := newLayout(pdf, sheet)
	if title := documentTitle(blocks); title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.AddPage()

	for i := 0; i < len(blocks); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b := blocks[i]
		switch b.Kind {
		case BlockHeading:
			l.heading(b)
		case BlockParagraph:
			l.paragraph(b)
		case BlockListItem:
			l.listItem(b)
		case BlockRule:
			l.rule()
		case BlockTableRow:
			j := i
			for j < len(blocks) && blocks[j].Kind == BlockTableRow {
				j++
			}
			l.table(blocks[i:j])
			i = j - 1
		}

		if pdf.Err() {
			return nil, fmt.Errorf("layout: %w", pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func hasText(blocks []Block) bool {
	for _, b := range blocks {
		if strings.TrimSpace(b.Text()) != "" {
			return true
		}
	}
	return false
}

func checkBlocks(blocks []Block) error {
	texts := make([]string, 0, 2*len(blocks))
	for _, b := range blocks {
		texts = append(texts, b.Marker, b.Text())
	}
	return checkGlyphs(texts...)
}

func documentTitle(blocks []Block) string {
	for _, b := range blocks {
		if b.Kind == BlockHeading {
			return strings.TrimSpace(b.Text())
		}
	}
	return ""
}

// textStyle is the resolved typography of a block
type textStyle struct {
	family     string
	sizePt     float64
	bold       bool
	italic     bool
	color      Color
	align      string
	lineHeight float64
	border     *Border
	background *Color
}

func (s textStyle) lineMM() float64 {
	return s.sizePt * ptToMM * s.lineHeight
}

func (s textStyle) fontStyle(span Span) string {
	var out string
	if s.bold || span.Bold {
		out += "B"
	}
	if s.italic || span.Italic {
		out += "I"
	}
	return out
}

type layout struct {
	pdf   *fpdf.Fpdf
	fonts map[string]bool
	sheet *Stylesheet

	body      textStyle
	highlight textStyle

	left, right, width float64
}

var headingSizes = map[string]float64{"h1": 20, "h2": 16, "h3": 13.5, "h4": 12, "h5": 11, "h6": 10}

func newLayout(pdf *fpdf.Fpdf, sheet *Stylesheet) *layout {
	l := &layout{
		pdf:   pdf,
		fonts: map[string]bool{},
		sheet: sheet,
	}

	l.body = resolve(textStyle{
		family:     fontProportional,
		sizePt:     12,
		lineHeight: 1.25,
		align:      "L",
	}, sheet.Lookup("html", "body"))

	l.highlight = resolve(textStyle{
		family:     l.body.family,
		sizePt:     l.body.sizePt,
		color:      Color{192, 57, 43},
		lineHeight: l.body.lineHeight,
	}, sheet.Lookup(".highlight", "mark", "span.highlight"))

	margins := [4]float64{20, 20, 20, 20}
	if m, ok := Margins(sheet.Page()["margin"], l.body.sizePt); ok {
		margins = m
	} else if m, ok := Margins(sheet.Lookup("body")["margin"], l.body.sizePt); ok {
		margins = m
	}

	pageW, _ := pdf.GetPageSize()
	l.left, l.right = margins[3], margins[1]
	l.width = pageW - l.left - l.right

	pdf.SetMargins(margins[3], margins[0], margins[1])
	pdf.SetAutoPageBreak(true, margins[2])
	pdf.SetCellMargin(0)
	return l
}

// style resolves a block's typography from the body style and the sheet
func (l *layout) style(b Block) textStyle {
	base := l.body
	base.border = nil
	base.background = nil

	if size, ok := headingSizes[b.Tag]; ok {
		base.sizePt = size * l.body.sizePt / 12
		base.bold = true
		base.lineHeight = 1.2
	}

	return resolve(base, l.sheet.Lookup(Selectors(b.Tag, b.Classes)...))
}

func resolve(s textStyle, d Declarations) textStyle {
	if v, ok := d["font-family"]; ok {
		s.family = fontFamily(v)
	}
	if v, ok := d["font"]; ok {
		for _, part := range strings.Fields(v) {
			if pt, ok := FontSize(part, s.sizePt); ok {
				s.sizePt = pt
			}
		}
		if i := strings.LastIndexByte(v, ' '); i >= 0 {
			s.family = fontFamily(v[i+1:])
		}
	}
	if v, ok := d["font-size"]; ok {
		if pt, ok := FontSize(v, s.sizePt); ok && pt > 0 {
			s.sizePt = pt
		}
	}
	if v, ok := d["font-weight"]; ok {
		s.bold = isBold(v)
	}
	if v, ok := d["font-style"]; ok {
		s.italic = v == "italic" || v == "oblique"
	}
	if v, ok := d["color"]; ok {
		if c, ok := ParseColor(v); ok {
			s.color = c
		}
	}
	if v, ok := d["text-align"]; ok {
		switch v {
		case "center":
			s.align = "C"
		case "right":
			s.align = "R"
		case "justify":
			s.align = "J"
		default:
			s.align = "L"
		}
	}
	if v, ok := d["line-height"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			s.lineHeight = f
		} else if strings.HasSuffix(v, "%") {
			if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64); err == nil && f > 0 {
				s.lineHeight = f / 100
			}
		} else if mm, ok := Length(v, s.sizePt); ok && mm > 0 {
			s.lineHeight = mm / (s.sizePt * ptToMM)
		}
	}
	for _, prop := range []string{"border-bottom", "border"} {
		if v, ok := d[prop]; ok {
			if b, ok := ParseBorder(v); ok {
				s.border = &b
			}
			break
		}
	}
	for _, prop := range []string{"background-color", "background"} {
		if v, ok := d[prop]; ok {
			if c, ok := ParseColor(v); ok {
				s.background = &c
			}
			break
		}
	}
	return s
}

func isBold(v string) bool {
	switch v {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 600
}

func fontFamily(value string) string {
	for _, name := range strings.Split(strings.ToLower(value), ",") {
		name = strings.TrimSpace(name)
		switch {
		case strings.Contains(name, "courier"), strings.Contains(name, "mono"):
			return fontMono
		case name != "":
			return fontProportional
		}
	}
	return fontProportional
}

func (l *layout) setFont(s textStyle, span Span) {
	if span.Highlight {
		hl := l.highlight
		style := s.fontStyle(span)
		if hl.bold && !strings.Contains(style, "B") {
			style = "B" + style
		}
		l.useFont(s.family, style, s.sizePt)
		l.pdf.SetTextColor(hl.color.R, hl.color.G, hl.color.B)
		return
	}
	l.useFont(s.family, s.fontStyle(span), s.sizePt)
	l.pdf.SetTextColor(s.color.R, s.color.G, s.color.B)
}

func (l *layout) useFont(family, style string, sizePt float64) {
	registerFont(l.pdf, l.fonts, family, style)
	l.pdf.SetFont(family, style, sizePt)
}

// spans writes flowing text from the current position
func (l *layout) spans(s textStyle, spans []Span) {
	h := s.lineMM()
	if s.align != "L" && s.align != "" {
		l.setFont(s, Span{})
		l.pdf.MultiCell(0, h, spansText(spans), "", s.align, s.background != nil)
		return
	}
	for _, span := range spans {
		l.setFont(s, span)
		l.pdf.Write(h, span.Text)
	}
	l.pdf.Ln(h)
}

func (l *layout) fill(s textStyle) {
	if s.background != nil {
		l.pdf.SetFillColor(s.background.R, s.background.G, s.background.B)
	}
}

func (l *layout) heading(b Block) {
	s := l.style(b)
	sizeMM := s.sizePt * ptToMM

	if l.pdf.GetY() > l.topY()+1 {
		l.pdf.Ln(sizeMM * 0.6)
	}
	l.keepWithNext(s.lineMM() * 3)

	l.pdf.SetX(l.left)
	l.fill(s)
	l.spans(s, b.Spans)

	if s.border != nil {
		y := l.pdf.GetY() + 1
		l.pdf.SetDrawColor(s.border.Color.R, s.border.Color.G, s.border.Color.B)
		l.pdf.SetLineWidth(s.border.Width)
		l.pdf.Line(l.left, y, l.left+l.width, y)
		l.pdf.Ln(2 + s.border.Width)
	}
	l.pdf.Ln(sizeMM * 0.3)
}

func (l *layout) paragraph(b Block) {
	s := l.style(b)
	l.pdf.SetX(l.left)
	l.fill(s)
	l.spans(s, b.Spans)
	l.pdf.Ln(s.sizePt * ptToMM * 0.5)
}

func (l *layout) listItem(b Block) {
	listTag := "ul"
	if _, err := strconv.Atoi(strings.TrimSuffix(b.Marker, ".")); err == nil {
		listTag = "ol"
	}

	s := l.style(b)
	listDecls := l.sheet.Lookup(Selectors(listTag, b.List)...)
	s = resolve(s, listDecls)

	indent := 6.0
	if v, ok := listDecls["padding-left"]; ok {
		if mm, ok := Length(v, s.sizePt); ok {
			indent = mm
		}
	}
	indent = math.Max(indent, 4) * float64(b.Depth+1)

	h := s.lineMM()
	l.pdf.SetLeftMargin(l.left + indent)
	l.pdf.SetX(l.left + indent - 4)
	l.setFont(s, Span{})
	l.pdf.CellFormat(4, h, b.Marker, "", 0, "L", false, 0, "")
	for _, span := range b.Spans {
		l.setFont(s, span)
		l.pdf.Write(h, span.Text)
	}
	l.pdf.Ln(h)
	l.pdf.SetLeftMargin(l.left)
	l.pdf.SetX(l.left)
	l.pdf.Ln(s.sizePt * ptToMM * 0.2)
}

func (l *layout) rule() {
	y := l.pdf.GetY() + 2
	l.pdf.SetDrawColor(160, 160, 160)
	l.pdf.SetLineWidth(0.2)
	l.pdf.Line(l.left, y, l.left+l.width, y)
	l.pdf.Ln(4)
}

func (l *layout) table(rows []Block) {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r.Cells))
	}
	if cols == 0 {
		return
	}

	tableDecls := l.sheet.Lookup("table")
	border := Border{Width: 0.2, Color: Color{160, 160, 160}}
	if v, ok := tableDecls["border"]; ok {
		if b, ok := ParseBorder(v); ok {
			border = b
		}
	}

	colW := l.width / float64(cols)
	const pad = 1.5
	_, pageH := l.pdf.GetPageSize()
	_, _, _, bottom := l.pdf.GetMargins()

	l.pdf.SetDrawColor(border.Color.R, border.Color.G, border.Color.B)
	l.pdf.SetLineWidth(border.Width)

	for _, row := range rows {
		tag := "td"
		if row.Header {
			tag = "th"
		}
		s := resolve(l.body, tableDecls)
		s.border, s.background = nil, nil
		s = resolve(s, l.sheet.Lookup(tag))
		s.bold = s.bold || row.Header
		if _, ok := l.sheet.Lookup(tag)["font-size"]; !ok {
			s.sizePt = l.body.sizePt * 0.9
		}
		lineH := s.sizePt * ptToMM * 1.25

		l.setFont(s, Span{})
		wrapped := make([][]string, cols)
		lines := 1
		for i := 0; i < cols; i++ {
			if i < len(row.Cells) {
				wrapped[i] = l.pdf.SplitText(spansText(row.Cells[i]), colW-2*pad)
			}
			lines = max(lines, len(wrapped[i]))
		}
		rowH := float64(lines)*lineH + 2*pad

		y := l.pdf.GetY()
		if y+rowH > pageH-bottom {
			l.pdf.AddPage()
			y = l.pdf.GetY()
		}

		rectStyle := "D"
		if s.background != nil {
			l.fill(s)
			rectStyle = "FD"
		}

		for i := 0; i < cols; i++ {
			x := l.left + float64(i)*colW
			l.pdf.Rect(x, y, colW, rowH, rectStyle)
			for j, line := range wrapped[i] {
				l.pdf.SetXY(x+pad, y+pad+float64(j)*lineH)
				l.pdf.CellFormat(colW-2*pad, lineH, line, "", 0, "L", false, 0, "")
			}
		}
		l.pdf.SetXY(l.left, y+rowH)
	}
	l.pdf.Ln(l.body.sizePt * ptToMM * 0.6)
}

func (l *layout) topY() float64 {
	_, top, _, _ := l.pdf.GetMargins()
	return top
}

// keepWithNext starts a new page when less than h remains
func (l *layout) keepWithNext(h float64) {
	_, pageH := l.pdf.GetPageSize()
	_, _, _, bottom := l.pdf.GetMargins()
	if l.pdf.GetY()+h > pageH-bottom {
		l.pdf.AddPage()
	}
}
