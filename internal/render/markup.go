package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BlockKind is the layout class of a block
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockTableRow
	BlockRule
)

// Span is a run of text with uniform inline formatting
type Span struct {
	Text      string
	Bold      bool
	Italic    bool
	Highlight bool
}

// Block is one unit of vertical layout
type Block struct {
	Kind    BlockKind
	Tag     string
	Classes []string
	Spans   []Span

	// list items
	Depth  int
	Marker string
	List   []string // classes of the enclosing list

	// table rows
	Cells  [][]Span
	Header bool
}

// Text returns the block's plain text
func (b Block) Text() string {
	if b.Kind == BlockTableRow {
		cells := make([]string, len(b.Cells))
		for i, c := range b.Cells {
			cells[i] = spansText(c)
		}
		return strings.Join(cells, " ")
	}
	return spansText(b.Spans)
}

func spansText(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// ParseMarkup turns HTML, either a fragment or a full document, into blocks.
// Scripts, styles, images and the document head are dropped.
func ParseMarkup(markup string) ([]Block, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	p := &markupParser{}
	p.container(doc)
	p.flush()
	return p.blocks, nil
}

type markupParser struct {
	blocks  []Block
	pending []Span
}

type inlineState struct {
	bold, italic, highlight bool
}

func (p *markupParser) flush() {
	spans := trimSpans(p.pending)
	p.pending = nil
	if len(spans) > 0 {
		p.blocks = append(p.blocks, Block{Kind: BlockParagraph, Tag: "p", Spans: spans})
	}
}

func (p *markupParser) container(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.node(c)
	}
}

func (p *markupParser) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		p.pending = appendText(p.pending, n.Data, inlineState{})
		return
	case html.ElementNode:
	case html.DocumentNode:
		p.container(n)
		return
	default:
		return
	}

	switch n.DataAtom {
	case atom.Head, atom.Script, atom.Style, atom.Img, atom.Svg, atom.Iframe, atom.Object, atom.Template:
		return

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		p.flush()
		p.leaf(n, BlockHeading)

	case atom.P, atom.Blockquote, atom.Pre, atom.Figcaption, atom.Caption, atom.Dt, atom.Dd:
		p.flush()
		p.leaf(n, BlockParagraph)

	case atom.Ul, atom.Ol:
		p.flush()
		p.list(n, 0)

	case atom.Table:
		p.flush()
		p.table(n)

	case atom.Hr:
		p.flush()
		p.blocks = append(p.blocks, Block{Kind: BlockRule, Tag: "hr"})

	case atom.Br:
		p.pending = append(p.pending, Span{Text: "\n"})

	case atom.Html, atom.Body, atom.Div, atom.Section, atom.Article, atom.Main, atom.Header,
		atom.Footer, atom.Nav, atom.Aside, atom.Figure, atom.Dl, atom.Address:
		p.flush()
		p.container(n)
		p.flush()

	default:
		p.pending = p.inlineNode(n, p.pending, inlineState{})
	}
}

func (p *markupParser) leaf(n *html.Node, kind BlockKind) {
	spans := trimSpans(p.inline(n, nil, inlineState{}))
	if len(spans) == 0 {
		return
	}
	p.blocks = append(p.blocks, Block{
		Kind:    kind,
		Tag:     n.Data,
		Classes: classes(n),
		Spans:   spans,
	})
}

func (p *markupParser) list(n *html.Node, depth int) {
	ordered := n.DataAtom == atom.Ol
	listClasses := classes(n)
	index := 0

	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		index++

		marker := "•"
		if ordered {
			marker = fmt.Sprintf("%d.", index)
		}

		var spans []Span
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				nested = append(nested, c)
				continue
			}
			spans = p.inlineNode(c, spans, inlineState{})
		}

		if spans = trimSpans(spans); len(spans) > 0 {
			p.blocks = append(p.blocks, Block{
				Kind:    BlockListItem,
				Tag:     "li",
				Classes: classes(li),
				Spans:   spans,
				Depth:   depth,
				Marker:  marker,
				List:    listClasses,
			})
		}

		for _, sub := range nested {
			p.list(sub, depth+1)
		}
	}
}

func (p *markupParser) table(n *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				p.row(c)
			case atom.Caption:
				p.leaf(c, BlockParagraph)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			}
		}
	}
	walk(n)
}

func (p *markupParser) row(tr *html.Node) {
	block := Block{Kind: BlockTableRow, Tag: "tr", Classes: classes(tr), Header: true}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if c.DataAtom == atom.Td {
			block.Header = false
		}
		st := inlineState{bold: c.DataAtom == atom.Th}
		block.Cells = append(block.Cells, trimSpans(p.inline(c, nil, st)))
	}
	if len(block.Cells) > 0 {
		p.blocks = append(p.blocks, block)
	}
}

// inline collects the text under n's children
func (p *markupParser) inline(n *html.Node, spans []Span, st inlineState) []Span {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		spans = p.inlineNode(c, spans, st)
	}
	return spans
}

func (p *markupParser) inlineNode(n *html.Node, spans []Span, st inlineState) []Span {
	switch n.Type {
	case html.TextNode:
		return appendText(spans, n.Data, st)
	case html.ElementNode:
	default:
		return spans
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Img, atom.Svg:
		return spans
	case atom.Br:
		return append(spans, Span{Text: "\n", Bold: st.bold, Italic: st.italic, Highlight: st.highlight})
	case atom.B, atom.Strong:
		st.bold = true
	case atom.I, atom.Em, atom.Cite:
		st.italic = true
	case atom.Mark:
		st.highlight = true
	}

	if hasClass(n, "highlight") {
		st.highlight = true
	}

	// block children of inline content still separate their text
	switch n.DataAtom {
	case atom.P, atom.Div, atom.Li:
		spans = appendText(spans, " ", st)
	}
	return p.inline(n, spans, st)
}

// appendText collapses whitespace and merges with the previous span when the
// formatting matches
func appendText(spans []Span, text string, st inlineState) []Span {
	text = collapseSpace(text)
	if text == "" {
		return spans
	}

	if len(spans) > 0 {
		last := &spans[len(spans)-1]
		if strings.HasSuffix(last.Text, " ") || strings.HasSuffix(last.Text, "\n") {
			text = strings.TrimLeft(text, " ")
			if text == "" {
				return spans
			}
		}
		if last.Bold == st.bold && last.Italic == st.italic && last.Highlight == st.highlight {
			last.Text += text
			return spans
		}
	}

	return append(spans, Span{Text: text, Bold: st.bold, Italic: st.italic, Highlight: st.highlight})
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

// trimSpans strips leading and trailing whitespace and drops empty spans
func trimSpans(spans []Span) []Span {
	for len(spans) > 0 {
		spans[0].Text = strings.TrimLeft(spans[0].Text, " \n")
		if spans[0].Text != "" {
			break
		}
		spans = spans[1:]
	}
	for len(spans) > 0 {
		i := len(spans) - 1
		spans[i].Text = strings.TrimRight(spans[i].Text, " \n")
		if spans[i].Text != "" {
			break
		}
		spans = spans[:i]
	}
	if len(spans) == 0 {
		return nil
	}
	return spans
}

func classes(n *html.Node) []string {
	for _, a := range n.Attr {
		if a.Key == "class" {
			return strings.Fields(strings.ToLower(a.Val))
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range classes(n) {
		if c == class {
			return true
		}
	}
	return false
}
