package llm

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/sant0-9/reportgenie/internal/prompts"
)

// OfflineProvider formats the input locally without calling a model. The input
// is read as Markdown. Output is wrapped in a code fence like most hosted
// models do.
type OfflineProvider struct {
	md        goldmark.Markdown
	chunkSize int
}

func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{
		md:        goldmark.New(),
		chunkSize: 64,
	}
}

func (o *OfflineProvider) Name() string {
	return "offline"
}

func (o *OfflineProvider) Ping(ctx context.Context) error {
	return nil
}

func (o *OfflineProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := o.format(req)
	if err != nil {
		return nil, err
	}

	return &CompletionResponse{
		Content:      content,
		Model:        "offline",
		FinishReason: "stop",
	}, nil
}

func (o *OfflineProvider) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error) {
	content, err := o.format(req)
	if err != nil {
		return nil, err
	}

	events := make(chan StreamEvent)

	go func() {
		defer close(events)

		for _, chunk := range Fragments(content, o.chunkSize) {
			if !send(ctx, events, StreamEvent{Chunk: chunk}) {
				return
			}
		}
		send(ctx, events, StreamEvent{Done: true})
	}()

	return events, nil
}

func (o *OfflineProvider) format(req *CompletionRequest) (string, error) {
	var last string
	for _, m := range req.Messages {
		if m.Role == RoleUser {
			last = m.Content
		}
	}

	ins := prompts.Instruction(last)
	input := ins.Input()
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("offline: instruction has no input section")
	}

	switch ins.Template() {
	case "SIMPLE_HTML":
		body, err := o.html(input)
		if err != nil {
			return "", err
		}
		return "```html\n" + body + "```", nil

	case "MODERN_HTML":
		body, err := o.modern(input)
		if err != nil {
			return "", err
		}
		return "```html\n" + body + "```", nil

	case "ACADEMIC_LATEX":
		return "```latex\n" + latexArticle(input) + "```", nil

	default:
		return "", fmt.Errorf("offline: unsupported template %q", ins.Template())
	}
}

func (o *OfflineProvider) html(src string) (string, error) {
	var buf bytes.Buffer
	if err := o.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("offline: %w", err)
	}
	return buf.String(), nil
}

func (o *OfflineProvider) modern(src string) (string, error) {
	title, rest := splitTitle(src)
	summary, body := splitParagraph(rest)

	var b strings.Builder
	fmt.Fprintf(&b, "<h1 class=\"title\">%s</h1>\n", html.EscapeString(title))

	if summary != "" {
		b.WriteString("<h2>Executive Summary</h2>\n")
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(summary))
	}

	if headings := markdownHeadings(body); len(headings) > 0 {
		b.WriteString("<h2>Contents</h2>\n<ul class=\"toc\">\n")
		for _, h := range headings {
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(h))
		}
		b.WriteString("</ul>\n")
	}

	rendered, err := o.html(body)
	if err != nil {
		return "", err
	}
	b.WriteString(rendered)
	return b.String(), nil
}

func latexArticle(src string) string {
	title, rest := splitTitle(src)
	abstract, body := splitParagraph(rest)

	var b strings.Builder
	b.WriteString("\\documentclass{article}\n")
	b.WriteString("\\usepackage{geometry}\n\\usepackage{times}\n\\usepackage{longtable}\n\\usepackage{hyperref}\n")
	fmt.Fprintf(&b, "\\title{%s}\n", latexEscape(title))
	b.WriteString("\\begin{document}\n\\maketitle\n")

	if abstract != "" {
		fmt.Fprintf(&b, "\\begin{abstract}\n%s\n\\end{abstract}\n", latexEscape(abstract))
	}

	for _, block := range blocks(body) {
		switch {
		case strings.HasPrefix(block, "### "), strings.HasPrefix(block, "## "):
			fmt.Fprintf(&b, "\\subsection{%s}\n", latexEscape(strings.TrimLeft(block, "# ")))
		case strings.HasPrefix(block, "# "):
			fmt.Fprintf(&b, "\\section{%s}\n", latexEscape(strings.TrimLeft(block, "# ")))
		default:
			fmt.Fprintf(&b, "%s\n\n", latexEscape(block))
		}
	}

	b.WriteString("\\section*{References}\n\\end{document}\n")
	return b.String()
}

// splitTitle returns the first non-empty line without heading marks, and the rest
func splitTitle(src string) (string, string) {
	lines := strings.Split(strings.TrimSpace(src), "\n")
	title := strings.TrimSpace(strings.TrimLeft(lines[0], "# "))
	return title, strings.Join(lines[1:], "\n")
}

// splitParagraph returns the first plain paragraph and everything after it
func splitParagraph(src string) (string, string) {
	parts := blocks(src)
	if len(parts) == 0 || strings.HasPrefix(parts[0], "#") || strings.HasPrefix(parts[0], "-") {
		return "", src
	}
	return strings.Join(strings.Fields(parts[0]), " "), strings.Join(parts[1:], "\n\n")
}

// blocks splits text into blank-line separated blocks, with heading lines as
// their own blocks
func blocks(src string) []string {
	var out []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, "\n"))
			cur = nil
		}
	}

	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "#"):
			flush()
			out = append(out, trimmed)
		default:
			cur = append(cur, trimmed)
		}
	}
	flush()
	return out
}

func markdownHeadings(src string) []string {
	var out []string
	for _, block := range blocks(src) {
		if strings.HasPrefix(block, "#") {
			out = append(out, strings.TrimSpace(strings.TrimLeft(block, "#")))
		}
	}
	return out
}

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

func latexEscape(s string) string {
	return latexReplacer.Replace(s)
}
