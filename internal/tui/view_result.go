package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderResult() string {
	var b strings.Builder
	artifact := a.state.artifact
	if artifact == nil {
		return a.renderCompose()
	}

	title := lipgloss.NewStyle().
		Foreground(colorSuccess).
		Bold(true).
		Render("Report ready")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	info := []string{
		fmt.Sprintf("Style     %s", artifact.Style),
		fmt.Sprintf("File      %s", artifact.Filename),
		fmt.Sprintf("Type      %s", artifact.MIMEType),
		fmt.Sprintf("Size      %s", artifact.SizeHuman()),
		fmt.Sprintf("Took      %s", artifact.Duration.Round(100*time.Millisecond)),
	}
	infoBox := styleBox.Copy().
		Width(50).
		BorderForeground(colorSuccess).
		Render(strings.Join(info, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, infoBox))
	b.WriteString("\n\n")

	// LaTeX output is source the user takes elsewhere, so show the start of it
	if !artifact.IsPDF() {
		lines := strings.Split(artifact.Source, "\n")
		if len(lines) > 12 {
			lines = append(lines[:12], "...")
		}
		for i, l := range lines {
			lines[i] = truncate(l, 76)
		}
		source := styleBox.Copy().
			Width(min(80, max(a.width-4, 20))).
			Foreground(colorMuted).
			Render(strings.Join(lines, "\n"))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, source))
		b.WriteString("\n\n")
	}

	if a.state.resultMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleNotice.Render(a.state.resultMsg)))
		b.WriteString("\n\n")
	}

	instructions := styleStatusBar.Render("[s] Save  [c] Copy source  [e] Edit notes  [n] New report  [Ctrl+C] Quit")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}
