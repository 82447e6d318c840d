package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/reportgenie/internal/style"
)

func (a *App) renderHelp() string {
	var b strings.Builder

	title := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("Help")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	var styles []string
	for _, info := range style.All() {
		styles = append(styles, fmt.Sprintf("  %-9s %s", info.Name, info.Description))
	}
	stylesBox := styleBox.Copy().
		Width(min(90, max(a.width-4, 20))).
		Render(strings.Join(styles, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSubtitle.Render("Styles")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, stylesBox))
	b.WriteString("\n\n")

	shortcuts := []string{
		"  Tab / Shift+Tab  Cycle the report style",
		"  Ctrl+G           Generate the report",
		"  Ctrl+L           Clear the notes",
		"  Esc              Cancel a run / Go back / Quit",
		"  s / c            Save the file / Copy its source",
		"  e / n            Edit the notes / Start over",
		"  r                Retry after a failure",
		"  F2               Engine status",
	}

	shortcutsBox := styleBox.Copy().
		Width(50).
		Render(strings.Join(shortcuts, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSubtitle.Render("Keyboard Shortcuts")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, shortcutsBox))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleStatusBar.Render("[Esc] Back")))

	return a.centerVertically(b.String())
}
