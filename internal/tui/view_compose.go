package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/reportgenie/internal/pipeline"
	"github.com/sant0-9/reportgenie/internal/style"
)

const logo = `
 ___                   _    ___         _
| _ \___ _ __  ___ _ _| |_ / __|___ _ _ (_)___
|   / -_) '_ \/ _ \ '_|  _| (_ / -_) ' \| / -_)
|_|_\___| .__/\___/_|  \__|\___\___|_||_|_\___|
        |_|`

func (a *App) renderCompose() string {
	var b strings.Builder

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleLogo.Render(logo)))
	b.WriteString("\n")
	subtitle := styleSubtitle.Render("Turn rough notes into professional documents")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, subtitle))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.renderStyleSelector()))
	b.WriteString("\n\n")

	editorBox := styleBox.Copy().
		BorderForeground(colorSecondary).
		Render(a.state.editor.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, editorBox))
	b.WriteString("\n")

	if text := a.state.editor.Value(); strings.TrimSpace(text) != "" {
		stats := pipeline.Analyze(text)
		line := styleSubtitle.Render(fmt.Sprintf("%d words  %d sections  ~%d tokens  ~%s",
			stats.Words, stats.Sections, stats.Tokens, stats.Estimate))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, line))
	}
	b.WriteString("\n")

	if a.state.notice != "" {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleNotice.Render(a.state.notice)))
	}
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.renderEngineLine()))
	b.WriteString("\n")
	instructions := styleStatusBar.Render("[Tab] Style  [Ctrl+G] Generate  [Ctrl+L] Clear  [F1] Help  [F2] Status  [Esc] Quit")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}

func (a *App) renderStyleSelector() string {
	var cols []string
	for _, info := range style.All() {
		selected := info.Style == a.state.style

		marker := "( )"
		nameStyle := lipgloss.NewStyle().Foreground(colorMuted)
		border := colorMuted
		if selected {
			marker = "(*)"
			nameStyle = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
			border = colorSecondary
		}

		card := styleBox.Copy().
			Width(28).
			BorderForeground(border).
			Render(nameStyle.Render(marker+" "+info.Name) + "\n" +
				styleSubtitle.Render(truncate(info.Caption, 26)))
		cols = append(cols, card)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// renderEngineLine is the one-line provider summary shown under the editor
func (a *App) renderEngineLine() string {
	cfg := a.state.config
	switch {
	case a.state.providerError != nil:
		return lipgloss.NewStyle().Foreground(colorError).
			Render(fmt.Sprintf("%s: Offline (%s)", cfg.Model, truncate(a.state.providerError.Error(), 50)))
	case a.state.providerReady:
		return lipgloss.NewStyle().Foreground(colorSuccess).
			Render(fmt.Sprintf("%s: Online", cfg.Model))
	default:
		return styleSubtitle.Render(fmt.Sprintf("%s: Connecting...", cfg.Model))
	}
}

func (a *App) centerVertically(content string) string {
	lines := strings.Count(content, "\n") + 1
	padding := (a.height - lines) / 2
	if padding < 0 {
		padding = 0
	}
	return strings.Repeat("\n", padding) + content
}
