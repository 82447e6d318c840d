package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/reportgenie/internal/config"
)

const (
	setupProvider = iota
	setupKey
	setupModel
)

func (a *App) renderSetup() string {
	provider := config.Providers[a.state.selectedProvider]

	switch a.state.setupStep {
	case setupKey:
		var hint string
		if provider.SignupURL != "" {
			hint = fmt.Sprintf("Get one at: %s", provider.SignupURL)
		}
		input := styleBox.Copy().
			Width(60).
			BorderForeground(colorSecondary).
			Render(a.state.apiKeyInput.View())
		return a.setupFrame(fmt.Sprintf("Enter your %s API key:", provider.Name), hint, input,
			"[Enter] Continue  [Esc] Back")

	case setupModel:
		return a.setupFrame("Pick a model:", "Reports stream from this model", a.renderChoices(provider.Models, a.state.selectedModel, 40),
			"[j/k] Navigate  [Enter] Save  [Esc] Back")

	default:
		var rows []string
		for _, p := range config.Providers {
			rows = append(rows, fmt.Sprintf("%-14s %s", p.Name, p.Description))
		}
		return a.setupFrame("Welcome! Choose the model provider for your reports:", "", a.renderChoices(rows, a.state.selectedProvider, 64),
			"[j/k] Navigate  [Enter] Select  [Esc] Quit")
	}
}

// renderChoices draws a single-select list with the cursor on selected
func (a *App) renderChoices(rows []string, selected, width int) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		if i == selected {
			lines[i] = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true).Render("> [x] " + row)
		} else {
			lines[i] = lipgloss.NewStyle().Foreground(colorMuted).Render("  [ ] " + row)
		}
	}
	return styleBox.Copy().Width(width).Render(strings.Join(lines, "\n"))
}

func (a *App) setupFrame(title, hint, body, footer string) string {
	center := func(s string) string {
		return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, s)
	}

	parts := []string{
		center(styleLogo.Render(logo)),
		"",
		center(lipgloss.NewStyle().Foreground(colorWhite).Bold(true).Render(title)),
		"",
	}
	if hint != "" {
		parts = append(parts, center(styleSubtitle.Render(hint)), "")
	}
	parts = append(parts, center(body), "")
	if a.state.setupError != nil {
		parts = append(parts, center(lipgloss.NewStyle().Foreground(colorError).Render(a.state.setupError.Error())), "")
	}
	parts = append(parts, center(styleStatusBar.Render(footer)))

	return a.centerVertically(strings.Join(parts, "\n"))
}
