package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/reportgenie/internal/config"
)

func (a *App) renderStatus() string {
	var b strings.Builder
	cfg := a.state.config

	title := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("Engine Status")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	providerName := cfg.Provider
	if p := config.GetProvider(cfg.Provider); p != nil {
		providerName = p.Name
	}

	renderer := cfg.Renderer.Engine
	streaming := cfg.Stream
	if a.state.pipeline != nil {
		renderer = a.state.pipeline.Renderer().Name()
		streaming = a.state.pipeline.Writer().Streaming()
	}

	quota := "unlimited"
	if cfg.RateLimit > 0 {
		quota = fmt.Sprintf("~%d Req/Min", cfg.RateLimit)
	}

	lines := []string{
		fmt.Sprintf("Provider   %s", providerName),
		fmt.Sprintf("Model      %s", a.renderEngineLine()),
		fmt.Sprintf("Quota      %s", quota),
		fmt.Sprintf("Streaming  %t", streaming),
		fmt.Sprintf("Renderer   %s", renderer),
		fmt.Sprintf("Timeout    %s", cfg.Timeout),
		fmt.Sprintf("Output     %s", cfg.OutputDir),
	}

	box := styleBox.Copy().
		Width(min(70, max(a.width-4, 20))).
		Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, box))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleStatusBar.Render("[Esc] Back")))

	return a.centerVertically(b.String())
}
