package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/reportgenie/internal/errs"
)

func (a *App) renderError() string {
	var b strings.Builder

	title := lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true).
		Render("Something went wrong")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	errMsg := "Unknown error"
	if a.state.err != nil {
		errMsg = a.state.err.Error()
	}

	errBox := styleBox.Copy().
		Width(min(60, max(a.width-4, 20))).
		BorderForeground(colorError).
		Render(errMsg)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, errBox))
	b.WriteString("\n\n")

	suggestions := suggest(a.state.err)
	if len(suggestions) > 0 {
		sugBox := lipgloss.NewStyle().
			Foreground(colorMuted).
			Render(strings.Join(suggestions, "\n"))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, sugBox))
		b.WriteString("\n\n")
	}

	instructions := styleStatusBar.Render("[r] Retry  [e] Edit notes  [n] New report  [F2] Status  [Ctrl+C] Quit")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}

// suggest returns follow-up hints for a failed run
func suggest(err error) []string {
	if err == nil {
		return nil
	}

	lower := strings.ToLower(err.Error())

	switch errs.KindOf(err) {
	case errs.KindMissingCredential:
		return []string{
			"Run 'reportgenie setup' to store an API key",
			"Or export the provider's key variable and restart",
		}
	case errs.KindGatewayFailure:
		switch {
		case strings.Contains(lower, "429") || strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit"):
			return []string{"You've hit the model's rate limit", "Wait a moment and press [r] to retry"}
		case strings.Contains(lower, "401") || strings.Contains(lower, "403") || strings.Contains(lower, "api key"):
			return []string{"Check the API key in ~/.config/reportgenie/config.yaml"}
		case strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout"):
			return []string{"The model took too long to answer", "Shorter notes or a larger timeout may help"}
		default:
			return []string{"Check your internet connection", "Then press [r] to retry"}
		}
	case errs.KindRenderFailure:
		return []string{
			"The model's document could not be typeset",
			"Press [r] to generate it again, or try another style",
		}
	}
	return nil
}
