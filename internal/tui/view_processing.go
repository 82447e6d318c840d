package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/reportgenie/internal/pipeline"
)

var processingStages = []struct {
	stage pipeline.Stage
	label string
}{
	{pipeline.StageValidating, "Validating"},
	{pipeline.StageGenerating, "Writing"},
	{pipeline.StageRendering, "Typesetting"},
}

// stageIndex maps a pipeline stage onto the three displayed steps
func stageIndex(s pipeline.Stage) int {
	switch s {
	case pipeline.StageIdle, pipeline.StageValidating:
		return 0
	case pipeline.StagePrompting, pipeline.StageGenerating:
		return 1
	case pipeline.StageSanitizing, pipeline.StageRendering:
		return 2
	default:
		return len(processingStages)
	}
}

func (a *App) renderProcessing() string {
	var b strings.Builder

	title := styleTitle.Render("Generating " + a.state.request.Style.String() + " report")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	current := stageIndex(a.state.progress.Stage)

	var stageLines []string
	for i, st := range processingStages {
		var icon string
		var style lipgloss.Style

		if i < current {
			icon = "[x]"
			style = lipgloss.NewStyle().Foreground(colorSuccess)
		} else if i == current {
			icon = "[" + a.state.spinner.View() + "]"
			style = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
		} else {
			icon = "[ ]"
			style = lipgloss.NewStyle().Foreground(colorMuted)
		}

		stageLines = append(stageLines, style.Render(fmt.Sprintf("  %s  %s", icon, st.label)))
	}

	stagesBox := styleBox.Copy().
		Width(40).
		Render(strings.Join(stageLines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, stagesBox))
	b.WriteString("\n\n")

	bar := a.state.bar.ViewAs(float64(a.state.progress.Percent) / 100)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, bar))
	b.WriteString("\n")

	if msg := a.state.progress.Message; msg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSubtitle.Render(msg)))
	}
	b.WriteString("\n")

	elapsed := time.Since(a.state.started).Round(time.Second)
	timing := styleSubtitle.Render(fmt.Sprintf("%s elapsed, about %s expected", elapsed, a.state.estimate))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, timing))
	b.WriteString("\n\n")

	if a.state.preview != "" {
		previewBox := styleBox.Copy().
			Width(min(80, max(a.width-4, 20))).
			Foreground(colorMuted).
			Render(tail(a.state.preview, 6, 76))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, previewBox))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleStatusBar.Render("[Esc] Cancel")))

	return a.centerVertically(b.String())
}

// tail returns the last n lines of s, each cut to width runes
func tail(s string, n, width int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i, l := range lines {
		lines[i] = truncate(l, width)
	}
	return strings.Join(lines, "\n")
}
