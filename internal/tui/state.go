package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/reportgenie/internal/config"
	"github.com/sant0-9/reportgenie/internal/pipeline"
	"github.com/sant0-9/reportgenie/internal/style"
)

type state struct {
	// Config
	config     *config.Config
	needsSetup bool

	// Setup wizard state
	setupStep        int
	selectedProvider int
	selectedModel    int
	apiKeyInput      textinput.Model
	setupError       error

	// Compose
	style  style.Style
	editor textarea.Model
	notice string

	// Provider
	pipeline      *pipeline.Pipeline
	session       *pipeline.Session
	providerReady bool
	providerError error

	// Processing
	runID    int
	cancel   context.CancelFunc
	request  pipeline.Request
	progress pipeline.Progress
	bar      progress.Model
	spinner  spinner.Model
	preview  string
	started  time.Time
	estimate time.Duration

	// Result
	artifact  *pipeline.Artifact
	savedPath string
	resultMsg string

	// Error
	err error
}

func newState(cfg *config.Config) *state {
	editor := textarea.New()
	editor.Placeholder = "Example: Q3 Revenue was 5M, up 10% from last year. Risks include supply chain issues..."
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.SetWidth(70)
	editor.SetHeight(12)

	apiKey := textinput.New()
	apiKey.Placeholder = "Paste your API key here..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.CharLimit = 200
	apiKey.Width = 50

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(colorPrimary)),
	)

	return &state{
		config:      cfg,
		style:       style.Modern,
		editor:      editor,
		apiKeyInput: apiKey,
		bar:         progress.New(progress.WithGradient(string(colorPrimary), string(colorSecondary)), progress.WithWidth(40)),
		spinner:     sp,
	}
}
