package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/sant0-9/reportgenie/internal/config"
	"github.com/sant0-9/reportgenie/internal/errs"
	"github.com/sant0-9/reportgenie/internal/logging"
	"github.com/sant0-9/reportgenie/internal/pipeline"
	"github.com/sant0-9/reportgenie/internal/prompts"
)

type view int

const (
	viewCompose view = iota
	viewSetup
	viewProcessing
	viewResult
	viewError
	viewHelp
	viewStatus
)

// Options configures the terminal app
type Options struct {
	Config     *config.Config
	ConfigPath string // where setup writes; empty means the default path
	NeedsSetup bool
	Logger     *logrus.Logger

	// Pipeline skips building one from Config when set
	Pipeline *pipeline.Pipeline

	// Clipboard replaces the system clipboard writer
	Clipboard func(string) error
}

type App struct {
	width    int
	height   int
	view     view
	previous view
	state    *state
	program  *tea.Program
	logger   *logrus.Logger
	options  Options
	quitting bool
}

func NewApp(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
		opts.NeedsSetup = true
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	s := newState(cfg)
	s.needsSetup = opts.NeedsSetup

	a := &App{
		view:    viewCompose,
		state:   s,
		logger:  opts.Logger,
		options: opts,
	}

	if opts.Pipeline != nil {
		a.attach(opts.Pipeline)
	}
	if s.needsSetup {
		a.view = viewSetup
	} else {
		s.editor.Focus()
	}

	return a
}

// SetProgram gives the app a handle for sending messages from pipeline callbacks
func (a *App) SetProgram(p *tea.Program) {
	a.program = p
}

func (a *App) send(msg tea.Msg) {
	if a.program != nil {
		a.program.Send(msg)
	}
}

func (a *App) Init() tea.Cmd {
	if a.state.needsSetup {
		return tea.Batch(tea.WindowSize(), textinput.Blink)
	}
	if a.state.pipeline != nil {
		return tea.Batch(tea.WindowSize(), textarea.Blink, a.testProvider())
	}
	return tea.Batch(tea.WindowSize(), textarea.Blink, a.connect())
}

// connect builds the pipeline from the current config
func (a *App) connect() tea.Cmd {
	cfg := a.state.config
	logger := a.logger
	return func() tea.Msg {
		p, err := pipeline.FromConfig(cfg, logger)
		if err != nil {
			return providerErrorMsg{err}
		}
		return pipelineReadyMsg{p}
	}
}

func (a *App) testProvider() tea.Cmd {
	p := a.state.pipeline
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := p.Writer().Provider().Ping(ctx); err != nil {
			return providerErrorMsg{err}
		}
		return providerReadyMsg{}
	}
}

func (a *App) attach(p *pipeline.Pipeline) {
	a.state.pipeline = p
	a.state.session = pipeline.NewSession(p)
	a.state.providerError = nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := a.handleKey(msg)
		if handled {
			return a, cmd
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()

	case setupCompleteMsg:
		a.state.needsSetup = false
		a.state.setupError = nil
		a.view = viewCompose
		a.state.editor.Focus()
		return a, a.connect()

	case setupErrorMsg:
		a.state.setupError = msg.error
		return a, nil

	case pipelineReadyMsg:
		a.attach(msg.pipeline)
		return a, a.testProvider()

	case providerReadyMsg:
		a.state.providerReady = true
		a.state.providerError = nil
		return a, nil

	case providerErrorMsg:
		a.state.providerReady = false
		a.state.providerError = msg.error
		a.logger.WithError(msg.error).Warn("provider check failed")
		return a, nil

	case progressMsg:
		if msg.runID != a.state.runID || a.view != viewProcessing {
			return a, nil
		}
		a.state.progress = msg.Progress
		return a, nil

	case fragmentMsg:
		if msg.runID != a.state.runID || a.view != viewProcessing {
			return a, nil
		}
		a.state.preview += msg.chunk
		return a, nil

	case doneMsg:
		return a, a.finish(msg)

	case savedMsg:
		if msg.err != nil {
			a.state.resultMsg = "Save failed: " + msg.err.Error()
		} else {
			a.state.savedPath = msg.path
			a.state.resultMsg = "Saved to " + msg.path
		}
		return a, nil

	case copiedMsg:
		if msg.err != nil {
			a.state.resultMsg = "Copy failed: " + msg.err.Error()
		} else {
			a.state.resultMsg = "Copied to clipboard"
		}
		return a, nil

	case spinner.TickMsg:
		if a.view != viewProcessing {
			return a, nil
		}
		var cmd tea.Cmd
		a.state.spinner, cmd = a.state.spinner.Update(msg)
		return a, cmd

	case progress.FrameMsg:
		m, cmd := a.state.bar.Update(msg)
		a.state.bar = m.(progress.Model)
		return a, cmd
	}

	// Update text inputs based on view
	switch {
	case a.view == viewSetup && a.state.setupStep == 1:
		var cmd tea.Cmd
		a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
		cmds = append(cmds, cmd)
	case a.view == viewCompose:
		var cmd tea.Cmd
		a.state.editor, cmd = a.state.editor.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize() {
	w := a.width - 8
	if w > 90 {
		w = 90
	}
	if w < 20 {
		w = 20
	}
	a.state.editor.SetWidth(w)

	h := a.height - 20
	if h > 16 {
		h = 16
	}
	if h < 4 {
		h = 4
	}
	a.state.editor.SetHeight(h)
	a.state.bar.Width = w - 10
}

// handleKey reports whether the key was consumed
func (a *App) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		if a.state.session != nil {
			a.state.session.Cancel()
		}
		a.quitting = true
		return true, tea.Quit
	}

	switch a.view {
	case viewSetup:
		return true, a.handleSetupKey(msg)
	case viewCompose:
		return a.handleComposeKey(msg)
	case viewProcessing:
		if key.Matches(msg, keys.Back) {
			a.cancel()
		}
		return true, nil
	case viewResult:
		return true, a.handleResultKey(msg)
	case viewError:
		return true, a.handleErrorKey(msg)
	case viewHelp, viewStatus:
		if key.Matches(msg, keys.Back, keys.Help, keys.Status) {
			a.view = a.previous
		}
		return true, nil
	}

	return false, nil
}

func (a *App) handleComposeKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		a.quitting = true
		return true, tea.Quit
	case key.Matches(msg, keys.NextStyle):
		a.state.style = a.state.style.Next()
		return true, nil
	case key.Matches(msg, keys.PrevStyle):
		a.state.style = a.state.style.Prev()
		return true, nil
	case key.Matches(msg, keys.Generate):
		return true, a.generate()
	case key.Matches(msg, keys.Clear):
		a.state.editor.Reset()
		a.state.notice = ""
		return true, nil
	case key.Matches(msg, keys.Help):
		a.previous, a.view = a.view, viewHelp
		return true, nil
	case key.Matches(msg, keys.Status):
		a.previous, a.view = a.view, viewStatus
		return true, nil
	}

	a.state.notice = ""
	return false, nil
}

func (a *App) handleResultKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Save):
		return a.save()
	case key.Matches(msg, keys.Copy):
		return a.copySource()
	case key.Matches(msg, keys.New):
		a.reset(true)
	case key.Matches(msg, keys.Edit, keys.Back):
		a.reset(false)
	case key.Matches(msg, keys.Help):
		a.previous, a.view = a.view, viewHelp
	}
	return nil
}

func (a *App) handleErrorKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Retry):
		return a.start(a.state.request)
	case key.Matches(msg, keys.New):
		a.reset(true)
	case key.Matches(msg, keys.Edit, keys.Back):
		a.reset(false)
	case key.Matches(msg, keys.Status):
		a.previous, a.view = a.view, viewStatus
	}
	return nil
}

// reset returns to the compose view, optionally clearing the notes
func (a *App) reset(clear bool) {
	if clear {
		a.state.editor.Reset()
		if a.state.session != nil {
			a.state.session.Reset()
		}
	}
	a.state.artifact = nil
	a.state.savedPath = ""
	a.state.resultMsg = ""
	a.state.err = nil
	a.state.notice = ""
	a.view = viewCompose
	a.state.editor.Focus()
}

// generate validates the notes and starts a run
func (a *App) generate() tea.Cmd {
	text := a.state.editor.Value()
	if strings.TrimSpace(text) == "" {
		a.state.notice = prompts.EmptyInputMessage
		return nil
	}
	if a.state.session == nil {
		if a.state.providerError != nil {
			a.state.notice = "Model unavailable: " + a.state.providerError.Error()
		} else {
			a.state.notice = "Connecting to the model, try again in a moment."
		}
		return nil
	}
	return a.start(pipeline.Request{Style: a.state.style, Text: text})
}

func (a *App) start(req pipeline.Request) tea.Cmd {
	if a.state.session == nil {
		return nil
	}
	// callbacks below are only swapped while no run is in flight
	if a.state.session.Busy() {
		a.state.notice = "A report is already being generated."
		return nil
	}

	a.state.runID++
	id := a.state.runID

	a.state.request = req
	a.state.notice = ""
	a.state.err = nil
	a.state.artifact = nil
	a.state.preview = ""
	a.state.progress = pipeline.Progress{Stage: pipeline.StageValidating}
	a.state.started = time.Now()
	a.state.estimate = pipeline.EstimateDuration(req.Text)
	a.state.editor.Blur()
	a.view = viewProcessing

	p := a.state.pipeline
	p.SetProgressCallback(func(pr pipeline.Progress) {
		a.send(progressMsg{runID: id, Progress: pr})
	})
	p.SetFragmentCallback(func(chunk string) {
		a.send(fragmentMsg{runID: id, chunk: chunk})
	})

	ctx, cancel := context.WithCancel(context.Background())
	a.state.cancel = cancel
	session := a.state.session

	a.logger.WithFields(logrus.Fields{
		"style": req.Style.String(),
		"chars": len(req.Text),
	}).Debug("starting generation")

	return tea.Batch(a.state.spinner.Tick, func() tea.Msg {
		defer cancel()
		artifact, err := session.Submit(ctx, req)
		return doneMsg{runID: id, artifact: artifact, err: err}
	})
}

func (a *App) cancel() {
	if a.state.cancel != nil {
		a.state.cancel()
	}
	a.state.runID++
	a.state.cancel = nil
	a.state.notice = "Generation canceled."
	a.view = viewCompose
	a.state.editor.Focus()
}

func (a *App) finish(msg doneMsg) tea.Cmd {
	if msg.runID != a.state.runID {
		return nil
	}
	a.state.cancel = nil

	switch {
	case msg.err == nil:
		a.state.artifact = msg.artifact
		a.state.progress = pipeline.Progress{Stage: pipeline.StageDone, Percent: 100, Message: pipeline.MessageDone}
		a.view = viewResult
	case errors.Is(msg.err, context.Canceled):
		a.state.notice = "Generation canceled."
		a.view = viewCompose
		a.state.editor.Focus()
	case errs.HasKind(msg.err, errs.KindEmptyInput), errs.HasKind(msg.err, errs.KindBusy):
		var e *errs.Error
		errors.As(msg.err, &e)
		a.state.notice = e.Message
		a.view = viewCompose
		a.state.editor.Focus()
	default:
		a.state.err = msg.err
		a.view = viewError
	}
	return nil
}

func (a *App) save() tea.Cmd {
	artifact := a.state.artifact
	if artifact == nil {
		return nil
	}
	dir := a.state.config.OutputDir
	return func() tea.Msg {
		path, err := artifact.Save(dir)
		return savedMsg{path: path, err: err}
	}
}

func (a *App) copySource() tea.Cmd {
	artifact := a.state.artifact
	if artifact == nil {
		return nil
	}
	write := a.options.Clipboard
	return func() tea.Msg {
		return copiedMsg{err: write(artifact.Source)}
	}
}

func (a *App) handleSetupKey(msg tea.KeyMsg) tea.Cmd {
	provider := config.Providers[a.state.selectedProvider]

	switch a.state.setupStep {
	case setupProvider:
		switch {
		case key.Matches(msg, keys.Up):
			a.state.selectedProvider = max(a.state.selectedProvider-1, 0)
		case key.Matches(msg, keys.Down):
			a.state.selectedProvider = min(a.state.selectedProvider+1, len(config.Providers)-1)
		case key.Matches(msg, keys.Back):
			a.quitting = true
			return tea.Quit
		case key.Matches(msg, keys.Enter):
			a.state.config.Provider = provider.ID
			a.state.config.Model = provider.DefaultModel
			a.state.config.APIKey = ""

			if provider.NeedsAPIKey {
				a.state.setupStep = setupKey
				a.state.apiKeyInput.Focus()
				return textinput.Blink
			}
			return a.chooseModel(provider)
		}

	case setupKey:
		switch {
		case key.Matches(msg, keys.Back):
			a.state.setupStep = setupProvider
			a.state.setupError = nil
			a.state.apiKeyInput.Reset()
			a.state.apiKeyInput.Blur()
		case key.Matches(msg, keys.Enter):
			value := strings.TrimSpace(a.state.apiKeyInput.Value())
			if value == "" {
				a.state.setupError = errors.New("an API key is required for this provider")
				return nil
			}
			a.state.setupError = nil
			a.state.config.APIKey = value
			a.state.apiKeyInput.Blur()
			return a.chooseModel(provider)
		default:
			var cmd tea.Cmd
			a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
			return cmd
		}

	case setupModel:
		switch {
		case key.Matches(msg, keys.Up):
			a.state.selectedModel = max(a.state.selectedModel-1, 0)
		case key.Matches(msg, keys.Down):
			a.state.selectedModel = min(a.state.selectedModel+1, len(provider.Models)-1)
		case key.Matches(msg, keys.Back):
			if provider.NeedsAPIKey {
				a.state.setupStep = setupKey
				a.state.apiKeyInput.Focus()
				return textinput.Blink
			}
			a.state.setupStep = setupProvider
		case key.Matches(msg, keys.Enter):
			a.state.config.Model = provider.Models[a.state.selectedModel]
			return a.finishSetup()
		}
	}

	return nil
}

// chooseModel moves to model selection, or saves when there is nothing to pick
func (a *App) chooseModel(provider config.ProviderInfo) tea.Cmd {
	if len(provider.Models) < 2 {
		return a.finishSetup()
	}

	a.state.selectedModel = 0
	for i, m := range provider.Models {
		if m == provider.DefaultModel {
			a.state.selectedModel = i
		}
	}
	a.state.setupStep = setupModel
	return nil
}

func (a *App) finishSetup() tea.Cmd {
	cfg := a.state.config
	path := a.options.ConfigPath
	return func() tea.Msg {
		var err error
		if path != "" {
			err = cfg.SaveFile(path)
		} else {
			err = cfg.Save()
		}
		if err != nil {
			return setupErrorMsg{err}
		}
		return setupCompleteMsg{}
	}
}

type setupCompleteMsg struct{}
type setupErrorMsg struct{ error }
type providerReadyMsg struct{}
type providerErrorMsg struct{ error }
type pipelineReadyMsg struct{ pipeline *pipeline.Pipeline }

type progressMsg struct {
	runID int
	pipeline.Progress
}

type fragmentMsg struct {
	runID int
	chunk string
}

type doneMsg struct {
	runID    int
	artifact *pipeline.Artifact
	err      error
}

type savedMsg struct {
	path string
	err  error
}

type copiedMsg struct{ err error }

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	switch a.view {
	case viewSetup:
		return a.renderSetup()
	case viewProcessing:
		return a.renderProcessing()
	case viewResult:
		return a.renderResult()
	case viewError:
		return a.renderError()
	case viewHelp:
		return a.renderHelp()
	case viewStatus:
		return a.renderStatus()
	default:
		return a.renderCompose()
	}
}
