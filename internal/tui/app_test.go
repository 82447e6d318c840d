package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/reportgenie/internal/config"
	"github.com/sant0-9/reportgenie/internal/errs"
	"github.com/sant0-9/reportgenie/internal/llm"
	"github.com/sant0-9/reportgenie/internal/pipeline"
	"github.com/sant0-9/reportgenie/internal/prompts"
	"github.com/sant0-9/reportgenie/internal/style"
	"github.com/sant0-9/reportgenie/internal/writer"
)

type stubRenderer struct{}

func (stubRenderer) Name() string { return "stub" }

func (stubRenderer) Render(ctx context.Context, markup, stylesheet string) ([]byte, error) {
	return []byte("%PDF-1.4 " + markup), nil
}

func newTestApp(t *testing.T, m *llm.Mock) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	p := pipeline.NewPipeline(writer.NewWriter(m, "mock"), stubRenderer{}, nil)
	a := NewApp(Options{Config: cfg, Pipeline: p})
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

func press(a *App, k tea.KeyType) tea.Cmd {
	_, cmd := a.Update(tea.KeyMsg{Type: k})
	return cmd
}

func typeRunes(a *App, s string) tea.Cmd {
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return cmd
}

// drain runs cmd and any batched commands, returning the first doneMsg
func drain(t *testing.T, cmd tea.Cmd) doneMsg {
	t.Helper()
	require.NotNil(t, cmd)

	switch msg := cmd().(type) {
	case doneMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if done, ok := c().(doneMsg); ok {
				return done
			}
		}
	}
	t.Fatal("no doneMsg produced")
	return doneMsg{}
}

func TestEmptyInputShowsWarning(t *testing.T) {
	m := &llm.Mock{}
	a := newTestApp(t, m)

	cmd := press(a, tea.KeyCtrlG)

	assert.Nil(t, cmd)
	assert.Equal(t, viewCompose, a.view)
	assert.Equal(t, prompts.EmptyInputMessage, a.state.notice)
	assert.Contains(t, a.View(), prompts.EmptyInputMessage)
	assert.Zero(t, m.Calls())

	a.state.editor.SetValue("   \n  ")
	press(a, tea.KeyCtrlG)
	assert.Equal(t, prompts.EmptyInputMessage, a.state.notice)
}

func TestStyleCycling(t *testing.T) {
	a := newTestApp(t, &llm.Mock{})
	require.Equal(t, style.Modern, a.state.style)

	press(a, tea.KeyTab)
	assert.Equal(t, style.Academic, a.state.style)
	press(a, tea.KeyTab)
	assert.Equal(t, style.Simple, a.state.style)
	press(a, tea.KeyShiftTab)
	assert.Equal(t, style.Academic, a.state.style)
	assert.Empty(t, a.state.editor.Value())
}

func TestGenerateFlow(t *testing.T) {
	m := &llm.Mock{Fragments: []string{"<h1>Q3</h1>", "<p>Revenue grew 10%.</p>"}}
	a := newTestApp(t, m)
	a.state.editor.SetValue("Q3 revenue was 5M, up 10%.")

	cmd := press(a, tea.KeyCtrlG)
	require.NotNil(t, cmd)
	assert.Equal(t, viewProcessing, a.view)
	assert.Equal(t, 1, a.state.runID)
	assert.Equal(t, style.Modern, a.state.request.Style)

	a.Update(progressMsg{runID: 1, Progress: pipeline.Progress{
		Stage: pipeline.StageGenerating, Percent: 25, Message: pipeline.MessageStructuring,
	}})
	assert.Equal(t, 25, a.state.progress.Percent)
	assert.Contains(t, a.View(), pipeline.MessageStructuring)

	a.Update(fragmentMsg{runID: 1, chunk: "<h1>Q3</h1>"})
	assert.Equal(t, "<h1>Q3</h1>", a.state.preview)

	done := drain(t, cmd)
	require.NoError(t, done.err)
	a.Update(done)

	assert.Equal(t, viewResult, a.view)
	require.NotNil(t, a.state.artifact)
	assert.Equal(t, "modern_report.pdf", a.state.artifact.Filename)
	assert.Equal(t, 100, a.state.progress.Percent)
	assert.Contains(t, a.View(), "modern_report.pdf")
}

func TestStaleProgressIgnored(t *testing.T) {
	a := newTestApp(t, &llm.Mock{})
	a.view = viewProcessing
	a.state.runID = 2

	a.Update(progressMsg{runID: 1, Progress: pipeline.Progress{Percent: 75}})
	assert.Zero(t, a.state.progress.Percent)

	a.Update(doneMsg{runID: 1, err: errors.New("old run")})
	assert.Equal(t, viewProcessing, a.view)
	assert.Nil(t, a.state.err)
}

func TestCancelReturnsToCompose(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)

	a := newTestApp(t, &llm.Mock{Fragments: []string{"<p>x</p>"}, Hold: hold})
	a.state.editor.SetValue("notes")

	cmd := press(a, tea.KeyCtrlG)
	require.NotNil(t, cmd)
	press(a, tea.KeyEsc)

	assert.Equal(t, viewCompose, a.view)
	assert.Equal(t, "Generation canceled.", a.state.notice)
	assert.Equal(t, "notes", a.state.editor.Value())
}

func TestFailureShowsErrorAndRetries(t *testing.T) {
	m := &llm.Mock{Err: errors.New("quota exceeded")}
	a := newTestApp(t, m)
	a.state.editor.SetValue("notes")

	done := drain(t, press(a, tea.KeyCtrlG))
	a.Update(done)

	assert.Equal(t, viewError, a.view)
	assert.True(t, errs.HasKind(a.state.err, errs.KindGatewayFailure))
	view := a.View()
	assert.Contains(t, view, "quota exceeded")
	assert.Contains(t, view, "rate limit")

	m.Err = nil
	m.Fragments = []string{"<p>ok</p>"}
	retry := typeRunes(a, "r")
	assert.Equal(t, viewProcessing, a.view)
	a.Update(drain(t, retry))
	assert.Equal(t, viewResult, a.view)
}

func TestAcademicResultShowsSource(t *testing.T) {
	a := newTestApp(t, &llm.Mock{Fragments: []string{"```latex\n\\section{Intro}\n```"}})
	a.state.style = style.Academic
	a.state.editor.SetValue("notes")

	a.Update(drain(t, press(a, tea.KeyCtrlG)))

	require.Equal(t, viewResult, a.view)
	assert.False(t, a.state.artifact.IsPDF())
	assert.Contains(t, a.View(), `\section{Intro}`)
}

func TestResultSaveAndCopy(t *testing.T) {
	a := newTestApp(t, &llm.Mock{Fragments: []string{"<p>ok</p>"}})
	var copied string
	a.options.Clipboard = func(s string) error {
		copied = s
		return nil
	}
	a.state.editor.SetValue("notes")
	a.Update(drain(t, press(a, tea.KeyCtrlG)))
	require.Equal(t, viewResult, a.view)

	cmd := typeRunes(a, "s")
	require.NotNil(t, cmd)
	a.Update(cmd())
	require.NotEmpty(t, a.state.savedPath)
	assert.Equal(t, filepath.Join(a.state.config.OutputDir, "modern_report.pdf"), a.state.savedPath)
	_, err := os.Stat(a.state.savedPath)
	assert.NoError(t, err)

	cmd = typeRunes(a, "c")
	require.NotNil(t, cmd)
	a.Update(cmd())
	assert.Equal(t, "<p>ok</p>", copied)
	assert.Equal(t, "Copied to clipboard", a.state.resultMsg)

	typeRunes(a, "n")
	assert.Equal(t, viewCompose, a.view)
	assert.Empty(t, a.state.editor.Value())
	assert.Nil(t, a.state.artifact)
}

func TestHelpAndStatusViews(t *testing.T) {
	a := newTestApp(t, &llm.Mock{})

	press(a, tea.KeyF1)
	assert.Equal(t, viewHelp, a.view)
	assert.Contains(t, a.View(), "Keyboard Shortcuts")
	press(a, tea.KeyEsc)
	assert.Equal(t, viewCompose, a.view)

	press(a, tea.KeyF2)
	assert.Equal(t, viewStatus, a.view)
	view := a.View()
	assert.Contains(t, view, "Engine Status")
	assert.Contains(t, view, "Quota      ~15 Req/Min")
	assert.Contains(t, view, "stub")
}

func TestSetupOffline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	a := NewApp(Options{ConfigPath: path})
	require.Equal(t, viewSetup, a.view)

	for range config.Providers {
		press(a, tea.KeyDown)
	}
	assert.Equal(t, len(config.Providers)-1, a.state.selectedProvider)

	cmd := press(a, tea.KeyEnter)
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, setupCompleteMsg{}, msg)

	_, cmd = a.Update(msg)
	assert.Equal(t, viewCompose, a.view)
	assert.Equal(t, "offline", a.state.config.Provider)

	saved, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "offline", saved.Provider)

	// connecting builds a pipeline for the saved provider
	require.NotNil(t, cmd)
	ready, ok := cmd().(pipelineReadyMsg)
	require.True(t, ok)
	a.Update(ready)
	assert.NotNil(t, a.state.session)
}

func TestSetupRequiresKey(t *testing.T) {
	a := NewApp(Options{ConfigPath: filepath.Join(t.TempDir(), "config.yaml")})

	cmd := press(a, tea.KeyEnter)
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, a.state.setupStep)

	assert.Nil(t, press(a, tea.KeyEnter))
	assert.Error(t, a.state.setupError)

	press(a, tea.KeyEsc)
	assert.Equal(t, 0, a.state.setupStep)
}

func TestSetupKeyAndModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	a := NewApp(Options{ConfigPath: path})

	press(a, tea.KeyEnter)
	require.Equal(t, setupKey, a.state.setupStep)

	typeRunes(a, "secret-key")
	assert.Nil(t, press(a, tea.KeyEnter))
	require.Equal(t, setupModel, a.state.setupStep)
	assert.Equal(t, "secret-key", a.state.config.APIKey)
	assert.Contains(t, a.View(), "gemini-2.0-flash")

	press(a, tea.KeyDown)
	cmd := press(a, tea.KeyEnter)
	require.NotNil(t, cmd)
	require.IsType(t, setupCompleteMsg{}, cmd())

	saved, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", saved.Provider)
	assert.Equal(t, "gemini-2.0-flash", saved.Model)
	assert.Equal(t, "secret-key", saved.APIKey)
}

func TestSuggest(t *testing.T) {
	assert.Nil(t, suggest(nil))
	assert.Contains(t, suggest(errs.New(errs.KindMissingCredential, "no key"))[0], "reportgenie setup")
	assert.Contains(t, suggest(errs.Wrap(errors.New("HTTP 429"), errs.KindGatewayFailure, "model request failed"))[0], "rate limit")
	assert.Contains(t, suggest(errs.Wrap(context.DeadlineExceeded, errs.KindGatewayFailure, "model request failed"))[0], "too long")
	assert.Len(t, suggest(errs.New(errs.KindRenderFailure, "bad markup")), 2)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "c\nd", tail("a\nb\nc\nd\n", 2, 10))
	assert.Equal(t, "abc...", tail("abcdefgh", 3, 6))
}
