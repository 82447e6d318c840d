package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sant0-9/reportgenie/internal/config"
	"github.com/sant0-9/reportgenie/internal/errs"
	"github.com/sant0-9/reportgenie/internal/prompts"
	"github.com/sant0-9/reportgenie/internal/style"
)

func TestCollectMatchesComplete(t *testing.T) {
	fragments := [][]string{
		{"<h1>", "Title", "</h1>"},
		{"```html\n", "<p>é</p>", "\n```"},
		{"single"},
		{},
	}

	for _, f := range fragments {
		m := &Mock{Fragments: f}
		ctx := context.Background()

		resp, err := m.Complete(ctx, NewRequest("", "", "x"))
		require.NoError(t, err)

		events, err := m.Stream(ctx, NewRequest("", "", "x"))
		require.NoError(t, err)

		var seen []string
		got, err := Collect(ctx, events, func(s string) { seen = append(seen, s) })
		require.NoError(t, err)

		assert.Equal(t, resp.Content, got)
		assert.Equal(t, strings.Join(f, ""), got)
		assert.Equal(t, len(f), len(seen))
	}
}

func TestCollectStreamError(t *testing.T) {
	boom := errors.New("connection reset")
	m := &Mock{Fragments: []string{"partial"}, StreamErr: boom}

	events, err := m.Stream(context.Background(), NewRequest("", "", "x"))
	require.NoError(t, err)

	got, err := Collect(context.Background(), events, nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, got)
}

func TestCollectClosedWithoutDone(t *testing.T) {
	events := make(chan StreamEvent, 1)
	events <- StreamEvent{Chunk: "a"}
	close(events)

	_, err := Collect(context.Background(), events, nil)
	assert.ErrorIs(t, err, ErrStreamClosed)
}

func TestCollectCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, make(chan StreamEvent), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFragments(t *testing.T) {
	text := "héllo wörld, ünïcode"
	parts := Fragments(text, 3)
	assert.Equal(t, text, strings.Join(parts, ""))
	for _, p := range parts {
		assert.True(t, len(p) > 0)
		assert.True(t, strings.ToValidUTF8(p, "?") == p, "fragment %q splits a rune", p)
	}

	assert.Nil(t, Fragments("", 4))
	assert.Equal(t, []string{"abc"}, Fragments("abc", 0))
}

func TestNewRequest(t *testing.T) {
	req := NewRequest("m", "", "hello")
	require.Len(t, req.Messages, 1)
	assert.Equal(t, RoleUser, req.Messages[0].Role)

	req = NewRequest("m", "sys", "hello")
	require.Len(t, req.Messages, 2)
	system, rest := splitMessages(req.Messages)
	assert.Equal(t, "sys", system)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "hello"}}, rest)
}

func TestOfflineProvider(t *testing.T) {
	input := "# Quarterly Review\nRevenue grew 12% on strong demand.\n\n## Risks\n- churn\n- pricing"

	tests := []struct {
		style    style.Style
		fence    string
		contains []string
	}{
		{style.Simple, "```html", []string{"<h1>Quarterly Review</h1>", "<li>churn</li>"}},
		{style.Modern, "```html", []string{`<h1 class="title">Quarterly Review</h1>`, "Executive Summary", `<ul class="toc">`, "<li>Risks</li>"}},
		{style.Academic, "```latex", []string{`\documentclass{article}`, `\usepackage{longtable}`, `\title{Quarterly Review}`, `\begin{abstract}`, `12\%`, `\subsection{Risks}`, `\end{document}`}},
	}

	p := NewOfflineProvider()
	for _, tt := range tests {
		t.Run(tt.style.String(), func(t *testing.T) {
			ins, err := prompts.Build(tt.style, input)
			require.NoError(t, err)

			resp, err := p.Complete(context.Background(), NewRequest("", "", ins.String()))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(resp.Content, tt.fence))
			assert.True(t, strings.HasSuffix(resp.Content, "```"))
			for _, want := range tt.contains {
				assert.Contains(t, resp.Content, want)
			}

			events, err := p.Stream(context.Background(), NewRequest("", "", ins.String()))
			require.NoError(t, err)
			streamed, err := Collect(context.Background(), events, nil)
			require.NoError(t, err)
			assert.Equal(t, resp.Content, streamed)
		})
	}
}

func TestOfflineProviderRejectsPlainText(t *testing.T) {
	_, err := NewOfflineProvider().Complete(context.Background(), NewRequest("", "", "no instruction here"))
	assert.Error(t, err)
}

func TestLimited(t *testing.T) {
	m := &Mock{Fragments: []string{"ok"}}
	p := NewLimited(rate.NewLimiter(rate.Every(time.Hour), 1), m)
	assert.Equal(t, "mock", p.Name())

	_, err := p.Complete(context.Background(), NewRequest("", "", "x"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Complete(ctx, NewRequest("", "", "x"))
	assert.Error(t, err, "second call must wait for a token")
	assert.Equal(t, 1, m.Calls())

	assert.Same(t, m, NewLimited(nil, m))
	assert.Nil(t, PerMinute(0))
}

func TestRetrying(t *testing.T) {
	transient := errors.New("503 unavailable")

	newRetrying := func(m *Mock, tries int) *Retrying {
		r := NewRetrying(m, tries).(*Retrying)
		r.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
		return r
	}

	t.Run("recovers", func(t *testing.T) {
		m := &Mock{Fragments: []string{"done"}, Err: transient, FailFirst: 2}
		resp, err := newRetrying(m, 3).Complete(context.Background(), NewRequest("", "", "x"))
		require.NoError(t, err)
		assert.Equal(t, "done", resp.Content)
		assert.Equal(t, 3, m.Calls())
	})

	t.Run("gives up", func(t *testing.T) {
		m := &Mock{Err: transient}
		_, err := newRetrying(m, 2).Stream(context.Background(), NewRequest("", "", "x"))
		assert.ErrorIs(t, err, transient)
		assert.Equal(t, 2, m.Calls())
	})

	t.Run("canceled is permanent", func(t *testing.T) {
		m := &Mock{Err: context.Canceled}
		_, err := newRetrying(m, 5).Complete(context.Background(), NewRequest("", "", "x"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, m.Calls())
	})

	t.Run("single try is passthrough", func(t *testing.T) {
		m := &Mock{}
		assert.Same(t, m, NewRetrying(m, 1))
	})
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      func(*config.Config)
		wantName string
		wantKind errs.Kind
		wantErr  bool
	}{
		{"gemini", func(c *config.Config) { c.APIKey = "k" }, "gemini", "", false},
		{"gemini missing key", func(c *config.Config) {}, "", errs.KindMissingCredential, true},
		{"openai", func(c *config.Config) { c.Provider = "openai"; c.APIKey = "k" }, "openai", "", false},
		{"anthropic missing key", func(c *config.Config) { c.Provider = "anthropic" }, "", errs.KindMissingCredential, true},
		{"groq", func(c *config.Config) { c.Provider = "groq"; c.APIKey = "k" }, "groq", "", false},
		{"ollama", func(c *config.Config) { c.Provider = "ollama" }, "ollama", "", false},
		{"custom without url", func(c *config.Config) { c.Provider = "custom" }, "", errs.KindUnknown, true},
		{"offline", func(c *config.Config) { c.Provider = "offline" }, "offline", "", false},
		{"unknown", func(c *config.Config) { c.Provider = "acme" }, "", errs.KindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.cfg(cfg)

			p, err := NewProvider(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestDecorateRetriesAfterFirstAttempt(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimit = 0
	cfg.Retries = 1

	m := &Mock{Fragments: []string{"ok"}, Err: errors.New("503 unavailable"), FailFirst: 1}
	resp, err := decorate(m, cfg).Complete(context.Background(), NewRequest("", "", "x"))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 2, m.Calls())

	cfg.Retries = 0
	assert.Same(t, m, decorate(m, cfg))
}

func TestDecorateRetriesWaitForQuota(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimit = 1
	cfg.Retries = 3

	m := &Mock{Err: errors.New("429 quota exceeded")}
	p := decorate(m, cfg)
	r, ok := p.(*Retrying)
	require.True(t, ok)
	require.IsType(t, &Limited{}, r.provider)
	r.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := p.Complete(ctx, NewRequest("", "", "x"))
	assert.Error(t, err)
	assert.Equal(t, 1, m.Calls(), "a retry must not bypass the one-token quota")
}
