package writer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/reportgenie/internal/llm"
	"github.com/sant0-9/reportgenie/internal/prompts"
	"github.com/sant0-9/reportgenie/internal/style"
)

func TestWriteStreamingMatchesComplete(t *testing.T) {
	ins, err := prompts.Build(style.Simple, "notes")
	require.NoError(t, err)

	m := &llm.Mock{Fragments: []string{"```html\n", "<h1>Notes</h1>", "\n```"}}

	full, err := NewWriter(m, "m").Write(context.Background(), ins, nil)
	require.NoError(t, err)

	var chunks []string
	streamed, err := NewWriter(m, "m", WithStreaming(true)).Write(context.Background(), ins, func(s string) {
		chunks = append(chunks, s)
	})
	require.NoError(t, err)

	assert.Equal(t, full, streamed)
	assert.Equal(t, m.Fragments, chunks)
}

func TestWriteRequest(t *testing.T) {
	ins, err := prompts.Build(style.Academic, "paper draft")
	require.NoError(t, err)

	m := &llm.Mock{Fragments: []string{"x"}}
	w := NewWriter(m, "gemini-1.5-flash", WithMaxTokens(1000), WithTemperature(0.1))
	_, err = w.Write(context.Background(), ins, nil)
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "gemini-1.5-flash", reqs[0].Model)
	assert.Equal(t, 1000, reqs[0].MaxTokens)
	assert.Equal(t, 0.1, reqs[0].Temperature)
	require.Len(t, reqs[0].Messages, 1)
	assert.Equal(t, ins.String(), reqs[0].Messages[0].Content)
}

func TestWriteError(t *testing.T) {
	boom := errors.New("quota exceeded")
	ins, err := prompts.Build(style.Modern, "x")
	require.NoError(t, err)

	for _, stream := range []bool{false, true} {
		_, err := NewWriter(&llm.Mock{Err: boom}, "", WithStreaming(stream)).Write(context.Background(), ins, nil)
		assert.ErrorIs(t, err, boom)
	}
}
