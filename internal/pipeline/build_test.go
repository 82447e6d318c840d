package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/reportgenie/internal/config"
	"github.com/sant0-9/reportgenie/internal/errs"
	"github.com/sant0-9/reportgenie/internal/style"
)

func offlineConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Provider = "offline"
	cfg.Model = "offline"
	cfg.RateLimit = 0
	return cfg
}

func TestFromConfigOffline(t *testing.T) {
	p, err := FromConfig(offlineConfig(), nil)
	require.NoError(t, err)

	notes := "Quarterly Review\n\nRevenue grew 10% to 5M.\n\n- Supply chain risk\n- Hiring plan"

	for _, info := range style.All() {
		t.Run(info.Name, func(t *testing.T) {
			artifact, err := p.Run(context.Background(), Request{Style: info.Style, Text: notes})
			require.NoError(t, err)
			assert.Equal(t, info.Filename, artifact.Filename)
			assert.NotContains(t, artifact.Source, "```")

			switch info.Format {
			case style.FormatHTML:
				assert.True(t, bytes.HasPrefix(artifact.Data, []byte("%PDF-")))
			case style.FormatLaTeX:
				assert.True(t, strings.Contains(artifact.Source, `\documentclass`))
				assert.Equal(t, artifact.Source, string(artifact.Data))
			}
		})
	}
}

func TestFromConfigMissingCredential(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.APIKey = ""

	_, err := FromConfig(cfg, nil)
	assert.ErrorIs(t, err, errs.ErrMissingCredential)
}

func TestFromConfigStylesheetOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simple.css")
	require.NoError(t, os.WriteFile(path, []byte("body { font-family: Courier; }"), 0644))

	cfg := offlineConfig()
	cfg.Stylesheets = map[string]string{"simple": path}

	p, err := FromConfig(cfg, nil)
	require.NoError(t, err)

	artifact, err := p.Run(context.Background(), Request{Style: style.Simple, Text: "hello"})
	require.NoError(t, err)
	assert.True(t, artifact.IsPDF())
}

func TestFromConfigBadStylesheet(t *testing.T) {
	cfg := offlineConfig()
	cfg.Stylesheets = map[string]string{"modern": filepath.Join(t.TempDir(), "missing.css")}

	p, err := FromConfig(cfg, nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), Request{Style: style.Modern, Text: "hello"})
	assert.ErrorIs(t, err, errs.ErrRenderFailure)
}
