package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/reportgenie/internal/errs"
)

func writeOfflineConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("REPORTGENIE_PROVIDER", "")
	t.Setenv("REPORTGENIE_MODEL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "provider: offline\nmodel: offline\nrate_limit: 0\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestStylesCommand(t *testing.T) {
	out, _, err := execute(t, "", "styles")
	require.NoError(t, err)
	assert.Contains(t, out, "simple_report.pdf")
	assert.Contains(t, out, "Corporate (McKinsey Style)")
	assert.Contains(t, out, "report.tex")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "reportgenie dev\n", out)
}

func TestGenerateToStdout(t *testing.T) {
	cfg := writeOfflineConfig(t)

	out, progress, err := execute(t, "Revenue grew 10% in Q3.", "--config", cfg, "generate", "-s", "academic", "--stdout")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Contains(t, progress, "Done!")
}

func TestGenerateToFile(t *testing.T) {
	cfg := writeOfflineConfig(t)
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("Q3 summary\n\nRevenue grew 10%."), 0644))

	out, _, err := execute(t, "", "--config", cfg, "generate", "-q", "-s", "simple", "--in", notes, "--out", dir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(dir, "simple_report.pdf"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestGenerateEmptyInput(t *testing.T) {
	cfg := writeOfflineConfig(t)

	_, _, err := execute(t, "  \n", "--config", cfg, "generate")
	assert.True(t, errs.HasKind(err, errs.KindEmptyInput))
}

func TestGenerateUnknownStyle(t *testing.T) {
	_, _, err := execute(t, "notes", "generate", "-s", "baroque")
	assert.True(t, errs.HasKind(err, errs.KindUnknownStyle))
}

func TestGenerateMissingCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: openai\n"), 0600))
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("REPORTGENIE_API_KEY", "")
	t.Setenv("REPORTGENIE_PROVIDER", "")

	_, _, err := execute(t, "notes", "--config", path, "generate")
	assert.True(t, errs.HasKind(err, errs.KindMissingCredential))
}
