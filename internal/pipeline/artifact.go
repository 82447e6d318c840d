package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sant0-9/reportgenie/internal/style"
)

// Artifact is the downloadable result of a generation
type Artifact struct {
	Style    style.Style
	Filename string
	MIMEType string
	Data     []byte
	Source   string // cleaned model output
	Duration time.Duration
}

// Size returns the artifact size in bytes
func (a *Artifact) Size() int64 {
	return int64(len(a.Data))
}

// SizeHuman returns human-readable file size
func (a *Artifact) SizeHuman() string {
	bytes := a.Size()
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
}

// IsPDF reports whether the artifact is a rendered document
func (a *Artifact) IsPDF() bool {
	return a.MIMEType == style.MIMEPDF
}

// Save writes the artifact into dir and returns its path
func (a *Artifact) Save(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return "", fmt.Errorf("save %s: %w", a.Filename, err)
	}
	return path, nil
}
