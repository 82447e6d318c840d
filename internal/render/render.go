// Package render turns cleaned HTML markup into PDF bytes.
package render

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Renderer converts body markup plus a stylesheet into a document
type Renderer interface {
	Name() string
	Render(ctx context.Context, markup, stylesheet string) ([]byte, error)
}

const (
	EngineNative      = "native"
	EngineWeasyPrint  = "weasyprint"
	EngineWkhtmltopdf = "wkhtmltopdf"
	EngineAuto        = "auto"
)

// Options selects and configures a renderer
type Options struct {
	Engine  string
	Binary  string
	Timeout time.Duration
}

// New returns the renderer for opts.Engine. auto prefers an installed external
// engine and falls back to the native one.
func New(opts Options) (Renderer, error) {
	switch opts.Engine {
	case "", EngineNative:
		return NewNative(), nil

	case EngineWeasyPrint, EngineWkhtmltopdf:
		return NewCommand(opts.Engine, opts.Binary, opts.Timeout)

	case EngineAuto:
		for _, engine := range []string{EngineWeasyPrint, EngineWkhtmltopdf} {
			if _, err := exec.LookPath(engine); err == nil {
				return NewCommand(engine, "", opts.Timeout)
			}
		}
		return NewNative(), nil

	default:
		return nil, fmt.Errorf("unknown renderer engine: %s", opts.Engine)
	}
}

// Document wraps body markup and a stylesheet into a complete HTML document
func Document(markup, stylesheet string) string {
	return `<html><head><meta charset="utf-8"><style>` + stylesheet +
		`</style></head><body>` + markup + `</body></html>`
}
