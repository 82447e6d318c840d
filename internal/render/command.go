package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Command renders by piping the full HTML document through an external
// HTML-to-PDF program
type Command struct {
	name    string
	path    string
	args    []string
	timeout time.Duration
}

var commandArgs = map[string][]string{
	EngineWeasyPrint:  {"--encoding", "utf-8", "-", "-"},
	EngineWkhtmltopdf: {"--quiet", "--encoding", "utf-8", "-", "-"},
}

// NewCommand locates an engine binary. binary overrides the PATH lookup.
func NewCommand(engine, binary string, timeout time.Duration) (*Command, error) {
	args, ok := commandArgs[engine]
	if !ok {
		return nil, fmt.Errorf("unknown renderer engine: %s", engine)
	}

	if binary == "" {
		binary = engine
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH", binary)
	}

	if timeout <= 0 {
		timeout = time.Minute
	}

	return &Command{
		name:    engine,
		path:    path,
		args:    args,
		timeout: timeout,
	}, nil
}

func (c *Command) Name() string {
	return c.name
}

func (c *Command) Render(ctx context.Context, markup, stylesheet string) ([]byte, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, ErrEmptyDocument
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.path, c.args...)
	cmd.Stdin = strings.NewReader(Document(markup, stylesheet))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", c.name, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s failed: %s", c.name, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("failed to run %s: %w", c.name, err)
	}

	out := stdout.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		return nil, fmt.Errorf("%s produced no PDF output", c.name)
	}
	return out, nil
}
