package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sant0-9/reportgenie/internal/errs"
	"github.com/sant0-9/reportgenie/internal/logging"
	"github.com/sant0-9/reportgenie/internal/metrics"
	"github.com/sant0-9/reportgenie/internal/prompts"
	"github.com/sant0-9/reportgenie/internal/render"
	"github.com/sant0-9/reportgenie/internal/sanitize"
	"github.com/sant0-9/reportgenie/internal/style"
	"github.com/sant0-9/reportgenie/internal/writer"
)

// Stage represents a pipeline stage
type Stage int

const (
	StageIdle Stage = iota
	StageValidating
	StagePrompting
	StageGenerating
	StageSanitizing
	StageRendering
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageValidating:
		return "Validating"
	case StagePrompting:
		return "Prompting"
	case StageGenerating:
		return "Generating"
	case StageSanitizing:
		return "Sanitizing"
	case StageRendering:
		return "Rendering"
	case StageDone:
		return "Done"
	case StageFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further stage follows s
func (s Stage) Terminal() bool {
	return s == StageIdle || s == StageDone || s == StageFailed
}

// Progress messages shown alongside the bar
const (
	MessageStructuring = "Structuring document logic..."
	MessageTypesetting = "Applying professional typography..."
	MessageDone        = "Done!"
)

// Progress represents pipeline progress
type Progress struct {
	Stage   Stage
	Percent int
	Message string
	Err     error // set when Stage is StageFailed
}

// Request is one generation request
type Request struct {
	Style style.Style
	Text  string
}

// Pipeline turns raw notes into a styled artifact
type Pipeline struct {
	writer      *writer.Writer
	renderer    render.Renderer
	logger      *logrus.Logger
	timeout     time.Duration
	stylesheets func(style.Info) (string, error)

	onProgress func(Progress)
	onFragment func(string)
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithTimeout bounds the model call. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// WithStylesheets overrides how the CSS of an HTML style is resolved
func WithStylesheets(fn func(style.Info) (string, error)) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.stylesheets = fn
		}
	}
}

// NewPipeline creates a new pipeline
func NewPipeline(w *writer.Writer, r render.Renderer, logger *logrus.Logger, options ...Option) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}

	p := &Pipeline{
		writer:   w,
		renderer: r,
		logger:   logger,
		stylesheets: func(info style.Info) (string, error) {
			return info.Stylesheet, nil
		},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// SetProgressCallback sets the progress callback
func (p *Pipeline) SetProgressCallback(fn func(Progress)) {
	p.onProgress = fn
}

// SetFragmentCallback receives model output as it arrives
func (p *Pipeline) SetFragmentCallback(fn func(string)) {
	p.onFragment = fn
}

// Renderer returns the configured renderer
func (p *Pipeline) Renderer() render.Renderer {
	return p.renderer
}

// Writer returns the configured writer
func (p *Pipeline) Writer() *writer.Writer {
	return p.writer
}

func (p *Pipeline) progress(pr Progress) {
	p.logger.WithFields(logrus.Fields{
		"stage":   pr.Stage.String(),
		"percent": pr.Percent,
	}).Debug("pipeline stage")

	if p.onProgress != nil {
		p.onProgress(pr)
	}
}

// Run processes one request. On success the returned artifact is complete; on
// failure no artifact is returned and the error carries exactly one errs.Kind.
// A canceled ctx returns the pipeline to StageIdle with context.Canceled.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Artifact, error) {
	start := time.Now()
	percent := 0

	log := p.logger.WithFields(logrus.Fields{
		"style": req.Style.String(),
		"bytes": len(req.Text),
	})

	fail := func(err error) (*Artifact, error) {
		if errors.Is(ctx.Err(), context.Canceled) {
			log.Info("generation canceled")
			metrics.GenerationTotal.WithLabelValues(req.Style.String(), "canceled").Inc()
			p.progress(Progress{Stage: StageIdle})
			return nil, ctx.Err()
		}

		log.WithError(err).WithField("kind", errs.KindOf(err)).Error("generation failed")
		metrics.GenerationTotal.WithLabelValues(req.Style.String(), string(errs.KindOf(err))).Inc()
		p.progress(Progress{Stage: StageFailed, Percent: percent, Err: err})
		return nil, err
	}

	metrics.ActiveGenerations.Inc()
	defer metrics.ActiveGenerations.Dec()

	// Validating
	p.progress(Progress{Stage: StageValidating})
	if strings.TrimSpace(req.Text) == "" {
		p.progress(Progress{Stage: StageIdle})
		return nil, errs.New(errs.KindEmptyInput, prompts.EmptyInputMessage)
	}
	info, err := style.Lookup(req.Style)
	if err != nil {
		return fail(err)
	}

	// Prompting
	p.progress(Progress{Stage: StagePrompting})
	ins, err := prompts.Build(info.Style, req.Text)
	if err != nil {
		return fail(err)
	}

	if tokens, limit := EstimateTokens(ins.String()), ContextLimit(p.writer.Model()); tokens > limit {
		log.WithFields(logrus.Fields{"tokens": tokens, "limit": limit}).Warn("input may exceed the model context window")
	}

	// Generating
	percent = 25
	p.progress(Progress{Stage: StageGenerating, Percent: percent, Message: MessageStructuring})
	log.WithField("estimate", EstimateDuration(req.Text)).Debug("calling model")

	raw, err := p.generate(ctx, ins)
	if err != nil {
		return fail(errs.Wrap(err, errs.KindGatewayFailure, "model request failed"))
	}

	// Sanitizing
	percent = 75
	p.progress(Progress{Stage: StageSanitizing, Percent: percent, Message: MessageTypesetting})
	cleaned := sanitize.Clean(raw)

	// Rendering
	p.progress(Progress{Stage: StageRendering, Percent: percent, Message: MessageTypesetting})
	data, err := p.render(ctx, info, cleaned)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(errs.Wrap(err, errs.KindRenderFailure, "document rendering interrupted"))
	}

	artifact := &Artifact{
		Style:    info.Style,
		Filename: info.Filename,
		MIMEType: info.MIMEType,
		Data:     data,
		Source:   cleaned,
		Duration: time.Since(start),
	}

	metrics.GenerationTotal.WithLabelValues(req.Style.String(), "done").Inc()
	metrics.GenerationDuration.WithLabelValues(req.Style.String()).Observe(artifact.Duration.Seconds())
	metrics.ArtifactSize.WithLabelValues(req.Style.String()).Observe(float64(len(data)))

	log.WithFields(logrus.Fields{
		"file":     artifact.Filename,
		"size":     artifact.SizeHuman(),
		"duration": artifact.Duration.Round(time.Millisecond),
	}).Info("report generated")

	p.progress(Progress{Stage: StageDone, Percent: 100, Message: MessageDone})
	return artifact, nil
}

func (p *Pipeline) generate(ctx context.Context, ins prompts.Instruction) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	name := p.writer.Provider().Name()
	start := time.Now()

	raw, err := p.writer.Write(ctx, ins, p.onFragment)
	metrics.LLMCallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(name, "error").Inc()
		return "", err
	}
	metrics.LLMCallTotal.WithLabelValues(name, "success").Inc()
	return raw, nil
}

func (p *Pipeline) render(ctx context.Context, info style.Info, cleaned string) ([]byte, error) {
	switch info.Format {
	case style.FormatLaTeX:
		return []byte(cleaned), nil

	case style.FormatHTML:
		css, err := p.stylesheets(info)
		if err != nil {
			return nil, errs.Wrap(err, errs.KindRenderFailure, "stylesheet unavailable")
		}

		start := time.Now()
		data, err := p.renderer.Render(ctx, cleaned, css)
		metrics.RenderDuration.WithLabelValues(p.renderer.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, errs.Wrap(err, errs.KindRenderFailure, "document rendering failed")
		}
		return data, nil

	default:
		return nil, errs.Wrap(fmt.Errorf("format %s", info.Format), errs.KindRenderFailure, "unsupported output format")
	}
}
