package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/sant0-9/reportgenie/internal/config"
	"github.com/sant0-9/reportgenie/internal/llm"
	"github.com/sant0-9/reportgenie/internal/render"
	"github.com/sant0-9/reportgenie/internal/writer"
)

// FromConfig wires the configured provider, writer and renderer into a
// pipeline. It fails with errs.KindMissingCredential when the provider needs a
// key that is not set.
func FromConfig(cfg *config.Config, logger *logrus.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	renderer, err := render.New(render.Options{
		Engine:  cfg.Renderer.Engine,
		Binary:  cfg.Renderer.Binary,
		Timeout: cfg.Renderer.Timeout,
	})
	if err != nil {
		return nil, err
	}

	w := writer.NewWriter(provider, cfg.Model,
		writer.WithMaxTokens(cfg.MaxTokens),
		writer.WithTemperature(cfg.Temperature),
		writer.WithStreaming(cfg.Stream),
	)

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"provider": provider.Name(),
			"model":    cfg.Model,
			"renderer": renderer.Name(),
			"stream":   cfg.Stream,
		}).Debug("pipeline configured")
	}

	return NewPipeline(w, renderer, logger,
		WithTimeout(cfg.Timeout),
		WithStylesheets(cfg.Stylesheet),
	), nil
}
