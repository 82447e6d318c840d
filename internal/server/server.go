// Package server exposes report generation over HTTP: a single page for
// browsers plus a small JSON and download API.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/sant0-9/reportgenie/internal/logging"
	"github.com/sant0-9/reportgenie/internal/pipeline"
	"github.com/sant0-9/reportgenie/internal/style"
)

//go:embed web/index.html
var web embed.FS

var indexTemplate = template.Must(template.ParseFS(web, "web/index.html"))

// Options configures a Server
type Options struct {
	Provider    string
	Model       string
	RateLimit   int
	SessionTTL  time.Duration
	CORSOrigins []string
	MaxBodySize int64
}

type Server struct {
	pipeline *pipeline.Pipeline
	sessions *sessionStore
	logger   *logrus.Logger
	options  Options
}

func New(p *pipeline.Pipeline, logger *logrus.Logger, opts Options) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = 1 << 20
	}

	return &Server{
		pipeline: p,
		sessions: newSessionStore(p, opts.SessionTTL),
		logger:   logger,
		options:  opts,
	}
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	origins := s.options.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     origins,
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Accept", "Content-Type"},
		ExposedHeaders:     []string{"Content-Disposition"},
		AllowCredentials:   false,
		MaxAge:             300,
		OptionsPassthrough: false,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/styles", s.handleStyles)
		r.Get("/status", s.handleStatus)
		r.Post("/generate", s.handleGenerate)
	})

	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.sessions.sweep(time.Now()); n > 0 {
					s.logger.WithField("sessions", n).Debug("expired sessions removed")
				}
			case <-stop:
				return
			}
		}
	}()
	defer close(stop)

	errc := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	data := struct {
		Styles    []style.Info
		Provider  string
		Model     string
		RateLimit int
	}{
		Styles:    style.All(),
		Provider:  s.options.Provider,
		Model:     s.options.Model,
		RateLimit: s.options.RateLimit,
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("render index")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
