package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/sant0-9/reportgenie/internal/errs"
	"github.com/sant0-9/reportgenie/internal/pipeline"
	"github.com/sant0-9/reportgenie/internal/style"
)

type styleResponse struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Caption     string `json:"caption"`
	Description string `json:"description"`
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	MIMEType    string `json:"mime_type"`
}

type statusResponse struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Renderer  string `json:"renderer"`
	Streaming bool   `json:"streaming"`
	RateLimit int    `json:"rate_limit"`
	Busy      bool   `json:"busy"`
}

type generateRequest struct {
	Style string `json:"style"`
	Text  string `json:"text"`
}

type artifactResponse struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Source   string `json:"source"`
	Data     []byte `json:"data"`
	Size     string `json:"size"`
}

type errorResponse struct {
	Error string    `json:"error"`
	Kind  errs.Kind `json:"kind"`
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	var result []styleResponse
	for _, info := range style.All() {
		result = append(result, styleResponse{
			Name:        info.Name,
			Slug:        info.Slug,
			Caption:     info.Caption,
			Description: info.Description,
			Format:      info.Format.String(),
			Filename:    info.Filename,
			MIMEType:    info.MIMEType,
		})
	}

	writeJson(w, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.get(w, r)

	writeJson(w, statusResponse{
		Provider:  s.options.Provider,
		Model:     s.options.Model,
		Renderer:  s.pipeline.Renderer().Name(),
		Streaming: s.pipeline.Writer().Streaming(),
		RateLimit: s.options.RateLimit,
		Busy:      session.Busy(),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.options.MaxBodySize)
	asJSON := wantsJSON(r)

	input, err := readGenerateRequest(r)
	if err != nil {
		s.writeFailure(w, asJSON, http.StatusBadRequest, err)
		return
	}

	st, err := style.Parse(input.Style)
	if err != nil {
		s.writeFailure(w, asJSON, errs.HTTPStatus(err), err)
		return
	}

	session := s.sessions.get(w, r)

	artifact, err := session.Submit(r.Context(), pipeline.Request{Style: st, Text: input.Text})
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		s.writeFailure(w, asJSON, errs.HTTPStatus(err), err)
		return
	}

	if asJSON {
		writeJson(w, artifactResponse{
			Filename: artifact.Filename,
			MIMEType: artifact.MIMEType,
			Source:   artifact.Source,
			Data:     artifact.Data,
			Size:     artifact.SizeHuman(),
		})
		return
	}

	w.Header().Set("Content-Type", artifact.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	w.Write(artifact.Data)
}

func readGenerateRequest(r *http.Request) (*generateRequest, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if ct == "application/json" {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &generateRequest{
		Style: r.FormValue("style"),
		Text:  r.FormValue("text"),
	}, nil
}

func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, _ := mime.ParseMediaType(strings.TrimSpace(part))
		if mt == "application/json" {
			return true
		}
	}
	return false
}

func (s *Server) writeFailure(w http.ResponseWriter, asJSON bool, code int, err error) {
	var e *errs.Error
	message := err.Error()
	if errors.As(err, &e) && e.Kind != errs.KindGatewayFailure && e.Kind != errs.KindRenderFailure {
		message = e.Message
	}

	if code >= http.StatusInternalServerError {
		s.logger.WithError(err).Warn("generate request failed")
	}

	if asJSON {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(errorResponse{Error: message, Kind: errs.KindOf(err)})
		return
	}

	writeError(w, code, errors.New(message))
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)

	text := http.StatusText(code)

	if err != nil {
		text = err.Error()
	}

	w.Write([]byte(text))
}
