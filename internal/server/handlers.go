package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/extract"
	"github.com/ppiankov/factlens/internal/media"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/report"
	"go.uber.org/zap"
)

type analyzeRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

type analyzeResponse struct {
	Result       *model.AnalysisResult `json:"result"`
	Warnings     []extract.Violation   `json:"warnings"`
	Links        []model.LinkCheck     `json:"links,omitempty"`
	LinkProblems []string              `json:"link_problems,omitempty"`
	Support      model.Support         `json:"support"`
	Cached       bool                  `json:"cached"`
	HistoryID    string                `json:"history_id,omitempty"`
	DurationMS   int64                 `json:"duration_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sub, err := readSubmission(w, r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Debug("analyze request",
		zap.Int("text_len", len(sub.Text)),
		zap.Bool("file", sub.File != nil),
		zap.String("mode", string(sub.Mode)),
	)

	out, err := s.session.Submit(r.Context(), sub)
	if err != nil {
		s.respondAnalysisError(w, err)
		return
	}

	warnings := out.Warnings
	if warnings == nil {
		warnings = []extract.Violation{}
	}
	s.respondJSON(w, http.StatusOK, analyzeResponse{
		Result:       out.Result,
		Warnings:     warnings,
		Links:        out.Links,
		LinkProblems: out.LinkProblems,
		Support:      out.Support,
		Cached:       out.Cached,
		HistoryID:    out.HistoryID,
		DurationMS:   out.Duration.Milliseconds(),
	})
}

// readSubmission accepts JSON or a multipart/urlencoded form with text,
// mode and an optional file field
func readSubmission(w http.ResponseWriter, r *http.Request) (pipeline.Submission, error) {
	var sub pipeline.Submission
	var text, mode string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var body analyzeRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&body); err != nil {
			return sub, errors.New("invalid request body")
		}
		text, mode = body.Text, body.Mode

	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return sub, errors.New("invalid multipart form")
		}
		text, mode = r.FormValue("text"), r.FormValue("mode")

		file, header, err := r.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return sub, errors.New("invalid file upload")
		default:
			defer func() { _ = file.Close() }()
			data, err := io.ReadAll(file)
			if err != nil {
				return sub, errors.New("could not read uploaded file")
			}
			sub.File = &media.File{
				Name:     header.Filename,
				Data:     data,
				MimeType: header.Header.Get("Content-Type"),
			}
		}

	default:
		if err := r.ParseForm(); err != nil {
			return sub, errors.New("invalid form")
		}
		text, mode = r.FormValue("text"), r.FormValue("mode")
	}

	m, err := model.ParseMode(mode)
	if err != nil {
		return sub, err
	}
	sub.Text = text
	sub.Mode = m
	return sub, nil
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"state": s.session.State().String()}
	if _, err := s.session.Last(); err != nil {
		resp["error"] = apperr.UserMessage(err)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if s.session.State() == pipeline.StateAnalyzing {
		s.respondError(w, http.StatusConflict, pipeline.ErrBusy.Error())
		return
	}
	s.session.Reset()
	s.respondJSON(w, http.StatusOK, map[string]string{"state": s.session.State().String()})
}

// handleReport renders a posted AnalysisResult. The format query parameter
// selects pdf (default), markdown or html.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var result model.AnalysisResult
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&result); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "pdf":
		data, err := report.Paginate(&result)
		if err != nil {
			s.logger.Error("report rendering failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "could not render report")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="factlens-report.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, bytes.NewReader(data))

	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, report.Markdown(&result))

	case "html":
		data, err := report.HTML(&result)
		if err != nil {
			s.logger.Error("html rendering failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "could not render report")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)

	default:
		s.respondError(w, http.StatusBadRequest, "unknown format (supported: pdf, markdown, html)")
	}
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondJSON(w, http.StatusOK, []model.HistoryEntry{})
		return
	}
	entries, err := s.history.List(r.Context())
	if err != nil {
		s.logger.Error("history list failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "could not read history")
		return
	}
	s.respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if s.history != nil {
		if err := s.history.Clear(r.Context()); err != nil {
			s.logger.Error("history clear failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "could not clear history")
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondAnalysisError(w http.ResponseWriter, err error) {
	if errors.Is(err, pipeline.ErrBusy) {
		s.respondError(w, http.StatusConflict, err.Error())
		return
	}

	kind := apperr.KindOf(err)
	s.logger.Warn("analysis failed", zap.String("kind", kind.String()), zap.Error(err))
	s.respondJSON(w, statusForKind(kind), errorResponse{
		Error: apperr.UserMessage(err),
		Kind:  kind.String(),
	})
}

// statusForKind maps a failure kind to an HTTP status. Failures of the
// upstream service are gateway errors, not server errors.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInput:
		return http.StatusBadRequest
	case apperr.KindMedia, apperr.KindSafety:
		return http.StatusUnprocessableEntity
	case apperr.KindQuota:
		return http.StatusTooManyRequests
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	case apperr.KindAuth, apperr.KindNotFound, apperr.KindEmptyResponse,
		apperr.KindNoJSON, apperr.KindMalformedJSON, apperr.KindSchemaViolation, apperr.KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}
