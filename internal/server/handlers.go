package server

import (
	"bytes"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/shanehull/filinglens/internal/export"
	"github.com/shanehull/filinglens/internal/pipeline"
	"github.com/shanehull/filinglens/internal/types"
)

type AnalyzeRequest struct {
	Entity string `json:"entity" validate:"required,max=32,entity"`
	Year   int    `json:"year" validate:"omitempty,min=1900,max=2099"`
}

type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

// statusFor maps error kinds onto HTTP status codes.
func statusFor(err error) (int, string) {
	kind := types.KindOf(err)
	switch kind {
	case types.KindNotFound:
		return http.StatusNotFound, string(kind)
	case types.KindEmptyCorpus, types.KindAnnotation:
		return http.StatusUnprocessableEntity, string(kind)
	case types.KindInvalidInput:
		return http.StatusBadRequest, string(kind)
	}
	return http.StatusInternalServerError, "internal"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	s.logger.ErrorContext(r.Context(), "request failed",
		"error", err,
		"status", status,
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
	)
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{StatusCode: status, ErrorCode: code, Message: err.Error()})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*types.Analysis, bool) {
	var req AnalyzeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.writeError(w, r, &types.OpError{Op: "server.decode", Kind: types.KindInvalidInput, Err: err})
		return nil, false
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, &types.OpError{Op: "server.validate", Kind: types.KindInvalidInput, Err: err})
		return nil, false
	}

	a, err := s.analyzer.Analyze(r.Context(), req.Entity, pipeline.Options{Year: types.FiscalYear(req.Year)})
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}

	if s.saver != nil {
		if err := s.saver.SaveAnalysis(r.Context(), a); err != nil {
			s.logger.WarnContext(r.Context(), "failed to persist analysis", "run_id", a.RunID, "error", err)
		}
	}
	return a, true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	a, ok := s.analyze(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, a)
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	a, ok := s.analyze(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, a); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": a.Entity + "-" + a.RunID + ".xlsx",
	}))
	_, _ = w.Write(buf.Bytes())
}
