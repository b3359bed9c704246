package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/couchcryptid/roof-spec-etl/internal/domain"
	"github.com/couchcryptid/roof-spec-etl/internal/pipeline"
)

// requestIDHeader supplies the request ID for text/plain bodies.
const requestIDHeader = "X-Request-ID"

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Field string `json:"field,omitempty"`
}

// handleAnalyze accepts a ProjectRequest JSON object or a bare text/plain
// description and responds with the Analysis.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != "application/json" && mediaType != "text/plain") {
			writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: "content type must be application/json or text/plain"})
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "description exceeds size limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "read request body: " + err.Error()})
		return
	}

	req, err := domain.ParseRawEvent(domain.RawEvent{
		Key:   []byte(r.Header.Get(requestIDHeader)),
		Value: body,
	})
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), pipeline.SourceHTTP, req)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	var se *domain.StageError
	if errors.As(err, &se) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: se.Err.Error(),
			Stage: string(se.Stage),
			Field: se.Field,
		})
		return
	}
	s.logger.Error("analysis failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
