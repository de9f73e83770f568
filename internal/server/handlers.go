// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pagesnap/pagesnap/internal/capture"
	"github.com/pagesnap/pagesnap/pkg/api"
)

// handleCapture is the main endpoint: validate, capture, stream the
// image back with the capture metadata in response headers.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	result, err := s.pipeline.Execute(r.Context(), r.URL.Query())
	if err != nil {
		s.writeCaptureError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(result.Size()))
	// Every capture is rendered fresh; intermediaries must not serve a
	// stale page under a live URL.
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Processing-Time-Ms", strconv.FormatInt(result.Elapsed.Milliseconds(), 10))
	w.Header().Set("X-Source-URL", r.URL.Query().Get("url"))
	w.Header().Set("X-Image-Width", strconv.Itoa(result.Width))
	w.Header().Set("X-Image-Height", strconv.Itoa(result.Height))
	if result.Title != "" {
		w.Header().Set("X-Page-Title", result.Title)
	}

	w.WriteHeader(http.StatusOK)
	w.Write(result.Image)
}

// writeCaptureError maps a pipeline failure to the JSON error body.
func (s *Server) writeCaptureError(w http.ResponseWriter, err error) {
	var ce *capture.ClassifiedError
	if !errors.As(err, &ce) {
		// The pipeline always returns classified errors; anything else
		// is a programming error worth surfacing as a plain 500.
		s.log.Errorf("unclassified pipeline error: %v", err)
		writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: api.ErrorDetail{
			Status:  http.StatusInternalServerError,
			Kind:    string(capture.KindUnclassified),
			Message: "internal error",
		}})
		return
	}

	w.Header().Set("X-Processing-Time-Ms", strconv.FormatInt(ce.Elapsed.Milliseconds(), 10))
	writeJSON(w, ce.Status, api.ErrorResponse{Error: api.ErrorDetail{
		Status:           ce.Status,
		Kind:             string(ce.Kind),
		Message:          ce.Message,
		Rule:             string(ce.Rule),
		Field:            ce.Field,
		Value:            ce.Value,
		ProcessingTimeMs: ce.Elapsed.Milliseconds(),
	}})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.UpdateSystemMetrics()
	}
	writeJSON(w, http.StatusOK, s.health.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 1000 {
			writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: api.ErrorDetail{
				Status:  http.StatusBadRequest,
				Kind:    string(capture.KindInvalidParameter),
				Message: "limit must be an integer between 1 and 1000",
				Field:   "limit",
				Value:   raw,
			}})
			return
		}
		limit = v
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.log.Errorf("history query failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: api.ErrorDetail{
			Status:  http.StatusInternalServerError,
			Kind:    string(capture.KindUnclassified),
			Message: "failed to read capture history",
		}})
		return
	}

	resp := api.HistoryResponse{Total: len(entries), Entries: make([]api.HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, api.HistoryEntry{
			URL:       e.URL,
			Format:    e.Format,
			Selector:  e.Selector,
			Width:     e.Width,
			Height:    e.Height,
			FullPage:  e.FullPage,
			Mobile:    e.Mobile,
			Status:    e.Status,
			Kind:      e.Kind,
			Bytes:     e.Bytes,
			ElapsedMs: e.Elapsed.Milliseconds(),
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
