package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fiscal/internal/core"
	"fiscal/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// The status line is already written; an encode error means the client went away.
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps a validation failure to 422 and anything else to 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Err.Error(), Field: verr.Field})
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
	writeError(w, http.StatusInternalServerError, "internal error")
}
