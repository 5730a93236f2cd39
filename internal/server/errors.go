package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/datasource/file"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
)

type errorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error, sessionID string) {
	writeJSON(w, statusFor(err), errorResponse{
		Error:     err.Error(),
		Details:   ingest.Describe(err),
		SessionID: sessionID,
	})
}

// statusFor maps pipeline and admission errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		tooLarge    *file.FileTooLargeError
		maxBytes    *http.MaxBytesError
		unsupported *file.UnsupportedFileError
		auth        *ingest.AuthenticationRequiredError
		transition  *ingest.TransitionError
		persist     *ingest.PersistenceError
	)
	switch {
	case errors.As(err, &tooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &auth):
		return http.StatusUnauthorized
	case errors.Is(err, ingest.ErrSessionBusy), errors.Is(err, ingest.ErrNoPreview),
		errors.Is(err, ingest.ErrSuperseded), errors.As(err, &transition):
		return http.StatusConflict
	case errors.As(err, &persist):
		return http.StatusBadGateway
	case ingest.IsFileLevel(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
