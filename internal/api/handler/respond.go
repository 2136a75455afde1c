package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clipqa/annotation-service/internal/domain"
	"github.com/clipqa/annotation-service/internal/form"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  domain.ErrInvalidAnswer.Error(),
			"fields": verr.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrStaleAssignment):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, domain.ErrUnknownDataset):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeAnswer reads a JSON object body, keeping numbers as json.Number so the
// form validator sees exactly what the client sent.
func decodeAnswer(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("answer must be a JSON object")
	}
	return payload, nil
}
