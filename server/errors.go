package server

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"studyrace/service"
)

var errMalformedBody = errors.New("malformed request body")

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON encodes v as the response body with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// badRequest reports input that could not be decoded at all
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}

// writeError maps a service error to its HTTP status.
// Integrity and uncategorised failures never leak their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch service.CategoryOf(err) {
	case service.ErrValidation:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "validation"})
	case service.ErrNotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	case service.ErrPrecondition:
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "precondition"})
	default:
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errMalformedBody
	}
	return nil
}
