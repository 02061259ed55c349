package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxJSONBody     = 1 << 20
)

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeJSONError writes an error body in the shape the client parses
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, oauthmodel.ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		writeJSONError(w, oauthmodel.ErrCodeInvalidRequest, "malformed JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
