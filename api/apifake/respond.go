package apifake

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Error encoding fake backend response")
	}
}

func detail(msg string) map[string]any {
	return map[string]any{"detail": msg}
}

func errorBody(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func nonField(msg string) map[string]any {
	return map[string]any{"non_field_errors": []string{msg}}
}

func fieldError(field, msg string) map[string]any {
	return map[string]any{field: []string{msg}}
}

// decode reads a JSON body into v and writes a 400 on failure
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error - "+err.Error()))
		return false
	}
	return true
}
