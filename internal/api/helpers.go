// Package api implements the daemon's HTTP API over the settings facade.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoppxi/sysset/pkg/systemsetting"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	setting *systemsetting.Setting
	log     *slog.Logger
}

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes it as JSON.
func writeError(w http.ResponseWriter, status int, err error) {
	if errors.Is(err, systemsetting.ErrUnsupported) {
		status = http.StatusNotImplemented
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// decodeJSON reads the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}
