package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

const maxBodyBytes = 64 << 10

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, data any) {
	writeStatus(w, http.StatusOK, data)
}

func writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

// writeError maps the world error taxonomy onto HTTP status codes. Anything
// unclassified is logged and reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, errUnauthorized):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, world.ErrInvalid):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, world.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, world.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, world.ErrConflict):
		status, msg = http.StatusConflict, "the settlement is busy, try again"
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeStatus(w, status, errorBody{Error: msg})
}

// decodeJSON reads a bounded JSON body. Malformed bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return world.Invalidf("invalid json: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, world.Invalidf("%s %q is not a valid id", name, raw)
	}
	return id, nil
}
