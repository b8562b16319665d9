package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/examforge/examforge/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps structured service errors to HTTP status codes.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var e *apperr.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindConflict:
			status = http.StatusConflict
		case apperr.KindInvalidArgument:
			status = http.StatusBadRequest
		case apperr.KindUnauthorized:
			status = http.StatusUnauthorized
		}
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func urlID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, apperr.InvalidArgument("bad " + name)
	}
	return id, nil
}
