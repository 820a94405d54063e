package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"invdefects/internal/core"
)

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Status: status})
}

// statusFor maps a report error to an HTTP status.
func statusFor(err error) int {
	switch {
	case core.IsEmptyDataset(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errUnknownReport):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
