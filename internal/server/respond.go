package server

import (
	"encoding/json"
	"net/http"
	"strings"

	rerrors "github.com/matzehuels/rundown/pkg/errors"
)

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, err error) {
	code := rerrors.GetCode(err)
	if code == "" {
		code = rerrors.ErrCodeInternal
	}
	msg := err.Error()
	if _, ok := err.(*rerrors.Error); ok {
		msg = rerrors.UserMessage(err)
	}
	respondJSON(w, statusFor(code), errorBody{Code: string(code), Error: msg})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code rerrors.Code) int {
	switch {
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case code == rerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case code == rerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case code == rerrors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
