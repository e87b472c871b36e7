package handler

import (
	"encoding/json"
	"net/http"

	dErrors "portflow/pkg/domain-errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates domain error codes into HTTP statuses with a JSON
// envelope, keeping the taxonomy visible to the caller.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case dErrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case dErrors.CodeInvalidTransition:
		status = http.StatusUnprocessableEntity
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeConflict:
		status = http.StatusConflict
	case dErrors.CodeUnauthorized:
		status = http.StatusUnauthorized
	case dErrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorBody{Error: string(code), Message: err.Error()})
}
