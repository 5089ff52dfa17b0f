package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"GameNightwebserver/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDomainError maps a service error to a status by its kind. Coded
// errors keep their own code and message.
func WriteDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusBadRequest, errorEnvelope{Error: apiError{
			Code:    "validation_error",
			Message: "invalid request",
			Fields:  verr.Fields,
		}})
		return
	}

	status, code, message := http.StatusInternalServerError, "internal_error", "internal server error"
	switch domain.Kind(err) {
	case domain.ErrValidation:
		status, code, message = http.StatusBadRequest, "validation_error", "invalid request"
	case domain.ErrUnauthorized:
		status, code, message = http.StatusUnauthorized, "unauthorized", "unauthorized"
	case domain.ErrForbidden:
		status, code, message = http.StatusForbidden, "forbidden", "forbidden"
	case domain.ErrPolicyViolation:
		status, code, message = http.StatusForbidden, "policy_violation", "not allowed"
	case domain.ErrNotFound:
		status, code, message = http.StatusNotFound, "not_found", "not found"
	case domain.ErrConflict:
		status, code, message = http.StatusConflict, "conflict", "conflict"
	default:
		WriteError(w, status, code, message)
		return
	}

	var coded *domain.CodedError
	if errors.As(err, &coded) {
		code, message = coded.Code, coded.Message
	}
	WriteError(w, status, code, message)
}
