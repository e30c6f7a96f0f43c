package http

import (
	"errors"
	"net/http"

	"github.com/originlens/backend/internal/domain"
)

// APIError is one entry of the envelope's errors array.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the standard response shape of every endpoint:
// {result: "OK"|"Failed", data?, errors?}.
type Envelope struct {
	Result string      `json:"result"`
	Data   interface{} `json:"data,omitempty"`
	Errors []APIError  `json:"errors,omitempty"`
}

// okEnvelope wraps a successful payload.
func okEnvelope(data interface{}) Envelope {
	return Envelope{Result: "OK", Data: data}
}

// failedEnvelope wraps a single structured error.
func failedEnvelope(code, message string) Envelope {
	return Envelope{
		Result: "Failed",
		Errors: []APIError{{Code: code, Message: message}},
	}
}

// errorEnvelope derives the wire code from a domain error.
func errorEnvelope(err error) Envelope {
	return failedEnvelope(domain.ErrorCode(err), err.Error())
}

// statusFor maps a domain error to its HTTP status: caller-fixable errors
// are 400, credential problems 401, transient upstream exhaustion 503,
// everything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrModelNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
