package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrQuotaExceeded is returned when the model backend rate limit is hit.
	// Transient: the caller should retry later, the pipeline never retries.
	ErrQuotaExceeded = errors.New("model quota exceeded")

	// ErrAuthFailed is returned on bad model backend credentials
	ErrAuthFailed = errors.New("model authentication failed")

	// ErrModelNotFound is returned for an unknown or unsupported model name
	ErrModelNotFound = errors.New("model not found")

	// ErrParseFailure is returned when the backend response could not be
	// turned into a usable attribute set even after heuristic fallback
	ErrParseFailure = errors.New("model response could not be parsed")

	// ErrUpstreamFailure is returned when the model backend request fails
	ErrUpstreamFailure = errors.New("model backend request failed")
)

// ErrorCode maps an error to the wire-level error code of the API envelope.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrQuotaExceeded):
		return "QUOTA_ERROR"
	case errors.Is(err, ErrAuthFailed):
		return "AUTH_ERROR"
	case errors.Is(err, ErrModelNotFound):
		return "MODEL_ERROR"
	case errors.Is(err, ErrParseFailure):
		return "PARSE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
