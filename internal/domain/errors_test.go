package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: ErrInvalidRequest, want: "VALIDATION_ERROR"},
		{err: ErrQuotaExceeded, want: "QUOTA_ERROR"},
		{err: ErrAuthFailed, want: "AUTH_ERROR"},
		{err: ErrModelNotFound, want: "MODEL_ERROR"},
		{err: ErrParseFailure, want: "PARSE_ERROR"},
		{err: ErrUpstreamFailure, want: "INTERNAL_ERROR"},
		{err: errors.New("anything else"), want: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Errorf("ErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

// Wrapped sentinels must keep their code so handlers can annotate errors.
func TestErrorCode_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("%w: model %q", ErrQuotaExceeded, "gemini-2.0-flash")
	if got := ErrorCode(wrapped); got != "QUOTA_ERROR" {
		t.Errorf("ErrorCode(wrapped) = %q, want QUOTA_ERROR", got)
	}
}
