package engine

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("render: %w", schemaMismatch("document template has layout content"))
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Error("wrapped schema mismatch should match sentinel")
	}
	if errors.Is(err, ErrMalformedContent) {
		t.Error("schema mismatch should not match malformed content")
	}
	if CodeOf(err) != CodeSchemaMismatch {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("CodeOf plain error should be empty")
	}
}

func TestCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeSchemaMismatch, http.StatusUnprocessableEntity},
		{CodeMalformedContent, http.StatusUnprocessableEntity},
		{CodeRenderBackendError, http.StatusBadGateway},
		{Code("OTHER"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := backendFailure("http", errors.New("timeout"))
	if err.Error() != `render backend "http" failed: timeout` {
		t.Errorf("Error() = %q", err.Error())
	}
}
