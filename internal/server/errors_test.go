package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/resume-reader/internal/extraction"
	"github.com/jonathan/resume-reader/internal/schemas"
	"github.com/jonathan/resume-reader/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"resume not found", &ErrResumeNotFound{ID: "x"}, http.StatusNotFound},
		{"file not found", &ErrFileNotFound{ID: "x"}, http.StatusNotFound},
		{"service resume not found", &service.NotFoundError{Kind: "resume", ID: "x"}, http.StatusNotFound},
		{"wrapped service not found", fmt.Errorf("lookup: %w", &service.NotFoundError{Kind: "file", ID: "x"}), http.StatusNotFound},
		{"invalid credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"download limit", &ErrDownloadLimitReached{Limit: 2}, http.StatusTooManyRequests},
		{"upload too large", &ErrUploadTooLarge{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"validation", &ErrValidation{Field: "file", Message: "required"}, http.StatusBadRequest},
		{"service invalid input", &service.InvalidInputError{Field: "id", Message: "id is required"}, http.StatusBadRequest},
		{"decode error", &extraction.DecodeError{Format: "pdf", FileName: "a.pdf"}, http.StatusUnprocessableEntity},
		{"schema error", fmt.Errorf("validate record: %w", &schemas.ValidationError{}), http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestFromServiceError(t *testing.T) {
	err := fromServiceError(&service.NotFoundError{Kind: "file", ID: "blob-1"})
	assert.Equal(t, "file not found: blob-1", err.Error())

	err = fromServiceError(&service.InvalidInputError{Field: "field", Message: "unsupported"})
	assert.Equal(t, "validation error: field - unsupported", err.Error())

	plain := errors.New("boom")
	assert.Same(t, plain, fromServiceError(plain))
}

func TestErrDownloadLimitReached_Message(t *testing.T) {
	err := &ErrDownloadLimitReached{Limit: 2}
	assert.Contains(t, err.Error(), "maximum number of downloads")
	assert.Contains(t, err.Error(), "2")
}
