// Package server provides the HTTP REST API for the résumé reader.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-reader/internal/extraction"
	"github.com/jonathan/resume-reader/internal/schemas"
	"github.com/jonathan/resume-reader/internal/service"
)

// ErrResumeNotFound indicates no record has the requested ID
type ErrResumeNotFound struct {
	ID string
}

func (e *ErrResumeNotFound) Error() string {
	return fmt.Sprintf("resume not found: %s", e.ID)
}

// ErrFileNotFound indicates the record exists but its original file does not
type ErrFileNotFound struct {
	ID string
}

func (e *ErrFileNotFound) Error() string {
	return fmt.Sprintf("file not found: %s", e.ID)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrDownloadLimitReached indicates the session has used its download allowance
type ErrDownloadLimitReached struct {
	Limit int
}

func (e *ErrDownloadLimitReached) Error() string {
	return fmt.Sprintf("you have reached the maximum number of downloads (%d) for this session", e.Limit)
}

// ErrUploadTooLarge indicates the request body exceeded the upload limit
type ErrUploadTooLarge struct {
	Limit int64
}

func (e *ErrUploadTooLarge) Error() string {
	return fmt.Sprintf("upload exceeds the %d byte limit", e.Limit)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// fromServiceError converts service errors into their HTTP counterparts.
func fromServiceError(err error) error {
	var notFound *service.NotFoundError
	if errors.As(err, &notFound) {
		if notFound.Kind == "file" {
			return &ErrFileNotFound{ID: notFound.ID}
		}
		return &ErrResumeNotFound{ID: notFound.ID}
	}
	var invalid *service.InvalidInputError
	if errors.As(err, &invalid) {
		return &ErrValidation{Field: invalid.Field, Message: invalid.Message}
	}
	return err
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch fromServiceError(err).(type) {
	case *ErrResumeNotFound, *ErrFileNotFound:
		return http.StatusNotFound
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrDownloadLimitReached:
		return http.StatusTooManyRequests
	case *ErrUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case *ErrValidation:
		return http.StatusBadRequest
	}

	var decodeErr *extraction.DecodeError
	var schemaErr *schemas.ValidationError
	switch {
	case errors.As(err, &decodeErr), errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
