// Package store defines the persistence contracts used by the resume service.
package store

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-reader/internal/types"
)

// ErrBlobNotFound is returned by BlobStore.Fetch when no blob has the given ID.
var ErrBlobNotFound = errors.New("blob not found")

// Searchable fields accepted by RecordStore.FindByField.
const (
	FieldName   = "name"
	FieldEmail  = "email"
	FieldSkills = "skills"
)

// RecordStore persists parsed résumé records.
type RecordStore interface {
	// Save inserts or replaces the record. An empty ID is assigned before insert.
	Save(ctx context.Context, record *types.ResumeRecord) (*types.ResumeRecord, error)
	// FindByID returns nil, nil when the record does not exist.
	FindByID(ctx context.Context, id string) (*types.ResumeRecord, error)
	FindAll(ctx context.Context) ([]*types.ResumeRecord, error)
	FindByEmail(ctx context.Context, email string) ([]*types.ResumeRecord, error)
	// FindByField matches substring case-insensitively against one of the Field constants.
	FindByField(ctx context.Context, field, substring string) ([]*types.ResumeRecord, error)
	Close() error
}

// Blob is a stored original upload.
type Blob struct {
	Body        io.ReadCloser
	ContentType string
	FileName    string
	Size        int64
}

// BlobStore keeps the original uploaded bytes.
type BlobStore interface {
	Store(ctx context.Context, data []byte, filename, contentType string) (string, error)
	Fetch(ctx context.Context, blobID string) (*Blob, error)
}

// ValidField reports whether field is accepted by FindByField.
func ValidField(field string) bool {
	switch field {
	case FieldName, FieldEmail, FieldSkills:
		return true
	}
	return false
}

// ContentTypeFor returns the media type implied by the filename suffix.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// MatchesField is the in-memory form of FindByField, shared by stores that filter after loading.
func MatchesField(record *types.ResumeRecord, field, substring string) bool {
	needle := strings.ToLower(substring)
	switch field {
	case FieldName:
		return strings.Contains(strings.ToLower(record.Name), needle)
	case FieldEmail:
		return strings.Contains(strings.ToLower(record.Email), needle)
	case FieldSkills:
		for _, s := range record.Skills {
			if strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
	}
	return false
}
