package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-reader/internal/store"
)

// blobStore implements store.BlobStore.
type blobStore struct {
	store *Store
}

var _ store.BlobStore = (*blobStore)(nil)

// Store saves data and returns its new blob ID.
func (s *blobStore) Store(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	if contentType == "" {
		contentType = store.ContentTypeFor(filename)
	}
	if data == nil {
		data = []byte{}
	}

	id := uuid.New().String()
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO blobs (id, file_name, content_type, size, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, filename, contentType, len(data), data, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("storing blob: %w", err)
	}
	return id, nil
}

// Fetch loads a blob by ID.
func (s *blobStore) Fetch(ctx context.Context, blobID string) (*store.Blob, error) {
	var (
		fileName    string
		contentType string
		size        int64
		data        []byte
	)
	err := s.store.db.QueryRowContext(ctx, `
		SELECT file_name, content_type, size, data FROM blobs WHERE id = ?
	`, blobID).Scan(&fileName, &contentType, &size, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching blob: %w", err)
	}

	return &store.Blob{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: contentType,
		FileName:    fileName,
		Size:        size,
	}, nil
}
