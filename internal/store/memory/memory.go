// Package memory provides process-local record and blob stores. Contents are lost on exit.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/resume-reader/internal/store"
	"github.com/jonathan/resume-reader/internal/types"
)

// RecordStore keeps records in insertion order.
type RecordStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*types.ResumeRecord
}

var _ store.RecordStore = (*RecordStore)(nil)

// NewRecordStore returns an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[string]*types.ResumeRecord)}
}

// Save stores a copy of record, assigning an ID when empty.
func (s *RecordStore) Save(_ context.Context, record *types.ResumeRecord) (*types.ResumeRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("saving resume: nil record")
	}
	saved := cloneRecord(record)
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[saved.ID]; !exists {
		s.order = append(s.order, saved.ID)
	}
	s.records[saved.ID] = saved
	return cloneRecord(saved), nil
}

// FindByID returns nil, nil when absent.
func (s *RecordStore) FindByID(_ context.Context, id string) (*types.ResumeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return cloneRecord(r), nil
}

// FindAll returns every record in insertion order.
func (s *RecordStore) FindAll(_ context.Context) ([]*types.ResumeRecord, error) {
	return s.filter(func(*types.ResumeRecord) bool { return true }), nil
}

// FindByEmail matches the whole email ignoring case.
func (s *RecordStore) FindByEmail(_ context.Context, email string) ([]*types.ResumeRecord, error) {
	return s.filter(func(r *types.ResumeRecord) bool {
		return strings.EqualFold(r.Email, email)
	}), nil
}

// FindByField matches substring against a single field.
func (s *RecordStore) FindByField(_ context.Context, field, substring string) ([]*types.ResumeRecord, error) {
	if !store.ValidField(field) {
		return nil, fmt.Errorf("unsupported search field: %q", field)
	}
	return s.filter(func(r *types.ResumeRecord) bool {
		return store.MatchesField(r, field, substring)
	}), nil
}

// Close is a no-op.
func (s *RecordStore) Close() error { return nil }

func (s *RecordStore) filter(keep func(*types.ResumeRecord) bool) []*types.ResumeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*types.ResumeRecord{}
	for _, id := range s.order {
		if r := s.records[id]; keep(r) {
			out = append(out, cloneRecord(r))
		}
	}
	return out
}

func cloneRecord(r *types.ResumeRecord) *types.ResumeRecord {
	c := *r
	c.Skills = append([]string(nil), r.Skills...)
	c.Experiences = append([]types.ExperienceEntry(nil), r.Experiences...)
	c.Educations = append([]types.EducationEntry(nil), r.Educations...)
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if c.Experiences == nil {
		c.Experiences = []types.ExperienceEntry{}
	}
	if c.Educations == nil {
		c.Educations = []types.EducationEntry{}
	}
	return &c
}

type blob struct {
	data        []byte
	fileName    string
	contentType string
}

// BlobStore keeps uploaded bytes in memory.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

var _ store.BlobStore = (*BlobStore)(nil)

// NewBlobStore returns an empty store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]blob)}
}

// Store copies data and returns its ID.
func (s *BlobStore) Store(_ context.Context, data []byte, filename, contentType string) (string, error) {
	if contentType == "" {
		contentType = store.ContentTypeFor(filename)
	}
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = blob{
		data:        append([]byte(nil), data...),
		fileName:    filename,
		contentType: contentType,
	}
	return id, nil
}

// Fetch returns store.ErrBlobNotFound for unknown IDs.
func (s *BlobStore) Fetch(_ context.Context, blobID string) (*store.Blob, error) {
	s.mu.RLock()
	b, ok := s.blobs[blobID]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrBlobNotFound
	}
	return &store.Blob{
		Body:        io.NopCloser(bytes.NewReader(b.data)),
		ContentType: b.contentType,
		FileName:    b.fileName,
		Size:        int64(len(b.data)),
	}, nil
}

// Len reports the number of stored blobs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
