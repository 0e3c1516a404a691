// Package service coordinates parsing, storage, masking and event publication for uploaded résumés.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/resume-reader/internal/events"
	"github.com/jonathan/resume-reader/internal/extraction"
	"github.com/jonathan/resume-reader/internal/masking"
	"github.com/jonathan/resume-reader/internal/schemas"
	"github.com/jonathan/resume-reader/internal/store"
	"github.com/jonathan/resume-reader/internal/types"
)

// ResumeService is safe for concurrent use when its stores are.
type ResumeService struct {
	parser    *extraction.Parser
	records   store.RecordStore
	blobs     store.BlobStore
	publisher events.Publisher
	logger    *slog.Logger
	validate  bool
	now       func() time.Time
}

// Option configures a ResumeService.
type Option func(*ResumeService)

// WithParser overrides the default parser.
func WithParser(p *extraction.Parser) Option {
	return func(s *ResumeService) {
		if p != nil {
			s.parser = p
		}
	}
}

// WithPublisher sets the event publisher. Defaults to events.NopPublisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *ResumeService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *ResumeService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSchemaValidation toggles JSON Schema validation of parsed records before save.
func WithSchemaValidation(enabled bool) Option {
	return func(s *ResumeService) {
		s.validate = enabled
	}
}

// New creates a ResumeService over the given stores.
func New(records store.RecordStore, blobs store.BlobStore, opts ...Option) *ResumeService {
	s := &ResumeService{
		records:   records,
		blobs:     blobs,
		publisher: events.NopPublisher{},
		logger:    slog.Default(),
		validate:  true,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = extraction.NewParser(extraction.WithLogger(s.logger))
	}
	return s
}

// Upload stores the original bytes, parses them, and saves the linked record.
// When parsing fails the stored blob is left in place and the error is returned.
func (s *ResumeService) Upload(ctx context.Context, filename, contentType string, data []byte) (*types.ResumeRecord, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, &InvalidInputError{Field: "file", Message: "file name is required"}
	}
	if len(data) == 0 {
		return nil, &InvalidInputError{Field: "file", Message: "file is empty"}
	}
	if contentType == "" {
		contentType = store.ContentTypeFor(filename)
	}

	fileID, err := s.blobs.Store(ctx, data, filename, contentType)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	record, err := s.parser.Parse(data, filename)
	if err != nil {
		s.logger.Warn("upload.parse.failed", "file_name", filename, "file_id", fileID, "error", err)
		return nil, err
	}
	record.FileID = fileID

	if s.validate {
		if err := schemas.ValidateRecord(record); err != nil {
			return nil, fmt.Errorf("validate record: %w", err)
		}
	}

	saved, err := s.records.Save(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.NewResumeEvent(saved, s.now())); err != nil {
		s.logger.Warn("upload.publish.failed", "id", saved.ID, "error", err)
	}

	s.logger.Info("upload.ok",
		"id", saved.ID,
		"file_name", saved.FileName,
		"skills", len(saved.Skills),
		"experiences", len(saved.Experiences),
		"educations", len(saved.Educations),
	)
	return saved, nil
}

// Search returns the masked listing of records whose name, email or joined skills contain query.
// An empty query matches every record.
func (s *ResumeService) Search(ctx context.Context, query string) ([]types.MaskedResumeView, error) {
	all, err := s.records.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	matched := make([]*types.ResumeRecord, 0, len(all))
	for _, r := range all {
		if needle == "" || matchesQuery(r, needle) {
			matched = append(matched, r)
		}
	}
	return s.maskedViews(matched)
}

// SearchField narrows the masked listing to one field.
func (s *ResumeService) SearchField(ctx context.Context, field, query string) ([]types.MaskedResumeView, error) {
	if !store.ValidField(field) {
		return nil, &InvalidInputError{Field: "field", Message: fmt.Sprintf("unsupported search field %q", field)}
	}
	found, err := s.records.FindByField(ctx, field, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	return s.maskedViews(found)
}

// maskedViews masks records and, when validation is on, checks each view against its schema.
func (s *ResumeService) maskedViews(records []*types.ResumeRecord) ([]types.MaskedResumeView, error) {
	views := masking.MaskAll(records)
	if !s.validate {
		return views, nil
	}
	for _, v := range views {
		if err := schemas.ValidateMaskedView(v); err != nil {
			return nil, fmt.Errorf("validate listing entry %s: %w", v.ID, err)
		}
	}
	return views, nil
}

func matchesQuery(r *types.ResumeRecord, needle string) bool {
	return strings.Contains(strings.ToLower(r.Name), needle) ||
		strings.Contains(strings.ToLower(r.Email), needle) ||
		strings.Contains(strings.ToLower(strings.Join(r.Skills, ", ")), needle)
}

// Preview returns the full record with email and phone masked.
func (s *ResumeService) Preview(ctx context.Context, id string) (*types.ResumeRecord, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return masking.MaskForPreview(record), nil
}

// Download returns the record and an open handle on its original file. The caller closes Body.
func (s *ResumeService) Download(ctx context.Context, id string) (*types.ResumeRecord, *store.Blob, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if record.FileID == "" {
		return nil, nil, &NotFoundError{Kind: "file", ID: id}
	}

	blob, err := s.blobs.Fetch(ctx, record.FileID)
	if err != nil {
		if errors.Is(err, store.ErrBlobNotFound) {
			return nil, nil, &NotFoundError{Kind: "file", ID: record.FileID}
		}
		return nil, nil, fmt.Errorf("fetch file: %w", err)
	}
	if blob.FileName == "" {
		blob.FileName = record.FileName
	}
	return record, blob, nil
}

// GetByEmail returns unmasked records for an exact, case-insensitive email.
func (s *ResumeService) GetByEmail(ctx context.Context, email string) ([]*types.ResumeRecord, error) {
	if strings.TrimSpace(email) == "" {
		return nil, &InvalidInputError{Field: "email", Message: "email is required"}
	}
	found, err := s.records.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find by email: %w", err)
	}
	return found, nil
}

func (s *ResumeService) find(ctx context.Context, id string) (*types.ResumeRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &InvalidInputError{Field: "id", Message: "id is required"}
	}
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	if record == nil {
		return nil, &NotFoundError{Kind: "resume", ID: id}
	}
	return record, nil
}
