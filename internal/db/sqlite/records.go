package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-reader/internal/store"
	"github.com/jonathan/resume-reader/internal/types"
)

// recordStore implements store.RecordStore.
type recordStore struct {
	store *Store
}

var _ store.RecordStore = (*recordStore)(nil)

const selectResumes = `
	SELECT id, file_name, name, email, phone, summary, skills, experiences, educations, file_id
	FROM resumes`

// Save stores or replaces a record.
func (s *recordStore) Save(ctx context.Context, record *types.ResumeRecord) (*types.ResumeRecord, error) {
	if record == nil {
		return nil, errors.New("saving resume: nil record")
	}

	saved := *record
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}

	skills, err := jsonOrEmpty(saved.Skills)
	if err != nil {
		return nil, fmt.Errorf("marshalling skills: %w", err)
	}
	experiences, err := jsonOrEmpty(saved.Experiences)
	if err != nil {
		return nil, fmt.Errorf("marshalling experiences: %w", err)
	}
	educations, err := jsonOrEmpty(saved.Educations)
	if err != nil {
		return nil, fmt.Errorf("marshalling educations: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO resumes (id, file_name, name, email, phone, summary, skills, experiences, educations, file_id, seq, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM resumes), ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_name = excluded.file_name,
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			summary = excluded.summary,
			skills = excluded.skills,
			experiences = excluded.experiences,
			educations = excluded.educations,
			file_id = excluded.file_id,
			updated_at = excluded.updated_at
	`, saved.ID, saved.FileName, saved.Name, saved.Email, saved.Phone, saved.Summary,
		skills, experiences, educations, saved.FileID, now, now)
	if err != nil {
		return nil, fmt.Errorf("saving resume: %w", err)
	}
	return &saved, nil
}

// FindByID retrieves a record by ID.
func (s *recordStore) FindByID(ctx context.Context, id string) (*types.ResumeRecord, error) {
	row := s.store.db.QueryRowContext(ctx, selectResumes+` WHERE id = ?`, id)
	r, err := scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// FindAll retrieves every record in insertion order.
func (s *recordStore) FindAll(ctx context.Context) ([]*types.ResumeRecord, error) {
	return s.query(ctx, selectResumes+` ORDER BY seq`)
}

// FindByEmail retrieves records whose email equals email, ignoring case.
func (s *recordStore) FindByEmail(ctx context.Context, email string) ([]*types.ResumeRecord, error) {
	return s.query(ctx, selectResumes+` WHERE email = ? COLLATE NOCASE ORDER BY seq`, email)
}

// FindByField filters in Go so that case folding covers non-ASCII names.
func (s *recordStore) FindByField(ctx context.Context, field, substring string) ([]*types.ResumeRecord, error) {
	if !store.ValidField(field) {
		return nil, fmt.Errorf("unsupported search field: %q", field)
	}

	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := []*types.ResumeRecord{}
	for _, r := range all {
		if store.MatchesField(r, field, substring) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Close closes the underlying database.
func (s *recordStore) Close() error {
	return s.store.Close()
}

func (s *recordStore) query(ctx context.Context, query string, args ...any) ([]*types.ResumeRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying resumes: %w", err)
	}
	defer rows.Close()

	records := []*types.ResumeRecord{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resumes: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResume(row scanner) (*types.ResumeRecord, error) {
	var r types.ResumeRecord
	var skills, experiences, educations string
	err := row.Scan(&r.ID, &r.FileName, &r.Name, &r.Email, &r.Phone, &r.Summary,
		&skills, &experiences, &educations, &r.FileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning resume: %w", err)
	}

	r.Skills = []string{}
	r.Experiences = []types.ExperienceEntry{}
	r.Educations = []types.EducationEntry{}
	if err := json.Unmarshal([]byte(skills), &r.Skills); err != nil {
		return nil, fmt.Errorf("unmarshalling skills: %w", err)
	}
	if err := json.Unmarshal([]byte(experiences), &r.Experiences); err != nil {
		return nil, fmt.Errorf("unmarshalling experiences: %w", err)
	}
	if err := json.Unmarshal([]byte(educations), &r.Educations); err != nil {
		return nil, fmt.Errorf("unmarshalling educations: %w", err)
	}
	return &r, nil
}

// jsonOrEmpty marshals v, writing nil slices as an empty array.
func jsonOrEmpty[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
