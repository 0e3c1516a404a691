package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-reader/internal/store"
	"github.com/jonathan/resume-reader/internal/types"
)

var _ store.RecordStore = (*DB)(nil)

const resumeColumns = `id, file_name, name, email, phone, summary, skills, experiences, educations, file_id`

// Save inserts or replaces a résumé record, assigning a UUID when ID is empty
func (db *DB) Save(ctx context.Context, record *types.ResumeRecord) (*types.ResumeRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("failed to save resume: nil record")
	}

	saved := *record
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}

	skills, experiences, educations, err := marshalSections(&saved)
	if err != nil {
		return nil, err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO resumes (`+resumeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
			file_name = $2, name = $3, email = $4, phone = $5, summary = $6,
			skills = $7, experiences = $8, educations = $9, file_id = $10, updated_at = NOW()`,
		saved.ID, saved.FileName, saved.Name, saved.Email, saved.Phone, saved.Summary,
		skills, experiences, educations, saved.FileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save resume: %w", err)
	}
	return &saved, nil
}

// FindByID retrieves a résumé record by ID
func (db *DB) FindByID(ctx context.Context, id string) (*types.ResumeRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	records, err := collectResumes(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// FindAll retrieves every résumé record in insertion order
func (db *DB) FindAll(ctx context.Context) ([]*types.ResumeRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	return collectResumes(rows)
}

// FindByEmail retrieves records whose email matches exactly, ignoring case
func (db *DB) FindByEmail(ctx context.Context, email string) ([]*types.ResumeRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE lower(email) = lower($1) ORDER BY created_at ASC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find resumes by email: %w", err)
	}
	return collectResumes(rows)
}

// FindByField retrieves records whose name, email or any skill contains substring
func (db *DB) FindByField(ctx context.Context, field, substring string) ([]*types.ResumeRecord, error) {
	var where string
	switch field {
	case store.FieldName:
		where = `name ILIKE $1`
	case store.FieldEmail:
		where = `email ILIKE $1`
	case store.FieldSkills:
		where = `EXISTS (SELECT 1 FROM jsonb_array_elements_text(skills) AS s(skill) WHERE s.skill ILIKE $1)`
	default:
		return nil, fmt.Errorf("unsupported search field: %q", field)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE `+where+` ORDER BY created_at ASC`,
		likePattern(substring),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search resumes by %s: %w", field, err)
	}
	return collectResumes(rows)
}

// likePattern wraps s for a contains match, escaping LIKE metacharacters.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func marshalSections(r *types.ResumeRecord) (skills, experiences, educations []byte, err error) {
	s := r.Skills
	if s == nil {
		s = []string{}
	}
	if skills, err = json.Marshal(s); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	ex := r.Experiences
	if ex == nil {
		ex = []types.ExperienceEntry{}
	}
	if experiences, err = json.Marshal(ex); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal experiences: %w", err)
	}
	ed := r.Educations
	if ed == nil {
		ed = []types.EducationEntry{}
	}
	if educations, err = json.Marshal(ed); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal educations: %w", err)
	}
	return skills, experiences, educations, nil
}

func unmarshalSections(r *types.ResumeRecord, skills, experiences, educations []byte) error {
	r.Skills = []string{}
	r.Experiences = []types.ExperienceEntry{}
	r.Educations = []types.EducationEntry{}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &r.Skills); err != nil {
			return fmt.Errorf("failed to unmarshal skills: %w", err)
		}
	}
	if len(experiences) > 0 {
		if err := json.Unmarshal(experiences, &r.Experiences); err != nil {
			return fmt.Errorf("failed to unmarshal experiences: %w", err)
		}
	}
	if len(educations) > 0 {
		if err := json.Unmarshal(educations, &r.Educations); err != nil {
			return fmt.Errorf("failed to unmarshal educations: %w", err)
		}
	}
	return nil
}

func collectResumes(rows pgx.Rows) ([]*types.ResumeRecord, error) {
	defer rows.Close()

	records := []*types.ResumeRecord{}
	for rows.Next() {
		var r types.ResumeRecord
		var skills, experiences, educations []byte
		if err := rows.Scan(&r.ID, &r.FileName, &r.Name, &r.Email, &r.Phone, &r.Summary,
			&skills, &experiences, &educations, &r.FileID); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		if err := unmarshalSections(&r, skills, experiences, educations); err != nil {
			return nil, err
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resumes: %w", err)
	}
	return records, nil
}
