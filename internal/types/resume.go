// Package types provides type definitions for structured data used throughout the resume-reader system.
package types

// ResumeRecord is the structured form of one uploaded résumé.
// ID is assigned by the record store and FileID by the blob store; the extractor sets neither.
type ResumeRecord struct {
	ID          string            `json:"id,omitempty"`
	FileName    string            `json:"file_name"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Summary     string            `json:"summary"`
	Skills      []string          `json:"skills"`
	Experiences []ExperienceEntry `json:"experiences"`
	Educations  []EducationEntry  `json:"educations"`
	FileID      string            `json:"file_id,omitempty"`
}

// ExperienceEntry is one employment block. No date parsing is applied to Duration.
type ExperienceEntry struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// EducationEntry is one education block. Degree and Year are nil when not recognised.
type EducationEntry struct {
	Institution  string  `json:"institution"`
	Degree       *string `json:"degree"`
	FieldOfStudy string  `json:"field_of_study"`
	Year         *string `json:"year"`
}

// MaskedResumeView is the listing projection of a ResumeRecord with contact details redacted.
// It is built per request and never persisted.
type MaskedResumeView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Skills   []string `json:"skills"`
	FileID   string   `json:"file_id"`
	FileName string   `json:"file_name"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
