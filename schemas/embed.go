// Package schemas holds the JSON Schemas for the records the service stores and lists.
package schemas

import _ "embed"

// ResumeRecord is the schema every parsed record is checked against before it is stored.
//
//go:embed resume_record.schema.json
var ResumeRecord string

// MaskedResumeView is the schema of one entry in a search listing.
//
//go:embed masked_resume_view.schema.json
var MaskedResumeView string

// Files maps schema file names to their contents.
var Files = map[string]string{
	"resume_record.schema.json":      ResumeRecord,
	"masked_resume_view.schema.json": MaskedResumeView,
}
