// Package masking redacts contact details from résumé records for listing and preview.
package masking

import (
	"strings"

	"github.com/jonathan/resume-reader/internal/types"
)

const redacted = "***"

// MaskEmail keeps the first two characters of the local part and the domain.
// Local parts of two characters or fewer are fully redacted, as is a value without "@".
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at < 0 {
		return redacted
	}
	local := []rune(email[:at])
	if len(local) <= 2 {
		return redacted + email[at:]
	}
	return string(local[:2]) + redacted + email[at:]
}

// MaskPhone keeps the last four characters.
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}

// MaskResumeDetails projects r into a listing view with email and phone masked.
// Summary, experiences and educations are dropped.
func MaskResumeDetails(r *types.ResumeRecord) types.MaskedResumeView {
	skills := make([]string, len(r.Skills))
	copy(skills, r.Skills)
	return types.MaskedResumeView{
		ID:       r.ID,
		Name:     r.Name,
		Email:    MaskEmail(r.Email),
		Phone:    MaskPhone(r.Phone),
		Skills:   skills,
		FileID:   r.FileID,
		FileName: r.FileName,
	}
}

// MaskAll masks every record in order.
func MaskAll(records []*types.ResumeRecord) []types.MaskedResumeView {
	views := make([]types.MaskedResumeView, 0, len(records))
	for _, r := range records {
		views = append(views, MaskResumeDetails(r))
	}
	return views
}

// MaskForPreview returns a copy of r with email and phone masked and every other field intact.
func MaskForPreview(r *types.ResumeRecord) *types.ResumeRecord {
	masked := *r
	masked.Email = MaskEmail(r.Email)
	masked.Phone = MaskPhone(r.Phone)
	return &masked
}
