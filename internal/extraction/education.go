package extraction

import (
	"regexp"

	"github.com/jonathan/resume-reader/internal/types"
)

var (
	educationSection = newSectionLocator(
		[]string{"Educational Qualification", "Academic Profile", "Education", "Academic Background", "Academic Qualifications"},
		[]string{"Experience", "Skills"},
	)

	degreePattern = regexp.MustCompile(`\b(?:(?:Bachelor(?:'s)?|Master(?:'s)?|BBA|BCA|(?i:bsc)|MCA|MBA|PhD|Doctorate|Associate|Diploma|Certificate)\b|[BM]\.(?:Tech|Sc|Com|Eng|Ed|Arch|Pharm|Phil|Des|A|E|S)\b\.?)(?:[ \t]+[\w'-]+)*`)
	yearPattern   = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	whitespace    = regexp.MustCompile(`\s+`)
	inOrOf        = regexp.MustCompile(`\b(?:in|of)\b`)
)

// ExtractEducations maps the groups of the education section to entries.
//
// Under a heading, institution is line one, field of study is line three, and degree and year
// are searched for in the institution line first and then in the rest of the group. Without a
// heading the whole text is grouped and the four lines are taken verbatim as institution,
// degree, field of study and year.
func ExtractEducations(text string, seg Segmenter) []types.EducationEntry {
	entries := []types.EducationEntry{}

	section, ok := educationSection.Locate(text)
	if !ok {
		for _, g := range seg.Segment(text) {
			entries = append(entries, types.EducationEntry{
				Institution:  g[0],
				Degree:       types.StringPtr(g[1]),
				FieldOfStudy: g[2],
				Year:         types.StringPtr(g[3]),
			})
		}
		return entries
	}

	for _, g := range seg.Segment(section) {
		entries = append(entries, types.EducationEntry{
			Institution:  g[0],
			Degree:       findDegree(g[:]),
			FieldOfStudy: g[2],
			Year:         findYear(g[:]),
		})
	}
	return entries
}

// NormalizeDegreeText collapses whitespace and rewrites the connectives "in" and "of" to "in".
func NormalizeDegreeText(s string) string {
	s = whitespace.ReplaceAllString(s, " ")
	s = inOrOf.ReplaceAllString(s, "in")
	return whitespace.ReplaceAllString(s, " ")
}

func findDegree(lines []string) *string {
	for _, line := range lines {
		if m := degreePattern.FindString(NormalizeDegreeText(line)); m != "" {
			return &m
		}
	}
	return nil
}

func findYear(lines []string) *string {
	for _, line := range lines {
		if m := yearPattern.FindString(line); m != "" {
			return &m
		}
	}
	return nil
}
