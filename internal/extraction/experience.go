package extraction

import "github.com/jonathan/resume-reader/internal/types"

var experienceSection = newSectionLocator(
	[]string{"Work Experience", "PROFESSIONAL EXPERIENCE", "Employment History", "Career History"},
	[]string{"Education", "Skills"},
)

// ExtractExperiences maps each group of the experience section, or of the whole text when
// there is no experience heading, to company, position, duration and description.
func ExtractExperiences(text string, seg Segmenter) []types.ExperienceEntry {
	section, ok := experienceSection.Locate(text)
	if !ok {
		section = text
	}

	entries := []types.ExperienceEntry{}
	for _, g := range seg.Segment(section) {
		entries = append(entries, types.ExperienceEntry{
			Company:     g[0],
			Position:    g[1],
			Duration:    g[2],
			Description: g[3],
		})
	}
	return entries
}
