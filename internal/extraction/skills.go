package extraction

import (
	"regexp"
	"strings"
)

var (
	skillsHeading  = regexp.MustCompile(`(?i)(?:Skillset|TECHNICAL SKILLS|Skills|Technical Skills|Key Skills|Core Competencies)[:\s]*`)
	skillSeparator = regexp.MustCompile(`[,\n]\s*`)
)

// ReferenceSkills is scanned for when the text has no skills heading. Order is preserved in results.
var ReferenceSkills = []string{
	"Java", "Spring", "Python", "JavaScript", "SQL",
	"MongoDB", "React", "Angular", "Node.js", "AWS",
	"Docker", "Kubernetes", "Git", "REST API", "Microservices",
}

// ExtractSkills returns the entries listed under a skills heading, or the reference skills
// mentioned anywhere in text.
func ExtractSkills(text string) []string {
	if span, ok := headedParagraph(text, skillsHeading); ok {
		return splitSkills(strings.TrimSpace(span))
	}

	lower := strings.ToLower(text)
	found := []string{}
	for _, skill := range ReferenceSkills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			found = append(found, skill)
		}
	}
	return found
}

func splitSkills(span string) []string {
	parts := skillSeparator.Split(span, -1)
	// trailing empty tokens are dropped; an empty span yields no skills
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
