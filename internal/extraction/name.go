package extraction

import (
	"regexp"
	"strings"
)

// UnknownName is returned when no name strategy matches.
const UnknownName = "Unknown"

var (
	topNamePattern     = regexp.MustCompile(`(?m)^([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)[ \t]*\r?\n`)
	labeledNamePattern = regexp.MustCompile(`(?i:name|full name|contact information|personal details)[:\s]*\n([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`)
	emailHandlePattern = regexp.MustCompile(`\b([A-Z][a-z]+\.[A-Z][a-z]+|[A-Z][a-z]+)[@\s]`)
	nameStrategies     = []Strategy{nameFromTopLine, nameFromLabel, nameFromHandle}
)

// ExtractName returns the candidate's name, or UnknownName.
func ExtractName(text string) string {
	return firstMatch(text, UnknownName, nameStrategies...)
}

// nameFromTopLine matches a line made only of two or more capitalised words.
func nameFromTopLine(text string) (string, bool) {
	m := topNamePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// nameFromLabel matches capitalised words on the line after a "Name" style label.
func nameFromLabel(text string) (string, bool) {
	m := labeledNamePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// nameFromHandle takes a First.Last or single capitalised token that precedes "@" or whitespace.
func nameFromHandle(text string) (string, bool) {
	m := emailHandlePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(strings.ReplaceAll(m[1], ".", " ")), true
}
