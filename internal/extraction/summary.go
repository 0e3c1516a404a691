package extraction

import (
	"regexp"
	"strings"
)

var (
	summaryHeading = regexp.MustCompile(`(?i)(?:Summary|Professional Summary|Profile|Career Summary|About Me)[:\s]*`)
	blankLine      = regexp.MustCompile(`\n\s*\n`)
	lineBreak      = regexp.MustCompile(`\r?\n`)
)

// ExtractSummary returns the paragraph under a summary heading, falling back to the first line.
func ExtractSummary(text string) string {
	return firstMatch(text, "", summaryFromHeading, firstLine)
}

func summaryFromHeading(text string) (string, bool) {
	span, ok := headedParagraph(text, summaryHeading)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(span), true
}

func firstLine(text string) (string, bool) {
	return lineBreak.Split(text, 2)[0], true
}

// headedParagraph returns the text after the first heading match up to the next blank line
// or the end of text.
func headedParagraph(text string, heading *regexp.Regexp) (string, bool) {
	loc := heading.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if end := blankLine.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	return rest, true
}
