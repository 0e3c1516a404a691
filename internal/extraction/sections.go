package extraction

import (
	"regexp"
	"strings"
)

// Group is one fixed-arity block of a section. The fourth field holds every line from the
// fourth onward, joined with line breaks.
type Group [4]string

// Segmenter splits a section into groups.
type Segmenter interface {
	Segment(section string) []Group
}

// FourLineSegmenter treats each blank-line-delimited run of at least four non-blank lines as
// one group. Lines one to three are positional; shorter runs are dropped.
type FourLineSegmenter struct{}

// Segment implements Segmenter.
func (FourLineSegmenter) Segment(section string) []Group {
	var (
		groups []Group
		run    []string
	)
	flush := func() {
		if len(run) >= 4 {
			groups = append(groups, Group{run[0], run[1], run[2], strings.Join(run[3:], "\n")})
		}
		run = run[:0]
	}
	for _, line := range lineBreak.Split(section, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		run = append(run, line)
	}
	flush()
	return groups
}

// sectionLocator finds a labelled span of a document.
type sectionLocator struct {
	heading    *regexp.Regexp
	terminator *regexp.Regexp
}

func newSectionLocator(headings, terminators []string) sectionLocator {
	return sectionLocator{
		heading:    regexp.MustCompile(`(?i)(?:` + strings.Join(headings, "|") + `)[:\s]*`),
		terminator: regexp.MustCompile(`\n\s*(?i:` + strings.Join(terminators, "|") + `)`),
	}
}

// Locate returns the trimmed text between the first heading and the next line that starts
// with a terminator, or the end of text.
func (l sectionLocator) Locate(text string) (string, bool) {
	loc := l.heading.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if end := l.terminator.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	return strings.TrimSpace(rest), true
}
