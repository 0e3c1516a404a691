// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-reader/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// IngestOutcome is one file's result as shown in the ingest summary.
type IngestOutcome struct {
	Path string
	Name string
	Err  error
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// pad right-pads s with spaces to width runes. fmt's width counts bytes for accented names.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// PrintResumeRecord outputs a human-readable summary of an extracted record.
func (p *Printer) PrintResumeRecord(record *types.ResumeRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", record.FileName))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", record.Name))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", orNone(record.Email)))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", orNone(record.Phone)))
	if record.Summary != "" {
		sb.WriteString(fmt.Sprintf("Summary:  %s\n", record.Summary))
	}
	sb.WriteString("\n")

	if len(record.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills (%d):\n", len(record.Skills)))
		writeList(&sb, record.Skills)
		sb.WriteString("\n")
	}

	if len(record.Experiences) > 0 {
		sb.WriteString(fmt.Sprintf("Experience (%d):\n", len(record.Experiences)))
		items := make([]string, 0, len(record.Experiences))
		for _, e := range record.Experiences {
			items = append(items, joinNonEmpty(" · ", e.Position, e.Company, e.Duration))
		}
		writeList(&sb, items)
		sb.WriteString("\n")
	}

	if len(record.Educations) > 0 {
		sb.WriteString(fmt.Sprintf("Education (%d):\n", len(record.Educations)))
		items := make([]string, 0, len(record.Educations))
		for _, e := range record.Educations {
			var degree, year string
			if e.Degree != nil {
				degree = *e.Degree
			}
			if e.Year != nil {
				year = *e.Year
			}
			items = append(items, joinNonEmpty(" · ", degree, e.Institution, year))
		}
		writeList(&sb, items)
	}

	p.printBox("PARSED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIngestSummary outputs the per-file outcome of a directory ingest.
func (p *Printer) PrintIngestSummary(outcomes []IngestOutcome) {
	if len(outcomes) == 0 {
		return
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Files: %d   Stored: %d   Failed: %d\n\n", len(outcomes), len(outcomes)-failed, failed))
	for _, o := range outcomes {
		if o.Err != nil {
			sb.WriteString(fmt.Sprintf("✗ %s\n    %v\n", o.Path, o.Err))
			continue
		}
		sb.WriteString(fmt.Sprintf("✓ %s\n    %s\n", o.Path, o.Name))
	}

	p.printBox("INGEST SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, items []string) {
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return "(none)"
	}
	return strings.Join(kept, sep)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
