package extraction

import (
	"log/slog"

	"github.com/jonathan/resume-reader/internal/types"
)

// Parser assembles a ResumeRecord from a document. It holds no mutable state and is safe for
// concurrent use.
type Parser struct {
	logger    *slog.Logger
	segmenter Segmenter
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for decode failures and extraction misses.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSegmenter replaces the section segmenter used for experience and education.
func WithSegmenter(seg Segmenter) Option {
	return func(p *Parser) {
		if seg != nil {
			p.segmenter = seg
		}
	}
}

// NewParser creates a Parser with the four-line segmenter and the default logger.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:    slog.Default(),
		segmenter: FourLineSegmenter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts text from data and infers every field from it. Only a *DecodeError aborts;
// fields that cannot be found take their defaults.
func (p *Parser) Parse(data []byte, filename string) (*types.ResumeRecord, error) {
	text, err := ExtractText(data, filename)
	if err != nil {
		p.logger.Warn("document decode failed", "file", filename, "error", err)
		return nil, err
	}
	if text == "" && DetectFormat(filename) == "" {
		p.logger.Debug("unsupported document format, extracting from empty text", "file", filename)
	}
	return p.ParseText(text, filename), nil
}

// ParseText infers a ResumeRecord from already extracted text.
func (p *Parser) ParseText(text, filename string) *types.ResumeRecord {
	record := &types.ResumeRecord{
		FileName:    filename,
		Name:        ExtractName(text),
		Email:       ExtractEmail(text),
		Phone:       ExtractPhone(text),
		Summary:     ExtractSummary(text),
		Skills:      ExtractSkills(text),
		Experiences: ExtractExperiences(text, p.segmenter),
		Educations:  ExtractEducations(text, p.segmenter),
	}
	p.logMisses(record)
	return record
}

func (p *Parser) logMisses(r *types.ResumeRecord) {
	misses := map[string]bool{
		"name":        r.Name == UnknownName,
		"email":       r.Email == "",
		"phone":       r.Phone == "",
		"summary":     r.Summary == "",
		"skills":      len(r.Skills) == 0,
		"experiences": len(r.Experiences) == 0,
		"educations":  len(r.Educations) == 0,
	}
	for _, field := range []string{"name", "email", "phone", "summary", "skills", "experiences", "educations"} {
		if misses[field] {
			p.logger.Debug("field not found", "file", r.FileName, "field", field)
		}
	}
}
