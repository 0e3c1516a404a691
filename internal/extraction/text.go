// Package extraction turns résumé documents into structured records using
// layered, fallback-driven pattern matching over the document's plain text.
package extraction

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported document formats, inferred from the filename suffix.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// DetectFormat returns the document format for filename, or "" when the suffix is not recognised.
func DetectFormat(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	default:
		return ""
	}
}

// ExtractText decodes data according to the filename suffix and returns its plain text.
// Unrecognised suffixes yield empty text and no error.
func ExtractText(data []byte, filename string) (string, error) {
	switch DetectFormat(filename) {
	case FormatPDF:
		text, err := extractPDFText(data)
		if err != nil {
			return "", &DecodeError{Format: FormatPDF, FileName: filename, Cause: err}
		}
		return text, nil
	case FormatDOCX:
		text, err := extractDOCXText(data)
		if err != nil {
			return "", &DecodeError{Format: FormatDOCX, FileName: filename, Cause: err}
		}
		return text, nil
	default:
		return "", nil
	}
}

func extractPDFText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf decoder panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}

func extractDOCXText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer doc.Close()

	paragraphs, err := documentParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(p)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// documentParagraphs walks word/document.xml and returns the text of each w:p in order.
func documentParagraphs(content string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
		depth      int
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br", "cr":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if depth > 0 {
					depth--
				}
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
