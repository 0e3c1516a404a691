package extraction

import (
	"testing"

	"github.com/jonathan/resume-reader/internal/testutil"
)

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	return testutil.BuildDOCX(t, paragraphs...)
}

func buildPDF(t *testing.T, lines ...string) []byte {
	t.Helper()
	return testutil.BuildPDF(t, lines...)
}
