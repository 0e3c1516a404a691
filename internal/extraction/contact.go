package extraction

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[- ]?)?\d{10}`)
)

// ExtractEmail returns the first email address in text, or "".
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// ExtractPhone returns the first ten digit phone number in text with its optional
// international prefix, or "".
func ExtractPhone(text string) string {
	return phonePattern.FindString(text)
}
