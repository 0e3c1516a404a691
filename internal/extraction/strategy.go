package extraction

// Strategy is one way of finding a field in résumé text. ok is false when the strategy does not apply.
type Strategy func(text string) (value string, ok bool)

// firstMatch runs strategies in order and returns the first successful value, or fallback.
func firstMatch(text, fallback string, strategies ...Strategy) string {
	for _, s := range strategies {
		if v, ok := s(text); ok {
			return v
		}
	}
	return fallback
}
