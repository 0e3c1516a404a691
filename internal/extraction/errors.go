package extraction

import "fmt"

// DecodeError is returned when a recognised document format cannot be decoded.
type DecodeError struct {
	Format   string
	FileName string
	Cause    error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode %s document %q: %v", e.Format, e.FileName, e.Cause)
	}
	return fmt.Sprintf("decode %s document %q", e.Format, e.FileName)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
