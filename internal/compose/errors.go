package compose

import "fmt"

// Error reports a failure inside the PDF engine. Retrying the same markup
// produces the same failure.
type Error struct {
	Diagnostic string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("composing document: %s", e.Diagnostic)
}

func (e *Error) Unwrap() error {
	return e.Err
}
