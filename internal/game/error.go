package game

import "fmt"

// AssertionError marks a violated internal invariant: a precondition broken
// by the caller or a consistency bug, never an ordinary runtime failure. It
// is raised with panic and expected to be recovered at an API boundary.
type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}

func Assertf(format string, args ...any) AssertionError {
	return AssertionError{fmt.Sprintf(format, args...)}
}
