package negotiator

import (
	"errors"
	"fmt"
)

// ErrNoComponent is wrapped by ComponentError.
var ErrNoComponent = errors.New("no component name")

// ComponentError reports a page built without a component name.
type ComponentError struct {
	URL string
	Err error
}

// Error returns the error message.
func (e *ComponentError) Error() string {
	return fmt.Sprintf("negotiator: %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *ComponentError) Unwrap() error {
	return e.Err
}

// PropError reports a lazy prop that failed to evaluate.
type PropError struct {
	Key string
	Err error
}

// Error returns the error message.
func (e *PropError) Error() string {
	return fmt.Sprintf("negotiator: prop %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *PropError) Unwrap() error {
	return e.Err
}
