package ssr

import "errors"

var (
	// ErrNoRenderer is returned when the dispatcher has no render function.
	ErrNoRenderer = errors.New("ssr: no render function")

	// ErrEmptyResult is returned when a renderer returns neither a result nor an error.
	ErrEmptyResult = errors.New("ssr: renderer returned no result")
)
