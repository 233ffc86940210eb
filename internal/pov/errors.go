// File path: internal/pov/errors.go
package pov

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult indicates a structured stage returned zero usable items.
	ErrEmptyResult = errors.New("empty result")
	// ErrMalformedOutput indicates model output expected to be structured
	// data could not be parsed into the expected shape.
	ErrMalformedOutput = errors.New("malformed model output")
	// ErrCountMismatch indicates the completion batch returned a different
	// number of results than prompts submitted. The fan-out refuses to zip
	// misaligned lists, so this is fatal.
	ErrCountMismatch = errors.New("completion count mismatch")
	// ErrBatchFailure indicates every prompt in a batch failed.
	ErrBatchFailure = errors.New("completion batch failed")
	// ErrNoSelection indicates detail generation was requested with no
	// titles selected.
	ErrNoSelection = errors.New("no titles selected")
	// ErrNotFound indicates the requested report does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("report not found")
	// ErrForbidden indicates the acting user may not mutate the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition indicates a report status change that the
	// lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ParseError wraps a parse failure with the raw model output so operators
// can see what the model actually said.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StageError tags a pipeline failure with the stage that raised it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
