package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// Category sentinels. Wrapped errors match these with errors.Is so
// callers can branch on failure class without inspecting strings.
var (
	// ErrHashing marks failures in digest computation.
	ErrHashing = errors.New("hashing error")

	// ErrFileAccess marks failures reading or writing files.
	ErrFileAccess = errors.New("file access error")

	// ErrConfiguration marks invalid pipeline configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation marks invalid input, such as a corrupt archive or
	// a wrong passphrase.
	ErrValidation = errors.New("validation error")
)

// categorized wraps an error with a category sentinel while keeping
// the original error in the chain.
type categorized struct {
	category error
	err      error
}

func (e *categorized) Error() string {
	return fmt.Sprintf("%s: %s", e.category.Error(), e.err.Error())
}

func (e *categorized) Is(target error) bool {
	return target == e.category
}

func (e *categorized) Unwrap() error {
	return e.err
}

// Categorize attaches a category sentinel to err. It returns nil when
// err is nil.
func Categorize(category, err error) error {
	if err == nil {
		return nil
	}
	return &categorized{category: category, err: err}
}

// StepError reports which pipeline step failed and how long it ran
// before failing. The underlying cause is preserved for errors.Is and
// errors.As.
type StepError struct {
	// Step is the name of the failed step.
	Step string

	// Duration is how long the step ran before failing.
	Duration time.Duration

	// Err is the underlying failure.
	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed after %.3fs: %s", e.Step, e.Duration.Seconds(), e.Err.Error())
}

func (e *StepError) Unwrap() error {
	return e.Err
}
