package pipeline

import (
	"time"

	"poincare-hq/poincare/pkg/logging"
)

// RunStep executes one named pipeline step with timing and logging.
// Start and completion are logged at debug level with the elapsed
// time; a failure is logged at error level and comes back wrapped in
// a *StepError naming the step. Panics inside fn are logged and
// re-raised unchanged.
func RunStep[T any](logger *logging.Logger, name string, fn func() (T, error)) (T, error) {
	start := time.Now()

	result, err := logging.Instrument(logger, name, fn)
	if err != nil {
		return result, &StepError{
			Step:     name,
			Duration: time.Since(start),
			Err:      err,
		}
	}

	return result, nil
}

// RunStepFunc is RunStep for steps without a result value.
func RunStepFunc(logger *logging.Logger, name string, fn func() error) error {
	_, err := RunStep(logger, name, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
