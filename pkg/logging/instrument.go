package logging

import (
	"fmt"
	"time"
)

// Instrument wraps an operation with execution-time logging: a DEBUG
// record before the call, a DEBUG record with execution_time_seconds
// on success, an ERROR record with the elapsed time and error text on
// failure. The operation's result and error are returned unchanged;
// Instrument never wraps or replaces the failure. A panic inside fn is
// logged the same way and re-raised with its original value.
func Instrument[T any](l *Logger, name string, fn func() (T, error)) (T, error) {
	start := time.Now()
	l.Debug("Starting " + name)

	completed := false
	defer func() {
		if completed {
			return
		}
		if r := recover(); r != nil {
			l.Error("Failed "+name,
				"execution_time_seconds", time.Since(start).Seconds(),
				"error", fmt.Sprint(r),
			)
			panic(r)
		}
	}()

	result, err := fn()
	completed = true

	elapsed := time.Since(start).Seconds()
	if err != nil {
		l.Error("Failed "+name,
			"execution_time_seconds", elapsed,
			"error", err.Error(),
		)
		return result, err
	}

	l.Debug("Completed "+name, "execution_time_seconds", elapsed)
	return result, nil
}

// InstrumentFunc is Instrument for operations without a result value.
func InstrumentFunc(l *Logger, name string, fn func() error) error {
	_, err := Instrument(l, name, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
