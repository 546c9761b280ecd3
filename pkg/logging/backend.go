package logging

import (
	"runtime"
	"strings"
)

// Backend is a unit capable of durably or visibly recording one log
// entry. Implementations report success with the boolean result and
// must not let a panic escape Log; any internal failure is converted
// to a false return. Backends must not block indefinitely and must not
// retry failed I/O internally.
type Backend interface {
	Log(level Level, message string, context map[string]any) bool
}

// NamedBackend pairs a backend with the stable name the orchestrator
// uses to track its health.
type NamedBackend struct {
	Name    string
	Backend Backend
}

// callSite describes the first caller frame outside this package.
type callSite struct {
	Function string
	File     string
	Line     int
}

// resolveCallSite walks the stack past the logging package so backends
// can report the originating call site regardless of how many layers
// of orchestration sit in between. Mirrors slog's source resolution.
func resolveCallSite() callSite {
	var pcs [16]uintptr
	// Skip runtime.Callers and this function.
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function == "" {
			break
		}
		internal := strings.Contains(frame.Function, "poincare-hq/poincare/pkg/logging") &&
			!strings.HasSuffix(frame.File, "_test.go")
		if !internal {
			return callSite{
				Function: shortFunc(frame.Function),
				File:     frame.File,
				Line:     frame.Line,
			}
		}
		if !more {
			break
		}
	}
	return callSite{Function: "unknown"}
}

// shortFunc trims the package path from a fully qualified function
// name, keeping "pkg.Func" or "pkg.(*Type).Func".
func shortFunc(fn string) string {
	if idx := strings.LastIndex(fn, "/"); idx >= 0 {
		return fn[idx+1:]
	}
	return fn
}
