// Package gcpolicy provides the ambient logging surface used to report
// once-per-partition diagnostic events (failed oracle or grace-period policy
// lookups) plus small reference GCPolicy implementations.
package gcpolicy

import (
	"fmt"
	"log"
	"os"
)

// Logger defines the interface the compactor and its collaborators use for
// diagnostics. It intentionally mirrors the small Infof/Fatalf shape a
// storage engine's own logger typically uses, rather than pulling in a full
// structured-logging framework for a library with no persistence of its
// own.
type Logger interface {
	Infof(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// DefaultLogger logs to the standard library's log package.
type DefaultLogger struct{}

// Infof implements Logger.
func (DefaultLogger) Infof(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Fatalf implements Logger.
func (DefaultLogger) Fatalf(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
	os.Exit(1)
}
