// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import (
	"fmt"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Component returns a logger that prefixes every line with "name: " and
// forwards to whatever Logf is at call time, so SetLogger still applies.
func Component(name string) func(format string, v ...interface{}) {
	return func(format string, v ...interface{}) {
		Logf("%s: %s", name, fmt.Sprintf(format, v...))
	}
}
