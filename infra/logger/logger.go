// Package logger provides the zerolog backed implementation of the solver
// logger interface.
package logger

import corelogger "github.com/kilianp07/starobs/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// New returns a Logger for the given component. The output format follows
// the APP_ENV variable and the level follows STAROBS_LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
