package output

import "io"

// LoggerInterface defines the logging interface for pipeline stages.
// This allows for dependency injection and easier testing.
type LoggerInterface interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Success(format string, args ...interface{})

	IsVerbose() bool
	Writer() io.Writer

	PrintCommandError(info *CommandErrorInfo)
}

// Verify that Logger implements LoggerInterface at compile time.
var _ LoggerInterface = (*Logger)(nil)
