// Package common provides error behaviors shared by the pipeline stages and
// inspected by the CLI when reporting failures.
package common

import (
	"errors"
	"fmt"
)

// SilenceUsageError is implemented by errors that should NOT trigger CLI
// usage output. The command was invoked correctly but a stage failed.
type SilenceUsageError interface {
	error
	ShouldSilenceUsage() bool
}

// RecoverableError is implemented by errors that suggest a recovery action.
type RecoverableError interface {
	error
	RecoveryHint() string
}

// ShouldSilenceUsage reports whether any error in the chain asks for usage
// output to be suppressed.
func ShouldSilenceUsage(err error) bool {
	var sue SilenceUsageError
	if errors.As(err, &sue) {
		return sue.ShouldSilenceUsage()
	}
	return false
}

// GetRecoveryHint returns the first recovery hint found in the error chain.
func GetRecoveryHint(err error) string {
	var re RecoverableError
	if errors.As(err, &re) {
		return re.RecoveryHint()
	}
	return ""
}

// StageError is embedded by stage errors. Every stage failure happens after
// argument validation, so usage output is never useful.
type StageError struct{}

// ShouldSilenceUsage implements SilenceUsageError.
func (StageError) ShouldSilenceUsage() bool { return true }

// FileOp names the filesystem operation that failed.
type FileOp string

const (
	OpCreate FileOp = "create"
	OpRead   FileOp = "read"
	OpCopy   FileOp = "copy"
	OpDelete FileOp = "delete"
)

// FileError is returned when a local filesystem operation fails.
type FileError struct {
	StageError
	Op   FileOp
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
