package toolchain

import (
	"fmt"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
)

// BuildError is returned when the compiler exits unsuccessfully or cannot be
// started. Stderr holds the compiler's diagnostic output verbatim; it is
// printed when the failure happens and left out of Error.
type BuildError struct {
	common.StageError
	Target   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *BuildError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("failed to build %s: compiler exited with code %d", e.Target, e.ExitCode)
	}
	return fmt.Sprintf("failed to build %s: %v", e.Target, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// RecoveryHint implements common.RecoverableError.
func (e *BuildError) RecoveryHint() string {
	return "Re-run with --verbose to see the full compiler output."
}
