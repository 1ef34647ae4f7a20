package toolchain

import (
	"fmt"
	"os"
)

// inDir runs fn with the process working directory set to dir. The previous
// directory is restored on every return path, including panics.
func inDir(dir string, fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("failed to change working directory to %s: %w", dir, err)
	}
	defer func() {
		if restoreErr := os.Chdir(prev); restoreErr != nil && err == nil {
			err = fmt.Errorf("failed to restore working directory %s: %w", prev, restoreErr)
		}
	}()
	return fn()
}
