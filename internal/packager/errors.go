package packager

import (
	"fmt"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
)

// ArchiveError is returned when the zip stream cannot be written.
type ArchiveError struct {
	common.StageError
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("failed to archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}
