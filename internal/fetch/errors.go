package fetch

import (
	"fmt"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
)

// DownloadError is returned when a transfer fails at the transport level or
// the server answers with a non-2xx status.
type DownloadError struct {
	common.StageError
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to download %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// RecoveryHint implements common.RecoverableError.
func (e *DownloadError) RecoveryHint() string {
	return "Check network access; HTTPS_PROXY and ALL_PROXY are honored. Increase --download-timeout for slow links."
}

// ChecksumError is returned when a downloaded file does not match its
// published SHA-256 digest.
type ChecksumError struct {
	common.StageError
	Path     string
	Expected string
	Computed string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, computed %s", e.Path, e.Expected, e.Computed)
}

// ExtractError is returned when an archive cannot be read or lacks a member.
type ExtractError struct {
	common.StageError
	Archive string
	Member  string
	Err     error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to extract %s from %s: %v", e.Member, e.Archive, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}
