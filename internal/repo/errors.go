package repo

import (
	"fmt"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
)

// GitError is returned when a source-control operation fails.
type GitError struct {
	common.StageError
	Operation string // clone, open, resolve, checkout, describe
	Target    string // URL, path or revision the operation was applied to
	Err       error
}

func (e *GitError) Error() string {
	return fmt.Sprintf("git %s %s failed: %v", e.Operation, e.Target, e.Err)
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// RecoveryHint implements common.RecoverableError.
func (e *GitError) RecoveryHint() string {
	switch e.Operation {
	case "resolve":
		return "Check that the version exists. Local checkouts may need `git fetch --tags` first."
	case "open":
		return "Pass --source-path pointing at a git checkout, or use --from-source to clone."
	case "clone":
		return "Check network access. HTTPS_PROXY or ALL_PROXY is honored for the clone."
	case "checkout":
		return "Commit or stash local changes in the source checkout."
	}
	return ""
}
