// Package workspace manages the per-run temporary directory that holds
// clones, build output and downloads.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
)

// Prefix is the leading part of every workspace directory name.
const Prefix = "xray-pack-"

// Workspace is a temporary directory owned by a single run.
type Workspace struct {
	RunID string
	Dir   string
}

// New creates <root>/xray-pack-<run id>. An empty root means os.TempDir().
// Creation fails if the directory already exists.
func New(root string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	id := uuid.New().String()
	dir := filepath.Join(root, Prefix+id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, &common.FileError{Op: common.OpCreate, Path: dir, Err: err}
	}
	return &Workspace{RunID: id, Dir: dir}, nil
}

// Path joins elem onto the workspace directory.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.Dir}, elem...)...)
}

// Cleanup removes the workspace and everything below it.
func (w *Workspace) Cleanup() error {
	if err := os.RemoveAll(w.Dir); err != nil {
		return &common.FileError{Op: common.OpDelete, Path: w.Dir, Err: err}
	}
	return nil
}
