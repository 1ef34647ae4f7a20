// Package packager assembles the release zip and places it in the output
// directory.
package packager

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
	"github.com/altuslabsxyz/xray-pack/internal/output"
)

// RepoDocs are the repository files included in every archive.
var RepoDocs = []string{"README.md", "LICENSE"}

// Packager writes deflate-compressed zip archives.
type Packager struct {
	logger output.LoggerInterface
}

// New creates a Packager.
func New(logger output.LoggerInterface) *Packager {
	if logger == nil {
		logger = output.DefaultLogger
	}
	return &Packager{logger: logger}
}

// entry is one archive member.
type entry struct {
	name string
	path string
}

// Package zips files plus the repository docs into workDir/archiveName, then
// copies the archive into outputDir and returns its final path. A failed run
// leaves no archive behind in workDir.
func (p *Packager) Package(files []string, repoDir, workDir, outputDir, archiveName string) (string, error) {
	inputs := make([]string, 0, len(files)+len(RepoDocs))
	inputs = append(inputs, files...)
	for _, doc := range RepoDocs {
		inputs = append(inputs, filepath.Join(repoDir, doc))
	}

	for _, path := range inputs {
		if err := checkReadable(path); err != nil {
			return "", err
		}
	}

	entries := p.flatten(inputs)
	archivePath := filepath.Join(workDir, archiveName)
	p.logger.Info("Packaging %d files into %s", len(entries), archiveName)

	if err := writeArchive(archivePath, entries); err != nil {
		os.Remove(archivePath)
		return "", err
	}

	finalPath, err := copyToOutput(archivePath, outputDir, archiveName)
	if err != nil {
		return "", err
	}
	p.logger.Debug("Archive copied to %s", finalPath)
	return finalPath, nil
}

// flatten maps every input to its base name. When two inputs share a base
// name the later one replaces the earlier in place.
func (p *Packager) flatten(paths []string) []entry {
	index := make(map[string]int, len(paths))
	entries := make([]entry, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		if i, ok := index[name]; ok {
			p.logger.Warn("Archive entry %s from %s replaced by %s", name, entries[i].path, path)
			entries[i].path = path
			continue
		}
		index[name] = len(entries)
		entries = append(entries, entry{name: name, path: path})
	}
	return entries
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &common.FileError{Op: common.OpRead, Path: path, Err: err}
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return &common.FileError{Op: common.OpRead, Path: path, Err: err}
	}
	if info.IsDir() {
		return &common.FileError{Op: common.OpRead, Path: path, Err: fmt.Errorf("is a directory")}
	}
	return nil
}

func writeArchive(archivePath string, entries []entry) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return &common.FileError{Op: common.OpCreate, Path: archivePath, Err: err}
	}

	zw := zip.NewWriter(out)
	for _, e := range entries {
		if err := addEntry(zw, e); err != nil {
			zw.Close()
			out.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return &ArchiveError{Path: archivePath, Err: fmt.Errorf("failed to close zip writer: %w", err)}
	}
	if err := out.Close(); err != nil {
		return &common.FileError{Op: common.OpCreate, Path: archivePath, Err: err}
	}
	return nil
}

func addEntry(zw *zip.Writer, e entry) error {
	f, err := os.Open(e.path)
	if err != nil {
		return &common.FileError{Op: common.OpRead, Path: e.path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &common.FileError{Op: common.OpRead, Path: e.path, Err: err}
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return &ArchiveError{Path: e.path, Err: err}
	}
	hdr.Name = e.name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return &ArchiveError{Path: e.path, Err: fmt.Errorf("failed to write header for %s: %w", e.name, err)}
	}
	if _, err := io.Copy(w, f); err != nil {
		return &ArchiveError{Path: e.path, Err: fmt.Errorf("failed to write %s: %w", e.name, err)}
	}
	return nil
}

// copyToOutput copies the archive into outputDir through a temporary file so
// the destination never holds a partial archive.
func copyToOutput(archivePath, outputDir, archiveName string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", &common.FileError{Op: common.OpCreate, Path: outputDir, Err: err}
	}
	dest := filepath.Join(outputDir, archiveName)

	src, err := os.Open(archivePath)
	if err != nil {
		return "", &common.FileError{Op: common.OpRead, Path: archivePath, Err: err}
	}
	defer src.Close()

	tmp, err := os.CreateTemp(outputDir, "."+archiveName+".*.tmp")
	if err != nil {
		return "", &common.FileError{Op: common.OpCreate, Path: dest, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", &common.FileError{Op: common.OpCopy, Path: dest, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", &common.FileError{Op: common.OpCopy, Path: dest, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return "", &common.FileError{Op: common.OpCopy, Path: dest, Err: err}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", &common.FileError{Op: common.OpCopy, Path: dest, Err: err}
	}
	return dest, nil
}
