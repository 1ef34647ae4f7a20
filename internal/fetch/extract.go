package fetch

import (
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/zip"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
)

var errMemberNotFound = errors.New("member not found in archive")

// Extract copies the single member of the zip archive to dest.
func Extract(archive, member, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return &ExtractError{Archive: archive, Member: member, Err: err}
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != member {
			continue
		}
		return extractFile(f, archive, dest)
	}
	return &ExtractError{Archive: archive, Member: member, Err: errMemberNotFound}
}

func extractFile(f *zip.File, archive, dest string) error {
	src, err := f.Open()
	if err != nil {
		return &ExtractError{Archive: archive, Member: f.Name, Err: err}
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return &common.FileError{Op: common.OpCreate, Path: dest, Err: err}
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dest)
		return &ExtractError{Archive: archive, Member: f.Name, Err: err}
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return &common.FileError{Op: common.OpCreate, Path: dest, Err: err}
	}
	return nil
}
