package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
)

// ParseChecksum returns the first whitespace-delimited token of a published
// checksum file ("<hex>  <filename>").
func ParseChecksum(payload string) (string, error) {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return "", fmt.Errorf("checksum payload is empty")
	}
	return fields[0], nil
}

// FileSHA256 streams path through SHA-256 and returns the lowercase hex digest.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &common.FileError{Op: common.OpRead, Path: path, Err: err}
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", &common.FileError{Op: common.OpRead, Path: path, Err: err}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifySHA256 compares the digest of path with expected, ignoring case.
func VerifySHA256(path, expected string) error {
	computed, err := FileSHA256(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(computed, expected) {
		return &ChecksumError{Path: path, Expected: expected, Computed: computed}
	}
	return nil
}
