package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/xray-pack/internal/collect"
	"github.com/altuslabsxyz/xray-pack/internal/output"
	"github.com/altuslabsxyz/xray-pack/internal/target"
)

func quietLogger() *output.Logger {
	return output.NewLoggerWithWriters(io.Discard, io.Discard)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func zipBytes(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(members[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// serve maps request paths to bodies; unknown paths answer 404.
func serve(t *testing.T, routes map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseChecksum(t *testing.T) {
	sum, err := ParseChecksum("ABCDEF  geoip.dat\n")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF", sum)

	_, err = ParseChecksum("  \n")
	assert.Error(t, err)
}

func TestVerifySHA256(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geoip.dat")
	data := []byte("geoip payload")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	sum := sha256Hex(data)

	assert.NoError(t, VerifySHA256(path, sum))
	assert.NoError(t, VerifySHA256(path, strings.ToUpper(sum)), "comparison ignores case")

	corrupted := append([]byte(nil), data...)
	corrupted[0] ^= 0x01
	require.NoError(t, os.WriteFile(path, corrupted, 0o644))

	err := VerifySHA256(path, sum)
	var checksumErr *ChecksumError
	require.True(t, errors.As(err, &checksumErr))
	assert.Equal(t, sum, checksumErr.Expected)
	assert.Equal(t, sha256Hex(corrupted), checksumErr.Computed)
	assert.Equal(t, path, checksumErr.Path)
}

func TestFetchAndVerify(t *testing.T) {
	data := []byte("geosite payload")
	srv := serve(t, map[string][]byte{"/geosite.dat": data})
	f := NewFetcher(time.Minute, quietLogger())
	dir := t.TempDir()

	t.Run("checksum with filename suffix", func(t *testing.T) {
		expected := sha256Hex(data) + "  geosite.dat\n"
		dest := filepath.Join(dir, "a.dat")
		path, err := f.FetchAndVerify(context.Background(), srv.URL+"/geosite.dat", dest, &expected)
		require.NoError(t, err)
		assert.Equal(t, dest, path)
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, data, got)
		assert.NoFileExists(t, dest+".part")
	})

	t.Run("no checksum", func(t *testing.T) {
		_, err := f.FetchAndVerify(context.Background(), srv.URL+"/geosite.dat", filepath.Join(dir, "b.dat"), nil)
		assert.NoError(t, err)
	})

	t.Run("mismatch", func(t *testing.T) {
		expected := sha256Hex([]byte("something else"))
		_, err := f.FetchAndVerify(context.Background(), srv.URL+"/geosite.dat", filepath.Join(dir, "c.dat"), &expected)
		var checksumErr *ChecksumError
		assert.True(t, errors.As(err, &checksumErr))
	})

	t.Run("not found", func(t *testing.T) {
		dest := filepath.Join(dir, "d.dat")
		_, err := f.FetchAndVerify(context.Background(), srv.URL+"/missing.dat", dest, nil)
		var downloadErr *DownloadError
		require.True(t, errors.As(err, &downloadErr))
		assert.Equal(t, http.StatusNotFound, downloadErr.StatusCode)
		assert.Contains(t, err.Error(), "/missing.dat")
		assert.NoFileExists(t, dest)
	})
}

func TestDownload_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewFetcher(time.Second, quietLogger()).Download(context.Background(), url+"/geoip.dat", filepath.Join(t.TempDir(), "geoip.dat"))
	var downloadErr *DownloadError
	require.True(t, errors.As(err, &downloadErr))
	assert.Zero(t, downloadErr.StatusCode)
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "a.zip")
	require.NoError(t, os.WriteFile(archive, zipBytes(t, map[string]string{"wintun/LICENSE.txt": "license"}), 0o644))

	dest := filepath.Join(dir, "LICENSE-wintun.txt")
	require.NoError(t, Extract(archive, "wintun/LICENSE.txt", dest))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "license", string(got))

	err = Extract(archive, "wintun/bin/arm64/wintun.dll", filepath.Join(dir, "wintun.dll"))
	var extractErr *ExtractError
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, "wintun/bin/arm64/wintun.dll", extractErr.Member)
	assert.NoFileExists(t, filepath.Join(dir, "wintun.dll"))
}

func geoRoutes(geoip, geosite []byte) map[string][]byte {
	return map[string][]byte{
		"/geoip.dat":             geoip,
		"/geoip.dat.sha256sum":   []byte(sha256Hex(geoip) + "  geoip.dat\n"),
		"/geosite.dat":           geosite,
		"/geosite.dat.sha256sum": []byte(sha256Hex(geosite) + "  geosite.dat\n"),
	}
}

func TestFetchGeoData(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		srv := serve(t, geoRoutes([]byte("ip"), []byte("site")))
		dir := t.TempDir()
		files := collect.New()
		a := NewAssetFetcher(NewFetcher(time.Minute, quietLogger()), dir, quietLogger(),
			WithGeoBaseURL(srv.URL+"/"), WithParallel(parallel))

		require.NoError(t, a.FetchGeoData(context.Background(), target.Russia, files))

		assert.Equal(t, []string{filepath.Join(dir, "geoip.dat"), filepath.Join(dir, "geosite.dat")}, files.Files(), "parallel=%v", parallel)
	}
}

func TestFetchGeoData_ChecksumMismatchRegistersNothing(t *testing.T) {
	routes := geoRoutes([]byte("ip"), []byte("site"))
	routes["/geoip.dat"] = []byte("iq")
	srv := serve(t, routes)
	files := collect.New()
	a := NewAssetFetcher(NewFetcher(time.Minute, quietLogger()), t.TempDir(), quietLogger(), WithGeoBaseURL(srv.URL+"/"))

	err := a.FetchGeoData(context.Background(), target.ChinaMainland, files)
	var checksumErr *ChecksumError
	require.True(t, errors.As(err, &checksumErr))
	assert.Zero(t, files.Len())
}

func TestFetchWintun(t *testing.T) {
	archive := zipBytes(t, map[string]string{
		"wintun/bin/amd64/wintun.dll": "amd64 dll",
		"wintun/bin/arm64/wintun.dll": "arm64 dll",
		"wintun/bin/x86/wintun.dll":   "x86 dll",
		"wintun/LICENSE.txt":          "license",
	})
	srv := serve(t, map[string][]byte{"/wintun.zip": archive})
	sum := sha256Hex(archive)

	newFetcher := func(dir string, checksum *string) *AssetFetcher {
		return NewAssetFetcher(NewFetcher(time.Minute, quietLogger()), dir, quietLogger(),
			WithWintunURL(srv.URL+"/wintun.zip"), WithWintunChecksum(checksum))
	}

	t.Run("windows arm64", func(t *testing.T) {
		dir := t.TempDir()
		files := collect.New()
		require.NoError(t, newFetcher(dir, &sum).FetchWintun(context.Background(), target.Platform{OS: "windows", Arch: "arm64"}, files))

		assert.Equal(t, []string{filepath.Join(dir, "wintun.dll"), filepath.Join(dir, "LICENSE-wintun.txt")}, files.Files())
		dll, err := os.ReadFile(filepath.Join(dir, "wintun.dll"))
		require.NoError(t, err)
		assert.Equal(t, "arm64 dll", string(dll))
		assert.NoFileExists(t, filepath.Join(dir, "wintun.zip"))
	})

	t.Run("windows 386 maps to x86", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, newFetcher(dir, nil).FetchWintun(context.Background(), target.Platform{OS: "windows", Arch: "386"}, collect.New()))
		dll, err := os.ReadFile(filepath.Join(dir, "wintun.dll"))
		require.NoError(t, err)
		assert.Equal(t, "x86 dll", string(dll))
	})

	t.Run("linux is a no-op", func(t *testing.T) {
		files := collect.New()
		require.NoError(t, newFetcher(t.TempDir(), &sum).FetchWintun(context.Background(), target.Platform{OS: "linux", Arch: "amd64"}, files))
		assert.Zero(t, files.Len())
	})

	t.Run("unsupported arch", func(t *testing.T) {
		err := newFetcher(t.TempDir(), nil).FetchWintun(context.Background(), target.Platform{OS: "windows", Arch: "mips"}, collect.New())
		assert.Error(t, err)
	})

	t.Run("pinned checksum mismatch", func(t *testing.T) {
		bad := sha256Hex([]byte("other"))
		err := newFetcher(t.TempDir(), &bad).FetchWintun(context.Background(), target.Platform{OS: "windows", Arch: "amd64"}, collect.New())
		var checksumErr *ChecksumError
		assert.True(t, errors.As(err, &checksumErr))
	})
}
