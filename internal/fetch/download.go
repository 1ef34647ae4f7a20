// Package fetch downloads, verifies and unpacks the runtime assets shipped
// next to the compiled binary.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
	"github.com/altuslabsxyz/xray-pack/internal/output"
)

const (
	// DefaultTimeout bounds a single transfer.
	DefaultTimeout = 10 * time.Minute

	// maxTextSize caps checksum companion files.
	maxTextSize = 64 << 10

	progressInterval = 2 * time.Second
)

// Fetcher performs HTTP transfers. No transfer is retried.
type Fetcher struct {
	client *http.Client
	logger output.LoggerInterface
}

// NewFetcher creates a Fetcher whose transfers time out after timeout.
// HTTPS_PROXY and NO_PROXY are honored unless SetProxy is called.
func NewFetcher(timeout time.Duration, logger output.LoggerInterface) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = output.DefaultLogger
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		logger: logger,
	}
}

// SetProxy routes every transfer through proxyURL. An empty value keeps the
// environment-derived proxy.
func (f *Fetcher) SetProxy(proxyURL string) error {
	if proxyURL == "" {
		return nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
	}
	f.client.Transport.(*http.Transport).Proxy = http.ProxyURL(u)
	f.logger.Debug("Using proxy %s for downloads", u.Redacted())
	return nil
}

// FetchAndVerify streams url to dest. When expected is non-nil the written
// file must match it (see ParseChecksum for the accepted payload).
func (f *Fetcher) FetchAndVerify(ctx context.Context, url, dest string, expected *string) (string, error) {
	if err := f.Download(ctx, url, dest); err != nil {
		return "", err
	}
	if expected == nil {
		return dest, nil
	}
	want, err := ParseChecksum(*expected)
	if err != nil {
		return "", fmt.Errorf("invalid checksum for %s: %w", url, err)
	}
	if err := VerifySHA256(dest, want); err != nil {
		return "", err
	}
	f.logger.Debug("Verified %s (sha256 %s)", filepath.Base(dest), want)
	return dest, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &DownloadError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	f.logger.Debug("Connected to %s", url)
	return resp, nil
}

// Download streams url into dest through a temporary ".part" file, so dest
// only ever holds a complete transfer.
func (f *Fetcher) Download(ctx context.Context, url, dest string) error {
	resp, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmpPath := dest + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return &common.FileError{Op: common.OpCreate, Path: tmpPath, Err: err}
	}

	reader := &progressReader{
		reader:     resp.Body,
		total:      resp.ContentLength,
		name:       filepath.Base(dest),
		logger:     f.logger,
		lastReport: time.Now(),
	}
	_, copyErr := io.Copy(out, reader)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return &DownloadError{URL: url, Err: copyErr}
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return &common.FileError{Op: common.OpCreate, Path: tmpPath, Err: closeErr}
	}

	// a truncated body must not pass as a complete file
	if resp.ContentLength > 0 && reader.downloaded != resp.ContentLength {
		os.Remove(tmpPath)
		return &DownloadError{URL: url, Err: fmt.Errorf("incomplete download: got %d bytes, expected %d", reader.downloaded, resp.ContentLength)}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return &common.FileError{Op: common.OpCopy, Path: dest, Err: err}
	}
	f.logger.Debug("Downloaded %s (%d bytes)", url, reader.downloaded)
	return nil
}

// FetchText downloads a small text resource such as a checksum file.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTextSize))
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}
	return string(data), nil
}

// progressReader wraps an io.Reader to log download progress in verbose mode.
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	name       string
	logger     output.LoggerInterface
	lastReport time.Time
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.downloaded += int64(n)

	if time.Since(pr.lastReport) >= progressInterval {
		pr.lastReport = time.Now()
		if pr.total > 0 {
			pr.logger.Debug("%s: %d/%d bytes (%.0f%%)", pr.name, pr.downloaded, pr.total, float64(pr.downloaded)*100/float64(pr.total))
		} else {
			pr.logger.Debug("%s: %d bytes", pr.name, pr.downloaded)
		}
	}
	return n, err
}
