package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/altuslabsxyz/xray-pack/internal/collect"
	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
	"github.com/altuslabsxyz/xray-pack/internal/output"
	"github.com/altuslabsxyz/xray-pack/internal/target"
)

const (
	// WintunURL is the pinned wintun driver release.
	WintunURL = "https://www.wintun.net/builds/wintun-0.14.1.zip"

	checksumSuffix = ".sha256sum"
)

// GeoFiles are the geo databases shipped with every archive.
var GeoFiles = []string{"geoip.dat", "geosite.dat"}

// AssetFetcher downloads the auxiliary files of an archive into a working
// directory and registers them with a collector.
type AssetFetcher struct {
	fetcher        *Fetcher
	dir            string
	logger         output.LoggerInterface
	parallel       bool
	wintunURL      string
	wintunChecksum *string
	geoBaseURL     func(target.Region) string
}

// AssetOption configures an AssetFetcher.
type AssetOption func(*AssetFetcher)

// WithParallel downloads the geo databases concurrently.
func WithParallel(parallel bool) AssetOption {
	return func(a *AssetFetcher) { a.parallel = parallel }
}

// WithWintunChecksum pins the expected SHA-256 of the wintun archive.
func WithWintunChecksum(sum *string) AssetOption {
	return func(a *AssetFetcher) { a.wintunChecksum = sum }
}

// WithWintunURL overrides the wintun download location.
func WithWintunURL(url string) AssetOption {
	return func(a *AssetFetcher) { a.wintunURL = url }
}

// WithGeoBaseURL overrides the per-region geo data prefix.
func WithGeoBaseURL(base string) AssetOption {
	return func(a *AssetFetcher) {
		a.geoBaseURL = func(target.Region) string { return base }
	}
}

// NewAssetFetcher creates an AssetFetcher writing into dir.
func NewAssetFetcher(fetcher *Fetcher, dir string, logger output.LoggerInterface, opts ...AssetOption) *AssetFetcher {
	if logger == nil {
		logger = output.DefaultLogger
	}
	a := &AssetFetcher{
		fetcher:    fetcher,
		dir:        dir,
		logger:     logger,
		wintunURL:  WintunURL,
		geoBaseURL: target.Region.BaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchGeoData downloads geoip.dat and geosite.dat for region, verifies each
// against its published checksum and registers it.
func (a *AssetFetcher) FetchGeoData(ctx context.Context, region target.Region, files *collect.Collector) error {
	base := a.geoBaseURL(region)
	a.logger.Info("Fetching geo data for region %s", region)

	paths := make([]string, len(GeoFiles))
	if !a.parallel {
		for i, name := range GeoFiles {
			path, err := a.fetchGeoFile(ctx, base, name)
			if err != nil {
				return err
			}
			paths[i] = path
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for i, name := range GeoFiles {
			i, name := i, name
			g.Go(func() error {
				path, err := a.fetchGeoFile(gctx, base, name)
				if err != nil {
					return err
				}
				paths[i] = path
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	// Registered only once every file is verified, in GeoFiles order.
	for _, path := range paths {
		files.Add(path)
		a.logger.Debug("Registered %s", path)
	}
	return nil
}

func (a *AssetFetcher) fetchGeoFile(ctx context.Context, base, name string) (string, error) {
	url := base + name
	sum, err := a.fetcher.FetchText(ctx, url+checksumSuffix)
	if err != nil {
		return "", err
	}
	return a.fetcher.FetchAndVerify(ctx, url, filepath.Join(a.dir, name), &sum)
}

// FetchWintun downloads the wintun driver and its license for Windows
// platforms. Other platforms are a no-op.
func (a *AssetFetcher) FetchWintun(ctx context.Context, p target.Platform, files *collect.Collector) error {
	if !p.IsWindows() {
		return nil
	}
	arch, err := p.WintunArch()
	if err != nil {
		return err
	}
	if a.wintunChecksum == nil {
		a.logger.Debug("No wintun checksum configured, skipping verification")
	}

	a.logger.Info("Fetching wintun driver for %s", arch)
	archive, err := a.fetcher.FetchAndVerify(ctx, a.wintunURL, filepath.Join(a.dir, "wintun.zip"), a.wintunChecksum)
	if err != nil {
		return err
	}

	members := []struct {
		member string
		name   string
	}{
		{fmt.Sprintf("wintun/bin/%s/wintun.dll", arch), "wintun.dll"},
		{"wintun/LICENSE.txt", "LICENSE-wintun.txt"},
	}
	for _, m := range members {
		dest := filepath.Join(a.dir, m.name)
		if err := Extract(archive, m.member, dest); err != nil {
			return err
		}
		files.Add(dest)
	}

	if err := os.Remove(archive); err != nil {
		a.logger.Warn("%v", &common.FileError{Op: common.OpDelete, Path: archive, Err: err})
	}
	return nil
}
