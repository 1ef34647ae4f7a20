package pipeline

import (
	"context"

	"github.com/altuslabsxyz/xray-pack/internal/collect"
	"github.com/altuslabsxyz/xray-pack/internal/prereq"
	"github.com/altuslabsxyz/xray-pack/internal/repo"
	"github.com/altuslabsxyz/xray-pack/internal/target"
	"github.com/altuslabsxyz/xray-pack/internal/toolchain"
)

// PrereqChecker verifies external tools before any stage runs.
type PrereqChecker interface {
	Check() ([]prereq.PrereqResult, error)
}

// Resolver obtains the source tree at a revision.
type Resolver interface {
	Resolve(ctx context.Context, t target.BuildTarget, version string, opts repo.PathOptions) (*repo.Resolution, error)
}

// Compiler builds the binary and returns its path.
type Compiler interface {
	Compile(ctx context.Context, req toolchain.Request) (string, error)
}

// AssetFetcher downloads auxiliary files and registers them.
type AssetFetcher interface {
	FetchGeoData(ctx context.Context, region target.Region, files *collect.Collector) error
	FetchWintun(ctx context.Context, p target.Platform, files *collect.Collector) error
}

// Packager assembles the final archive.
type Packager interface {
	Package(files []string, repoDir, workDir, outputDir, archiveName string) (string, error)
}

// Cleaner removes the run's temporary directory.
type Cleaner interface {
	Cleanup() error
}
