// Package pipeline sequences revision resolution, compilation, asset
// download and packaging into a single release archive.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/altuslabsxyz/xray-pack/internal/collect"
	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
	"github.com/altuslabsxyz/xray-pack/internal/output"
	"github.com/altuslabsxyz/xray-pack/internal/repo"
	"github.com/altuslabsxyz/xray-pack/internal/target"
	"github.com/altuslabsxyz/xray-pack/internal/toolchain"
)

// Config is the input of one run.
type Config struct {
	Target    target.BuildTarget
	Version   string // empty selects the target's default
	Paths     repo.PathOptions
	Platform  target.Platform
	Flags     target.CompileFlags
	Region    target.Region
	WorkDir   string
	OutputDir string
	KeepTemp  bool
}

// Result describes a successful run.
type Result struct {
	ArchivePath string
	Identifier  string
	Commit      string
	Files       []string
}

// Deps are the stage implementations.
type Deps struct {
	Prereq   PrereqChecker
	Resolver Resolver
	Compiler Compiler
	Assets   AssetFetcher
	Packager Packager
	// Cleaner is only used when Config.KeepTemp is false.
	Cleaner Cleaner
}

// Pipeline runs the stages in order and stops at the first failure.
type Pipeline struct {
	deps     Deps
	logger   output.LoggerInterface
	progress *output.Progress
}

// New creates a Pipeline. progress may be nil.
func New(deps Deps, logger output.LoggerInterface, progress *output.Progress) *Pipeline {
	if logger == nil {
		logger = output.DefaultLogger
	}
	return &Pipeline{deps: deps, logger: logger, progress: progress}
}

// StageCount returns the number of stages a run with cfg goes through.
func StageCount(cfg Config) int {
	n := 5 // prerequisites, source, compile, geo data, package
	if cfg.Platform.IsWindows() {
		n++
	}
	if len(cfg.Target.Info().ExtraFiles) > 0 {
		n++
	}
	return n
}

func (p *Pipeline) stage(description string) {
	if p.progress != nil {
		p.progress.Stage(description)
	}
}

// Run executes the pipeline.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Result, error) {
	info := cfg.Target.Info()

	p.stage("Checking prerequisites")
	if _, err := p.deps.Prereq.Check(); err != nil {
		return nil, err
	}

	p.stage(fmt.Sprintf("Preparing %s source", info.DisplayName))
	res, err := p.deps.Resolver.Resolve(ctx, cfg.Target, cfg.Version, cfg.Paths)
	if err != nil {
		return nil, err
	}
	flags := cfg.Flags.Resolve(cfg.Target, res.Identifier)

	p.stage(fmt.Sprintf("Compiling %s for %s", info.DisplayName, cfg.Platform))
	binary, err := p.deps.Compiler.Compile(ctx, toolchain.Request{
		Target:     cfg.Target,
		Platform:   cfg.Platform,
		Flags:      flags,
		Identifier: res.Identifier,
		RepoDir:    res.Dir,
		OutputDir:  cfg.WorkDir,
	})
	if err != nil {
		return nil, err
	}
	files := collect.New()
	files.Add(binary)

	p.stage("Downloading geo data")
	if err := p.deps.Assets.FetchGeoData(ctx, cfg.Region, files); err != nil {
		return nil, err
	}

	if cfg.Platform.IsWindows() {
		p.stage("Downloading wintun driver")
		if err := p.deps.Assets.FetchWintun(ctx, cfg.Platform, files); err != nil {
			return nil, err
		}
	}

	if len(info.ExtraFiles) > 0 {
		p.stage("Collecting repository files")
		for _, rel := range info.ExtraFiles {
			dest := filepath.Join(cfg.WorkDir, filepath.Base(rel))
			if err := copyFile(filepath.Join(res.Dir, filepath.FromSlash(rel)), dest); err != nil {
				return nil, err
			}
			files.Add(dest)
		}
	}

	p.stage("Packaging")
	archiveName := target.ArchiveName(cfg.Target, res.Identifier, cfg.Platform)
	archivePath, err := p.deps.Packager.Package(files.Files(), res.Dir, cfg.WorkDir, cfg.OutputDir, archiveName)
	if err != nil {
		return nil, err
	}

	if !cfg.KeepTemp && p.deps.Cleaner != nil {
		if err := p.deps.Cleaner.Cleanup(); err != nil {
			p.logger.Warn("Failed to remove temporary files: %v", err)
		} else {
			p.logger.Debug("Removed temporary directory %s", cfg.WorkDir)
		}
	} else {
		p.logger.Debug("Temporary files kept in %s", cfg.WorkDir)
	}

	p.logger.Success("Archive written to %s", archivePath)
	return &Result{
		ArchivePath: archivePath,
		Identifier:  res.Identifier,
		Commit:      res.Commit,
		Files:       files.Files(),
	}, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return &common.FileError{Op: common.OpRead, Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return &common.FileError{Op: common.OpCreate, Path: dest, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &common.FileError{Op: common.OpCopy, Path: dest, Err: err}
	}
	if err := out.Close(); err != nil {
		return &common.FileError{Op: common.OpCopy, Path: dest, Err: err}
	}
	return nil
}
