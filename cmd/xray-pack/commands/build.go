package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/xray-pack/internal/config"
	"github.com/altuslabsxyz/xray-pack/internal/fetch"
	"github.com/altuslabsxyz/xray-pack/internal/output"
	"github.com/altuslabsxyz/xray-pack/internal/packager"
	"github.com/altuslabsxyz/xray-pack/internal/pipeline"
	"github.com/altuslabsxyz/xray-pack/internal/prereq"
	"github.com/altuslabsxyz/xray-pack/internal/repo"
	"github.com/altuslabsxyz/xray-pack/internal/target"
	"github.com/altuslabsxyz/xray-pack/internal/toolchain"
	"github.com/altuslabsxyz/xray-pack/internal/workspace"
)

// buildOptions are the flags of a target subcommand.
type buildOptions struct {
	version string
	gcflags string
	ldflags string
}

func newBuildCmd(global *globalOptions, bt target.BuildTarget) *cobra.Command {
	info := bt.Info()
	opts := &buildOptions{}
	versionFlag := info.Name + "-version"

	cmd := &cobra.Command{
		Use:   info.Name,
		Short: fmt.Sprintf("Build and package %s", info.DisplayName),
		Long: fmt.Sprintf(`Build %s at the requested version and package it with geo data.

The version may be a branch, tag, commit hash or any revision expression.
The archive is named %s-<identifier>-<arch>-<os>.zip, where <identifier> is
the git describe output of the checked out commit.`, info.DisplayName, info.ProjectName),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := opts.compileFlags(cmd, global.cfg)
			if err != nil {
				return handleCommandError(cmd, global.logger, err)
			}
			return handleCommandError(cmd, global.logger, runBuild(cmd, global, bt, opts.version, flags))
		},
	}

	cmd.Flags().StringVar(&opts.version, versionFlag, info.DefaultVersion,
		fmt.Sprintf("%s version to build", info.DisplayName))
	cmd.Flags().StringVar(&opts.gcflags, "gcflags", target.DefaultGCFlags, "Flags passed to go build -gcflags")
	cmd.Flags().StringVar(&opts.ldflags, "ldflags", "",
		"Flags passed to go build -ldflags (replaces the derived flags)")

	return cmd
}

// compileFlags merges the gcflags config value with the command flags. The
// derived ldflags are only replaced when --ldflags is given.
func (o *buildOptions) compileFlags(cmd *cobra.Command, cfg *config.EffectiveConfig) (target.CompileFlags, error) {
	gc := config.StringValue{Value: target.DefaultGCFlags, Source: config.SourceDefault}
	if cfg != nil {
		gc = cfg.GCFlags
	}
	config.ApplyStringFlag(cmd, "gcflags", &gc)
	if gc.Value == "" {
		return target.CompileFlags{}, fmt.Errorf("--gcflags must not be empty")
	}

	flags := target.CompileFlags{GCFlags: gc.Value}
	if cmd.Flags().Changed("ldflags") {
		ld := o.ldflags
		flags.LDFlags = &ld
	}
	return flags, nil
}

func runBuild(cmd *cobra.Command, global *globalOptions, bt target.BuildTarget, version string, flags target.CompileFlags) error {
	cfg := global.cfg
	logger := global.logger
	platform := cfg.Platform()

	if platform.IsWindows() {
		if _, err := platform.WintunArch(); err != nil {
			return err
		}
	}
	region, err := target.ParseRegion(cfg.Region.Value)
	if err != nil {
		return err
	}

	paths := repo.PathOptions{FromSource: global.fromSource, SourcePath: global.sourcePath}
	if !paths.FromSource && paths.SourcePath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine current directory: %w", err)
		}
		paths.SourcePath = wd
	}

	ws, err := workspace.New("")
	if err != nil {
		return err
	}
	paths.WorkDir = ws.Dir
	logger.Debug("Working directory: %s", ws.Dir)

	pcfg := pipeline.Config{
		Target:    bt,
		Version:   version,
		Paths:     paths,
		Platform:  platform,
		Flags:     flags,
		Region:    region,
		WorkDir:   ws.Dir,
		OutputDir: cfg.OutputPath.Value,
		KeepTemp:  cfg.KeepTemp.Value,
	}

	fetcher := fetch.NewFetcher(cfg.DownloadTimeout.Value, logger)
	if err := fetcher.SetProxy(repo.ProxyFromEnv(global.getenv)); err != nil {
		return err
	}
	deps := pipeline.Deps{
		Prereq:   prereq.NewChecker().RequireGo(cfg.GoBinary.Value),
		Resolver: repo.NewResolver(logger),
		Compiler: toolchain.NewInvoker(cfg.GoBinary.Value, logger),
		Assets: fetch.NewAssetFetcher(fetcher, ws.Dir, logger,
			fetch.WithParallel(cfg.ParallelDownloads.Value),
			fetch.WithWintunChecksum(cfg.WintunChecksum())),
		Packager: packager.New(logger),
		Cleaner:  ws,
	}

	progress := output.NewProgress(pipeline.StageCount(pcfg))
	progress.SetOutput(cmd.OutOrStdout())
	progress.SetNoColor(cfg.NoColor.Value || !global.isTTY())

	res, err := pipeline.New(deps, logger, progress).Run(cmd.Context(), pcfg)
	if err != nil {
		logger.Info("Intermediate files kept in %s", ws.Dir)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.ArchivePath)
	return nil
}
