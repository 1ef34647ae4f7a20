// Package commands provides the CLI command implementations for xray-pack.
package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/xray-pack/internal/config"
	"github.com/altuslabsxyz/xray-pack/internal/output"
	"github.com/altuslabsxyz/xray-pack/internal/target"
	"github.com/altuslabsxyz/xray-pack/internal/version"
)

// Environment variables read by the CLI.
const (
	EnvLogLevel        = "XRAY_PACK_LOG"
	EnvDownloadTimeout = "XRAY_PACK_DOWNLOAD_TIMEOUT"
	EnvRegion          = "XRAY_PACK_REGION"
	EnvNoColor         = "NO_COLOR"
)

// globalOptions holds the persistent flags and the configuration resolved
// from them.
type globalOptions struct {
	fromSource        bool
	sourcePath        string
	outputPath        string
	goos              string
	goarch            string
	region            string
	downloadTimeout   time.Duration
	parallelDownloads bool
	keepTemp          bool
	verbose           bool
	noColor           bool
	configPath        string

	configDir string
	getenv    func(string) string
	isTTY     func() bool

	cfg    *config.EffectiveConfig
	logger *output.Logger
}

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globalOptions{
		configDir: config.DefaultConfigDir(),
		getenv:    os.Getenv,
		isTTY:     output.IsTerminal,
		logger:    output.DefaultLogger,
	})
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xray-pack",
		Short: "Build and package Xray-core or v2ray-core release archives",
		Long: `xray-pack compiles Xray-core or v2ray-core at a chosen revision and packages
the binary with region-specific geo data into a release zip.

Examples:
  # Clone Xray-core, build main for linux/amd64 and write dist/xray-<id>-amd64-linux.zip
  xray-pack --from-source xray

  # Build v2ray-core v5.16.1 for Windows on ARM from an existing checkout
  xray-pack -p ~/src/v2ray-core --goos windows --goarch arm64 v2ray --v2ray-version v5.16.1

  # Use Russian geo data
  xray-pack -s --region russia xray --xray-version v1.8.24`,
		SilenceUsage:  false,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return handleCommandError(cmd, opts.logger, opts.persistentPreRunE(cmd, args))
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.fromSource, "from-source", "s", false,
		"Clone the upstream repository into a temporary directory")
	flags.StringVarP(&opts.sourcePath, "source-path", "p", "",
		"Existing repository checkout to build (default: current directory)")
	flags.StringVarP(&opts.outputPath, "output-path", "o", config.DefaultOutputPath,
		"Directory the archive is copied into")
	flags.StringVar(&opts.goos, "goos", config.DefaultGOOS, "Target operating system")
	flags.StringVar(&opts.goarch, "goarch", config.DefaultGOARCH, "Target architecture")
	flags.StringVar(&opts.region, "region", string(target.DefaultRegion),
		fmt.Sprintf("Geo data region (%s)", strings.Join(target.RegionNames(), ", ")))
	flags.DurationVar(&opts.downloadTimeout, "download-timeout", config.DefaultDownloadTimeout,
		"Timeout for each download")
	flags.BoolVar(&opts.parallelDownloads, "parallel-downloads", false,
		"Download geo data files concurrently")
	flags.BoolVar(&opts.keepTemp, "keep-temp", true,
		"Keep the temporary working directory after a successful run")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable verbose logging and stream compiler output")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&opts.configPath, "config", "", "Path to an xray-pack.toml file")

	cmd.MarkFlagsMutuallyExclusive("from-source", "source-path")

	cmd.AddCommand(
		newBuildCmd(opts, target.Xray),
		newBuildCmd(opts, target.V2ray),
		newConfigCmd(opts),
		version.NewCmd("xray-pack"),
	)
	return cmd
}

// persistentPreRunE resolves the effective configuration.
// Priority: default < config file < environment < flag.
func (o *globalOptions) persistentPreRunE(cmd *cobra.Command, args []string) error {
	loader := config.NewConfigLoader(o.configDir, o.configPath, o.logger)
	fileCfg, configFilePath, err := loader.LoadFileConfig()
	if err != nil {
		return err
	}

	cfg := config.NewEffectiveConfig()
	cfg.ApplyFile(fileCfg, configFilePath)
	o.applyEnvironmentOverrides(cmd, cfg)

	config.ApplyStringFlag(cmd, "output-path", &cfg.OutputPath)
	config.ApplyStringFlag(cmd, "goos", &cfg.GOOS)
	config.ApplyStringFlag(cmd, "goarch", &cfg.GOARCH)
	config.ApplyStringFlag(cmd, "region", &cfg.Region)
	config.ApplyDurationFlag(cmd, "download-timeout", &cfg.DownloadTimeout)
	config.ApplyBoolFlag(cmd, "parallel-downloads", &cfg.ParallelDownloads)
	config.ApplyBoolFlag(cmd, "keep-temp", &cfg.KeepTemp)
	config.ApplyBoolFlag(cmd, "verbose", &cfg.Verbose)
	config.ApplyBoolFlag(cmd, "no-color", &cfg.NoColor)

	if err := cfg.Validate(); err != nil {
		return err
	}

	o.logger.SetVerbose(cfg.Verbose.Value)
	o.logger.SetNoColor(cfg.NoColor.Value || !o.isTTY())
	for _, path := range loader.Loaded() {
		o.logger.Debug("Loaded config file: %s", path)
	}

	o.cfg = cfg
	return nil
}

// applyEnvironmentOverrides applies environment variables over the config file.
func (o *globalOptions) applyEnvironmentOverrides(cmd *cobra.Command, cfg *config.EffectiveConfig) {
	config.ApplyEnvBool(cmd, "no-color", &cfg.NoColor, o.getenv(EnvNoColor) != "")

	if level := strings.ToLower(o.getenv(EnvLogLevel)); level != "" && !cmd.Flags().Changed("verbose") {
		cfg.Verbose = config.BoolValue{
			Value:  level == "debug" || level == "trace",
			Source: config.SourceEnvironment,
		}
	}

	config.ApplyEnvString(cmd, "region", &cfg.Region, o.getenv(EnvRegion))

	if ok := config.ApplyEnvDuration(cmd, "download-timeout", &cfg.DownloadTimeout, o.getenv(EnvDownloadTimeout)); !ok {
		o.logger.Warn("Ignoring invalid %s=%q", EnvDownloadTimeout, o.getenv(EnvDownloadTimeout))
	}
}
