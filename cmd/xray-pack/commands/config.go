package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/xray-pack/internal/config"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the xray-pack configuration file",
	}
	cmd.AddCommand(newConfigShowCmd(global), newConfigInitCmd(global))
	return cmd
}

func newConfigShowCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and where each value comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			global.cfg.ToTable(cmd.OutOrStdout())
			return nil
		},
	}
}

func newConfigInitCmd(global *globalOptions) *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented config file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := initConfig(dir, global.configDir, force)
			if err != nil {
				return handleCommandError(cmd, global.logger, err)
			}
			global.logger.Success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write config.toml into (default: user config dir)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func initConfig(dir, defaultDir string, force bool) (string, error) {
	if dir == "" {
		dir = defaultDir
	}
	if dir == "" {
		return "", fmt.Errorf("no user config directory available, pass --dir")
	}
	w := config.NewConfigWriter(dir)
	if w.Exists() && !force {
		return "", fmt.Errorf("config file already exists: %s (use --force to overwrite)", w.Path())
	}
	if err := w.Write(&config.FileConfig{}); err != nil {
		return "", err
	}
	return w.Path(), nil
}
