package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/xray-pack/internal/config"
	"github.com/altuslabsxyz/xray-pack/internal/output"
	"github.com/altuslabsxyz/xray-pack/internal/target"
)

type testCLI struct {
	opts *globalOptions
	root *cobra.Command
	out  bytes.Buffer
	log  bytes.Buffer
	err  bytes.Buffer
}

func newTestCLI(t *testing.T, env map[string]string) *testCLI {
	t.Helper()
	c := &testCLI{}
	c.opts = &globalOptions{
		configDir: t.TempDir(),
		getenv:    func(key string) string { return env[key] },
		isTTY:     func() bool { return false },
		logger:    output.NewLoggerWithWriters(&c.log, &c.err),
	}
	c.root = newRootCmd(c.opts)
	c.root.SetOut(&c.out)
	c.root.SetErr(&c.err)
	return c
}

func (c *testCLI) run(args ...string) error {
	c.root.SetArgs(args)
	return c.root.Execute()
}

func TestRoot_Defaults(t *testing.T) {
	c := newTestCLI(t, nil)
	require.NoError(t, c.run("config", "show"))

	cfg := c.opts.cfg
	assert.Equal(t, "dist", cfg.OutputPath.Value)
	assert.Equal(t, "linux/amd64", cfg.Platform().String())
	assert.Equal(t, string(target.ChinaMainland), cfg.Region.Value)
	assert.True(t, cfg.KeepTemp.Value)
	assert.Equal(t, 10*time.Minute, cfg.DownloadTimeout.Value)
	assert.Nil(t, cfg.WintunChecksum())
	assert.Contains(t, c.out.String(), "output_path")
}

func TestRoot_Precedence(t *testing.T) {
	c := newTestCLI(t, map[string]string{
		EnvLogLevel:        "debug",
		EnvDownloadTimeout: "45s",
	})
	require.NoError(t, os.WriteFile(filepath.Join(c.opts.configDir, config.UserFileName), []byte(`
region = "russia"
goos = "windows"
goarch = "arm64"
keep_temp = false
verbose = false
download_timeout = "5m"
`), 0o644))

	require.NoError(t, c.run("--goarch", "386", "config", "show"))

	cfg := c.opts.cfg
	assert.Equal(t, "russia", cfg.Region.Value)
	assert.Equal(t, config.SourceConfigFile, cfg.Region.Source)
	assert.Equal(t, "windows", cfg.GOOS.Value)
	assert.Equal(t, "386", cfg.GOARCH.Value)
	assert.Equal(t, config.SourceFlag, cfg.GOARCH.Source)
	assert.False(t, cfg.KeepTemp.Value)
	assert.True(t, cfg.Verbose.Value, "environment overrides the config file")
	assert.Equal(t, config.SourceEnvironment, cfg.Verbose.Source)
	assert.Equal(t, 45*time.Second, cfg.DownloadTimeout.Value)
}

func TestRoot_LogsLoadedConfigWhenVerboseFromFile(t *testing.T) {
	c := newTestCLI(t, nil)
	path := filepath.Join(c.opts.configDir, config.UserFileName)
	require.NoError(t, os.WriteFile(path, []byte("verbose = true\n"), 0o644))

	require.NoError(t, c.run("config", "show"))
	assert.Contains(t, c.log.String(), "Loaded config file: "+path)
}

func TestRoot_VerboseFlagBeatsEnvironment(t *testing.T) {
	c := newTestCLI(t, map[string]string{EnvLogLevel: "debug"})
	require.NoError(t, c.run("--verbose=false", "config", "show"))
	assert.False(t, c.opts.cfg.Verbose.Value)
	assert.Equal(t, config.SourceFlag, c.opts.cfg.Verbose.Source)
}

func TestRoot_NoColorFromEnvironment(t *testing.T) {
	c := newTestCLI(t, map[string]string{EnvNoColor: "1"})
	require.NoError(t, c.run("config", "show"))
	assert.True(t, c.opts.cfg.NoColor.Value)
}

func TestRoot_RegionFromEnvironment(t *testing.T) {
	c := newTestCLI(t, map[string]string{EnvRegion: "russia"})
	require.NoError(t, c.run("config", "show"))
	assert.Equal(t, "russia", c.opts.cfg.Region.Value)
	assert.Equal(t, config.SourceEnvironment, c.opts.cfg.Region.Source)

	c = newTestCLI(t, map[string]string{EnvRegion: "russia"})
	require.NoError(t, c.run("--region", "china-mainland", "config", "show"))
	assert.Equal(t, config.SourceFlag, c.opts.cfg.Region.Source)
}

func TestRoot_InvalidRegion(t *testing.T) {
	c := newTestCLI(t, nil)
	err := c.run("--region", "atlantis", "xray")
	require.ErrorIs(t, err, ErrReported)
	assert.Contains(t, c.err.String(), "atlantis")
	assert.Equal(t, 1, strings.Count(c.err.String(), "Error:"), "the error is printed once:\n%s", c.err.String())
}

func TestRoot_FromSourceExcludesSourcePath(t *testing.T) {
	c := newTestCLI(t, nil)
	err := c.run("-s", "-p", t.TempDir(), "xray")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from-source")
	assert.NotContains(t, c.err.String(), "Error:", "left for main to print")
}

func TestRoot_InvalidConfigReportsEveryKey(t *testing.T) {
	c := newTestCLI(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(c.opts.configDir, config.UserFileName), []byte(`
region = "atlantis"
download_timeout = "soon"
`), 0o644))

	err := c.run("config", "show")
	require.ErrorIs(t, err, ErrReported)
	assert.Contains(t, c.err.String(), "atlantis")
	assert.Contains(t, c.err.String(), "download_timeout")
	assert.Equal(t, 1, strings.Count(c.err.String(), "Error:"))
}

func TestBuildCmd_Flags(t *testing.T) {
	c := newTestCLI(t, nil)

	xray, _, err := c.root.Find([]string{"xray"})
	require.NoError(t, err)
	assert.Equal(t, "main", xray.Flags().Lookup("xray-version").DefValue)

	v2ray, _, err := c.root.Find([]string{"v2ray"})
	require.NoError(t, err)
	assert.Equal(t, "master", v2ray.Flags().Lookup("v2ray-version").DefValue)
	assert.Equal(t, target.DefaultGCFlags, v2ray.Flags().Lookup("gcflags").DefValue)
}

func TestCompileFlags(t *testing.T) {
	newCmd := func(args ...string) (*cobra.Command, *buildOptions) {
		opts := &buildOptions{}
		cmd := &cobra.Command{Use: "xray"}
		cmd.Flags().StringVar(&opts.gcflags, "gcflags", target.DefaultGCFlags, "")
		cmd.Flags().StringVar(&opts.ldflags, "ldflags", "", "")
		require.NoError(t, cmd.Flags().Parse(args))
		return cmd, opts
	}

	cmd, opts := newCmd()
	flags, err := opts.compileFlags(cmd, config.NewEffectiveConfig())
	require.NoError(t, err)
	assert.Equal(t, target.DefaultGCFlags, flags.GCFlags)
	assert.Nil(t, flags.LDFlags, "derived ldflags are kept")

	cmd, opts = newCmd("--ldflags", "", "--gcflags", "all:-N -l")
	flags, err = opts.compileFlags(cmd, config.NewEffectiveConfig())
	require.NoError(t, err)
	assert.Equal(t, "all:-N -l", flags.GCFlags)
	require.NotNil(t, flags.LDFlags)
	assert.Equal(t, "", *flags.LDFlags, "an explicit empty value replaces the derived flags")

	cfg := config.NewEffectiveConfig()
	cfg.GCFlags = config.StringValue{Value: "all:-l", Source: config.SourceConfigFile}
	cmd, opts = newCmd()
	flags, err = opts.compileFlags(cmd, cfg)
	require.NoError(t, err)
	assert.Equal(t, "all:-l", flags.GCFlags)
}

func TestConfigInit(t *testing.T) {
	c := newTestCLI(t, nil)
	dir := t.TempDir()

	require.NoError(t, c.run("config", "init", "--dir", dir))
	assert.FileExists(t, filepath.Join(dir, config.UserFileName))

	c = newTestCLI(t, nil)
	assert.ErrorIs(t, c.run("config", "init", "--dir", dir), ErrReported, "refuses to overwrite without --force")
	assert.Contains(t, c.err.String(), "--force")

	c = newTestCLI(t, nil)
	assert.NoError(t, c.run("config", "init", "--dir", dir, "--force"))
}

func TestVersionCmd(t *testing.T) {
	c := newTestCLI(t, nil)
	require.NoError(t, c.run("version", "--output", "yaml"))
	assert.Contains(t, c.out.String(), "name: xray-pack")
}
