package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigWriter writes a commented config file into a directory.
type ConfigWriter struct {
	dir string
}

// NewConfigWriter creates a new ConfigWriter for the given directory.
func NewConfigWriter(dir string) *ConfigWriter {
	return &ConfigWriter{dir: dir}
}

// Path returns the full path to config.toml in the directory.
func (w *ConfigWriter) Path() string {
	return filepath.Join(w.dir, UserFileName)
}

// Exists returns true if the config file already exists.
func (w *ConfigWriter) Exists() bool {
	_, err := os.Stat(w.Path())
	return err == nil
}

// Write saves cfg to the config file, creating the directory if needed.
func (w *ConfigWriter) Write(cfg *FileConfig) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", w.dir, err)
	}
	if err := os.WriteFile(w.Path(), []byte(w.render(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// render produces TOML with every known key; unset keys are commented out
// with their default.
func (w *ConfigWriter) render(cfg *FileConfig) string {
	var b strings.Builder

	b.WriteString("# xray-pack configuration file\n")
	b.WriteString("# Priority: default < config file < environment < CLI flag\n")
	b.WriteString("#\n")
	fmt.Fprintf(&b, "# Location: %s\n", w.Path())
	b.WriteString("# Override with: --config /path/to/xray-pack.toml\n\n")

	b.WriteString("# Output\n")
	writeString(&b, "output_path", cfg.OutputPath, DefaultOutputPath)
	writeBool(&b, "verbose", cfg.Verbose, false)
	writeBool(&b, "no_color", cfg.NoColor, false)
	writeBool(&b, "keep_temp", cfg.KeepTemp, true)
	b.WriteString("\n")

	b.WriteString("# Build\n")
	writeString(&b, "goos", cfg.GOOS, DefaultGOOS)
	writeString(&b, "goarch", cfg.GOARCH, DefaultGOARCH)
	writeString(&b, "gcflags", cfg.GCFlags, "all:-l=4")
	writeString(&b, "go_binary", cfg.GoBinary, "go")
	b.WriteString("\n")

	b.WriteString("# Assets\n")
	writeString(&b, "region", cfg.Region, "china-mainland")
	writeString(&b, "download_timeout", cfg.DownloadTimeout, DefaultDownloadTimeout.String())
	writeBool(&b, "parallel_downloads", cfg.ParallelDownloads, false)
	writeString(&b, "wintun_sha256", cfg.WintunSHA256, "")

	return b.String()
}

func writeString(b *strings.Builder, key string, v *string, def string) {
	if v != nil {
		fmt.Fprintf(b, "%s = %q\n", key, *v)
		return
	}
	fmt.Fprintf(b, "# %s = %q\n", key, def)
}

func writeBool(b *strings.Builder, key string, v *bool, def bool) {
	if v != nil {
		fmt.Fprintf(b, "%s = %t\n", key, *v)
		return
	}
	fmt.Fprintf(b, "# %s = %t\n", key, def)
}
