package config

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/altuslabsxyz/xray-pack/internal/target"
)

// Defaults shared by flags and the effective configuration.
const (
	DefaultOutputPath      = "dist"
	DefaultGOOS            = "linux"
	DefaultGOARCH          = "amd64"
	DefaultDownloadTimeout = 10 * time.Minute
)

// EffectiveConfig represents the final merged configuration after applying priority chain.
type EffectiveConfig struct {
	OutputPath StringValue
	NoColor    BoolValue
	Verbose    BoolValue
	KeepTemp   BoolValue

	GOOS     StringValue
	GOARCH   StringValue
	GCFlags  StringValue
	GoBinary StringValue

	Region            StringValue
	DownloadTimeout   DurationValue
	ParallelDownloads BoolValue
	WintunSHA256      StringValue // empty disables verification

	// Path to the highest priority config file (empty if none)
	ConfigFilePath string
}

// NewEffectiveConfig creates a new EffectiveConfig with default values.
func NewEffectiveConfig() *EffectiveConfig {
	return &EffectiveConfig{
		OutputPath:        NewStringValue(DefaultOutputPath),
		NoColor:           NewBoolValue(false),
		Verbose:           NewBoolValue(false),
		KeepTemp:          NewBoolValue(true),
		GOOS:              NewStringValue(DefaultGOOS),
		GOARCH:            NewStringValue(DefaultGOARCH),
		GCFlags:           NewStringValue(target.DefaultGCFlags),
		GoBinary:          NewStringValue("go"),
		Region:            NewStringValue(string(target.DefaultRegion)),
		DownloadTimeout:   NewDurationValue(DefaultDownloadTimeout),
		ParallelDownloads: NewBoolValue(false),
		WintunSHA256:      NewStringValue(""),
	}
}

// ApplyFile overlays the values set in cfg.
func (c *EffectiveConfig) ApplyFile(cfg *FileConfig, path string) {
	if cfg == nil {
		return
	}
	c.ConfigFilePath = path
	setString(&c.OutputPath, cfg.OutputPath)
	setBool(&c.NoColor, cfg.NoColor)
	setBool(&c.Verbose, cfg.Verbose)
	setBool(&c.KeepTemp, cfg.KeepTemp)
	setString(&c.GOOS, cfg.GOOS)
	setString(&c.GOARCH, cfg.GOARCH)
	setString(&c.GCFlags, cfg.GCFlags)
	setString(&c.GoBinary, cfg.GoBinary)
	setString(&c.Region, cfg.Region)
	setBool(&c.ParallelDownloads, cfg.ParallelDownloads)
	setString(&c.WintunSHA256, cfg.WintunSHA256)
	if cfg.DownloadTimeout != nil {
		// ValidateFileConfig already rejected unparseable values
		if d, err := time.ParseDuration(*cfg.DownloadTimeout); err == nil {
			c.DownloadTimeout = DurationValue{Value: d, Source: SourceConfigFile}
		}
	}
}

// WintunChecksum returns the pinned wintun checksum, or nil when unset.
func (c *EffectiveConfig) WintunChecksum() *string {
	if c.WintunSHA256.Value == "" {
		return nil
	}
	sum := c.WintunSHA256.Value
	return &sum
}

// Platform returns the configured target platform.
func (c *EffectiveConfig) Platform() target.Platform {
	return target.Platform{OS: c.GOOS.Value, Arch: c.GOARCH.Value}
}

func setString(dst *StringValue, v *string) {
	if v != nil {
		*dst = StringValue{Value: *v, Source: SourceConfigFile}
	}
}

func setBool(dst *BoolValue, v *bool) {
	if v != nil {
		*dst = BoolValue{Value: *v, Source: SourceConfigFile}
	}
}

// ToTable writes the configuration as a formatted table.
func (c *EffectiveConfig) ToTable(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	fmt.Fprintf(tw, "output_path\t%s\t%s\n", c.OutputPath.Value, c.OutputPath.Source)
	fmt.Fprintf(tw, "no_color\t%t\t%s\n", c.NoColor.Value, c.NoColor.Source)
	fmt.Fprintf(tw, "verbose\t%t\t%s\n", c.Verbose.Value, c.Verbose.Source)
	fmt.Fprintf(tw, "keep_temp\t%t\t%s\n", c.KeepTemp.Value, c.KeepTemp.Source)
	fmt.Fprintf(tw, "goos\t%s\t%s\n", c.GOOS.Value, c.GOOS.Source)
	fmt.Fprintf(tw, "goarch\t%s\t%s\n", c.GOARCH.Value, c.GOARCH.Source)
	fmt.Fprintf(tw, "gcflags\t%s\t%s\n", c.GCFlags.Value, c.GCFlags.Source)
	fmt.Fprintf(tw, "go_binary\t%s\t%s\n", c.GoBinary.Value, c.GoBinary.Source)
	fmt.Fprintf(tw, "region\t%s\t%s\n", c.Region.Value, c.Region.Source)
	fmt.Fprintf(tw, "download_timeout\t%s\t%s\n", c.DownloadTimeout.Value, c.DownloadTimeout.Source)
	fmt.Fprintf(tw, "parallel_downloads\t%t\t%s\n", c.ParallelDownloads.Value, c.ParallelDownloads.Source)
	fmt.Fprintf(tw, "wintun_sha256\t%s\t%s\n", displayChecksum(c.WintunSHA256.Value), c.WintunSHA256.Source)
	if c.ConfigFilePath != "" {
		fmt.Fprintf(tw, "\nconfig file: %s\n", c.ConfigFilePath)
	}
	tw.Flush()
}

func displayChecksum(sum string) string {
	if sum == "" {
		return "(not set)"
	}
	return sum
}
