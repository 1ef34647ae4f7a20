package config

// FileConfig represents the raw xray-pack.toml file contents.
// All fields are pointers to distinguish "not set" from "set to zero/false".
type FileConfig struct {
	// Output
	OutputPath *string `toml:"output_path"`
	NoColor    *bool   `toml:"no_color"`
	Verbose    *bool   `toml:"verbose"`
	KeepTemp   *bool   `toml:"keep_temp"`

	// Build
	GOOS     *string `toml:"goos"`
	GOARCH   *string `toml:"goarch"`
	GCFlags  *string `toml:"gcflags"`
	GoBinary *string `toml:"go_binary"`

	// Assets
	Region            *string `toml:"region"`
	DownloadTimeout   *string `toml:"download_timeout"` // Go duration, e.g. "10m"
	ParallelDownloads *bool   `toml:"parallel_downloads"`
	WintunSHA256      *string `toml:"wintun_sha256"`
}

// IsEmpty returns true if no configuration values are set.
func (f *FileConfig) IsEmpty() bool {
	return f.OutputPath == nil &&
		f.NoColor == nil &&
		f.Verbose == nil &&
		f.KeepTemp == nil &&
		f.GOOS == nil &&
		f.GOARCH == nil &&
		f.GCFlags == nil &&
		f.GoBinary == nil &&
		f.Region == nil &&
		f.DownloadTimeout == nil &&
		f.ParallelDownloads == nil &&
		f.WintunSHA256 == nil
}

// mergeFileConfig merges src into dst. Non-nil values in src overwrite dst.
func mergeFileConfig(dst, src *FileConfig) {
	if src.OutputPath != nil {
		dst.OutputPath = src.OutputPath
	}
	if src.NoColor != nil {
		dst.NoColor = src.NoColor
	}
	if src.Verbose != nil {
		dst.Verbose = src.Verbose
	}
	if src.KeepTemp != nil {
		dst.KeepTemp = src.KeepTemp
	}
	if src.GOOS != nil {
		dst.GOOS = src.GOOS
	}
	if src.GOARCH != nil {
		dst.GOARCH = src.GOARCH
	}
	if src.GCFlags != nil {
		dst.GCFlags = src.GCFlags
	}
	if src.GoBinary != nil {
		dst.GoBinary = src.GoBinary
	}
	if src.Region != nil {
		dst.Region = src.Region
	}
	if src.DownloadTimeout != nil {
		dst.DownloadTimeout = src.DownloadTimeout
	}
	if src.ParallelDownloads != nil {
		dst.ParallelDownloads = src.ParallelDownloads
	}
	if src.WintunSHA256 != nil {
		dst.WintunSHA256 = src.WintunSHA256
	}
}
