package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/altuslabsxyz/xray-pack/internal/target"
)

// Validate validates the EffectiveConfig values. Every invalid value is
// reported.
func (c *EffectiveConfig) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(c.GOOS.Value) == "" {
		result = multierror.Append(result, fmt.Errorf("invalid goos: must not be empty"))
	}
	if strings.TrimSpace(c.GOARCH.Value) == "" {
		result = multierror.Append(result, fmt.Errorf("invalid goarch: must not be empty"))
	}
	if _, err := target.ParseRegion(c.Region.Value); err != nil {
		result = multierror.Append(result, err)
	}
	if c.DownloadTimeout.Value <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid download_timeout: %s (must be positive)", c.DownloadTimeout.Value))
	}
	if c.OutputPath.Value == "" {
		result = multierror.Append(result, fmt.Errorf("invalid output_path: must not be empty"))
	}
	return flatten(result)
}

// ValidateFileConfig validates the FileConfig values before merging.
// This is called when loading the config file to provide early error messages.
func ValidateFileConfig(cfg *FileConfig) error {
	if cfg == nil {
		return nil
	}

	var result *multierror.Error
	if cfg.Region != nil {
		if _, err := target.ParseRegion(*cfg.Region); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid region in config file: %w", err))
		}
	}

	if cfg.GOOS != nil && strings.TrimSpace(*cfg.GOOS) == "" {
		result = multierror.Append(result, fmt.Errorf("invalid goos in config file: must not be empty"))
	}
	if cfg.GOARCH != nil && strings.TrimSpace(*cfg.GOARCH) == "" {
		result = multierror.Append(result, fmt.Errorf("invalid goarch in config file: must not be empty"))
	}

	if cfg.DownloadTimeout != nil {
		d, err := time.ParseDuration(*cfg.DownloadTimeout)
		switch {
		case err != nil:
			result = multierror.Append(result, fmt.Errorf("invalid download_timeout in config file: %w", err))
		case d <= 0:
			result = multierror.Append(result, fmt.Errorf("invalid download_timeout in config file: %s (must be positive)", *cfg.DownloadTimeout))
		}
	}

	if cfg.WintunSHA256 != nil {
		sum := *cfg.WintunSHA256
		if len(sum) != 64 {
			result = multierror.Append(result, fmt.Errorf("invalid wintun_sha256 in config file: expected 64 hex characters, got %d", len(sum)))
		} else if _, err := hex.DecodeString(sum); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid wintun_sha256 in config file: %w", err))
		}
	}

	return flatten(result)
}

// flatten returns a lone error unwrapped and lists several one per line.
func flatten(result *multierror.Error) error {
	if result == nil {
		return nil
	}
	if len(result.Errors) == 1 {
		return result.Errors[0]
	}
	result.ErrorFormat = func(errs []error) string {
		lines := make([]string, len(errs))
		for i, err := range errs {
			lines[i] = "  - " + err.Error()
		}
		return fmt.Sprintf("%d configuration errors:\n%s", len(errs), strings.Join(lines, "\n"))
	}
	return result
}
