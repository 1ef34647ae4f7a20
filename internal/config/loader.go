package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/altuslabsxyz/xray-pack/internal/output"
)

const (
	// LocalFileName is looked up in the current directory.
	LocalFileName = "xray-pack.toml"
	// UserFileName is looked up in the user config directory.
	UserFileName = "config.toml"
)

// DefaultConfigDir returns $XDG_CONFIG_HOME/xray-pack, falling back to the
// platform user config directory.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "xray-pack")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "xray-pack")
	}
	return ""
}

// ConfigLoader is responsible for loading and merging configuration.
type ConfigLoader struct {
	configDir  string
	workDir    string
	configPath string // Explicit --config path
	logger     output.LoggerInterface
	loaded     []string
}

// NewConfigLoader creates a new ConfigLoader. configDir holds the user-level
// config file and may be empty.
func NewConfigLoader(configDir, configPath string, logger output.LoggerInterface) *ConfigLoader {
	return &ConfigLoader{
		configDir:  configDir,
		workDir:    ".",
		configPath: configPath,
		logger:     logger,
	}
}

// candidateFiles lists existing config files in increasing priority:
// user config dir, current directory, explicit --config.
func (l *ConfigLoader) candidateFiles() ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		files = append(files, path)
	}

	if l.configDir != "" {
		userPath := filepath.Join(l.configDir, UserFileName)
		if _, err := os.Stat(userPath); err == nil {
			add(userPath)
		}
	}

	localPath := filepath.Join(l.workDir, LocalFileName)
	if _, err := os.Stat(localPath); err == nil {
		add(localPath)
	}

	if l.configPath != "" {
		if _, err := os.Stat(l.configPath); err != nil {
			return nil, fmt.Errorf("config file not found: %s", l.configPath)
		}
		add(l.configPath)
	}
	return files, nil
}

// LoadFileConfig loads and parses config files, merging them in priority order.
// Returns the merged FileConfig and the highest priority file that was read.
func (l *ConfigLoader) LoadFileConfig() (*FileConfig, string, error) {
	l.loaded = nil
	files, err := l.candidateFiles()
	if err != nil {
		return nil, "", err
	}
	if len(files) == 0 {
		return &FileConfig{}, "", nil
	}

	var merged FileConfig
	var primaryFile string
	for _, path := range files {
		cfg, err := l.parseFile(path)
		if err != nil {
			return nil, "", err
		}
		mergeFileConfig(&merged, cfg)
		primaryFile = path
		l.loaded = append(l.loaded, path)
	}

	if err := ValidateFileConfig(&merged); err != nil {
		return nil, "", fmt.Errorf("config validation failed: %w", err)
	}
	return &merged, primaryFile, nil
}

// parseFile decodes one file. Unknown keys are reported as warnings.
func (l *ConfigLoader) parseFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err = dec.Decode(&cfg)

	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		for _, e := range strictErr.Errors {
			l.warn("Unknown config key in %s: %s", path, strings.Join(e.Key(), "."))
		}
		cfg = FileConfig{}
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("failed to parse config file %s (line %d, column %d): %w", path, row, col, err)
		}
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

func (l *ConfigLoader) warn(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Warn(format, args...)
	}
}

// Loaded returns the files read by the last LoadFileConfig, lowest priority
// first.
func (l *ConfigLoader) Loaded() []string {
	return l.loaded
}
