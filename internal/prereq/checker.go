package prereq

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
)

// PrereqResult contains the result of a prerequisite check.
type PrereqResult struct {
	Name       string `json:"name"`
	Required   bool   `json:"required"`
	Found      bool   `json:"found"`
	Version    string `json:"version,omitempty"`
	Path       string `json:"path,omitempty"`
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// MissingDependencyError is returned when a required executable is absent.
type MissingDependencyError struct {
	common.StageError
	Name       string
	Suggestion string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s required but not found", e.Name)
}

// RecoveryHint implements common.RecoverableError.
func (e *MissingDependencyError) RecoveryHint() string {
	return e.Suggestion
}

// Checker performs prerequisite checks.
type Checker struct {
	goRequired bool
	goBinary   string
	results    []PrereqResult

	lookPath func(file string) (string, error)
	version  func(path string) (string, error)
}

// NewChecker creates a new prerequisite Checker.
func NewChecker() *Checker {
	return &Checker{
		goBinary: "go",
		lookPath: exec.LookPath,
		version:  goVersion,
	}
}

// RequireGo marks the Go toolchain as required. binary defaults to "go".
func (c *Checker) RequireGo(binary string) *Checker {
	c.goRequired = true
	if binary != "" {
		c.goBinary = binary
	}
	return c
}

// Check performs all prerequisite checks and returns the first missing
// requirement.
func (c *Checker) Check() ([]PrereqResult, error) {
	c.results = make([]PrereqResult, 0)

	if c.goRequired {
		c.checkGo()
	}

	for _, r := range c.results {
		if r.Required && !r.Found {
			return c.results, &MissingDependencyError{Name: r.Name, Suggestion: r.Suggestion}
		}
	}
	return c.results, nil
}

// Results returns the check results.
func (c *Checker) Results() []PrereqResult {
	return c.results
}

// checkGo checks if Go is installed and records its version.
func (c *Checker) checkGo() {
	result := PrereqResult{
		Name:     c.goBinary,
		Required: true,
	}

	path, err := c.lookPath(c.goBinary)
	if err != nil {
		result.Message = "Go is not installed"
		result.Suggestion = "Install Go: https://go.dev/doc/install"
		c.results = append(c.results, result)
		return
	}
	result.Path = path

	version, err := c.version(path)
	if err != nil {
		result.Message = fmt.Sprintf("Failed to get Go version: %v", err)
		result.Suggestion = "Check that " + path + " is a working Go installation"
		c.results = append(c.results, result)
		return
	}
	result.Version = version
	result.Found = true
	result.Message = fmt.Sprintf("Go %s is available", version)
	c.results = append(c.results, result)
}

// goVersion parses "go version go1.24.0 linux/amd64".
func goVersion(path string) (string, error) {
	out, err := exec.Command(path, "version").Output()
	if err != nil {
		return "", err
	}
	parts := strings.Fields(string(out))
	if len(parts) < 3 {
		return "", fmt.Errorf("unexpected output %q", strings.TrimSpace(string(out)))
	}
	return strings.TrimPrefix(parts[2], "go"), nil
}

// AllPassed returns true if all checks passed.
func (c *Checker) AllPassed() bool {
	for _, result := range c.results {
		if result.Required && !result.Found {
			return false
		}
	}
	return true
}
