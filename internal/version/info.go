// Package version provides build information and the version command.
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Build-time variables injected via ldflags:
//
//	-X github.com/altuslabsxyz/xray-pack/internal/version.Version={{.Version}}
//	-X github.com/altuslabsxyz/xray-pack/internal/version.GitCommit={{.FullCommit}}
//	-X github.com/altuslabsxyz/xray-pack/internal/version.BuildDate={{.Date}}
var (
	// Version is the semantic version of the application.
	Version = "0.1.0-dev"

	// GitCommit is the git commit hash of the build.
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built.
	BuildDate = "unknown"
)

// Info contains all version and build information.
type Info struct {
	Name      string   `json:"name" yaml:"name"`
	Version   string   `json:"version" yaml:"version"`
	GitCommit string   `json:"commit" yaml:"commit"`
	BuildDate string   `json:"build_date,omitempty" yaml:"build_date,omitempty"`
	GoVersion string   `json:"go" yaml:"go"`
	BuildDeps []string `json:"build_deps,omitempty" yaml:"build_deps,omitempty"`
}

// NewInfo creates a new Info for the named application.
func NewInfo(name string) Info {
	return Info{
		Name:      name,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: fmt.Sprintf("go version %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}
}

// WithBuildDeps populates the build dependencies from runtime/debug.
func (i Info) WithBuildDeps() Info {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}

	deps := make([]string, 0, len(buildInfo.Deps))
	for _, dep := range buildInfo.Deps {
		depStr := fmt.Sprintf("%s@%s", dep.Path, dep.Version)
		if dep.Replace != nil {
			depStr = fmt.Sprintf("%s@%s => %s@%s", dep.Path, dep.Version, dep.Replace.Path, dep.Replace.Version)
		}
		deps = append(deps, depStr)
	}
	sort.Strings(deps)
	i.BuildDeps = deps
	return i
}

// String returns a formatted string representation of the version info.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s version %s\n", i.Name, i.Version)
	fmt.Fprintf(&sb, "  commit:     %s\n", i.GitCommit)
	fmt.Fprintf(&sb, "  build date: %s\n", i.BuildDate)
	fmt.Fprintf(&sb, "  go:         %s\n", i.GoVersion)
	return sb.String()
}

// YAML returns the version info as YAML.
func (i Info) YAML() (string, error) {
	data, err := yaml.Marshal(i)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// JSON returns the version info as an indented JSON string.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// Render formats the info as "text", "json" or "yaml".
func (i Info) Render(format string) (string, error) {
	switch format {
	case "", "text":
		return i.String(), nil
	case "json":
		return i.JSON()
	case "yaml":
		return i.YAML()
	default:
		return "", fmt.Errorf("unknown output format %q (must be text, json or yaml)", format)
	}
}

// NewCmd creates a version command for the named application.
func NewCmd(name string) *cobra.Command {
	var (
		long   bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := NewInfo(name)
			if long {
				info = info.WithBuildDeps()
			}
			out, err := info.Render(format)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "Include build dependencies")
	cmd.Flags().StringVar(&format, "output", "text", "Output format: text, json or yaml")

	return cmd
}
