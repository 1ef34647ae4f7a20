// Package target defines the closed set of buildable projects, target
// platforms and geo-data regions, along with the flags derived from them.
package target

import (
	"fmt"
	"sort"
	"strings"
)

// BuildTarget identifies which project variant to build.
type BuildTarget int

const (
	// Xray builds XTLS/Xray-core.
	Xray BuildTarget = iota
	// V2ray builds v2fly/v2ray-core.
	V2ray
)

// Info holds the static properties of a BuildTarget.
type Info struct {
	Name           string // CLI name
	DisplayName    string // e.g. "Xray-core", also the clone directory name
	RepoURL        string
	DefaultVersion string
	BinaryName     string
	ProjectName    string // archive name prefix
	// BuildSymbol receives the build identifier through -X. Empty means the
	// identifier is not embedded.
	BuildSymbol string
	DisableVCS  bool
	// ExtraFiles are repository-relative files shipped alongside the binary.
	ExtraFiles []string
}

var targets = map[BuildTarget]Info{
	Xray: {
		Name:           "xray",
		DisplayName:    "Xray-core",
		RepoURL:        "https://github.com/XTLS/Xray-core.git",
		DefaultVersion: "main",
		BinaryName:     "xray",
		ProjectName:    "xray",
		BuildSymbol:    "github.com/xtls/xray-core/core.build",
		DisableVCS:     true,
	},
	V2ray: {
		Name:           "v2ray",
		DisplayName:    "v2ray-core",
		RepoURL:        "https://github.com/v2fly/v2ray-core.git",
		DefaultVersion: "master",
		BinaryName:     "v2ray",
		ProjectName:    "v2ray",
		ExtraFiles: []string{
			"release/config/systemd/system/v2ray.service",
			"release/config/systemd/system/v2ray@.service",
		},
	},
}

// Info returns the static properties of t.
func (t BuildTarget) Info() Info {
	return targets[t]
}

func (t BuildTarget) String() string {
	if info, ok := targets[t]; ok {
		return info.DisplayName
	}
	return fmt.Sprintf("BuildTarget(%d)", int(t))
}

// ParseBuildTarget converts a CLI name into a BuildTarget.
func ParseBuildTarget(name string) (BuildTarget, error) {
	for t, info := range targets {
		if info.Name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown build target %q", name)
}

// Region selects the geo-data distribution.
type Region string

const (
	ChinaMainland Region = "china-mainland"
	Russia        Region = "russia"
	Iran          Region = "iran"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = ChinaMainland

var regionURLs = map[Region]string{
	ChinaMainland: "https://raw.githubusercontent.com/Loyalsoldier/v2ray-rules-dat/release/",
	Russia:        "https://raw.githubusercontent.com/runetfreedom/russia-v2ray-rules-dat/release/",
	Iran:          "https://raw.githubusercontent.com/Chocolate4U/Iran-v2ray-rules/release/",
}

// BaseURL returns the URL prefix that geoip.dat and geosite.dat are appended to.
func (r Region) BaseURL() string {
	return regionURLs[r]
}

// ParseRegion validates a region name.
func ParseRegion(name string) (Region, error) {
	r := Region(name)
	if _, ok := regionURLs[r]; !ok {
		return "", fmt.Errorf("unknown region %q (must be one of: %s)", name, strings.Join(RegionNames(), ", "))
	}
	return r, nil
}

// RegionNames lists the supported regions in sorted order.
func RegionNames() []string {
	names := make([]string, 0, len(regionURLs))
	for r := range regionURLs {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return names
}
