package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveName(t *testing.T) {
	tests := []struct {
		target   BuildTarget
		id       string
		platform Platform
		want     string
	}{
		{Xray, "v1.8.24", Platform{"linux", "amd64"}, "xray-v1.8.24-amd64-linux.zip"},
		{Xray, "v1.8.24-3-gabcdef0", Platform{"windows", "arm64"}, "xray-v1.8.24-3-gabcdef0-arm64-windows.zip"},
		{V2ray, "0123456789abcdef0123456789abcdef01234567", Platform{"darwin", "arm64"}, "v2ray-0123456789abcdef0123456789abcdef01234567-arm64-darwin.zip"},
		{V2ray, "v5.16.1", Platform{"freebsd", "386"}, "v2ray-v5.16.1-386-freebsd.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchiveName(tt.target, tt.id, tt.platform))
		})
	}
}

func TestPlatform_BinaryFileName(t *testing.T) {
	assert.Equal(t, "xray", Platform{"linux", "amd64"}.BinaryFileName(Xray))
	assert.Equal(t, "xray.exe", Platform{"windows", "amd64"}.BinaryFileName(Xray))
	assert.Equal(t, "v2ray.exe", Platform{"windows", "arm"}.BinaryFileName(V2ray))
	assert.Equal(t, "v2ray", Platform{"darwin", "arm64"}.BinaryFileName(V2ray))
}

func TestPlatform_WintunArch(t *testing.T) {
	for goarch, want := range map[string]string{"386": "x86", "amd64": "amd64", "arm": "arm", "arm64": "arm64"} {
		got, err := Platform{"windows", goarch}.WintunArch()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Platform{"windows", "riscv64"}.WintunArch()
	assert.Error(t, err)
}

func TestCompileFlags_Resolve(t *testing.T) {
	t.Run("xray default embeds identifier", func(t *testing.T) {
		got := CompileFlags{}.Resolve(Xray, "v1.8.24")
		assert.Equal(t, DefaultGCFlags, got.GCFlags)
		assert.Equal(t, "-X github.com/xtls/xray-core/core.build=v1.8.24 -s -w -buildid=", got.LDFlags)
	})

	t.Run("v2ray default only strips", func(t *testing.T) {
		got := CompileFlags{GCFlags: "all=-N -l"}.Resolve(V2ray, "v5.16.1")
		assert.Equal(t, "all=-N -l", got.GCFlags)
		assert.Equal(t, "-s -w -buildid=", got.LDFlags)
	})

	t.Run("override is used verbatim", func(t *testing.T) {
		custom := "-X main.version=dev"
		got := CompileFlags{LDFlags: &custom}.Resolve(Xray, "v1.8.24")
		assert.Equal(t, custom, got.LDFlags)
	})

	t.Run("empty override is still an override", func(t *testing.T) {
		empty := ""
		got := CompileFlags{LDFlags: &empty}.Resolve(Xray, "v1.8.24")
		assert.Equal(t, "", got.LDFlags)
	})
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("russia")
	require.NoError(t, err)
	assert.Equal(t, Russia, r)
	assert.Equal(t, "https://raw.githubusercontent.com/runetfreedom/russia-v2ray-rules-dat/release/", r.BaseURL())

	_, err = ParseRegion("atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "china-mainland, iran, russia")
}

func TestParseBuildTarget(t *testing.T) {
	bt, err := ParseBuildTarget("v2ray")
	require.NoError(t, err)
	assert.Equal(t, V2ray, bt)
	assert.Equal(t, "v2ray-core", bt.String())

	_, err = ParseBuildTarget("sing-box")
	assert.Error(t, err)
}
