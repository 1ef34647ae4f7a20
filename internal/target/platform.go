package target

import "fmt"

const windowsOS = "windows"

// Platform is a GOOS/GOARCH pair.
type Platform struct {
	OS   string
	Arch string
}

func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// IsWindows reports whether the platform belongs to the Windows family.
func (p Platform) IsWindows() bool {
	return p.OS == windowsOS
}

// ExecutableSuffix returns ".exe" on Windows and "" elsewhere.
func (p Platform) ExecutableSuffix() string {
	if p.IsWindows() {
		return ".exe"
	}
	return ""
}

// BinaryFileName returns the platform-specific file name of the target binary.
func (p Platform) BinaryFileName(t BuildTarget) string {
	return t.Info().BinaryName + p.ExecutableSuffix()
}

var wintunArch = map[string]string{
	"386":   "x86",
	"amd64": "amd64",
	"arm":   "arm",
	"arm64": "arm64",
}

// WintunArch maps GOARCH to the directory name used inside the wintun archive.
func (p Platform) WintunArch() (string, error) {
	arch, ok := wintunArch[p.Arch]
	if !ok {
		return "", fmt.Errorf("no wintun driver available for architecture %q", p.Arch)
	}
	return arch, nil
}

// ArchiveName returns "{project}-{identifier}-{arch}-{os}.zip".
func ArchiveName(t BuildTarget, identifier string, p Platform) string {
	return fmt.Sprintf("%s-%s-%s-%s.zip", t.Info().ProjectName, identifier, p.Arch, p.OS)
}
