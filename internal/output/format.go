package output

import (
	"strings"

	"github.com/fatih/color"
)

// Visual separator constants for error output formatting.
const (
	SeparatorWidth = 60
	SeparatorChar  = "─"
)

// Separator returns a separator line of the default width.
func Separator() string {
	return strings.Repeat(SeparatorChar, SeparatorWidth)
}

// RedSeparator returns a red separator line for errors.
func RedSeparator() string {
	return color.New(color.FgRed).Sprint(Separator())
}
