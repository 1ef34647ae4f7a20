package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Progress prints stage markers for the packaging pipeline.
type Progress struct {
	out     io.Writer
	total   int
	current int
	noColor bool
}

// NewProgress creates a new Progress instance with the given total steps.
func NewProgress(total int) *Progress {
	return &Progress{
		out:   os.Stdout,
		total: total,
	}
}

// SetOutput redirects progress output.
func (p *Progress) SetOutput(w io.Writer) {
	p.out = w
}

// SetNoColor disables colored output.
func (p *Progress) SetNoColor(noColor bool) {
	p.noColor = noColor
}

// Stage prints a progress stage message in format [N/M] Description...
func (p *Progress) Stage(description string) {
	p.current++
	line := fmt.Sprintf("[%d/%d] %s...\n", p.current, p.total, description)
	if p.noColor {
		fmt.Fprint(p.out, line)
		return
	}
	color.New(color.FgCyan).Fprint(p.out, line)
}

// Current returns the current step number.
func (p *Progress) Current() int {
	return p.current
}

// Total returns the total number of steps.
func (p *Progress) Total() int {
	return p.total
}
