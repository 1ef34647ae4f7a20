package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Logger provides colored output functions for CLI feedback.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	noColor bool
	verbose bool
}

// NewLogger creates a new Logger instance writing to stdout and stderr.
func NewLogger() *Logger {
	return &Logger{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// NewLoggerWithWriters creates a Logger with explicit writers. Colors are
// disabled because the writers are usually buffers.
func NewLoggerWithWriters(out, errOut io.Writer) *Logger {
	return &Logger{
		out:     out,
		errOut:  errOut,
		noColor: true,
	}
}

// SetNoColor disables colored output.
func (l *Logger) SetNoColor(noColor bool) {
	l.noColor = noColor
	color.NoColor = noColor
}

// SetVerbose enables verbose logging.
func (l *Logger) SetVerbose(verbose bool) {
	l.verbose = verbose
}

// IsVerbose reports whether debug output is enabled.
func (l *Logger) IsVerbose() bool {
	return l.verbose
}

// Writer returns the standard output writer. Subprocess output is streamed
// here when verbose, and discarded otherwise.
func (l *Logger) Writer() io.Writer {
	if !l.verbose {
		return io.Discard
	}
	return l.out
}

func (l *Logger) printf(w io.Writer, c *color.Color, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c == nil || l.noColor {
		fmt.Fprintf(w, format, args...)
		return
	}
	c.Fprintf(w, format, args...)
}

// Info prints an informational message in default color.
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(l.out, nil, format+"\n", args...)
}

// Warn prints a warning message in yellow.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(l.errOut, color.New(color.FgYellow), "Warning: "+format+"\n", args...)
}

// Error prints an error message in red.
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(l.errOut, color.New(color.FgRed), "Error: "+format+"\n", args...)
}

// Success prints a success message in green with checkmark.
func (l *Logger) Success(format string, args ...interface{}) {
	l.printf(l.out, color.New(color.FgGreen), "✓ "+format+"\n", args...)
}

// Debug prints a debug message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.printf(l.out, color.New(color.FgHiBlack), "[DEBUG] "+format+"\n", args...)
}

// PrintCommandError prints the details of a failed external command.
func (l *Logger) PrintCommandError(info *CommandErrorInfo) {
	if info == nil {
		return
	}
	red := color.New(color.FgRed)
	l.printf(l.errOut, nil, "%s\n", RedSeparator())
	l.printf(l.errOut, red, "Command failed (exit code %d)\n", info.ExitCode)
	if l.verbose && info.Command != "" {
		l.printf(l.errOut, nil, "  command: %s %v\n", info.Command, info.Args)
		l.printf(l.errOut, nil, "  workdir: %s\n", info.WorkDir)
	}
	if info.Stderr != "" {
		l.printf(l.errOut, nil, "%s\n", info.Stderr)
	}
	l.printf(l.errOut, nil, "%s\n", RedSeparator())
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DefaultLogger is the package-level default logger instance.
var DefaultLogger = NewLogger()
