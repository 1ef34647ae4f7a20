package output

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_DebugGatedByVerbose(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerWithWriters(&out, &errOut)

	l.Debug("hidden %d", 1)
	assert.Empty(t, out.String())

	l.SetVerbose(true)
	l.Debug("shown %d", 2)
	assert.Contains(t, out.String(), "[DEBUG] shown 2")
}

func TestLogger_WarnAndErrorGoToErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerWithWriters(&out, &errOut)

	l.Warn("disk %s", "low")
	l.Error("boom")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Warning: disk low")
	assert.Contains(t, errOut.String(), "Error: boom")
}

func TestLogger_WriterDiscardsWhenQuiet(t *testing.T) {
	var out bytes.Buffer
	l := NewLoggerWithWriters(&out, io.Discard)

	assert.Equal(t, io.Discard, l.Writer())

	l.SetVerbose(true)
	assert.Equal(t, &out, l.Writer())
}

func TestLogger_PrintCommandError(t *testing.T) {
	var errOut bytes.Buffer
	l := NewLoggerWithWriters(io.Discard, &errOut)

	l.PrintCommandError(&CommandErrorInfo{
		Command:  "go",
		Args:     []string{"build"},
		Stderr:   "main.go:1: syntax error",
		ExitCode: 2,
	})

	assert.Contains(t, errOut.String(), "exit code 2")
	assert.Contains(t, errOut.String(), "main.go:1: syntax error")
	assert.NotContains(t, errOut.String(), "command: go")
}

func TestProgress_Stage(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(3)
	p.SetOutput(&out)
	p.SetNoColor(true)

	p.Stage("Resolving revision")
	p.Stage("Compiling")

	assert.Equal(t, "[1/3] Resolving revision...\n[2/3] Compiling...\n", out.String())
	assert.Equal(t, 2, p.Current())
	assert.Equal(t, 3, p.Total())
}
