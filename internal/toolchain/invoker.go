// Package toolchain drives `go build` for the selected target and platform.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/altuslabsxyz/xray-pack/internal/output"
	"github.com/altuslabsxyz/xray-pack/internal/target"
)

// mainPackage is the package path built inside the repository.
const mainPackage = "./main"

// Request describes a single compiler invocation.
type Request struct {
	Target     target.BuildTarget
	Platform   target.Platform
	Flags      target.ResolvedFlags
	Identifier string
	RepoDir    string // working directory for the compiler
	OutputDir  string // where the binary is written
}

// Invoker runs the Go toolchain.
type Invoker struct {
	goBinary  string
	logger    output.LoggerInterface
	lookupEnv func(string) (string, bool)
	environ   func() []string
}

// NewInvoker creates an Invoker. goBinary defaults to "go".
func NewInvoker(goBinary string, logger output.LoggerInterface) *Invoker {
	if goBinary == "" {
		goBinary = "go"
	}
	if logger == nil {
		logger = output.DefaultLogger
	}
	return &Invoker{
		goBinary:  goBinary,
		logger:    logger,
		lookupEnv: os.LookupEnv,
		environ:   os.Environ,
	}
}

// Compile builds the target binary and returns its absolute path.
func (i *Invoker) Compile(ctx context.Context, req Request) (string, error) {
	name := req.Platform.BinaryFileName(req.Target)
	outPath, err := filepath.Abs(filepath.Join(req.OutputDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}

	args := buildArgs(req, outPath, i.logger.IsVerbose())
	env := buildEnv(i.environ(), i.lookupEnv, req.Platform)

	i.logger.Info("Building %s %s for %s", req.Target, req.Identifier, req.Platform)
	i.logger.Debug("gcflags: %s", req.Flags.GCFlags)
	i.logger.Debug("ldflags: %s", req.Flags.LDFlags)

	err = inDir(req.RepoDir, func() error {
		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, i.goBinary, args...)
		cmd.Env = env
		cmd.Stdout = i.logger.Writer()
		cmd.Stderr = io.MultiWriter(&stderr, i.logger.Writer())

		if runErr := cmd.Run(); runErr != nil {
			buildErr := &BuildError{
				Target:   req.Target.String(),
				ExitCode: -1,
				Stderr:   stderr.String(),
				Err:      runErr,
			}
			var exitErr *exec.ExitError
			if errors.As(runErr, &exitErr) {
				buildErr.ExitCode = exitErr.ExitCode()
			}
			i.logger.PrintCommandError(&output.CommandErrorInfo{
				Command:  i.goBinary,
				Args:     args,
				WorkDir:  req.RepoDir,
				Stderr:   buildErr.Stderr,
				ExitCode: buildErr.ExitCode,
			})
			return buildErr
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", &BuildError{Target: req.Target.String(), Err: fmt.Errorf("compiler reported success but %s is missing: %w", outPath, err)}
	}
	i.logger.Success("%s built at %s", req.Target, outPath)
	return outPath, nil
}

func buildArgs(req Request, outPath string, verbose bool) []string {
	args := []string{
		"build",
		"-o", outPath,
		"-trimpath",
		"-gcflags", req.Flags.GCFlags,
		"-ldflags", req.Flags.LDFlags,
	}
	if verbose {
		args = append(args, "-v")
	}
	if req.Target.Info().DisableVCS {
		args = append(args, "-buildvcs=false")
	}
	return append(args, mainPackage)
}

// buildEnv overrides GOOS and GOARCH, and forces CGO_ENABLED=0 unless the
// caller set CGO_ENABLED explicitly.
func buildEnv(base []string, lookupEnv func(string) (string, bool), p target.Platform) []string {
	env := make([]string, 0, len(base)+3)
	env = append(env, base...)
	env = append(env, "GOOS="+p.OS, "GOARCH="+p.Arch)
	if cgo, ok := lookupEnv("CGO_ENABLED"); ok {
		env = append(env, "CGO_ENABLED="+cgo)
	} else {
		env = append(env, "CGO_ENABLED=0")
	}
	return env
}
