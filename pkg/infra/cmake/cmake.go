package cmake

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/llvmpack/pkg/domain/interfaces"
)

type buildTool struct {
	binary string
	stdout io.Writer
	stderr io.Writer
}

// Option configures the build tool
type Option func(*buildTool)

// WithBinary overrides the cmake executable name or path
func WithBinary(path string) Option {
	return func(b *buildTool) {
		b.binary = path
	}
}

// WithOutput redirects the build system's stdout and stderr
func WithOutput(stdout, stderr io.Writer) Option {
	return func(b *buildTool) {
		b.stdout = stdout
		b.stderr = stderr
	}
}

// New creates a BuildTool that drives cmake
func New(opts ...Option) interfaces.BuildTool {
	b := &buildTool{
		binary: "cmake",
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ConfigureArgs returns the fixed cmake configuration flag set for an LLVM
// release build: all target backends, no tests/examples/docs, and optional
// system libraries disabled. See https://llvm.org/docs/CMake.html for the
// LLVM-specific variables.
func ConfigureArgs(installDir, sourceDir string) []string {
	return []string{
		"-G", "Unix Makefiles",
		// A release build implies LLVM_ENABLE_ASSERTIONS=OFF.
		"-DCMAKE_BUILD_TYPE=Release",
		"-DCMAKE_INSTALL_PREFIX=" + installDir,
		"-DLLVM_TARGETS_TO_BUILD=all",
		"-DLLVM_INCLUDE_EXAMPLES=OFF",
		"-DLLVM_INCLUDE_TESTS=OFF",
		"-DLLVM_INCLUDE_GO_TESTS=OFF",
		"-DLLVM_INCLUDE_DOCS=OFF",
		"-DLLVM_ENABLE_TERMINFO=OFF",
		"-DLLVM_ENABLE_ZLIB=OFF",
		"-DLLVM_ENABLE_LIBEDIT=OFF",
		"-DLLVM_ENABLE_LIBXML2=OFF",
		sourceDir,
	}
}

// Configure generates build files in buildDir for sourceDir. The command
// runs with its working directory set to buildDir, so the process-wide
// working directory is never changed.
func (b *buildTool) Configure(ctx context.Context, buildDir, installDir, sourceDir string) error {
	return b.run(ctx, buildDir, ConfigureArgs(installDir, sourceDir)...)
}

// Install builds and installs the configured tree
func (b *buildTool) Install(ctx context.Context, buildDir string) error {
	return b.run(ctx, buildDir, "--build", ".", "--target", "install")
}

func (b *buildTool) run(ctx context.Context, dir string, args ...string) error {
	logger := ctxlog.From(ctx)

	bin, err := exec.LookPath(b.binary)
	if err != nil {
		return goerr.Wrap(err, "build tool not found", goerr.V("binary", b.binary))
	}

	logger.Info("Running build tool", "binary", bin, "dir", dir, "args", args)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr

	if err := cmd.Run(); err != nil {
		return goerr.Wrap(err, "build tool failed",
			goerr.V("binary", bin), goerr.V("args", args))
	}
	return nil
}
