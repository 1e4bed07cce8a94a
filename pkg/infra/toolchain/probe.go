package toolchain

import (
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/llvmpack/pkg/domain/interfaces"
)

// targetPattern matches the "Target: <triple>" line clang prints in its
// driver diagnostics (clang -###).
var targetPattern = regexp.MustCompile(`^Target: (.*)$`)

type prober struct {
	compiler string // compiler binary name under <install>/bin
}

// Option configures the prober
type Option func(*prober)

// WithCompiler overrides the compiler binary name (default "clang")
func WithCompiler(name string) Option {
	return func(p *prober) {
		p.compiler = name
	}
}

// New creates a TargetProber that runs the installed compiler in dry-run
// mode and scrapes the declared target triple from its diagnostics.
func New(opts ...Option) interfaces.TargetProber {
	p := &prober{compiler: "clang"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DetectTarget runs <installDir>/bin/<compiler> -### and returns the target
// triple from its combined output. A missing Target line is a hard failure
// since the bundle name depends on it.
func (p *prober) DetectTarget(ctx context.Context, installDir string) (string, error) {
	logger := ctxlog.From(ctx)

	bin := filepath.Join(installDir, "bin", p.compiler)
	cmd := exec.CommandContext(ctx, bin, "-###")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", goerr.Wrap(err, "failed to run compiler for target probe",
			goerr.V("binary", bin), goerr.V("output", string(output)))
	}

	target, ok := ParseTarget(string(output))
	if !ok {
		return "", goerr.New("cannot deduce LLVM target",
			goerr.V("binary", bin), goerr.V("output", string(output)))
	}

	logger.Info("Detected target triple", "target", target)
	return target, nil
}

// ParseTarget scans compiler diagnostic output for the first Target line and
// returns its value.
func ParseTarget(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		if m := targetPattern.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
			return m[1], true
		}
	}
	return "", false
}
