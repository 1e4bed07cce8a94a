package usecase

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/llvmpack/pkg/domain/interfaces"
	"github.com/m-mizutani/llvmpack/pkg/domain/model"
)

type builder struct {
	buildTool interfaces.BuildTool
}

// NewBuilder creates a Builder driving the given build tool
func NewBuilder(buildTool interfaces.BuildTool) interfaces.Builder {
	return &builder{buildTool: buildTool}
}

// Build configures the source tree into ws.BuildDir and installs it into
// ws.InstallDir. Both directories are created if absent and reused across
// runs, so rebuilds are incremental. Any build failure is permanent for this
// run.
func (uc *builder) Build(ctx context.Context, ws model.Workspace, sourceDir string) error {
	logger := ctxlog.From(ctx)
	logger.Info("Building LLVM", "source", sourceDir, "build_dir", ws.BuildDir, "install_dir", ws.InstallDir)

	for _, dir := range []string{ws.BuildDir, ws.InstallDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return goerr.Wrap(err, "failed to create build directory", goerr.V("dir", dir))
		}
	}

	if err := uc.buildTool.Configure(ctx, ws.BuildDir, ws.InstallDir, sourceDir); err != nil {
		return goerr.Wrap(err, "failed to configure build")
	}
	if err := uc.buildTool.Install(ctx, ws.BuildDir); err != nil {
		return goerr.Wrap(err, "failed to build and install")
	}
	return nil
}
