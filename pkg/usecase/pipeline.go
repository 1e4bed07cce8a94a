package usecase

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/llvmpack/pkg/domain/interfaces"
	"github.com/m-mizutani/llvmpack/pkg/domain/model"
)

type pipeline struct {
	workspace model.Workspace
	fetcher   interfaces.SourceFetcher
	builder   interfaces.Builder
	prober    interfaces.TargetProber
	bundler   interfaces.Bundler
	publisher interfaces.Publisher
}

// NewPipeline wires the packaging stages together over a workspace
func NewPipeline(
	workspace model.Workspace,
	fetcher interfaces.SourceFetcher,
	builder interfaces.Builder,
	prober interfaces.TargetProber,
	bundler interfaces.Bundler,
	publisher interfaces.Publisher,
) interfaces.Pipeline {
	return &pipeline{
		workspace: workspace,
		fetcher:   fetcher,
		builder:   builder,
		prober:    prober,
		bundler:   bundler,
		publisher: publisher,
	}
}

// Run executes the packaging sequence end to end: fetch sources, build,
// probe the target triple, bundle, publish. Fetch and bundle skip work that
// already exists on disk, so re-running after a partial failure resumes
// rather than restarts; publishing always runs its full replace-or-create
// protocol.
func (uc *pipeline) Run(ctx context.Context, spec model.ReleaseSpec) error {
	logger := ctxlog.From(ctx).With(
		"run_id", uuid.NewString(),
		"version", spec.EffectiveVersion(),
	)
	ctx = ctxlog.With(ctx, logger)

	paths, err := uc.fetcher.Fetch(ctx, spec, uc.workspace)
	if err != nil {
		return goerr.Wrap(err, "fetch stage failed")
	}

	sourceDir := filepath.Join(uc.workspace.Dir, paths.LLVMDir)
	if err := uc.builder.Build(ctx, uc.workspace, sourceDir); err != nil {
		return goerr.Wrap(err, "build stage failed")
	}

	target, err := uc.prober.DetectTarget(ctx, uc.workspace.InstallDir)
	if err != nil {
		return goerr.Wrap(err, "target probe failed")
	}

	bundle := model.NewBundle(spec, target, uc.workspace.Dir)
	if err := uc.bundler.Bundle(ctx, bundle, uc.workspace.InstallDir); err != nil {
		return goerr.Wrap(err, "bundle stage failed")
	}

	if err := uc.publisher.Publish(ctx, spec.EffectiveVersion(), bundle.ArchivePath); err != nil {
		return goerr.Wrap(err, "publish stage failed")
	}

	logger.Info("Packaging completed", "bundle", bundle.Name)
	return nil
}
