package interfaces

import (
	"context"

	"github.com/m-mizutani/llvmpack/pkg/domain/model"
)

// SourceFetcher downloads and extracts the LLVM and clang source archives
// and merges the clang tree into the LLVM tree. All steps are idempotent:
// archives and directories already on disk are not re-fetched.
type SourceFetcher interface {
	Fetch(ctx context.Context, spec model.ReleaseSpec, ws model.Workspace) (model.SourcePaths, error)
}

// Builder configures and runs the external build system against the merged
// source tree
type Builder interface {
	Build(ctx context.Context, ws model.Workspace, sourceDir string) error
}

// Bundler packs the install tree into a versioned tar.xz archive, fixing
// shared-library permissions on the way. A pre-existing archive skips the
// whole operation.
type Bundler interface {
	Bundle(ctx context.Context, bundle model.Bundle, installDir string) error
}

// Publisher makes the bundle available as a release asset, replacing any
// stale asset of the same name
type Publisher interface {
	Publish(ctx context.Context, version, bundlePath string) error
}

// Pipeline runs the whole packaging sequence for one release: fetch sources,
// build, probe the target, bundle and publish
type Pipeline interface {
	Run(ctx context.Context, spec model.ReleaseSpec) error
}
