package interfaces

import (
	"context"

	"github.com/m-mizutani/llvmpack/pkg/domain/model"
)

// Downloader fetches a remote file to a local path
type Downloader interface {
	// Download streams the resource at url into the file at dest
	Download(ctx context.Context, url, dest string) error
}

// Archiver handles the tar.xz codec for source archives and bundles
type Archiver interface {
	// Extract unpacks archivePath into destDir
	Extract(ctx context.Context, archivePath, destDir string) error

	// Create writes entries into a new tar.xz archive at archivePath
	Create(ctx context.Context, archivePath string, entries []model.ArchiveEntry) error
}

// BuildTool drives the external build system (cmake) against a source tree
type BuildTool interface {
	// Configure generates the build files in buildDir for sourceDir with the
	// install prefix set to installDir
	Configure(ctx context.Context, buildDir, installDir, sourceDir string) error

	// Install builds and installs the configured tree
	Install(ctx context.Context, buildDir string) error
}

// TargetProber asks the freshly installed compiler for its target triple
type TargetProber interface {
	DetectTarget(ctx context.Context, installDir string) (string, error)
}
