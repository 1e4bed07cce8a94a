package usecase

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/llvmpack/pkg/domain/interfaces"
	"github.com/m-mizutani/llvmpack/pkg/domain/model"
)

// sharedLibPattern matches shared library names with optional dotted numeric
// version suffixes: libclang.so, libclang.so.14, libclang.so.14.0
var sharedLibPattern = regexp.MustCompile(`\.so(\.\d+)*$`)

type bundler struct {
	archiver interfaces.Archiver
}

// NewBundler creates a Bundler writing through the given archiver
func NewBundler(archiver interfaces.Archiver) interfaces.Bundler {
	return &bundler{archiver: archiver}
}

// Bundle walks installDir and writes every file into the bundle archive with
// the install prefix replaced by the bundle name. Shared libraries gain the
// executable bit for every permission class that can already read them. If
// the archive file already exists the whole operation is a no-op.
func (uc *bundler) Bundle(ctx context.Context, bundle model.Bundle, installDir string) error {
	logger := ctxlog.From(ctx)

	if _, err := os.Stat(bundle.ArchivePath); err == nil {
		logger.Info("Bundle already exists, skipping", "archive", bundle.ArchivePath)
		return nil
	}

	logger.Info("Bundling LLVM", "archive", bundle.ArchivePath, "install_dir", installDir)

	var entries []model.ArchiveEntry
	err := filepath.WalkDir(installDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		if sharedLibPattern.MatchString(d.Name()) {
			if err := ensureExecutable(path); err != nil {
				return err
			}
		}

		rel, err := filepath.Rel(installDir, path)
		if err != nil {
			return err
		}
		entries = append(entries, model.ArchiveEntry{
			Path: path,
			Name: filepath.Join(bundle.Name, rel),
		})
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to walk install directory", goerr.V("dir", installDir))
	}

	if err := uc.archiver.Create(ctx, bundle.ArchivePath, entries); err != nil {
		return goerr.Wrap(err, "failed to create bundle archive",
			goerr.V("archive", bundle.ArchivePath))
	}
	return nil
}

// ensureExecutable derives executable bits from the existing read bits and
// ORs them in: a class that can read the library may also execute it, and no
// class gains anything it could not already read.
func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return goerr.Wrap(err, "failed to stat shared library", goerr.V("path", path))
	}

	mode := info.Mode()
	want := mode | (mode&0444)>>2
	if want == mode {
		return nil
	}
	if err := os.Chmod(path, want); err != nil {
		return goerr.Wrap(err, "failed to set shared library permissions",
			goerr.V("path", path))
	}
	return nil
}
