package archive

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ulikunitz/xz"

	"github.com/m-mizutani/llvmpack/pkg/domain/interfaces"
	"github.com/m-mizutani/llvmpack/pkg/domain/model"
)

type tarXz struct{}

// New creates an Archiver for tar.xz archives
func New() interfaces.Archiver {
	return &tarXz{}
}

// Extract unpacks archivePath into destDir. Entry paths are confined to
// destDir to guard against path traversal.
func (a *tarXz) Extract(ctx context.Context, archivePath, destDir string) error {
	logger := ctxlog.From(ctx)
	logger.Info("Extracting archive", "archive", archivePath, "dest", destDir)

	f, err := os.Open(archivePath)
	if err != nil {
		return goerr.Wrap(err, "failed to open archive", goerr.V("archive", archivePath))
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return goerr.Wrap(err, "failed to create xz reader", goerr.V("archive", archivePath))
	}

	tr := tar.NewReader(xzr)
	for {
		if err := ctx.Err(); err != nil {
			return goerr.Wrap(err, "extraction interrupted")
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to read tar entry", goerr.V("archive", archivePath))
		}

		if !filepath.IsLocal(hdr.Name) {
			return goerr.New("archive entry escapes destination",
				goerr.V("entry", hdr.Name), goerr.V("dest", destDir))
		}
		target := filepath.Join(destDir, hdr.Name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return goerr.Wrap(err, "failed to create directory", goerr.V("path", target))
			}
		case tar.TypeReg:
			if err := extractFile(target, os.FileMode(hdr.Mode), tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return goerr.Wrap(err, "failed to create parent directory", goerr.V("path", target))
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil && !os.IsExist(err) {
				return goerr.Wrap(err, "failed to create symlink",
					goerr.V("path", target), goerr.V("link", hdr.Linkname))
			}
		default:
			logger.Debug("Skipping unsupported tar entry",
				"entry", hdr.Name, "type", hdr.Typeflag)
		}
	}
}

func extractFile(target string, mode os.FileMode, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return goerr.Wrap(err, "failed to create parent directory", goerr.V("path", target))
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return goerr.Wrap(err, "failed to create file", goerr.V("path", target))
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return goerr.Wrap(err, "failed to write file", goerr.V("path", target))
	}
	return f.Close()
}

// Create writes entries into a new tar.xz archive at archivePath. Entry
// modes and sizes are taken from the filesystem at write time.
func (a *tarXz) Create(ctx context.Context, archivePath string, entries []model.ArchiveEntry) error {
	logger := ctxlog.From(ctx)
	logger.Info("Creating archive", "archive", archivePath, "entries", len(entries))

	f, err := os.Create(archivePath)
	if err != nil {
		return goerr.Wrap(err, "failed to create archive", goerr.V("archive", archivePath))
	}
	defer f.Close()

	xzw, err := xz.NewWriter(f)
	if err != nil {
		return goerr.Wrap(err, "failed to create xz writer", goerr.V("archive", archivePath))
	}

	tw := tar.NewWriter(xzw)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return goerr.Wrap(err, "archive creation interrupted")
		}
		if err := addFile(tw, entry); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize tar stream", goerr.V("archive", archivePath))
	}
	if err := xzw.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize xz stream", goerr.V("archive", archivePath))
	}
	return f.Close()
}

func addFile(tw *tar.Writer, entry model.ArchiveEntry) error {
	info, err := os.Lstat(entry.Path)
	if err != nil {
		return goerr.Wrap(err, "failed to stat archive entry", goerr.V("path", entry.Path))
	}

	link := ""
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(entry.Path); err != nil {
			return goerr.Wrap(err, "failed to read symlink", goerr.V("path", entry.Path))
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return goerr.Wrap(err, "failed to build tar header", goerr.V("path", entry.Path))
	}
	hdr.Name = entry.Name

	if err := tw.WriteHeader(hdr); err != nil {
		return goerr.Wrap(err, "failed to write tar header", goerr.V("entry", entry.Name))
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	src, err := os.Open(entry.Path)
	if err != nil {
		return goerr.Wrap(err, "failed to open archive entry", goerr.V("path", entry.Path))
	}
	defer src.Close()

	if _, err := io.Copy(tw, src); err != nil {
		return goerr.Wrap(err, "failed to write archive entry", goerr.V("entry", entry.Name))
	}
	return nil
}
