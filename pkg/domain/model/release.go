package model

import (
	"fmt"
	"path/filepath"
)

const (
	releaseURL    = "http://releases.llvm.org/%s"
	prereleaseURL = "http://prereleases.llvm.org/%s/rc%d"

	llvmSourceName  = "llvm-%s.src"
	clangSourceName = "cfe-%s.src"
	bundleNameFmt   = "clang+llvm-%s-%s"

	// ArchiveSuffix is the extension shared by the source archives and the
	// published bundle.
	ArchiveSuffix = ".tar.xz"
)

// ReleaseSpec identifies the LLVM release to package. ReleaseCandidate of 0
// means a final release.
type ReleaseSpec struct {
	Version          string
	ReleaseCandidate int
}

// EffectiveVersion returns the version string used for archive names and the
// release tag, with the rcN suffix appended for release candidates.
func (s ReleaseSpec) EffectiveVersion() string {
	if s.ReleaseCandidate > 0 {
		return fmt.Sprintf("%src%d", s.Version, s.ReleaseCandidate)
	}
	return s.Version
}

// BaseURL resolves the download location for the source archives. Release
// candidates live on the prerelease host under a {version}/rc{N} path.
func (s ReleaseSpec) BaseURL(mirror Mirror) string {
	if s.ReleaseCandidate > 0 {
		return fmt.Sprintf(mirror.PrereleaseURL, s.Version, s.ReleaseCandidate)
	}
	return fmt.Sprintf(mirror.ReleaseURL, s.Version)
}

// Mirror holds the URL templates for the release download hosts. Templates
// use fmt verbs: ReleaseURL takes the version, PrereleaseURL takes the
// version and the release candidate number.
type Mirror struct {
	ReleaseURL    string `toml:"release_url"`
	PrereleaseURL string `toml:"prerelease_url"`
}

// DefaultMirror points at the official llvm.org release hosts.
func DefaultMirror() Mirror {
	return Mirror{
		ReleaseURL:    releaseURL,
		PrereleaseURL: prereleaseURL,
	}
}

// SourcePaths holds the deterministic file and directory names derived from a
// ReleaseSpec. All paths are relative to the working directory.
type SourcePaths struct {
	LLVMDir      string // extracted core source tree
	LLVMArchive  string
	ClangDir     string // extracted front-end source tree
	ClangArchive string
}

// NewSourcePaths computes the archive and directory names for a release.
func NewSourcePaths(spec ReleaseSpec) SourcePaths {
	version := spec.EffectiveVersion()
	llvm := fmt.Sprintf(llvmSourceName, version)
	clang := fmt.Sprintf(clangSourceName, version)
	return SourcePaths{
		LLVMDir:      llvm,
		LLVMArchive:  llvm + ArchiveSuffix,
		ClangDir:     clang,
		ClangArchive: clang + ArchiveSuffix,
	}
}

// Bundle names the packaged toolchain archive. Name depends on the target
// triple reported by the freshly built compiler, so it is only known after
// the build.
type Bundle struct {
	Name        string
	ArchivePath string
}

// NewBundle derives the bundle identity from the effective version and the
// detected target triple. archiveDir is the directory the archive is written
// to, normally the working directory.
func NewBundle(spec ReleaseSpec, target, archiveDir string) Bundle {
	name := fmt.Sprintf(bundleNameFmt, spec.EffectiveVersion(), target)
	return Bundle{
		Name:        name,
		ArchivePath: filepath.Join(archiveDir, name+ArchiveSuffix),
	}
}
