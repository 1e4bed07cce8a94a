package model

import "path/filepath"

// Workspace is the on-disk layout the packaging run operates in. Build and
// install directories are reused across runs to allow incremental rebuilds.
type Workspace struct {
	Dir        string // working directory, holds archives and source trees
	BuildDir   string
	InstallDir string
}

// NewWorkspace derives the standard layout under dir: dir/build and
// dir/install.
func NewWorkspace(dir string) Workspace {
	return Workspace{
		Dir:        dir,
		BuildDir:   filepath.Join(dir, "build"),
		InstallDir: filepath.Join(dir, "install"),
	}
}
