package model

// ArchiveEntry maps a file on disk to its path inside an archive. Bundling
// rewrites the install-directory prefix to the bundle name through Name.
type ArchiveEntry struct {
	Path string // filesystem path of the file to add
	Name string // entry path inside the archive
}
