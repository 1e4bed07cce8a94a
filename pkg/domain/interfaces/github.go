package interfaces

import (
	"context"

	"github.com/google/go-github/v75/github"
)

// ReleaseClient defines the operations llvmpack needs from the GitHub
// releases API
type ReleaseClient interface {
	// ListReleases returns all releases of the target repository
	ListReleases(ctx context.Context) ([]*github.RepositoryRelease, error)

	// CreateRelease creates a release tagged with tag and returns it
	CreateRelease(ctx context.Context, tag string) (*github.RepositoryRelease, error)

	// DeleteAsset removes a previously uploaded release asset by ID
	DeleteAsset(ctx context.Context, assetID int64) error

	// UploadAsset uploads the file at path as a binary asset of the release
	UploadAsset(ctx context.Context, releaseID int64, path string) (*github.ReleaseAsset, error)
}
