package github

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/llvmpack/pkg/domain/interfaces"
	"github.com/m-mizutani/llvmpack/pkg/domain/model"
)

// uploadContentType is the media type of the published tar.xz bundle
const uploadContentType = "application/x-xz"

type client struct {
	githubClient *github.Client
	owner        string
	repo         string
}

// Option configures the client
type Option func(*config)

type config struct {
	apiURL    string
	uploadURL string
}

// WithBaseURLs overrides the API and upload endpoints, mainly for tests
func WithBaseURLs(apiURL, uploadURL string) Option {
	return func(c *config) {
		c.apiURL = apiURL
		c.uploadURL = uploadURL
	}
}

// NewClient creates a ReleaseClient for owner/repo authenticated with basic
// auth (user name + API token).
func NewClient(user, token, owner, repo string, opts ...Option) (interfaces.ReleaseClient, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	tp := &github.BasicAuthTransport{
		Username:  user,
		Password:  token,
		Transport: http.DefaultTransport,
	}

	githubClient := github.NewClient(tp.Client())
	if cfg.apiURL != "" {
		var err error
		githubClient, err = githubClient.WithEnterpriseURLs(cfg.apiURL, cfg.uploadURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to set GitHub API base URLs")
		}
	}

	return &client{
		githubClient: githubClient,
		owner:        owner,
		repo:         repo,
	}, nil
}

// ListReleases returns every release of the target repository, following
// pagination.
func (c *client) ListReleases(ctx context.Context) ([]*github.RepositoryRelease, error) {
	var all []*github.RepositoryRelease
	opts := &github.ListOptions{PerPage: 100}

	for {
		releases, resp, err := c.githubClient.Repositories.ListReleases(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, wrapAPIError(err, resp, "failed to list releases")
		}
		all = append(all, releases...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// CreateRelease creates a release tagged with tag
func (c *client) CreateRelease(ctx context.Context, tag string) (*github.RepositoryRelease, error) {
	release, resp, err := c.githubClient.Repositories.CreateRelease(ctx, c.owner, c.repo,
		&github.RepositoryRelease{TagName: github.Ptr(tag)})
	if err != nil {
		return nil, wrapAPIError(err, resp, "failed to create release")
	}
	return release, nil
}

// DeleteAsset removes an uploaded asset by ID
func (c *client) DeleteAsset(ctx context.Context, assetID int64) error {
	resp, err := c.githubClient.Repositories.DeleteReleaseAsset(ctx, c.owner, c.repo, assetID)
	if err != nil {
		return wrapAPIError(err, resp, "failed to delete release asset")
	}
	return nil
}

// UploadAsset uploads the file at path as a binary release asset. The asset
// name is the file's base name.
func (c *client) UploadAsset(ctx context.Context, releaseID int64, path string) (*github.ReleaseAsset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open bundle file", goerr.V("path", path))
	}
	defer f.Close()

	asset, resp, err := c.githubClient.Repositories.UploadReleaseAsset(ctx, c.owner, c.repo, releaseID,
		&github.UploadOptions{
			Name:      filepath.Base(path),
			MediaType: uploadContentType,
		}, f)
	if err != nil {
		return nil, wrapAPIError(err, resp, "failed to upload release asset")
	}
	return asset, nil
}

// wrapAPIError wraps a go-github error, tagging transport failures and
// server-side errors as transient. The GitHub API's error message is carried
// in err itself (github.ErrorResponse).
func wrapAPIError(err error, resp *github.Response, msg string) error {
	opts := []goerr.Option{}
	if resp == nil || resp.StatusCode >= http.StatusInternalServerError {
		opts = append(opts, goerr.T(model.ErrTagTransient))
	} else {
		opts = append(opts, goerr.V("status", resp.StatusCode))
	}
	return goerr.Wrap(err, msg, opts...)
}
