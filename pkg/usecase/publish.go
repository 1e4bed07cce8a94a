package usecase

import (
	"context"
	"path/filepath"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/llvmpack/pkg/domain/interfaces"
	"github.com/m-mizutani/llvmpack/pkg/utils/retry"
)

type publisher struct {
	client    interfaces.ReleaseClient
	retryOpts []retry.Option
}

// NewPublisher creates a Publisher backed by the given release client. Each
// API call is wrapped in retry.Do with the given options.
func NewPublisher(client interfaces.ReleaseClient, retryOpts ...retry.Option) interfaces.Publisher {
	return &publisher{
		client:    client,
		retryOpts: retryOpts,
	}
}

// Publish uploads the bundle as an asset of the release tagged with version.
// A release is created when none carries the tag; an existing asset of the
// same name is deleted first. The result is one release per tag and at most
// one asset per bundle name. Publish is never skipped on re-runs.
func (uc *publisher) Publish(ctx context.Context, version, bundlePath string) error {
	logger := ctxlog.From(ctx)
	bundleName := filepath.Base(bundlePath)

	var releases []*github.RepositoryRelease
	err := retry.Do(ctx, func(ctx context.Context) error {
		var err error
		releases, err = uc.client.ListReleases(ctx)
		return err
	}, uc.retryOpts...)
	if err != nil {
		return goerr.Wrap(err, "failed to list releases")
	}

	release := findByTag(releases, version)
	if release != nil {
		logger.Info("Version already released", "tag", version)
		if err := uc.deleteStaleAsset(ctx, release, bundleName); err != nil {
			return err
		}
	} else {
		logger.Info("Creating release", "tag", version)
		err := retry.Do(ctx, func(ctx context.Context) error {
			var err error
			release, err = uc.client.CreateRelease(ctx, version)
			return err
		}, uc.retryOpts...)
		if err != nil {
			return goerr.Wrap(err, "failed to create release", goerr.V("tag", version))
		}
	}

	logger.Info("Uploading bundle", "asset", bundleName, "tag", version)
	err = retry.Do(ctx, func(ctx context.Context) error {
		_, err := uc.client.UploadAsset(ctx, release.GetID(), bundlePath)
		return err
	}, uc.retryOpts...)
	if err != nil {
		return goerr.Wrap(err, "failed to upload bundle",
			goerr.V("asset", bundleName), goerr.V("tag", version))
	}
	return nil
}

// deleteStaleAsset removes a previously uploaded asset with the bundle's
// name, if any, so the upload never duplicates it.
func (uc *publisher) deleteStaleAsset(ctx context.Context, release *github.RepositoryRelease, bundleName string) error {
	logger := ctxlog.From(ctx)

	for _, asset := range release.Assets {
		if asset.GetName() != bundleName {
			continue
		}

		logger.Info("Deleting stale asset", "asset", bundleName, "id", asset.GetID())
		err := retry.Do(ctx, func(ctx context.Context) error {
			return uc.client.DeleteAsset(ctx, asset.GetID())
		}, uc.retryOpts...)
		if err != nil {
			return goerr.Wrap(err, "failed to delete stale asset",
				goerr.V("asset", bundleName), goerr.V("id", asset.GetID()))
		}
		break
	}
	return nil
}

func findByTag(releases []*github.RepositoryRelease, tag string) *github.RepositoryRelease {
	for _, r := range releases {
		if r.GetTagName() == tag {
			return r
		}
	}
	return nil
}
