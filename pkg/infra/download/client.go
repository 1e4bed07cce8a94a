package download

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/llvmpack/pkg/domain/interfaces"
	"github.com/m-mizutani/llvmpack/pkg/domain/model"
)

// chunkSize is the copy buffer for streamed downloads (1 MiB)
const chunkSize = 1024 * 1024

type client struct {
	httpClient *http.Client
}

// New creates a Downloader backed by the given HTTP client. Passing nil uses
// http.DefaultClient.
func New(httpClient *http.Client) interfaces.Downloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{httpClient: httpClient}
}

// Download streams url into dest. Transport failures and 5xx responses are
// tagged transient so callers can retry them; other unexpected statuses are
// permanent. A failed download removes the partial file so the next run does
// not mistake it for a complete one.
func (c *client) Download(ctx context.Context, url, dest string) error {
	logger := ctxlog.From(ctx)
	logger.Info("Downloading", "url", url, "dest", dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create download request", goerr.V("url", url))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to download", goerr.V("url", url),
			goerr.T(model.ErrTagTransient))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		opts := []goerr.Option{goerr.V("url", url), goerr.V("status", resp.StatusCode)}
		if resp.StatusCode >= http.StatusInternalServerError {
			opts = append(opts, goerr.T(model.ErrTagTransient))
		}
		return goerr.New("unexpected status for download", opts...)
	}

	f, err := os.Create(dest)
	if err != nil {
		return goerr.Wrap(err, "failed to create download file", goerr.V("dest", dest))
	}

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(f, resp.Body, buf); err != nil {
		f.Close()
		os.Remove(dest)
		return goerr.Wrap(err, "failed to write download file",
			goerr.V("url", url), goerr.V("dest", dest), goerr.T(model.ErrTagTransient))
	}

	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close download file", goerr.V("dest", dest))
	}

	return nil
}
