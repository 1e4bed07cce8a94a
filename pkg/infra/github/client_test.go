package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/llvmpack/pkg/domain/interfaces"
	"github.com/m-mizutani/llvmpack/pkg/domain/model"
	githubinfra "github.com/m-mizutani/llvmpack/pkg/infra/github"
)

// newTestClient builds a ReleaseClient pointed at a mock API server. The
// go-github enterprise URL scheme prefixes requests with /api/v3/ and
// /api/uploads/, so handlers match on path suffixes.
func newTestClient(t *testing.T, handler http.Handler) (interfaces.ReleaseClient, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client, err := githubinfra.NewClient("octocat", "token123", "octocat", "llvm",
		githubinfra.WithBaseURLs(server.URL, server.URL))
	gt.NoError(t, err)
	return client, server.Close
}

func TestListReleases(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if !strings.HasSuffix(r.URL.Path, "/repos/octocat/llvm/releases") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "tag_name": "14.0.0", "upload_url": "http://example.com/upload{?name,label}"},
		})
	})

	client, closeFn := newTestClient(t, handler)
	defer closeFn()

	releases, err := client.ListReleases(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(releases), 1)
	gt.Equal(t, releases[0].GetTagName(), "14.0.0")

	// Basic auth with user name and token
	gt.String(t, gotAuth).Contains("Basic ")
}

func TestCreateRelease(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gt.Equal(t, body["tag_name"], "15.0.0rc2")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "tag_name": "15.0.0rc2"})
	})

	client, closeFn := newTestClient(t, handler)
	defer closeFn()

	release, err := client.CreateRelease(context.Background(), "15.0.0rc2")
	gt.NoError(t, err)
	gt.Equal(t, release.GetID(), int64(7))
}

func TestDeleteAsset(t *testing.T) {
	deleted := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/releases/assets/42") {
			deleted = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.NotFound(w, r)
	})

	client, closeFn := newTestClient(t, handler)
	defer closeFn()

	gt.NoError(t, client.DeleteAsset(context.Background(), 42))
	gt.True(t, deleted)
}

func TestUploadAsset(t *testing.T) {
	var gotName, gotContentType string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		gotName = r.URL.Query().Get("name")
		gotContentType = r.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 99, "name": gotName})
	})

	client, closeFn := newTestClient(t, handler)
	defer closeFn()

	bundle := filepath.Join(t.TempDir(), "clang+llvm-14.0.0-x86_64-unknown-linux-gnu.tar.xz")
	gt.NoError(t, os.WriteFile(bundle, []byte("xz bytes"), 0644))

	asset, err := client.UploadAsset(context.Background(), 7, bundle)
	gt.NoError(t, err)
	gt.Equal(t, asset.GetID(), int64(99))
	gt.Equal(t, gotName, "clang+llvm-14.0.0-x86_64-unknown-linux-gnu.tar.xz")
	gt.Equal(t, gotContentType, "application/x-xz")
}

func TestAPIError_SurfacesMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Bad credentials"})
	})

	client, closeFn := newTestClient(t, handler)
	defer closeFn()

	_, err := client.ListReleases(context.Background())
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("Bad credentials")
	gt.True(t, !goerr.HasTag(err, model.ErrTagTransient))
}

func TestAPIError_ServerErrorIsTransient(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "upstream down"})
	})

	client, closeFn := newTestClient(t, handler)
	defer closeFn()

	_, err := client.ListReleases(context.Background())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagTransient))
}
