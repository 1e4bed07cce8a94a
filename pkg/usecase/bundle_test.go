package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/llvmpack/pkg/domain/model"
	"github.com/m-mizutani/llvmpack/pkg/usecase"
)

func TestBundle_CollectsEntriesUnderBundleName(t *testing.T) {
	ctx := context.Background()
	installDir := t.TempDir()
	gt.NoError(t, os.MkdirAll(filepath.Join(installDir, "bin"), 0755))
	gt.NoError(t, os.MkdirAll(filepath.Join(installDir, "lib"), 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(installDir, "bin", "clang"), []byte("bin"), 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(installDir, "lib", "libclang.so.14"), []byte("lib"), 0644))

	ar := &mockArchiver{}
	uc := usecase.NewBundler(ar)

	bundle := model.Bundle{
		Name:        "clang+llvm-14.0.0-x86_64-unknown-linux-gnu",
		ArchivePath: filepath.Join(t.TempDir(), "clang+llvm-14.0.0-x86_64-unknown-linux-gnu.tar.xz"),
	}
	gt.NoError(t, uc.Bundle(ctx, bundle, installDir))

	gt.Equal(t, len(ar.createCalls), 1)
	gt.Equal(t, ar.createCalls[0], bundle.ArchivePath)

	names := map[string]bool{}
	for _, e := range ar.entries {
		names[e.Name] = true
	}
	gt.True(t, names["clang+llvm-14.0.0-x86_64-unknown-linux-gnu/bin/clang"])
	gt.True(t, names["clang+llvm-14.0.0-x86_64-unknown-linux-gnu/lib/libclang.so.14"])
}

func TestBundle_SharedLibraryPermissions(t *testing.T) {
	ctx := context.Background()
	installDir := t.TempDir()
	libDir := filepath.Join(installDir, "lib")
	gt.NoError(t, os.MkdirAll(libDir, 0755))

	tests := []struct {
		name     string
		file     string
		mode     os.FileMode
		wantMode os.FileMode
	}{
		{name: "owner read only gains owner exec", file: "libA.so", mode: 0400, wantMode: 0500},
		{name: "all readable gains all exec", file: "libB.so.1", mode: 0644, wantMode: 0755},
		{name: "already executable unchanged", file: "libC.so.1.2", mode: 0755, wantMode: 0755},
		{name: "non-library untouched", file: "notes.txt", mode: 0644, wantMode: 0644},
		{name: "so in the middle untouched", file: "libD.so.conf", mode: 0644, wantMode: 0644},
	}

	for _, tt := range tests {
		gt.NoError(t, os.WriteFile(filepath.Join(libDir, tt.file), []byte("x"), 0644))
		gt.NoError(t, os.Chmod(filepath.Join(libDir, tt.file), tt.mode))
	}

	uc := usecase.NewBundler(&mockArchiver{})
	bundle := model.Bundle{
		Name:        "clang+llvm-14.0.0-test",
		ArchivePath: filepath.Join(t.TempDir(), "bundle.tar.xz"),
	}
	gt.NoError(t, uc.Bundle(ctx, bundle, installDir))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := os.Stat(filepath.Join(libDir, tt.file))
			gt.NoError(t, err)
			gt.Equal(t, info.Mode().Perm(), tt.wantMode)
		})
	}
}

func TestBundle_SkipsWhenArchiveExists(t *testing.T) {
	ctx := context.Background()
	installDir := t.TempDir()
	libDir := filepath.Join(installDir, "lib")
	gt.NoError(t, os.MkdirAll(libDir, 0755))

	// Sentinel: a shared library that bundling would have made executable
	sentinel := filepath.Join(libDir, "libsentinel.so")
	gt.NoError(t, os.WriteFile(sentinel, []byte("x"), 0644))
	gt.NoError(t, os.Chmod(sentinel, 0400))

	archivePath := filepath.Join(t.TempDir(), "bundle.tar.xz")
	gt.NoError(t, os.WriteFile(archivePath, []byte("old bundle"), 0644))

	ar := &mockArchiver{}
	uc := usecase.NewBundler(ar)
	bundle := model.Bundle{Name: "clang+llvm-14.0.0-test", ArchivePath: archivePath}
	gt.NoError(t, uc.Bundle(ctx, bundle, installDir))

	gt.Equal(t, len(ar.createCalls), 0)

	info, err := os.Stat(sentinel)
	gt.NoError(t, err)
	gt.Equal(t, info.Mode().Perm(), os.FileMode(0400))
}
