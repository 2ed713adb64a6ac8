// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

//go:build unix

package ufs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterodactyl/transactfs/internal/ufs"
)

func newTestDriver(t *testing.T) (ufs.Driver, string) {
	t.Helper()
	tmpDir, err := os.MkdirTemp(os.TempDir(), "ufs")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(tmpDir)
	})
	return ufs.NewDriver(ufs.Modes{File: 0o600, Directory: 0o700}), tmpDir
}

func TestUnixDriver_CreateEmptyFile(t *testing.T) {
	t.Parallel()
	d, root := newTestDriver(t)

	t.Run("creates an empty file with the configured mode", func(t *testing.T) {
		p := filepath.Join(root, "empty.txt")
		if err := d.CreateEmptyFile(p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		st, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		if st.Size() != 0 {
			t.Errorf("expected an empty file, got %d bytes", st.Size())
		}
		if st.Mode().Perm() != 0o600 {
			t.Errorf("expected mode 0600, got %o", st.Mode().Perm())
		}
	})

	t.Run("existing file", func(t *testing.T) {
		p := filepath.Join(root, "exists.txt")
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := d.CreateEmptyFile(p); !errors.Is(err, ufs.ErrExist) {
			t.Errorf("expected an exist error, but got: %v", err)
		}
		b, _ := os.ReadFile(p)
		if string(b) != "data" {
			t.Errorf("existing file was truncated")
		}
	})

	t.Run("missing parent", func(t *testing.T) {
		if err := d.CreateEmptyFile(filepath.Join(root, "missing", "file")); !errors.Is(err, ufs.ErrNotExist) {
			t.Errorf("expected a not exist error, but got: %v", err)
		}
	})
}

func TestUnixDriver_CreateEmptyDirectory(t *testing.T) {
	t.Parallel()
	d, root := newTestDriver(t)

	p := filepath.Join(root, "dir")
	if err := d.CreateEmptyDirectory(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if !st.IsDir() || st.Mode().Perm() != 0o700 {
		t.Errorf("expected a 0700 directory, got %s", st.Mode())
	}

	if err := d.CreateEmptyDirectory(p); !errors.Is(err, ufs.ErrExist) {
		t.Errorf("expected an exist error, but got: %v", err)
	}
}

func TestUnixDriver_Links(t *testing.T) {
	t.Parallel()
	d, root := newTestDriver(t)

	target := filepath.Join(root, "target")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	t.Run("detects links", func(t *testing.T) {
		if !d.IsLink(link) {
			t.Error("expected link to be detected as a link")
		}
		if d.IsLink(target) {
			t.Error("expected directory to not be detected as a link")
		}
		if d.IsLink(filepath.Join(root, "nope")) {
			t.Error("expected missing path to not be detected as a link")
		}
	})

	t.Run("refuses to remove a non-link", func(t *testing.T) {
		if err := d.RemoveLink(target); !errors.Is(err, ufs.ErrNotLink) {
			t.Errorf("expected a not link error, but got: %v", err)
		}
		if _, err := os.Stat(target); err != nil {
			t.Errorf("target should still exist: %v", err)
		}
	})

	t.Run("removes the link but not the target", func(t *testing.T) {
		if err := d.RemoveLink(link); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Lstat(link); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected link to be removed, got: %v", err)
		}
		if _, err := os.Stat(target); err != nil {
			t.Errorf("target should still exist: %v", err)
		}
	})
}
