package fsutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yaklabco/volblock/pkg/fsutil"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("reads content and metadata", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "main.c")
		content := []byte("int x;\n")
		if err := os.WriteFile(path, content, 0o640); err != nil {
			t.Fatalf("setup: %v", err)
		}

		got, info, err := fsutil.ReadFile(context.Background(), path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("content = %q, want %q", got, content)
		}
		if info.Size != int64(len(content)) {
			t.Errorf("Size = %d, want %d", info.Size, len(content))
		}
		if info.Mode.Perm() != 0o640 {
			t.Errorf("Mode = %v, want 0640", info.Mode.Perm())
		}
		if info.Hash != fsutil.Hash(content) {
			t.Error("Hash does not match content")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.c"))
		if !errors.Is(err, fsutil.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), t.TempDir())
		if !errors.Is(err, fsutil.ErrIsDirectory) {
			t.Errorf("error = %v, want ErrIsDirectory", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := fsutil.ReadFile(ctx, "main.c")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	info := &fsutil.FileInfo{Path: "main.c", Hash: fsutil.Hash([]byte("int x;"))}

	if err := fsutil.Verify(info, fsutil.Hash([]byte("int x;"))); err != nil {
		t.Errorf("Verify() same content error = %v", err)
	}
	if err := fsutil.Verify(info, fsutil.Hash([]byte("int y;"))); !errors.Is(err, fsutil.ErrModified) {
		t.Errorf("Verify() changed content error = %v, want ErrModified", err)
	}
	if err := fsutil.Verify(nil, fsutil.Digest{}); !errors.Is(err, fsutil.ErrNilFileInfo) {
		t.Errorf("Verify(nil) error = %v, want ErrNilFileInfo", err)
	}
}

func TestCheckModified(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (string, *fsutil.FileInfo) {
		t.Helper()
		path := filepath.Join(t.TempDir(), "main.c")
		if err := os.WriteFile(path, []byte("int x;\n"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		_, info, err := fsutil.ReadFile(context.Background(), path)
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
		return path, info
	}

	t.Run("unchanged", func(t *testing.T) {
		t.Parallel()

		_, info := setup(t)
		modified, err := fsutil.CheckModified(context.Background(), info)
		if err != nil {
			t.Fatalf("CheckModified() error = %v", err)
		}
		if modified {
			t.Error("CheckModified() = true for an untouched file")
		}
	})

	t.Run("same size and time, different content", func(t *testing.T) {
		t.Parallel()

		path, info := setup(t)
		if err := os.WriteFile(path, []byte("int y;\n"), 0o644); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
		if err := os.Chtimes(path, time.Now(), info.ModTime); err != nil {
			t.Fatalf("chtimes: %v", err)
		}

		modified, err := fsutil.CheckModified(context.Background(), info)
		if err != nil {
			t.Fatalf("CheckModified() error = %v", err)
		}
		if !modified {
			t.Error("CheckModified() = false, want true")
		}
	})

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()

		path, info := setup(t)
		if err := os.Remove(path); err != nil {
			t.Fatalf("remove: %v", err)
		}
		modified, err := fsutil.CheckModified(context.Background(), info)
		if err != nil || !modified {
			t.Errorf("CheckModified() = %v, %v; want true, nil", modified, err)
		}
	})

	t.Run("nil info", func(t *testing.T) {
		t.Parallel()

		if _, err := fsutil.CheckModified(context.Background(), nil); !errors.Is(err, fsutil.ErrNilFileInfo) {
			t.Errorf("error = %v, want ErrNilFileInfo", err)
		}
	})
}
