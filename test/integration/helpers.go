package integration

import (
	"context"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/danieljhkim/importsync/internal/ctxlog"
)

// memFS is an in-memory workspace. Paths handed to it are absolute; they
// are stored in the MapFS without the leading slash.
type memFS struct {
	files fstest.MapFS
}

func newMemFS(files map[string]string) *memFS {
	m := &memFS{files: fstest.MapFS{}}
	for path, content := range files {
		m.files[key(path)] = &fstest.MapFile{Data: []byte(content), Mode: 0644}
	}
	return m
}

func key(path string) string {
	k := strings.TrimPrefix(path, "/")
	if k == "" {
		return "."
	}
	return k
}

func (m *memFS) Stat(path string) (os.FileInfo, error) {
	return m.files.Stat(key(path))
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	return m.files.ReadFile(key(path))
}

func (m *memFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	m.files[key(path)] = &fstest.MapFile{Data: append([]byte(nil), data...), Mode: perm}
	return nil
}

func (m *memFS) Exists(path string) (bool, error) {
	_, err := m.files.Stat(key(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (m *memFS) WalkDir(root string, fn iofs.WalkDirFunc) error {
	return iofs.WalkDir(m.files, key(root), func(path string, d iofs.DirEntry, err error) error {
		return fn("/"+path, d, err)
	})
}

// content returns the current content of path, failing the test if absent.
func (m *memFS) content(t *testing.T, path string) string {
	t.Helper()
	data, err := m.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// testContext returns a context whose logger discards output.
func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}
