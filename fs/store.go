// Package fs provides file-based storage for site snapshots.
package fs

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/freeze"
)

// Ensure SnapshotStore implements freeze.SnapshotStore at compile time.
var _ freeze.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore implements freeze.SnapshotStore with atomic update semantics.
// Files are written to a temporary directory, then moved atomically on Commit.
type SnapshotStore struct {
	baseDir  string
	name     string
	basePath string
}

// NewSnapshotStore creates a new SnapshotStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
// basePath is the deployment prefix stripped from resource paths.
func NewSnapshotStore(baseDir, name, basePath string) *SnapshotStore {
	return &SnapshotStore{
		baseDir:  baseDir,
		name:     name,
		basePath: basePath,
	}
}

// NewSnapshotStoreAt splits dir into parent and name.
func NewSnapshotStoreAt(dir, basePath string) *SnapshotStore {
	clean := filepath.Clean(dir)
	return NewSnapshotStore(filepath.Dir(clean), filepath.Base(clean), basePath)
}

// Dir returns the final output directory.
func (s *SnapshotStore) Dir() string {
	return s.finalDir()
}

func (s *SnapshotStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *SnapshotStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

func (s *SnapshotStore) Save(ctx context.Context, res *freeze.Resource) (string, error) {
	if res == nil {
		return "", freeze.Errorf(freeze.EINVALID, "resource required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return res.SaveToFile(s.tempDir(), s.basePath)
}

func (s *SnapshotStore) SaveFile(ctx context.Context, relPath string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel, err := cleanRelPath(relPath)
	if err != nil {
		return "", err
	}

	root, err := filepath.Abs(s.tempDir())
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return "", err
	}
	return fullPath, nil
}

// cleanRelPath rejects paths that are empty, absolute or escape the root.
func cleanRelPath(relPath string) (string, error) {
	if relPath == "" {
		return "", freeze.Errorf(freeze.EINVALID, "file path required")
	}
	if strings.HasPrefix(relPath, "/") {
		return "", freeze.Errorf(freeze.EINVALID, "file path must be relative: %s", relPath)
	}
	rel := path.Clean(relPath)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", freeze.Errorf(freeze.EINVALID, "path traversal in %s", relPath)
	}
	return rel, nil
}

func (s *SnapshotStore) Commit() error {
	// Remove existing final directory if present
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}

	// An empty snapshot still produces an output directory.
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}

	return os.Rename(s.tempDir(), s.finalDir())
}

func (s *SnapshotStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
