package mock

import (
	"context"

	"github.com/fwojciec/freeze"
)

var _ freeze.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is a mock implementation of freeze.SnapshotStore.
type SnapshotStore struct {
	SaveFn     func(ctx context.Context, res *freeze.Resource) (string, error)
	SaveFileFn func(ctx context.Context, relPath string, content []byte) (string, error)
	CommitFn   func() error
	AbortFn    func() error
}

func (s *SnapshotStore) Save(ctx context.Context, res *freeze.Resource) (string, error) {
	return s.SaveFn(ctx, res)
}

func (s *SnapshotStore) SaveFile(ctx context.Context, relPath string, content []byte) (string, error) {
	return s.SaveFileFn(ctx, relPath, content)
}

func (s *SnapshotStore) Commit() error {
	return s.CommitFn()
}

func (s *SnapshotStore) Abort() error {
	return s.AbortFn()
}
