package freeze

import "context"

// SnapshotStore persists a site snapshot with atomic semantics.
// Save and SaveFile write to a temporary location; Commit makes changes
// permanent; Abort discards pending changes.
type SnapshotStore interface {
	// Save writes a resource and returns the absolute path written.
	Save(ctx context.Context, res *Resource) (string, error)

	// SaveFile writes auxiliary content at a slash-separated relative path.
	SaveFile(ctx context.Context, relPath string, content []byte) (string, error)

	Commit() error
	Abort() error
}
