package slog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/freeze"
)

// Ensure LoggingStore implements freeze.SnapshotStore.
var _ freeze.SnapshotStore = (*LoggingStore)(nil)

// LoggingStore wraps a SnapshotStore with logging. It also warns when a
// save overwrites a file written for another URL, which happens to pages
// differing only in their query string.
type LoggingStore struct {
	next   freeze.SnapshotStore
	logger *slog.Logger

	mu      sync.Mutex
	written map[string]string // path -> URL
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next freeze.SnapshotStore, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger, written: make(map[string]string)}
}

func (s *LoggingStore) Save(ctx context.Context, res *freeze.Resource) (path string, err error) {
	defer func(begin time.Time) {
		attrs := []any{"path", path, "duration", time.Since(begin)}
		if res != nil {
			attrs = append(attrs, "url", res.URL().String(), "kind", res.Kind().String(), "bytes", len(res.Body()))
		}
		if err != nil {
			s.logger.Error("save", append(attrs, "err", err)...)
			return
		}
		s.logger.Debug("save", attrs...)
		if res != nil {
			s.checkOverwrite(path, res.URL().String())
		}
	}(time.Now())
	return s.next.Save(ctx, res)
}

func (s *LoggingStore) checkOverwrite(path, url string) {
	s.mu.Lock()
	previous, ok := s.written[path]
	s.written[path] = url
	s.mu.Unlock()

	if ok && previous != url {
		s.logger.Warn("save overwrites", "path", path, "url", url, "previous", previous)
	}
}

func (s *LoggingStore) SaveFile(ctx context.Context, relPath string, content []byte) (path string, err error) {
	defer func(begin time.Time) {
		attrs := []any{"rel", relPath, "path", path, "bytes", len(content), "duration", time.Since(begin)}
		if err != nil {
			s.logger.Error("save file", append(attrs, "err", err)...)
			return
		}
		s.logger.Debug("save file", attrs...)
	}(time.Now())
	return s.next.SaveFile(ctx, relPath, content)
}

func (s *LoggingStore) Commit() (err error) {
	defer func(begin time.Time) {
		s.logger.Info("commit snapshot", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Commit()
}

func (s *LoggingStore) Abort() (err error) {
	defer func() {
		s.logger.Warn("abort snapshot", "err", err)
	}()
	return s.next.Abort()
}
