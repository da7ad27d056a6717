package slog_test

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/fwojciec/freeze"
	"github.com/fwojciec/freeze/mock"
	freezeslog "github.com/fwojciec/freeze/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingStore(t *testing.T) {
	t.Parallel()

	t.Run("logs saved resources", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SnapshotStore{
			SaveFn: func(ctx context.Context, res *freeze.Resource) (string, error) {
				return "/out.tmp/app.js", nil
			},
		}
		u, _ := url.Parse("http://localhost:3000/app.js")

		path, err := freezeslog.NewLoggingStore(inner, debugLogger(&buf)).Save(context.Background(), freeze.NewResource(u, []byte("x()"), "text/javascript"))

		require.NoError(t, err)
		assert.Equal(t, "/out.tmp/app.js", path)
		output := buf.String()
		assert.Contains(t, output, "msg=save")
		assert.Contains(t, output, "url=http://localhost:3000/app.js")
		assert.Contains(t, output, "kind=asset")
		assert.Contains(t, output, "bytes=3")
	})

	t.Run("warns when two URLs share an output path", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SnapshotStore{
			SaveFn: func(ctx context.Context, res *freeze.Resource) (string, error) {
				return "/out.tmp/list/index.html", nil
			},
		}
		store := freezeslog.NewLoggingStore(inner, debugLogger(&buf))
		page1, _ := url.Parse("http://localhost:3000/list?page=1")
		page2, _ := url.Parse("http://localhost:3000/list?page=2")

		_, err := store.Save(context.Background(), freeze.NewResource(page1, []byte("1"), "text/html"))
		require.NoError(t, err)
		assert.NotContains(t, buf.String(), "save overwrites")

		_, err = store.Save(context.Background(), freeze.NewResource(page2, []byte("2"), "text/html"))
		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN msg=\"save overwrites\"")
		assert.Contains(t, output, "previous=\"http://localhost:3000/list?page=1\"")
	})

	t.Run("logs save file errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SnapshotStore{
			SaveFileFn: func(ctx context.Context, relPath string, content []byte) (string, error) {
				return "", errors.New("disk full")
			},
		}

		_, err := freezeslog.NewLoggingStore(inner, debugLogger(&buf)).SaveFile(context.Background(), "index.md", []byte("# Hi"))

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=ERROR")
		assert.Contains(t, output, "rel=index.md")
		assert.Contains(t, output, "err=\"disk full\"")
	})

	t.Run("logs commit and abort", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SnapshotStore{
			CommitFn: func() error { return nil },
			AbortFn:  func() error { return nil },
		}
		store := freezeslog.NewLoggingStore(inner, debugLogger(&buf))

		require.NoError(t, store.Commit())
		require.NoError(t, store.Abort())

		output := buf.String()
		assert.Contains(t, output, "commit snapshot")
		assert.Contains(t, output, "abort snapshot")
	})
}
