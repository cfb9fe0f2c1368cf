package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/pages"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	loaded, err := NewManifestLoaded("site.yaml", site.Default())
	require.NoError(t, err)
	loaded.Metadata = map[string]string{"request_id": "abc"}
	first, err := store.Append(ctx, loaded)
	require.NoError(t, err)
	require.Positive(t, first.ID)

	rejected, err := NewManifestRejected("site.yaml", serrors.ValidationFailed("title", "must not be empty"))
	require.NoError(t, err)
	second, err := store.Append(ctx, rejected)
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)

	events, err := store.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, TypeManifestRejected, events[0].Type)
	require.Equal(t, TypeManifestLoaded, events[1].Type)
	require.Equal(t, "abc", events[1].Metadata["request_id"])

	var payload ManifestLoaded
	require.NoError(t, json.Unmarshal(events[1].Payload, &payload))
	require.Equal(t, "ahooks-code-analysis", payload.Title)
	require.Equal(t, 25, payload.Pages)
	require.Equal(t, []string{"/hooks"}, payload.Sections)

	var rej ManifestRejected
	require.NoError(t, json.Unmarshal(events[0].Payload, &rej))
	require.Equal(t, "validation", rej.Category)
}

func TestRecent_FilterAndLimit(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e, err := NewManifestRejected("site.yaml", errors.New("boom"))
		require.NoError(t, err)
		_, err = store.Append(ctx, e)
		require.NoError(t, err)
	}
	e, err := NewDocsChecked(&pages.Report{DocsDir: "docs"}, 1500*time.Millisecond)
	require.NoError(t, err)
	_, err = store.Append(ctx, e)
	require.NoError(t, err)

	events, err := store.Recent(ctx, TypeManifestRejected, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)

	events, err = store.Recent(ctx, TypeDocsChecked, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	var checked DocsChecked
	require.NoError(t, json.Unmarshal(events[0].Payload, &checked))
	require.Equal(t, int64(1500), checked.Duration)

	events, err = store.Recent(ctx, "Unknown", 0)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestGetRange(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	base := time.Now()
	for i, offset := range []time.Duration{-2 * time.Hour, 0, 2 * time.Hour} {
		_, err := store.Append(ctx, Event{Type: "Tick", Timestamp: base.Add(offset), Payload: json.RawMessage(`{"i":` + strconv.Itoa(i) + `}`)})
		require.NoError(t, err)
	}

	events, err := store.GetRange(ctx, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.JSONEq(t, `{"i":1}`, string(events[0].Payload))
	require.True(t, events[0].Timestamp.Equal(base))
}

func TestAppend_DefaultsTimestampAndPayload(t *testing.T) {
	store := newStore(t)
	e, err := store.Append(context.Background(), Event{Type: "Bare"})
	require.NoError(t, err)
	require.False(t, e.Timestamp.IsZero())
	require.JSONEq(t, `{}`, string(e.Payload))
}

func TestSQLiteStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = store.Append(context.Background(), Event{Type: "Persisted"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	events, err := reopened.Recent(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Persisted", events[0].Type)
}

func TestStoreInterface(t *testing.T) {
	var _ Store = (*SQLiteStore)(nil)
}
