package resources_test

import (
	"path/filepath"
	"testing"

	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/resources"
	"github.com/richard-senior/mcp/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndRead(t *testing.T) {
	r := resources.NewRegistry()
	r.Register(protocol.Resource{URI: "mcp://test/a", Name: "a"}, func(uri string) (*protocol.ReadResourceResult, error) {
		return &protocol.ReadResourceResult{
			Contents: []protocol.ResourceContents{&protocol.TextResourceContents{URI: uri, Text: "hello"}},
		}, nil
	})

	assert.True(t, r.Exists("mcp://test/a"))
	assert.False(t, r.Exists("mcp://test/missing"))
	require.Len(t, r.List(), 1)

	result, err := r.Read("mcp://test/a")
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	text, ok := result.Contents[0].(*protocol.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "hello", text.Text)
}

func TestRegistry_ReadUnknownFails(t *testing.T) {
	r := resources.NewRegistry()
	_, err := r.Read("mcp://test/missing")
	assert.Error(t, err)
}

func newTestStore(t *testing.T) *resources.SubscriptionStore {
	t.Helper()
	db, err := util.NewSQLite(filepath.Join(t.TempDir(), "subs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := resources.NewSubscriptionStore(db)
	require.NoError(t, err)
	return store
}

func TestSubscriptionStore_SubscribeAndUnsubscribe(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Subscribe("session-1", "mcp://test/a"))
	require.NoError(t, store.Subscribe("session-2", "mcp://test/a"))
	assert.ElementsMatch(t, []string{"session-1", "session-2"}, store.Subscribers("mcp://test/a"))

	require.NoError(t, store.Unsubscribe("session-1", "mcp://test/a"))
	assert.Equal(t, []string{"session-2"}, store.Subscribers("mcp://test/a"))
}

func TestSubscriptionStore_UnsubscribeAll(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Subscribe("session-1", "mcp://test/a"))
	require.NoError(t, store.Subscribe("session-1", "mcp://test/b"))

	require.NoError(t, store.UnsubscribeAll("session-1"))
	assert.Empty(t, store.Subscribers("mcp://test/a"))
	assert.Empty(t, store.Subscribers("mcp://test/b"))
}

// TestSubscriptionStore_SurvivesReopen covers the durability the sqlite
// backing exists for: subscriptions recorded before a restart are present
// in a freshly opened store pointed at the same file.
func TestSubscriptionStore_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subs.db")

	db1, err := util.NewSQLite(dbPath)
	require.NoError(t, err)
	store1, err := resources.NewSubscriptionStore(db1)
	require.NoError(t, err)
	require.NoError(t, store1.Subscribe("session-1", "mcp://test/a"))
	require.NoError(t, db1.Close())

	db2, err := util.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db2.Close() })
	store2, err := resources.NewSubscriptionStore(db2)
	require.NoError(t, err)
	assert.Equal(t, []string{"session-1"}, store2.Subscribers("mcp://test/a"))
}
