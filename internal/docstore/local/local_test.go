package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/cartshare/internal/domain"
)

func sampleDocument() *domain.Document {
	doc := domain.NewDocument("Smiths", "ABC123")
	doc.AddUser("alice")
	_ = doc.AddItem("default", domain.Item{
		Name:      "milk",
		Quantity:  2,
		Price:     3.5,
		AddedBy:   "alice",
		CreatedAt: domain.NewTimestamp(time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)),
	})
	return doc
}

func TestLocalDocumentStorePutAndGet(t *testing.T) {
	tmpdir := t.TempDir()
	store, err := NewLocalDocumentStore(tmpdir)
	require.NoError(t, err)
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, store.Put(ctx, "ABC123", doc))

	loaded, err := store.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	_, err = os.Stat(filepath.Join(tmpdir, "ABC123.json"))
	assert.NoError(t, err)
}

func TestLocalDocumentStorePut_NoTempFilesLeft(t *testing.T) {
	tmpdir := t.TempDir()
	store, err := NewLocalDocumentStore(tmpdir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "ABC123", sampleDocument()))
	require.NoError(t, store.Put(ctx, "ABC123", sampleDocument()))

	entries, err := os.ReadDir(tmpdir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ABC123.json", entries[0].Name())
}

func TestLocalDocumentStoreGet_NotFound(t *testing.T) {
	store, err := NewLocalDocumentStore(t.TempDir())
	require.NoError(t, err)

	doc, err := store.Get(context.Background(), "ZZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

// Files written by the earlier deployment carry naive timestamps.
func TestLocalDocumentStoreGet_LegacyFile(t *testing.T) {
	tmpdir := t.TempDir()
	legacy := `{
  "household": {"name": "Smiths", "join_code": "OLD123"},
  "users": ["alice"],
  "lists": {
    "default": {"items": [
      {"name": "milk", "quantity": 2, "price": 3.5, "added_by": "alice", "created_at": "2024-05-01T10:11:12.123456"}
    ]}
  }
}`
	require.NoError(t, os.WriteFile(filepath.Join(tmpdir, "OLD123.json"), []byte(legacy), 0644))

	store, err := NewLocalDocumentStore(tmpdir)
	require.NoError(t, err)

	doc, err := store.Get(context.Background(), "OLD123")
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Len(t, doc.Lists["default"].Items, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 11, 12, 123456000, time.UTC), doc.Lists["default"].Items[0].CreatedAt.Time)
}

func TestLocalDocumentStoreGet_Corrupt(t *testing.T) {
	tmpdir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpdir, "BAD000.json"), []byte("{"), 0644))
	store, err := NewLocalDocumentStore(tmpdir)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "BAD000")
	assert.Error(t, err)
}

func TestLocalDocumentStoreRejectsInvalidKeys(t *testing.T) {
	store, err := NewLocalDocumentStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../../etc/passwd", "../ABCD", "abc123", ""} {
		_, err := store.Get(ctx, key)
		assert.Error(t, err, "Get(%q)", key)
		assert.Error(t, store.Put(ctx, key, sampleDocument()), "Put(%q)", key)
	}
}
