package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/cartshare/internal/db"
	"github.com/vbonduro/cartshare/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func sampleDocument(joinCode string) *domain.Document {
	doc := domain.NewDocument("Smiths", joinCode)
	doc.AddUser("alice")
	doc.AddUser("bob")
	doc.AddList("party")
	_ = doc.AddItem("default", domain.Item{
		Name:      "milk",
		Quantity:  2,
		Price:     3.5,
		AddedBy:   "alice",
		CreatedAt: domain.NewTimestamp(time.Date(2025, 2, 3, 4, 5, 6, 789000000, time.UTC)),
	})
	_ = doc.AddItem("party", domain.Item{
		Name:      "chips",
		Quantity:  3,
		Price:     1.99,
		AddedBy:   "bob",
		CreatedAt: domain.NewTimestamp(time.Date(2025, 2, 3, 5, 0, 0, 0, time.UTC)),
	})
	return doc
}

func TestHouseholdStoreRoundTrip(t *testing.T) {
	store := NewHouseholdStore(openTestDB(t))
	ctx := context.Background()
	doc := sampleDocument("ABC123")

	require.NoError(t, store.Put(ctx, "ABC123", doc))

	loaded, err := store.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestHouseholdStoreGet_NotFound(t *testing.T) {
	store := NewHouseholdStore(openTestDB(t))

	doc, err := store.Get(context.Background(), "ZZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestHouseholdStorePut_Overwrites(t *testing.T) {
	store := NewHouseholdStore(openTestDB(t))
	ctx := context.Background()

	doc := sampleDocument("ABC123")
	require.NoError(t, store.Put(ctx, "ABC123", doc))

	doc.AddUser("carol")
	_, err := doc.RemoveItem("party", 0)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "ABC123", doc))

	loaded, err := store.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, loaded.Users)
	assert.Empty(t, loaded.Lists["party"].Items)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHouseholdStoreGet_CorruptDocument(t *testing.T) {
	d := openTestDB(t)
	_, err := d.Exec(`INSERT INTO households (join_code, name, document) VALUES ('BAD000', 'x', 'not json')`)
	require.NoError(t, err)

	_, err = NewHouseholdStore(d).Get(context.Background(), "BAD000")
	assert.Error(t, err)
}

func TestHouseholdStoreCount(t *testing.T) {
	store := NewHouseholdStore(openTestDB(t))
	ctx := context.Background()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, store.Put(ctx, "AAAAAA", sampleDocument("AAAAAA")))
	require.NoError(t, store.Put(ctx, "BBBBBB", sampleDocument("BBBBBB")))

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
