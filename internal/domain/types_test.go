package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItem(name string, qty int, price float64, user string) Item {
	return Item{
		Name:      name,
		Quantity:  qty,
		Price:     price,
		AddedBy:   user,
		CreatedAt: NewTimestamp(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)),
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("Smiths", "ABC123")

	assert.Equal(t, "Smiths", doc.Household.Name)
	assert.Equal(t, "ABC123", doc.Household.JoinCode)
	assert.Empty(t, doc.Users)
	require.Contains(t, doc.Lists, DefaultListName)
	assert.Empty(t, doc.Lists[DefaultListName].Items)
}

func TestDocumentAddUser_Idempotent(t *testing.T) {
	doc := NewDocument("Smiths", "ABC123")

	assert.True(t, doc.AddUser("alice"))
	assert.False(t, doc.AddUser("alice"))
	assert.True(t, doc.AddUser("bob"))

	assert.Equal(t, []string{"alice", "bob"}, doc.Users)
}

func TestDocumentAddList_KeepsExistingItems(t *testing.T) {
	doc := NewDocument("Smiths", "ABC123")
	require.NoError(t, doc.AddItem(DefaultListName, testItem("milk", 2, 3.5, "alice")))

	assert.False(t, doc.AddList(DefaultListName))
	assert.Len(t, doc.Lists[DefaultListName].Items, 1)

	assert.True(t, doc.AddList("party"))
	assert.False(t, doc.AddList("party"))
	assert.Equal(t, []string{"default", "party"}, doc.ListNames())
}

func TestDocumentAddItem_UnknownList(t *testing.T) {
	doc := NewDocument("Smiths", "ABC123")

	err := doc.AddItem("nope", testItem("milk", 1, 1, "alice"))
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestDocumentRemoveItem(t *testing.T) {
	doc := NewDocument("Smiths", "ABC123")
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, doc.AddItem(DefaultListName, testItem(name, 1, 1, "alice")))
	}

	removed, err := doc.RemoveItem(DefaultListName, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Name)

	var names []string
	for _, it := range doc.Lists[DefaultListName].Items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"a", "c", "d"}, names)
}

func TestDocumentRemoveItem_LeavesDocumentUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		index   int
		wantErr error
	}{
		{name: "negative index", list: DefaultListName, index: -1, wantErr: ErrItemOutOfRange},
		{name: "index equal to length", list: DefaultListName, index: 2, wantErr: ErrItemOutOfRange},
		{name: "unknown list", list: "party", index: 0, wantErr: ErrListNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument("Smiths", "ABC123")
			require.NoError(t, doc.AddItem(DefaultListName, testItem("milk", 1, 1, "alice")))
			require.NoError(t, doc.AddItem(DefaultListName, testItem("eggs", 1, 1, "alice")))
			before, err := json.Marshal(doc)
			require.NoError(t, err)

			_, err = doc.RemoveItem(tt.list, tt.index)
			assert.ErrorIs(t, err, tt.wantErr)

			after, err := json.Marshal(doc)
			require.NoError(t, err)
			assert.JSONEq(t, string(before), string(after))
		})
	}
}

func TestItemCost(t *testing.T) {
	assert.InDelta(t, 7.0, testItem("milk", 2, 3.5, "alice").Cost(), 1e-9)
}

func TestTimestampJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 3, 1, 9, 30, 0, 123000000, time.FixedZone("EST", -5*3600)))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-01T14:30:00.123Z"`, string(data))

	var decoded Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, ts.Equal(decoded.Time))
}

func TestTimestampJSON_NaiveISO(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-05-01T10:11:12.123456"`), &ts))

	assert.Equal(t, time.Date(2024, 5, 1, 10, 11, 12, 123456000, time.UTC), ts.Time)
}

func TestTimestampJSON_Invalid(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
}
