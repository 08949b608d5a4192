package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"
)

// DefaultListName is the list every household starts with.
const DefaultListName = "default"

type Household struct {
	Name     string `json:"name"`
	JoinCode string `json:"join_code"`
}

// Document is the full persisted state of one household, keyed by join code.
type Document struct {
	Household Household        `json:"household"`
	Users     []string         `json:"users"`
	Lists     map[string]*List `json:"lists"`
}

type List struct {
	Items []Item `json:"items"`
}

type Item struct {
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	AddedBy   string    `json:"added_by"`
	CreatedAt Timestamp `json:"created_at"`
}

// Cost is quantity times price.
func (i Item) Cost() float64 {
	return float64(i.Quantity) * i.Price
}

// Timestamp is a UTC time that also accepts naive ISO-8601 values
// (no offset) as written by older household files.
type Timestamp struct {
	time.Time
}

const naiveLayout = "2006-01-02T15:04:05.999999999"

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	parsed, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// NewDocument builds the initial state for a freshly created household.
func NewDocument(name, joinCode string) *Document {
	return &Document{
		Household: Household{Name: name, JoinCode: joinCode},
		Users:     []string{},
		Lists: map[string]*List{
			DefaultListName: {Items: []Item{}},
		},
	}
}

func (d *Document) HasUser(username string) bool {
	for _, u := range d.Users {
		if u == username {
			return true
		}
	}
	return false
}

// AddUser appends username unless it is already a member. It reports whether
// the user was added.
func (d *Document) AddUser(username string) bool {
	if d.HasUser(username) {
		return false
	}
	d.Users = append(d.Users, username)
	return true
}

// AddList creates an empty list unless one with that name exists. An
// existing list is left untouched.
func (d *Document) AddList(name string) bool {
	if d.Lists == nil {
		d.Lists = make(map[string]*List)
	}
	if _, exists := d.Lists[name]; exists {
		return false
	}
	d.Lists[name] = &List{Items: []Item{}}
	return true
}

// List returns the named list or nil.
func (d *Document) List(name string) *List {
	return d.Lists[name]
}

// ListNames returns list names in ascending order.
func (d *Document) ListNames() []string {
	names := make([]string, 0, len(d.Lists))
	for name := range d.Lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Document) AddItem(listName string, item Item) error {
	list, ok := d.Lists[listName]
	if !ok || list == nil {
		return fmt.Errorf("%w: %s", ErrListNotFound, listName)
	}
	list.Items = append(list.Items, item)
	return nil
}

// RemoveItem deletes the item at index, keeping the relative order of the
// rest. On error the document is unchanged.
func (d *Document) RemoveItem(listName string, index int) (Item, error) {
	list, ok := d.Lists[listName]
	if !ok || list == nil {
		return Item{}, fmt.Errorf("%w: %s", ErrListNotFound, listName)
	}
	if index < 0 || index >= len(list.Items) {
		return Item{}, fmt.Errorf("%w: index %d, list has %d items", ErrItemOutOfRange, index, len(list.Items))
	}
	removed := list.Items[index]
	list.Items = slices.Delete(list.Items, index, index+1)
	return removed, nil
}
