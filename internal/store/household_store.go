package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vbonduro/cartshare/internal/docstore"
	"github.com/vbonduro/cartshare/internal/domain"
)

var _ docstore.DocumentStore = (*HouseholdStore)(nil)

// HouseholdStore keeps one row per household with the document stored as JSON.
type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func (s *HouseholdStore) Get(ctx context.Context, joinCode string) (*domain.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM households WHERE join_code = ?
	`, joinCode).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get household: %w", err)
	}

	doc := &domain.Document{}
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		return nil, fmt.Errorf("failed to decode household %s: %w", joinCode, err)
	}
	return doc, nil
}

func (s *HouseholdStore) Put(ctx context.Context, joinCode string, doc *domain.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode household %s: %w", joinCode, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO households (join_code, name, document) VALUES (?, ?, ?)
		ON CONFLICT(join_code) DO UPDATE SET
			name = excluded.name,
			document = excluded.document,
			updated_at = datetime('now')
	`, joinCode, doc.Household.Name, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save household: %w", err)
	}

	return nil
}

// Count returns the number of stored households.
func (s *HouseholdStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM households`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count households: %w", err)
	}
	return n, nil
}
