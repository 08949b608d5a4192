// Package docstore defines the keyed storage used for household documents.
package docstore

import (
	"context"

	"github.com/vbonduro/cartshare/internal/domain"
)

// DocumentStore loads and saves whole household documents by join code.
type DocumentStore interface {
	// Get returns nil and no error when no document exists for joinCode.
	Get(ctx context.Context, joinCode string) (*domain.Document, error)
	// Put overwrites any previous document for joinCode.
	Put(ctx context.Context, joinCode string, doc *domain.Document) error
}
