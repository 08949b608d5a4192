package local

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbonduro/cartshare/internal/docstore"
	"github.com/vbonduro/cartshare/internal/domain"
	"github.com/vbonduro/cartshare/internal/joincode"
)

var _ docstore.DocumentStore = (*LocalDocumentStore)(nil)

// LocalDocumentStore keeps each household as <JOINCODE>.json under basePath.
type LocalDocumentStore struct {
	basePath string
}

func NewLocalDocumentStore(basePath string) (*LocalDocumentStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create household directory: %w", err)
	}
	return &LocalDocumentStore{basePath: basePath}, nil
}

func (s *LocalDocumentStore) Get(ctx context.Context, joinCode string) (*domain.Document, error) {
	filePath, err := s.safeJoin(joinCode)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read household file: %w", err)
	}

	doc := &domain.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode household %s: %w", joinCode, err)
	}
	return doc, nil
}

// Put writes the document to a temporary file in basePath and renames it
// over the previous version.
func (s *LocalDocumentStore) Put(ctx context.Context, joinCode string, doc *domain.Document) error {
	filePath, err := s.safeJoin(joinCode)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode household %s: %w", joinCode, err)
	}

	f, err := os.CreateTemp(s.basePath, joinCode+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(tmpPath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(tmpPath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		if rerr := os.Remove(tmpPath); rerr != nil {
			slog.Error("failed to remove file after rename error", "error", rerr)
		}
		return fmt.Errorf("failed to replace household file: %w", err)
	}
	return nil
}

// safeJoin maps a join code to its file and rejects anything that is not a
// well-formed code or would escape basePath.
func (s *LocalDocumentStore) safeJoin(joinCode string) (string, error) {
	if !joincode.Valid(joinCode) {
		return "", fmt.Errorf("invalid join code %q", joinCode)
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, joinCode+".json"))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}
