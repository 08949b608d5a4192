package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/vbonduro/cartshare/internal/analytics"
	"github.com/vbonduro/cartshare/internal/docstore"
	"github.com/vbonduro/cartshare/internal/domain"
	"github.com/vbonduro/cartshare/internal/joincode"
)

const maxJoinCodeAttempts = 5

// ErrJoinCodeExhausted is returned when every generated join code collided
// with an existing household.
var ErrJoinCodeExhausted = errors.New("could not allocate an unused join code")

// DeleteResult tells callers whether DeleteItem removed anything.
type DeleteResult int

const (
	NothingToDelete DeleteResult = iota
	Deleted
)

func (r DeleteResult) String() string {
	if r == Deleted {
		return "deleted"
	}
	return "nothing_to_delete"
}

// mutationRecorder is the subset of metrics.Metrics that HouseholdService uses.
type mutationRecorder interface {
	RecordMutation(operation, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordMutation(string, string) {}

type HouseholdService struct {
	store    docstore.DocumentStore
	logger   *slog.Logger
	recorder mutationRecorder
	locks    *keyedMutex
	now      func() time.Time
	newCode  func() (string, error)
}

type Option func(*HouseholdService)

// WithClock overrides the time source used for item timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *HouseholdService) { s.now = now }
}

// WithJoinCodeGenerator overrides join code generation.
func WithJoinCodeGenerator(gen func() (string, error)) Option {
	return func(s *HouseholdService) { s.newCode = gen }
}

func WithRecorder(r mutationRecorder) Option {
	return func(s *HouseholdService) { s.recorder = r }
}

func NewHouseholdService(store docstore.DocumentStore, logger *slog.Logger, opts ...Option) *HouseholdService {
	s := &HouseholdService{
		store:    store,
		logger:   logger,
		recorder: noopRecorder{},
		locks:    newKeyedMutex(),
		now:      time.Now,
		newCode:  joincode.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListView bundles one list with its per-user totals for rendering.
type ListView struct {
	Household domain.Household
	Users     []string
	ListNames []string
	Name      string
	Items     []domain.Item
	Totals    map[string]float64
	Total     float64
}

// CreateHousehold stores a new household with no users and the default list,
// and returns its join code. Generated codes that already exist are retried.
func (s *HouseholdService) CreateHousehold(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: household name required", domain.ErrInvalidInput)
	}

	for attempt := 1; attempt <= maxJoinCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}

		created, err := s.createIfAbsent(ctx, code, name)
		if err != nil {
			s.recorder.RecordMutation("create_household", "error")
			return "", err
		}
		if created {
			s.recorder.RecordMutation("create_household", "ok")
			s.logger.Info("household created", "join_code", code, "attempt", attempt)
			return code, nil
		}
		s.logger.Warn("join code collision", "join_code", code, "attempt", attempt)
	}

	s.recorder.RecordMutation("create_household", "error")
	return "", ErrJoinCodeExhausted
}

func (s *HouseholdService) createIfAbsent(ctx context.Context, code, name string) (bool, error) {
	unlock := s.locks.Lock(code)
	defer unlock()

	existing, err := s.store.Get(ctx, code)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if existing != nil {
		return false, nil
	}
	if err := s.store.Put(ctx, code, domain.NewDocument(name, code)); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return true, nil
}

// JoinHousehold adds username to the household. The join code is normalised
// first; joining twice is harmless.
func (s *HouseholdService) JoinHousehold(ctx context.Context, code, username string) (*domain.Document, error) {
	code = joincode.Normalize(code)
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(code)
	defer unlock()

	doc, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}

	if doc.AddUser(username) {
		if err := s.save(ctx, code, doc); err != nil {
			s.recorder.RecordMutation("add_user", "error")
			return nil, err
		}
		s.recorder.RecordMutation("add_user", "ok")
		s.logger.Info("user joined household", "join_code", code, "username", username)
	} else {
		s.recorder.RecordMutation("add_user", "duplicate")
	}
	return doc, nil
}

// AddList creates an empty list. An existing list is left as is.
func (s *HouseholdService) AddList(ctx context.Context, code, listName string) error {
	listName = strings.TrimSpace(listName)
	if listName == "" {
		return fmt.Errorf("%w: list name required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(code)
	defer unlock()

	doc, err := s.load(ctx, code)
	if err != nil {
		return err
	}

	if !doc.AddList(listName) {
		s.recorder.RecordMutation("add_list", "duplicate")
		return nil
	}
	if err := s.save(ctx, code, doc); err != nil {
		s.recorder.RecordMutation("add_list", "error")
		return err
	}
	s.recorder.RecordMutation("add_list", "ok")
	s.logger.Info("list added", "join_code", code, "list", listName)
	return nil
}

// AddItem appends an item stamped with the current UTC time. The list must
// exist and username must be a member of the household.
func (s *HouseholdService) AddItem(ctx context.Context, code, listName, name string, quantity int, price float64, username string) (*domain.Item, error) {
	name = strings.TrimSpace(name)
	username = strings.TrimSpace(username)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: item name required", domain.ErrInvalidInput)
	case quantity <= 0:
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidInput, quantity)
	case price < 0 || math.IsNaN(price) || math.IsInf(price, 0):
		return nil, fmt.Errorf("%w: invalid price %v", domain.ErrInvalidInput, price)
	case username == "":
		return nil, fmt.Errorf("%w: username required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(code)
	defer unlock()

	doc, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if !doc.HasUser(username) {
		return nil, fmt.Errorf("%w: %s is not a member of household %s", domain.ErrInvalidInput, username, code)
	}

	item := domain.Item{
		Name:      name,
		Quantity:  quantity,
		Price:     price,
		AddedBy:   username,
		CreatedAt: domain.NewTimestamp(s.now()),
	}
	if err := doc.AddItem(listName, item); err != nil {
		return nil, err
	}
	if err := s.save(ctx, code, doc); err != nil {
		s.recorder.RecordMutation("add_item", "error")
		return nil, err
	}

	s.recorder.RecordMutation("add_item", "ok")
	s.logger.Debug("item added", "join_code", code, "list", listName, "item", name, "username", username)
	return &item, nil
}

// DeleteItem reloads the household, removes the item at index and saves.
// An unknown list or out-of-range index yields NothingToDelete and leaves the
// stored document untouched.
func (s *HouseholdService) DeleteItem(ctx context.Context, code, listName string, index int) (DeleteResult, error) {
	unlock := s.locks.Lock(code)
	defer unlock()

	doc, err := s.load(ctx, code)
	if err != nil {
		return NothingToDelete, err
	}

	removed, err := doc.RemoveItem(listName, index)
	if errors.Is(err, domain.ErrListNotFound) || errors.Is(err, domain.ErrItemOutOfRange) {
		s.recorder.RecordMutation("delete_item", NothingToDelete.String())
		s.logger.Info("nothing to delete", "join_code", code, "list", listName, "index", index, "reason", err)
		return NothingToDelete, nil
	}
	if err != nil {
		return NothingToDelete, err
	}

	if err := s.save(ctx, code, doc); err != nil {
		s.recorder.RecordMutation("delete_item", "error")
		return NothingToDelete, err
	}

	s.recorder.RecordMutation("delete_item", Deleted.String())
	s.logger.Debug("item deleted", "join_code", code, "list", listName, "index", index, "item", removed.Name)
	return Deleted, nil
}

func (s *HouseholdService) GetHousehold(ctx context.Context, code string) (*domain.Document, error) {
	return s.load(ctx, code)
}

func (s *HouseholdService) GetListView(ctx context.Context, code, listName string) (*ListView, error) {
	doc, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}

	list := doc.List(listName)
	if list == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrListNotFound, listName)
	}

	return &ListView{
		Household: doc.Household,
		Users:     doc.Users,
		ListNames: doc.ListNames(),
		Name:      listName,
		Items:     list.Items,
		Totals:    analytics.CalculateTotals(list.Items),
		Total:     analytics.ListTotal(list.Items),
	}, nil
}

func (s *HouseholdService) GetAnalytics(ctx context.Context, code string) (*analytics.Summary, error) {
	doc, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	return analytics.AllLists(doc), nil
}

func (s *HouseholdService) load(ctx context.Context, code string) (*domain.Document, error) {
	if !joincode.Valid(code) {
		return nil, fmt.Errorf("%w: %q", domain.ErrHouseholdNotFound, code)
	}
	doc, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrHouseholdNotFound, code)
	}
	return doc, nil
}

func (s *HouseholdService) save(ctx context.Context, code string, doc *domain.Document) error {
	if err := s.store.Put(ctx, code, doc); err != nil {
		s.logger.Error("failed to save household", "join_code", code, "error", err)
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}
