// Package memory provides an in-process store seeded from data files. It is
// the zero-configuration backend and the fixture store used by service tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"bilancio/internal/config"
	"bilancio/internal/core"
)

type Store struct {
	mu     sync.Mutex
	items  []core.Transaction
	limits map[string]core.Limits
}

func New() *Store {
	return &Store{limits: make(map[string]core.Limits)}
}

// NewFromFiles seeds a store from base/transactions.json and an optional YAML
// limits file. Missing files are not an error: the store starts empty.
func NewFromFiles(base, limitsFile string) (*Store, error) {
	s := New()

	txns, err := readTransactions(filepath.Join(base, "transactions.json"))
	if err != nil {
		return nil, fmt.Errorf("seed transactions: %w", err)
	}
	s.items = txns

	if limitsFile != "" {
		limits, err := config.LoadLimits(limitsFile)
		if err != nil {
			return nil, fmt.Errorf("seed limits: %w", err)
		}
		if limits != nil {
			s.limits = limits
		}
	}

	return s, nil
}

// AppendTransaction stores a validated transaction, assigning an identifier
// when the caller supplies none.
func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
	return t.ID, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s not found", id)
}

// ListTransactions returns copies of one owner's transactions.
func (s *Store) ListTransactions(_ context.Context, owner string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.items {
		if t.Owner != owner {
			continue
		}
		if t.Recurrence != nil {
			r := *t.Recurrence
			t.Recurrence = &r
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) GetLimits(_ context.Context, owner string) (core.Limits, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limits, ok := s.limits[owner]
	if !ok {
		return nil, nil
	}
	out := make(core.Limits, len(limits))
	for c, m := range limits {
		out[c] = m
	}
	return out, nil
}

// SetLimits replaces one owner's limits wholesale.
func (s *Store) SetLimits(_ context.Context, owner string, limits core.Limits) error {
	if err := limits.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[owner] = limits
	return nil
}

func (s *Store) ListOwners(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	for _, t := range s.items {
		seen[t.Owner] = struct{}{}
	}
	for owner := range s.limits {
		seen[owner] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for owner := range seen {
		out = append(out, owner)
	}
	sort.Strings(out)
	return out, nil
}

// seedTransaction is the on-disk JSON shape: amounts are decimal strings,
// dates are ISO days.
type seedTransaction struct {
	ID         string `json:"id"`
	Owner      string `json:"owner"`
	Amount     string `json:"amount"`
	Kind       string `json:"kind"`
	Category   string `json:"category,omitempty"`
	Date       string `json:"date"`
	Recurrence *struct {
		Every string `json:"every"`
		Until string `json:"until,omitempty"`
	} `json:"recurrence,omitempty"`
}

func readTransactions(path string) ([]core.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var seeds []seedTransaction
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make([]core.Transaction, 0, len(seeds))
	for i, seed := range seeds {
		t, err := seed.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (s seedTransaction) toTransaction() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(s.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", s.Amount, err)
	}
	date, err := parseDay(s.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:       s.ID,
		Owner:    s.Owner,
		Amount:   core.Money{Cents: cents},
		Kind:     core.Kind(s.Kind),
		Category: core.Category(s.Category),
		Date:     date,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if s.Recurrence != nil {
		rec := core.Recurrence{Every: core.RepetitionType(s.Recurrence.Every)}
		if s.Recurrence.Until != "" {
			until, err := parseDay(s.Recurrence.Until)
			if err != nil {
				return core.Transaction{}, err
			}
			rec.Until = until
		}
		t.Recurrence = &rec
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func parseDay(s string) (core.Date, error) {
	d, err := core.ParseDay(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("date %q: %w", s, err)
	}
	return d, nil
}
