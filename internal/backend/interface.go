package backend

import (
	"context"

	"bilancio/internal/core"
)

// TransactionReader supplies one owner's raw transaction set, recurrence
// templates included, exactly as stored.
type TransactionReader interface {
	ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error)
}

// TransactionWriter records and removes posted transactions. Virtual
// occurrences produced by expansion must never pass through here.
type TransactionWriter interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (string, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// LimitsReader supplies an owner's configured per-category monthly caps.
// A nil map means no limits are configured.
type LimitsReader interface {
	GetLimits(ctx context.Context, owner string) (core.Limits, error)
}

// OwnerLister enumerates owners with stored data, for batch processing.
type OwnerLister interface {
	ListOwners(ctx context.Context) ([]string, error)
}

// Store is the unified collaborator boundary the engine's callers consume:
// it supplies transactions and limits as data and knows nothing about the
// derived metrics.
type Store interface {
	TransactionReader
	TransactionWriter
	LimitsReader
	OwnerLister
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result contains the store instance and its cleanup function.
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// Type selects a storage backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
