package backend

import (
	"fmt"
	"log/slog"

	"bilancio/internal/memory"
	"bilancio/internal/storage"
)

// Config holds what each backend needs to come up.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	DataDirectory string
	LimitsFile    string
}

// Factory creates stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the configured store and returns it with a cleanup function.
func (f *Factory) Create(config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("create sqlite backend: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "path", config.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil
	case MemoryBackend:
		store, err := memory.NewFromFiles(config.DataDirectory, config.LimitsFile)
		if err != nil {
			return nil, fmt.Errorf("create memory backend: %w", err)
		}
		f.logger.Info("Initialized memory backend", "dir", config.DataDirectory)
		return &Result{Store: store, Cleanup: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
