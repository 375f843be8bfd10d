package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/records"
	"fintrack/internal/records/memory"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the configured store, seeds the demo user and connects
// the optional AMQP publisher.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store records.Store
		closeStore func() error
	)
	switch config.Type {
	case MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store, closeStore = repo, repo.Close
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		store, closeStore = repo, repo.Close
		f.logger.Info("Initialized Postgres backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &Result{Store: store}
	cleanups := []func() error{}
	if closeStore != nil {
		cleanups = append(cleanups, closeStore)
	}

	if config.DemoUserID != "" {
		if err := records.SeedDemo(ctx, store, config.DemoUserID); err != nil {
			for _, c := range cleanups {
				_ = c()
			}
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without record events", "error", err)
		} else {
			result.Publisher = client
			cleanups = append(cleanups, client.Close)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		// Close in reverse order of creation.
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}
	return result, nil
}
