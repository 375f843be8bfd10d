package backend

import (
	"context"
	"slices"

	"fintrack/internal/records"
	"fintrack/internal/services"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// Result is a ready record store plus the optional event publisher wired to it.
type Result struct {
	Store records.Store
	// Publisher is nil when AMQP is not configured or unreachable at startup.
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// DemoUserID is seeded with a user, an allocation and goals when empty.
	DemoUserID string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}
