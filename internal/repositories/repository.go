package repositories

import "context"

// Repository aggregates all repository interfaces.
type Repository interface {
	Material() MaterialRepository
	User() UserRepository

	// WithTransaction executes fn with a Repository bound to a transaction.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
