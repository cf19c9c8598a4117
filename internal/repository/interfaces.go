package repository

import (
	"context"

	"github.com/jafarshop/storefront/internal/domain"
)

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// Repositories aggregates all repositories
type Repositories struct {
	IdempotencyKey IdempotencyKeyRepository
}
