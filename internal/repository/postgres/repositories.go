package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/repository"
)

// NewRepositories wires all postgres-backed repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
	}
}
