package repository

import (
	"time"

	"siddhaka-portal/pkg/database"
	"siddhaka-portal/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository struct {
	Credential CredentialRepository
}

// NewRepository builds the postgres-backed repositories.
func NewRepository(db database.PgxIface, sealer *utils.Sealer, log *zap.Logger) *Repository {
	return &Repository{
		Credential: NewCredentialRepository(db, sealer, log),
	}
}

// NewRedisRepository builds the redis-backed repositories.
func NewRedisRepository(rdb *redis.Client, sealer *utils.Sealer, ttl time.Duration, log *zap.Logger) *Repository {
	return &Repository{
		Credential: NewRedisCredentialRepository(rdb, sealer, ttl, log),
	}
}
