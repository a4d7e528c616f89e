package repository

import (
	"context"
	"fmt"
	"time"

	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const credentialKeyPrefix = "siddhaka:credential:"

type redisCredentialRepository struct {
	rdb    *redis.Client
	sealer *utils.Sealer
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisCredentialRepository stores each visitor's credential as a hash
// holding the two client-state keys, expiring after ttl of inactivity.
func NewRedisCredentialRepository(rdb *redis.Client, sealer *utils.Sealer, ttl time.Duration, log *zap.Logger) CredentialRepository {
	return &redisCredentialRepository{
		rdb:    rdb,
		sealer: sealer,
		ttl:    ttl,
		log:    log.With(zap.String("repository", "credential_redis")),
	}
}

func credentialKey(visitorID uuid.UUID) string {
	return credentialKeyPrefix + visitorID.String()
}

func (r *redisCredentialRepository) Find(ctx context.Context, visitorID uuid.UUID) (*entity.Credential, error) {
	fields, err := r.rdb.HGetAll(ctx, credentialKey(visitorID)).Result()
	if err != nil {
		r.log.Error("Failed to find credential",
			zap.Error(err),
			zap.String("visitor_id", visitorID.String()),
		)
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	sealedToken, hasToken := fields[entity.CredentialTokenKey]
	identityRaw, hasUser := fields[entity.CredentialUserKey]
	if !hasToken || !hasUser {
		return nil, nil
	}

	credential, err := decodeCredential(r.sealer, visitorID, sealedToken, []byte(identityRaw))
	if err != nil {
		r.log.Warn("Stored credential unreadable",
			zap.Error(err),
			zap.String("visitor_id", visitorID.String()),
		)
		return nil, nil
	}
	return credential, nil
}

func (r *redisCredentialRepository) Save(ctx context.Context, credential *entity.Credential) error {
	sealedToken, identityRaw, err := encodeCredential(r.sealer, credential)
	if err != nil {
		return err
	}

	key := credentialKey(credential.VisitorID)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			entity.CredentialTokenKey, sealedToken,
			entity.CredentialUserKey, string(identityRaw),
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to save credential",
			zap.Error(err),
			zap.String("visitor_id", credential.VisitorID.String()),
		)
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}

func (r *redisCredentialRepository) Delete(ctx context.Context, visitorID uuid.UUID) error {
	if err := r.rdb.Del(ctx, credentialKey(visitorID)).Err(); err != nil {
		r.log.Error("Failed to delete credential",
			zap.Error(err),
			zap.String("visitor_id", visitorID.String()),
		)
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// CleanStale is a no-op: redis expires credentials through the key TTL.
func (r *redisCredentialRepository) CleanStale(ctx context.Context, olderThan time.Duration) error {
	return nil
}
