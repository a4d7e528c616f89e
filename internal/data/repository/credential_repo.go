package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/pkg/database"
	"siddhaka-portal/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CredentialRepository persists the per-visitor client state (auth token and
// serialized identity). Tokens are sealed before they leave the process.
type CredentialRepository interface {
	Find(ctx context.Context, visitorID uuid.UUID) (*entity.Credential, error)
	Save(ctx context.Context, credential *entity.Credential) error
	Delete(ctx context.Context, visitorID uuid.UUID) error
	CleanStale(ctx context.Context, olderThan time.Duration) error
}

const credentialSchema = `
	CREATE TABLE IF NOT EXISTS web_credentials (
		visitor_id UUID PRIMARY KEY,
		token      TEXT NOT NULL,
		identity   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type credentialRepository struct {
	db     database.PgxIface
	sealer *utils.Sealer
	log    *zap.Logger
}

func NewCredentialRepository(db database.PgxIface, sealer *utils.Sealer, log *zap.Logger) CredentialRepository {
	return &credentialRepository{
		db:     db,
		sealer: sealer,
		log:    log.With(zap.String("repository", "credential")),
	}
}

// EnsureCredentialSchema creates the credential table when it is missing.
func EnsureCredentialSchema(ctx context.Context, db database.PgxIface) error {
	if _, err := db.Exec(ctx, credentialSchema); err != nil {
		return fmt.Errorf("create web_credentials table: %w", err)
	}
	return nil
}

func (r *credentialRepository) Find(ctx context.Context, visitorID uuid.UUID) (*entity.Credential, error) {
	query := `
		SELECT token, identity, updated_at
		FROM web_credentials
		WHERE visitor_id = $1
	`

	var (
		sealedToken string
		identityRaw []byte
		updatedAt   time.Time
	)
	err := r.db.QueryRow(ctx, query, visitorID).Scan(&sealedToken, &identityRaw, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find credential",
			zap.Error(err),
			zap.String("visitor_id", visitorID.String()),
		)
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	return r.decode(visitorID, sealedToken, identityRaw, updatedAt)
}

func (r *credentialRepository) Save(ctx context.Context, credential *entity.Credential) error {
	sealedToken, identityRaw, err := encodeCredential(r.sealer, credential)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO web_credentials (visitor_id, token, identity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (visitor_id)
		DO UPDATE SET token = EXCLUDED.token,
		              identity = EXCLUDED.identity,
		              updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.Exec(ctx, query, credential.VisitorID, sealedToken, identityRaw, credential.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to save credential",
			zap.Error(err),
			zap.String("visitor_id", credential.VisitorID.String()),
		)
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, visitorID uuid.UUID) error {
	query := `DELETE FROM web_credentials WHERE visitor_id = $1`

	if _, err := r.db.Exec(ctx, query, visitorID); err != nil {
		r.log.Error("Failed to delete credential",
			zap.Error(err),
			zap.String("visitor_id", visitorID.String()),
		)
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	return nil
}

func (r *credentialRepository) CleanStale(ctx context.Context, olderThan time.Duration) error {
	query := `DELETE FROM web_credentials WHERE updated_at < $1`

	result, err := r.db.Exec(ctx, query, time.Now().Add(-olderThan))
	if err != nil {
		r.log.Error("Failed to clean stale credentials", zap.Error(err))
		return fmt.Errorf("failed to clean credentials: %w", err)
	}

	r.log.Debug("Stale credentials cleaned", zap.Int64("deleted", result.RowsAffected()))
	return nil
}

func (r *credentialRepository) decode(visitorID uuid.UUID, sealedToken string, identityRaw []byte, updatedAt time.Time) (*entity.Credential, error) {
	credential, err := decodeCredential(r.sealer, visitorID, sealedToken, identityRaw)
	if err != nil {
		r.log.Warn("Stored credential unreadable",
			zap.Error(err),
			zap.String("visitor_id", visitorID.String()),
		)
		return nil, nil
	}
	credential.UpdatedAt = updatedAt
	return credential, nil
}

func encodeCredential(sealer *utils.Sealer, credential *entity.Credential) (string, []byte, error) {
	sealedToken, err := sealer.Seal(credential.Token)
	if err != nil {
		return "", nil, fmt.Errorf("seal token: %w", err)
	}

	identityRaw, err := json.Marshal(credential.Identity)
	if err != nil {
		return "", nil, fmt.Errorf("encode identity: %w", err)
	}

	return sealedToken, identityRaw, nil
}

func decodeCredential(sealer *utils.Sealer, visitorID uuid.UUID, sealedToken string, identityRaw []byte) (*entity.Credential, error) {
	token, err := sealer.Open(sealedToken)
	if err != nil {
		return nil, err
	}

	var identity entity.Identity
	if err := json.Unmarshal(identityRaw, &identity); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	identity.NormalizeID()

	return &entity.Credential{
		VisitorID: visitorID,
		Token:     token,
		Identity:  identity,
	}, nil
}
