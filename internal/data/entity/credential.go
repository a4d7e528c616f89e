package entity

import (
	"time"

	"github.com/google/uuid"
)

// Storage keys of the persisted client state.
const (
	CredentialTokenKey = "siddhaka_token"
	CredentialUserKey  = "siddhaka_user"
)

// Credential is what survives between visits for one browser: the auth token
// and the serialized identity. Both are written and cleared together.
type Credential struct {
	VisitorID uuid.UUID `db:"visitor_id"`
	Token     string    `db:"token"`
	Identity  Identity  `db:"identity"`
	UpdatedAt time.Time `db:"updated_at"`
}
