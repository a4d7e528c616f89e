package entity

import (
	"time"
)

// Base carries the identifier fields every backend record has. The clinic
// backend answers with either "_id" or "id", so both are decoded and
// NormalizeID folds them into ID.
type Base struct {
	ID        string    `json:"id,omitempty"`
	LegacyID  string    `json:"_id,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (b *Base) NormalizeID() {
	if b.ID == "" {
		b.ID = b.LegacyID
	}
	b.LegacyID = ""
}
