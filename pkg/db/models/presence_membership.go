package models

import (
	"time"

	"github.com/google/uuid"
)

// PresenceMembership associates additional entities with a presence, each with
// an optional role and a confidence. Inserts are idempotent on the
// (presence_id, entity_id) pair.
type PresenceMembership struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PresenceID uuid.UUID `gorm:"column:presence_id;type:uuid;not null;uniqueIndex:uq_presence_memberships,priority:1"`
	EntityID   uuid.UUID `gorm:"column:entity_id;type:uuid;not null;uniqueIndex:uq_presence_memberships,priority:2;index"`

	Role       *string `gorm:"column:role"`
	Confidence float64 `gorm:"column:confidence;not null;default:1"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
