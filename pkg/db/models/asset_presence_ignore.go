package models

import (
	"time"

	"github.com/google/uuid"
)

// AssetPresenceIgnore suppresses auto-presence derivation for one entity on
// one asset. It is the durable form of "undo" for a derived presence: a plain
// delete would be re-created on the next synchronization pass.
type AssetPresenceIgnore struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AssetID  uuid.UUID `gorm:"column:asset_id;type:uuid;not null;uniqueIndex:uq_asset_presence_ignores,priority:1"`
	EntityID uuid.UUID `gorm:"column:entity_id;type:uuid;not null;uniqueIndex:uq_asset_presence_ignores,priority:2"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
