package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/enums"
)

// Presence places an entity at a time and optionally a coordinate. Rows are
// either entered manually or derived from annotation-entity links; the
// AutoFrom column distinguishes the two, and only rows carrying it are ever
// rewritten or deleted by the synchronizer.
//
// For derived rows the (source_asset_id, source_type, entity_id) triple is
// unique, which is what makes concurrent synchronizer upserts safe.
type Presence struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EntityID uuid.UUID `gorm:"column:entity_id;type:uuid;not null;uniqueIndex:uq_presences_source,priority:3;index"`

	OccurredAt time.Time `gorm:"column:occurred_at;not null;index"`
	Latitude   *float64  `gorm:"column:latitude"`
	Longitude  *float64  `gorm:"column:longitude"`

	SourceAssetID *uuid.UUID               `gorm:"column:source_asset_id;type:uuid;uniqueIndex:uq_presences_source,priority:1"`
	SourceType    enums.PresenceSourceType `gorm:"column:source_type;not null;uniqueIndex:uq_presences_source,priority:2"`
	AutoFrom      *enums.PresenceAutoSource `gorm:"column:auto_from"`

	Notes *string `gorm:"column:notes"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsAuto reports whether the synchronizer owns this row.
func (p Presence) IsAuto() bool {
	return p.AutoFrom != nil && p.AutoFrom.IsValid()
}
