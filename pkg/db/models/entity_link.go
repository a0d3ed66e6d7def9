package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/enums"
)

// EntityLink is a directed, typed relation between two entities. The
// connectivity resolver walks these rows in both directions.
type EntityLink struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FromEntityID uuid.UUID            `gorm:"column:from_entity_id;type:uuid;not null;uniqueIndex:uq_entity_links_edge,priority:1;index"`
	ToEntityID   uuid.UUID            `gorm:"column:to_entity_id;type:uuid;not null;uniqueIndex:uq_entity_links_edge,priority:2;index"`
	Kind         enums.EntityLinkKind `gorm:"column:kind;not null;uniqueIndex:uq_entity_links_edge,priority:3"`

	Confidence float64 `gorm:"column:confidence;not null;default:1"`
	Notes      *string `gorm:"column:notes"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
