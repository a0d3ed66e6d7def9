package models

import (
	"time"

	"github.com/google/uuid"
)

// AnnotationEntityLink records that an entity appears in the annotated region
// of an asset. These rows are the source facts presence derivation reads.
type AnnotationEntityLink struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AnnotationID uuid.UUID `gorm:"column:annotation_id;type:uuid;not null;uniqueIndex:uq_annotation_entity,priority:1"`
	EntityID     uuid.UUID `gorm:"column:entity_id;type:uuid;not null;uniqueIndex:uq_annotation_entity,priority:2;index"`

	Role       *string `gorm:"column:role"`
	Confidence float64 `gorm:"column:confidence;not null;default:1"`
	Notes      *string `gorm:"column:notes"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
