package models

import (
	"time"

	"github.com/google/uuid"
)

// Annotation marks a region of interest on one asset.
type Annotation struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AssetID uuid.UUID `gorm:"column:asset_id;type:uuid;not null;index"`

	X      float64 `gorm:"column:x;not null"`
	Y      float64 `gorm:"column:y;not null"`
	Width  float64 `gorm:"column:width;not null"`
	Height float64 `gorm:"column:height;not null"`

	Caption *string `gorm:"column:caption"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
