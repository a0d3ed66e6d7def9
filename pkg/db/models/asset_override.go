package models

import (
	"time"

	"github.com/google/uuid"
)

// AssetOverride stores an investigator's corrections to extracted asset
// metadata. At most one row exists per asset; each field is independently
// nullable so a correction can cover any subset of fields.
type AssetOverride struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AssetID uuid.UUID `gorm:"column:asset_id;type:uuid;not null;uniqueIndex:uq_asset_overrides_asset"`

	DisplayName *string    `gorm:"column:display_name"`
	CapturedAt  *time.Time `gorm:"column:captured_at"`
	Latitude    *float64   `gorm:"column:latitude"`
	Longitude   *float64   `gorm:"column:longitude"`
	Altitude    *float64   `gorm:"column:altitude"`

	// Subject coordinates mark where the photographed subject stood when it
	// was not co-located with the camera. They take priority over the camera
	// coordinate during presence derivation only.
	SubjectLatitude  *float64 `gorm:"column:subject_latitude"`
	SubjectLongitude *float64 `gorm:"column:subject_longitude"`

	UpdatedBy *uuid.UUID `gorm:"column:updated_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
