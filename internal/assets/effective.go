package assets

import (
	"time"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/db/models"
)

// Effective is the per-asset read projection with manual corrections folded
// over extracted metadata. It is a pure function of the two stored rows.
type Effective struct {
	AssetID     uuid.UUID  `json:"assetId"`
	DisplayName string     `json:"displayName"`
	ObservedAt  *time.Time `json:"observedAt"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	Altitude    *float64   `json:"altitude"`

	SubjectLatitude  *float64 `json:"subjectLatitude"`
	SubjectLongitude *float64 `json:"subjectLongitude"`

	DeviceKey string `json:"deviceKey"`
}

// ResolveEffective folds an optional override over the asset's extracted
// metadata. Observation time falls back to the upload time; a coordinate pair
// from the override wins only as a pair, never one axis at a time.
func ResolveEffective(asset models.Asset, override *models.AssetOverride) Effective {
	effective := Effective{
		AssetID:     asset.ID,
		DisplayName: asset.FileName,
		Latitude:    asset.Latitude,
		Longitude:   asset.Longitude,
		Altitude:    asset.Altitude,
		DeviceKey:   asset.DeviceKey(),
	}

	switch {
	case override != nil && override.CapturedAt != nil:
		effective.ObservedAt = override.CapturedAt
	case asset.CapturedAt != nil:
		effective.ObservedAt = asset.CapturedAt
	default:
		uploadedAt := asset.CreatedAt
		effective.ObservedAt = &uploadedAt
	}

	if override == nil {
		return effective
	}
	if override.DisplayName != nil {
		effective.DisplayName = *override.DisplayName
	}
	if override.Latitude != nil && override.Longitude != nil {
		effective.Latitude = override.Latitude
		effective.Longitude = override.Longitude
	}
	if override.Altitude != nil {
		effective.Altitude = override.Altitude
	}
	if override.SubjectLatitude != nil && override.SubjectLongitude != nil {
		effective.SubjectLatitude = override.SubjectLatitude
		effective.SubjectLongitude = override.SubjectLongitude
	}
	return effective
}

// HasCoords reports whether the projection resolved a complete coordinate
// pair.
func (e Effective) HasCoords() bool {
	return e.Latitude != nil && e.Longitude != nil
}
