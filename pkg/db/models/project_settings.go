package models

import "time"

// ProjectSettingsID is the primary key of the singleton settings row.
const ProjectSettingsID = 1

// ProjectSettings is the single per-deployment settings row. The home
// location is the persisted map default; whether reads refresh it from the
// live centroid is a configuration flag, not data.
type ProjectSettings struct {
	ID int `gorm:"column:id;primaryKey"`

	HomeLatitude  *float64 `gorm:"column:home_latitude"`
	HomeLongitude *float64 `gorm:"column:home_longitude"`

	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
