package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a dated case fact entered by an investigator, optionally placed on
// the map and optionally tied to a subject entity so timeline queries can pick
// it up when that entity is in scope.
type Event struct {
	ID       uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title    string     `gorm:"column:title;not null"`
	EntityID *uuid.UUID `gorm:"column:entity_id;type:uuid;index"`

	OccurredAt time.Time `gorm:"column:occurred_at;not null;index"`
	Latitude   *float64  `gorm:"column:latitude"`
	Longitude  *float64  `gorm:"column:longitude"`

	Notes *string `gorm:"column:notes"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
