package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/enums"
)

// Entity is a typed real-world subject tracked by a case: a person, a vehicle,
// a location and so on.
type Entity struct {
	ID   uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind enums.EntityKind `gorm:"column:kind;not null;index"`
	Name string           `gorm:"column:name;not null"`

	Notes *string `gorm:"column:notes"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
