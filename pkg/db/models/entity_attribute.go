package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/types"
)

// AttributeNameCoordinates is the attribute a location-type entity uses to
// carry its {latitude, longitude} value. The home-location centroid reads it.
const AttributeNameCoordinates = "coordinates"

// EntityAttribute is a named JSON value owned by one entity.
type EntityAttribute struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EntityID uuid.UUID `gorm:"column:entity_id;type:uuid;not null;uniqueIndex:uq_entity_attribute_name,priority:1"`
	Name     string    `gorm:"column:name;not null;uniqueIndex:uq_entity_attribute_name,priority:2"`

	Value types.JSONMap `gorm:"column:value;type:jsonb;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
