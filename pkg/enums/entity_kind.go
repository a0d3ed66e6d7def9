package enums

import "fmt"

// EntityKind classifies the real-world subject an entity describes.
type EntityKind string

const (
	EntityKindPerson       EntityKind = "person"
	EntityKindVehicle      EntityKind = "vehicle"
	EntityKindLocation     EntityKind = "location"
	EntityKindOrganization EntityKind = "organization"
	EntityKindItem         EntityKind = "item"
	EntityKindOther        EntityKind = "other"
)

var validEntityKinds = []EntityKind{
	EntityKindPerson,
	EntityKindVehicle,
	EntityKindLocation,
	EntityKindOrganization,
	EntityKindItem,
	EntityKindOther,
}

// String returns the literal string for the kind.
func (e EntityKind) String() string {
	return string(e)
}

// IsValid reports whether the kind is known.
func (e EntityKind) IsValid() bool {
	for _, candidate := range validEntityKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEntityKind converts raw input into an EntityKind.
func ParseEntityKind(value string) (EntityKind, error) {
	for _, candidate := range validEntityKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity kind %q", value)
}
