package enums

import "fmt"

// PresenceSourceType identifies what kind of fact produced a presence.
type PresenceSourceType string

const (
	// PresenceSourceAnnotationEntityLink marks presences derived from an
	// annotation that links an entity into an asset.
	PresenceSourceAnnotationEntityLink PresenceSourceType = "annotation_entity_link"
	// PresenceSourceManual marks presences entered by an investigator.
	PresenceSourceManual PresenceSourceType = "manual"
)

var validPresenceSourceTypes = []PresenceSourceType{
	PresenceSourceAnnotationEntityLink,
	PresenceSourceManual,
}

func (p PresenceSourceType) String() string {
	return string(p)
}

func (p PresenceSourceType) IsValid() bool {
	for _, candidate := range validPresenceSourceTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePresenceSourceType converts raw input into a PresenceSourceType.
func ParsePresenceSourceType(value string) (PresenceSourceType, error) {
	for _, candidate := range validPresenceSourceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid presence source type %q", value)
}

// PresenceAutoSource records which synchronizer path stamped an auto-derived
// presence. A presence without one is manual and is never rewritten.
type PresenceAutoSource string

const (
	PresenceAutoFromAsset      PresenceAutoSource = "asset"
	PresenceAutoFromAnnotation PresenceAutoSource = "annotation"
)

func (p PresenceAutoSource) String() string {
	return string(p)
}

func (p PresenceAutoSource) IsValid() bool {
	return p == PresenceAutoFromAsset || p == PresenceAutoFromAnnotation
}
