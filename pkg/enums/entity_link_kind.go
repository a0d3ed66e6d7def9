package enums

import "fmt"

// EntityLinkKind types the directed relation between two entities.
type EntityLinkKind string

const (
	EntityLinkKindOwns           EntityLinkKind = "owns"
	EntityLinkKindAssociatedWith EntityLinkKind = "associated_with"
	EntityLinkKindMemberOf       EntityLinkKind = "member_of"
	EntityLinkKindLocatedAt      EntityLinkKind = "located_at"
	EntityLinkKindRelatedTo      EntityLinkKind = "related_to"
)

var validEntityLinkKinds = []EntityLinkKind{
	EntityLinkKindOwns,
	EntityLinkKindAssociatedWith,
	EntityLinkKindMemberOf,
	EntityLinkKindLocatedAt,
	EntityLinkKindRelatedTo,
}

func (e EntityLinkKind) String() string {
	return string(e)
}

func (e EntityLinkKind) IsValid() bool {
	for _, candidate := range validEntityLinkKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEntityLinkKind converts raw input into an EntityLinkKind.
func ParseEntityLinkKind(value string) (EntityLinkKind, error) {
	for _, candidate := range validEntityLinkKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity link kind %q", value)
}
