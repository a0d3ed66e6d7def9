package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AssetSnapshot is the synchronizer's read of one asset: effective observation
// time and coordinates with manual overrides already folded in.
type AssetSnapshot struct {
	AssetID    uuid.UUID
	ObservedAt *time.Time

	CameraLatitude  *float64
	CameraLongitude *float64

	SubjectLatitude  *float64
	SubjectLongitude *float64
}

// ObservationCoords resolves the coordinate a derived presence should carry.
// A subject coordinate marks where the photographed subject stood and wins
// over the camera position; either pair is only usable complete.
func (s AssetSnapshot) ObservationCoords() (*float64, *float64) {
	if s.SubjectLatitude != nil && s.SubjectLongitude != nil {
		return s.SubjectLatitude, s.SubjectLongitude
	}
	if s.CameraLatitude != nil && s.CameraLongitude != nil {
		return s.CameraLatitude, s.CameraLongitude
	}
	return nil, nil
}

// MetadataSource resolves effective asset metadata. A nil snapshot with a nil
// error means the asset does not exist (or is deleted) and the pass is a no-op.
type MetadataSource interface {
	AssetSnapshot(ctx context.Context, assetID uuid.UUID) (*AssetSnapshot, error)
}

// IgnoreSource exposes the per-asset entity ignore set.
type IgnoreSource interface {
	IgnoredEntityIDs(ctx context.Context, assetID uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// LinkSource exposes the annotation-entity link facts that drive derivation.
type LinkSource interface {
	// LinkedEntityIDs returns the distinct entities linked to the asset
	// through any of its annotations.
	LinkedEntityIDs(ctx context.Context, assetID uuid.UUID) ([]uuid.UUID, error)
	// AssetIDForAnnotation resolves an annotation to its asset; found=false is
	// a no-op for the caller, not an error.
	AssetIDForAnnotation(ctx context.Context, annotationID uuid.UUID) (uuid.UUID, bool, error)
	// EntityLinked reports whether any annotation on the asset still links the
	// entity.
	EntityLinked(ctx context.Context, assetID, entityID uuid.UUID) (bool, error)
}
