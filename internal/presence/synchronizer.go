package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/enums"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/metrics"
)

// Pass names reported in logs and metrics.
const (
	PassAsset          = "asset"
	PassAnnotationLink = "annotation_link"
	PassLinkRemoved    = "link_removed"
)

const membershipConfidence = 1.0

// Store is the presence persistence surface the synchronizer writes through.
// Every method is idempotent: calling it twice with identical arguments leaves
// the same rows behind.
type Store interface {
	FindAuto(ctx context.Context, assetID, entityID uuid.UUID) (*models.Presence, error)
	AutoEntityIDs(ctx context.Context, assetID uuid.UUID) ([]uuid.UUID, error)
	UpsertAuto(ctx context.Context, row *models.Presence) (uuid.UUID, bool, error)
	DeleteAuto(ctx context.Context, assetID, entityID uuid.UUID) (bool, error)
	EnsureMembership(ctx context.Context, presenceID, entityID uuid.UUID, role *string, confidence float64) error
}

// Synchronizer reconciles the derived presences of an asset against its
// current annotation-entity links, effective metadata, and ignore set. It is a
// best-effort consistency pass: callers invoke it after their own mutation
// succeeds and report the primary result regardless of the Outcome.
type Synchronizer struct {
	store    Store
	metadata MetadataSource
	ignores  IgnoreSource
	links    LinkSource
	log      *logger.Logger
	metrics  *metrics.SyncMetrics
}

func NewSynchronizer(store Store, metadata MetadataSource, ignores IgnoreSource, links LinkSource, log *logger.Logger, m *metrics.SyncMetrics) *Synchronizer {
	return &Synchronizer{
		store:    store,
		metadata: metadata,
		ignores:  ignores,
		links:    links,
		log:      log,
		metrics:  m,
	}
}

// SyncAsset recomputes every derived presence of the asset. A missing asset or
// an asset with no resolvable observation time is a no-op, not an error.
func (s *Synchronizer) SyncAsset(ctx context.Context, assetID uuid.UUID, actorID *uuid.UUID) Outcome {
	started := time.Now()
	ctx = s.log.WithAssetID(ctx, assetID.String())
	outcome := Outcome{Pass: PassAsset}

	snapshot, err := s.metadata.AssetSnapshot(ctx, assetID)
	if err != nil {
		return s.finish(ctx, started, s.failed(outcome, err))
	}
	if snapshot == nil || snapshot.ObservedAt == nil {
		return s.finish(ctx, started, outcome)
	}

	linked, err := s.links.LinkedEntityIDs(ctx, assetID)
	if err != nil {
		return s.finish(ctx, started, s.failed(outcome, err))
	}
	ignored, err := s.ignores.IgnoredEntityIDs(ctx, assetID)
	if err != nil {
		return s.finish(ctx, started, s.failed(outcome, err))
	}

	linkedSet := make(map[uuid.UUID]struct{}, len(linked))
	for _, entityID := range linked {
		linkedSet[entityID] = struct{}{}
		if syncErr := s.syncPair(ctx, snapshot, entityID, ignored, enums.PresenceAutoFromAsset, actorID, &outcome); syncErr != nil {
			outcome.Err = multierr.Append(outcome.Err, syncErr)
			entityCtx := s.log.WithEntityID(ctx, entityID.String())
			s.log.Error(entityCtx, "presence sync failed for entity", syncErr)
		}
	}

	// Derived rows whose justifying link is gone are stale and get removed.
	existing, err := s.store.AutoEntityIDs(ctx, assetID)
	if err != nil {
		return s.finish(ctx, started, s.failed(outcome, err))
	}
	for _, entityID := range existing {
		if _, ok := linkedSet[entityID]; ok {
			continue
		}
		deleted, delErr := s.store.DeleteAuto(ctx, assetID, entityID)
		if delErr != nil {
			outcome.Err = multierr.Append(outcome.Err, delErr)
			entityCtx := s.log.WithEntityID(ctx, entityID.String())
			s.log.Error(entityCtx, "stale presence removal failed", delErr)
			continue
		}
		if deleted {
			outcome.Deleted++
			s.metrics.IncWrite("deleted")
		}
	}

	if outcome.Err != nil {
		s.metrics.IncFailure(outcome.Pass)
	}
	return s.finish(ctx, started, outcome)
}

// SyncAnnotationLink runs the per-pair reconcile after a single
// annotation-entity link was created. An annotation that no longer resolves to
// an asset is a no-op.
func (s *Synchronizer) SyncAnnotationLink(ctx context.Context, annotationID, entityID uuid.UUID, actorID *uuid.UUID) Outcome {
	started := time.Now()
	ctx = s.log.WithEntityID(ctx, entityID.String())
	outcome := Outcome{Pass: PassAnnotationLink}

	assetID, found, err := s.links.AssetIDForAnnotation(ctx, annotationID)
	if err != nil || !found {
		return s.finish(ctx, started, s.failed(outcome, err))
	}
	ctx = s.log.WithAssetID(ctx, assetID.String())

	snapshot, err := s.metadata.AssetSnapshot(ctx, assetID)
	if err != nil {
		return s.finish(ctx, started, s.failed(outcome, err))
	}
	if snapshot == nil || snapshot.ObservedAt == nil {
		return s.finish(ctx, started, outcome)
	}
	ignored, err := s.ignores.IgnoredEntityIDs(ctx, assetID)
	if err != nil {
		return s.finish(ctx, started, s.failed(outcome, err))
	}

	if syncErr := s.syncPair(ctx, snapshot, entityID, ignored, enums.PresenceAutoFromAnnotation, actorID, &outcome); syncErr != nil {
		s.log.Error(ctx, "presence sync failed for entity", syncErr)
		return s.finish(ctx, started, s.failed(outcome, syncErr))
	}
	return s.finish(ctx, started, outcome)
}

// SyncLinkRemoved cleans up after an annotation-entity link was deleted. The
// derived presence is removed only when no other annotation on the asset still
// links the entity.
func (s *Synchronizer) SyncLinkRemoved(ctx context.Context, assetID, entityID uuid.UUID, actorID *uuid.UUID) Outcome {
	started := time.Now()
	ctx = s.log.WithAssetID(ctx, assetID.String())
	ctx = s.log.WithEntityID(ctx, entityID.String())
	outcome := Outcome{Pass: PassLinkRemoved}

	stillLinked, err := s.links.EntityLinked(ctx, assetID, entityID)
	if err != nil {
		return s.finish(ctx, started, s.failed(outcome, err))
	}
	if stillLinked {
		return s.finish(ctx, started, outcome)
	}

	deleted, err := s.store.DeleteAuto(ctx, assetID, entityID)
	if err != nil {
		s.log.Error(ctx, "presence cleanup failed after unlink", err)
		return s.finish(ctx, started, s.failed(outcome, err))
	}
	if deleted {
		outcome.Deleted++
		s.metrics.IncWrite("deleted")
	}
	return s.finish(ctx, started, outcome)
}

// syncPair reconciles the derived presence of one (asset, entity) pair against
// the snapshot. The caller guarantees the snapshot carries an observation time.
func (s *Synchronizer) syncPair(ctx context.Context, snapshot *AssetSnapshot, entityID uuid.UUID, ignored map[uuid.UUID]struct{}, from enums.PresenceAutoSource, actorID *uuid.UUID, outcome *Outcome) error {
	if _, skip := ignored[entityID]; skip {
		deleted, err := s.store.DeleteAuto(ctx, snapshot.AssetID, entityID)
		if err != nil {
			return err
		}
		if deleted {
			outcome.Deleted++
			s.metrics.IncWrite("deleted")
		}
		return nil
	}

	existing, err := s.store.FindAuto(ctx, snapshot.AssetID, entityID)
	if err != nil {
		return err
	}
	lat, lng := snapshot.ObservationCoords()

	// Creation requires resolvable coordinates; an existing presence is
	// refreshed even when the refresh clears them.
	if existing == nil && lat == nil {
		return nil
	}

	row := &models.Presence{
		EntityID:      entityID,
		OccurredAt:    *snapshot.ObservedAt,
		Latitude:      lat,
		Longitude:     lng,
		SourceAssetID: &snapshot.AssetID,
		SourceType:    enums.PresenceSourceAnnotationEntityLink,
		AutoFrom:      &from,
		CreatedBy:     actorID,
	}
	presenceID, created, err := s.store.UpsertAuto(ctx, row)
	if err != nil {
		return err
	}
	if created {
		outcome.Created++
		s.metrics.IncWrite("created")
	} else {
		outcome.Updated++
		s.metrics.IncWrite("updated")
	}
	if err := s.store.EnsureMembership(ctx, presenceID, entityID, nil, membershipConfidence); err != nil {
		return err
	}
	return nil
}

func (s *Synchronizer) failed(outcome Outcome, err error) Outcome {
	if err == nil {
		return outcome
	}
	outcome.Err = multierr.Append(outcome.Err, err)
	s.metrics.IncFailure(outcome.Pass)
	return outcome
}

func (s *Synchronizer) finish(ctx context.Context, started time.Time, outcome Outcome) Outcome {
	s.metrics.ObserveDuration(outcome.Pass, time.Since(started))
	if outcome.Changed() {
		s.log.Debug(ctx, "presence sync pass applied changes")
	}
	return outcome
}
