package presence

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/enums"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/metrics"
)

type pairKey struct {
	assetID  uuid.UUID
	entityID uuid.UUID
}

type membershipKey struct {
	presenceID uuid.UUID
	entityID   uuid.UUID
}

type fakeStore struct {
	rows        map[pairKey]*models.Presence
	memberships map[membershipKey]int
	upserts     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:        map[pairKey]*models.Presence{},
		memberships: map[membershipKey]int{},
	}
}

func (f *fakeStore) FindAuto(_ context.Context, assetID, entityID uuid.UUID) (*models.Presence, error) {
	row, ok := f.rows[pairKey{assetID, entityID}]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeStore) AutoEntityIDs(_ context.Context, assetID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for key := range f.rows {
		if key.assetID == assetID {
			ids = append(ids, key.entityID)
		}
	}
	return ids, nil
}

func (f *fakeStore) UpsertAuto(_ context.Context, row *models.Presence) (uuid.UUID, bool, error) {
	f.upserts++
	key := pairKey{*row.SourceAssetID, row.EntityID}
	if existing, ok := f.rows[key]; ok {
		existing.OccurredAt = row.OccurredAt
		existing.Latitude = row.Latitude
		existing.Longitude = row.Longitude
		existing.AutoFrom = row.AutoFrom
		return existing.ID, false, nil
	}
	stored := *row
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	f.rows[key] = &stored
	return stored.ID, true, nil
}

func (f *fakeStore) DeleteAuto(_ context.Context, assetID, entityID uuid.UUID) (bool, error) {
	key := pairKey{assetID, entityID}
	if _, ok := f.rows[key]; !ok {
		return false, nil
	}
	delete(f.rows, key)
	return true, nil
}

func (f *fakeStore) EnsureMembership(_ context.Context, presenceID, entityID uuid.UUID, _ *string, _ float64) error {
	f.memberships[membershipKey{presenceID, entityID}]++
	return nil
}

type fakeSources struct {
	snapshots   map[uuid.UUID]*AssetSnapshot
	ignored     map[uuid.UUID]map[uuid.UUID]struct{}
	linked      map[uuid.UUID][]uuid.UUID
	annotations map[uuid.UUID]uuid.UUID
}

func newFakeSources() *fakeSources {
	return &fakeSources{
		snapshots:   map[uuid.UUID]*AssetSnapshot{},
		ignored:     map[uuid.UUID]map[uuid.UUID]struct{}{},
		linked:      map[uuid.UUID][]uuid.UUID{},
		annotations: map[uuid.UUID]uuid.UUID{},
	}
}

func (f *fakeSources) AssetSnapshot(_ context.Context, assetID uuid.UUID) (*AssetSnapshot, error) {
	return f.snapshots[assetID], nil
}

func (f *fakeSources) IgnoredEntityIDs(_ context.Context, assetID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	set := f.ignored[assetID]
	if set == nil {
		set = map[uuid.UUID]struct{}{}
	}
	return set, nil
}

func (f *fakeSources) LinkedEntityIDs(_ context.Context, assetID uuid.UUID) ([]uuid.UUID, error) {
	return f.linked[assetID], nil
}

func (f *fakeSources) AssetIDForAnnotation(_ context.Context, annotationID uuid.UUID) (uuid.UUID, bool, error) {
	assetID, ok := f.annotations[annotationID]
	return assetID, ok, nil
}

func (f *fakeSources) EntityLinked(_ context.Context, assetID, entityID uuid.UUID) (bool, error) {
	for _, linked := range f.linked[assetID] {
		if linked == entityID {
			return true, nil
		}
	}
	return false, nil
}

func newTestSynchronizer(store *fakeStore, sources *fakeSources) *Synchronizer {
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	return NewSynchronizer(store, sources, sources, sources, log, metrics.NewSyncMetrics(nil))
}

func floatPtr(v float64) *float64 {
	return &v
}

func snapshotWithCoords(assetID uuid.UUID, observedAt time.Time) *AssetSnapshot {
	return &AssetSnapshot{
		AssetID:         assetID,
		ObservedAt:      &observedAt,
		CameraLatitude:  floatPtr(60.17),
		CameraLongitude: floatPtr(24.94),
	}
}

func TestSyncAssetCreatesPresencePerLinkedEntity(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	entityA := uuid.New()
	entityB := uuid.New()
	observedAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)

	sources.snapshots[assetID] = snapshotWithCoords(assetID, observedAt)
	sources.linked[assetID] = []uuid.UUID{entityA, entityB}

	outcome := newTestSynchronizer(store, sources).SyncAsset(context.Background(), assetID, nil)

	require.True(t, outcome.Applied())
	assert.Equal(t, 2, outcome.Created)
	require.Len(t, store.rows, 2)
	row := store.rows[pairKey{assetID, entityA}]
	require.NotNil(t, row)
	assert.Equal(t, observedAt, row.OccurredAt)
	assert.Equal(t, 60.17, *row.Latitude)
	require.NotNil(t, row.AutoFrom)
	assert.Equal(t, enums.PresenceAutoFromAsset, *row.AutoFrom)
	assert.Len(t, store.memberships, 2)
}

func TestSyncAssetIsIdempotent(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	entityID := uuid.New()
	sources.snapshots[assetID] = snapshotWithCoords(assetID, time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC))
	sources.linked[assetID] = []uuid.UUID{entityID}
	sync := newTestSynchronizer(store, sources)

	first := sync.SyncAsset(context.Background(), assetID, nil)
	second := sync.SyncAsset(context.Background(), assetID, nil)

	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)
	require.Len(t, store.rows, 1)
	assert.Len(t, store.memberships, 1)
}

func TestSyncAssetIgnoredEntityNeverGetsPresence(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	entityID := uuid.New()
	sources.snapshots[assetID] = snapshotWithCoords(assetID, time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC))
	sources.linked[assetID] = []uuid.UUID{entityID}
	sync := newTestSynchronizer(store, sources)

	// Derive once, then ignore the entity and re-run.
	sync.SyncAsset(context.Background(), assetID, nil)
	require.Len(t, store.rows, 1)

	sources.ignored[assetID] = map[uuid.UUID]struct{}{entityID: {}}
	outcome := sync.SyncAsset(context.Background(), assetID, nil)

	assert.Equal(t, 1, outcome.Deleted)
	assert.Empty(t, store.rows)
}

func TestSyncAssetRemovesPresenceAfterAllLinksGone(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	entityID := uuid.New()
	sources.snapshots[assetID] = snapshotWithCoords(assetID, time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC))
	sources.linked[assetID] = []uuid.UUID{entityID}
	sync := newTestSynchronizer(store, sources)
	sync.SyncAsset(context.Background(), assetID, nil)
	require.Len(t, store.rows, 1)

	// Every link was removed; the full reconcile drops the stale row.
	sources.linked[assetID] = nil
	outcome := sync.SyncAsset(context.Background(), assetID, nil)

	assert.Equal(t, 1, outcome.Deleted)
	assert.Empty(t, store.rows)
}

func TestSyncAssetKeepsPresencesForStillLinkedEntities(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	entityA := uuid.New()
	entityB := uuid.New()
	sources.snapshots[assetID] = snapshotWithCoords(assetID, time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC))
	sources.linked[assetID] = []uuid.UUID{entityA, entityB}
	sync := newTestSynchronizer(store, sources)
	sync.SyncAsset(context.Background(), assetID, nil)
	require.Len(t, store.rows, 2)

	sources.linked[assetID] = []uuid.UUID{entityA}
	outcome := sync.SyncAsset(context.Background(), assetID, nil)

	assert.Equal(t, 1, outcome.Deleted)
	require.Len(t, store.rows, 1)
	assert.NotNil(t, store.rows[pairKey{assetID, entityA}])
}

func TestSyncAssetWithoutCoordinatesCreatesNothing(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	observedAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	sources.snapshots[assetID] = &AssetSnapshot{AssetID: assetID, ObservedAt: &observedAt}
	sources.linked[assetID] = []uuid.UUID{uuid.New()}

	outcome := newTestSynchronizer(store, sources).SyncAsset(context.Background(), assetID, nil)

	assert.False(t, outcome.Changed())
	assert.Empty(t, store.rows)
}

func TestSyncAssetRefreshClearsRegressedCoordinates(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	entityID := uuid.New()
	observedAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	sources.snapshots[assetID] = snapshotWithCoords(assetID, observedAt)
	sources.linked[assetID] = []uuid.UUID{entityID}
	sync := newTestSynchronizer(store, sources)
	sync.SyncAsset(context.Background(), assetID, nil)

	// Coordinates regressed, the presence keeps existing but loses them.
	sources.snapshots[assetID] = &AssetSnapshot{AssetID: assetID, ObservedAt: &observedAt}
	outcome := sync.SyncAsset(context.Background(), assetID, nil)

	assert.Equal(t, 1, outcome.Updated)
	row := store.rows[pairKey{assetID, entityID}]
	require.NotNil(t, row)
	assert.Nil(t, row.Latitude)
	assert.Nil(t, row.Longitude)
}

func TestSyncAssetSubjectCoordinatesWin(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	entityID := uuid.New()
	observedAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	snapshot := snapshotWithCoords(assetID, observedAt)
	snapshot.SubjectLatitude = floatPtr(61.0)
	snapshot.SubjectLongitude = floatPtr(25.0)
	sources.snapshots[assetID] = snapshot
	sources.linked[assetID] = []uuid.UUID{entityID}

	newTestSynchronizer(store, sources).SyncAsset(context.Background(), assetID, nil)

	row := store.rows[pairKey{assetID, entityID}]
	require.NotNil(t, row)
	assert.Equal(t, 61.0, *row.Latitude)
	assert.Equal(t, 25.0, *row.Longitude)
}

func TestSyncAssetMissingAssetIsNoOp(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()

	outcome := newTestSynchronizer(store, sources).SyncAsset(context.Background(), uuid.New(), nil)

	assert.True(t, outcome.Applied())
	assert.False(t, outcome.Changed())
	assert.Zero(t, store.upserts)
}

func TestSyncAssetWithoutObservationTimeIsNoOp(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	sources.snapshots[assetID] = &AssetSnapshot{
		AssetID:         assetID,
		CameraLatitude:  floatPtr(60.0),
		CameraLongitude: floatPtr(24.0),
	}
	sources.linked[assetID] = []uuid.UUID{uuid.New()}

	outcome := newTestSynchronizer(store, sources).SyncAsset(context.Background(), assetID, nil)

	assert.False(t, outcome.Changed())
	assert.Empty(t, store.rows)
}

func TestSyncAnnotationLinkCreatesSinglePresence(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	annotationID := uuid.New()
	entityID := uuid.New()
	sources.snapshots[assetID] = snapshotWithCoords(assetID, time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC))
	sources.annotations[annotationID] = assetID
	sources.linked[assetID] = []uuid.UUID{entityID}

	outcome := newTestSynchronizer(store, sources).SyncAnnotationLink(context.Background(), annotationID, entityID, nil)

	require.True(t, outcome.Applied())
	assert.Equal(t, 1, outcome.Created)
	row := store.rows[pairKey{assetID, entityID}]
	require.NotNil(t, row)
	require.NotNil(t, row.AutoFrom)
	assert.Equal(t, enums.PresenceAutoFromAnnotation, *row.AutoFrom)
}

func TestSyncAnnotationLinkUnknownAnnotationIsNoOp(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()

	outcome := newTestSynchronizer(store, sources).SyncAnnotationLink(context.Background(), uuid.New(), uuid.New(), nil)

	assert.True(t, outcome.Applied())
	assert.False(t, outcome.Changed())
}

func TestSyncLinkRemovedDeletesOrphanedPresence(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	entityID := uuid.New()
	sources.snapshots[assetID] = snapshotWithCoords(assetID, time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC))
	sources.linked[assetID] = []uuid.UUID{entityID}
	sync := newTestSynchronizer(store, sources)
	sync.SyncAsset(context.Background(), assetID, nil)
	require.Len(t, store.rows, 1)

	// The last link is gone; cleanup removes the derived presence.
	sources.linked[assetID] = nil
	outcome := sync.SyncLinkRemoved(context.Background(), assetID, entityID, nil)

	assert.Equal(t, 1, outcome.Deleted)
	assert.Empty(t, store.rows)
}

func TestSyncLinkRemovedKeepsPresenceWhileOtherLinksRemain(t *testing.T) {
	store := newFakeStore()
	sources := newFakeSources()
	assetID := uuid.New()
	entityID := uuid.New()
	sources.snapshots[assetID] = snapshotWithCoords(assetID, time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC))
	sources.linked[assetID] = []uuid.UUID{entityID}
	sync := newTestSynchronizer(store, sources)
	sync.SyncAsset(context.Background(), assetID, nil)

	outcome := sync.SyncLinkRemoved(context.Background(), assetID, entityID, nil)

	assert.Equal(t, 0, outcome.Deleted)
	require.Len(t, store.rows, 1)
}
