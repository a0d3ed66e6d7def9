package annotations

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Karethoth/noirion-backend/internal/presence"
	"github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
)

func setupAnnotationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	annotations := `
CREATE TABLE IF NOT EXISTS annotations (
  id TEXT PRIMARY KEY,
  asset_id TEXT NOT NULL,
  x REAL NOT NULL,
  y REAL NOT NULL,
  width REAL NOT NULL,
  height REAL NOT NULL,
  caption TEXT,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	links := `
CREATE TABLE IF NOT EXISTS annotation_entity_links (
  id TEXT PRIMARY KEY,
  annotation_id TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  role TEXT,
  confidence REAL NOT NULL DEFAULT 1.0,
  notes TEXT,
  created_by TEXT,
  created_at DATETIME,
  CONSTRAINT uq_annotation_entity UNIQUE (annotation_id, entity_id)
);`
	require.NoError(t, db.Exec(annotations).Error)
	require.NoError(t, db.Exec(links).Error)
	return db
}

type fakeAssets struct {
	existing map[uuid.UUID]bool
}

func (f *fakeAssets) AssetExists(_ context.Context, assetID uuid.UUID) (bool, error) {
	return f.existing[assetID], nil
}

type syncCall struct {
	kind     string
	assetID  uuid.UUID
	entityID uuid.UUID
}

type recordingSyncer struct {
	calls []syncCall
}

func (r *recordingSyncer) SyncAsset(_ context.Context, assetID uuid.UUID, _ *uuid.UUID) presence.Outcome {
	r.calls = append(r.calls, syncCall{kind: "asset", assetID: assetID})
	return presence.Outcome{Pass: presence.PassAsset}
}

func (r *recordingSyncer) SyncAnnotationLink(_ context.Context, annotationID, entityID uuid.UUID, _ *uuid.UUID) presence.Outcome {
	r.calls = append(r.calls, syncCall{kind: "link", assetID: annotationID, entityID: entityID})
	return presence.Outcome{Pass: presence.PassAnnotationLink}
}

func (r *recordingSyncer) SyncLinkRemoved(_ context.Context, assetID, entityID uuid.UUID, _ *uuid.UUID) presence.Outcome {
	r.calls = append(r.calls, syncCall{kind: "unlink", assetID: assetID, entityID: entityID})
	return presence.Outcome{Pass: presence.PassLinkRemoved}
}

func newTestService(t *testing.T, assetID uuid.UUID) (*Service, *recordingSyncer) {
	t.Helper()
	db := setupAnnotationsTestDB(t)
	syncer := &recordingSyncer{}
	assets := &fakeAssets{existing: map[uuid.UUID]bool{assetID: true}}
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	return NewService(NewRepository(db), assets, syncer, log), syncer
}

func region(assetID uuid.UUID) CreateAnnotationInput {
	return CreateAnnotationInput{AssetID: assetID, X: 0.1, Y: 0.1, Width: 0.2, Height: 0.2}
}

func TestCreateRejectsEmptyRegion(t *testing.T) {
	assetID := uuid.New()
	svc, _ := newTestService(t, assetID)

	input := region(assetID)
	input.Width = 0
	_, err := svc.Create(context.Background(), input, nil)

	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestCreateUnknownAssetIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, uuid.New())

	_, err := svc.Create(context.Background(), region(uuid.New()), nil)

	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestCreateLinkDerivesPresence(t *testing.T) {
	assetID := uuid.New()
	svc, syncer := newTestService(t, assetID)
	ctx := context.Background()
	annotation, err := svc.Create(ctx, region(assetID), nil)
	require.NoError(t, err)
	entityID := uuid.New()

	link, err := svc.CreateLink(ctx, CreateLinkInput{
		AnnotationID: annotation.ID,
		EntityID:     entityID,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, link.Confidence)

	require.Len(t, syncer.calls, 1)
	assert.Equal(t, syncCall{kind: "link", assetID: annotation.ID, entityID: entityID}, syncer.calls[0])
}

func TestCreateLinkTwiceIsConflict(t *testing.T) {
	assetID := uuid.New()
	svc, _ := newTestService(t, assetID)
	ctx := context.Background()
	annotation, err := svc.Create(ctx, region(assetID), nil)
	require.NoError(t, err)
	entityID := uuid.New()

	_, err = svc.CreateLink(ctx, CreateLinkInput{AnnotationID: annotation.ID, EntityID: entityID}, nil)
	require.NoError(t, err)
	_, err = svc.CreateLink(ctx, CreateLinkInput{AnnotationID: annotation.ID, EntityID: entityID}, nil)

	require.Error(t, err)
	assert.Equal(t, errors.CodeConflict, errors.As(err).Code())
}

func TestDeleteLinkTriggersCleanup(t *testing.T) {
	assetID := uuid.New()
	svc, syncer := newTestService(t, assetID)
	ctx := context.Background()
	annotation, err := svc.Create(ctx, region(assetID), nil)
	require.NoError(t, err)
	entityID := uuid.New()
	_, err = svc.CreateLink(ctx, CreateLinkInput{AnnotationID: annotation.ID, EntityID: entityID}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLink(ctx, annotation.ID, entityID, nil))

	last := syncer.calls[len(syncer.calls)-1]
	assert.Equal(t, syncCall{kind: "unlink", assetID: assetID, entityID: entityID}, last)

	err = svc.DeleteLink(ctx, annotation.ID, entityID, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestDeleteAnnotationRemovesLinksAndResyncsAsset(t *testing.T) {
	assetID := uuid.New()
	svc, syncer := newTestService(t, assetID)
	ctx := context.Background()
	annotation, err := svc.Create(ctx, region(assetID), nil)
	require.NoError(t, err)
	entityID := uuid.New()
	_, err = svc.CreateLink(ctx, CreateLinkInput{AnnotationID: annotation.ID, EntityID: entityID}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, annotation.ID, nil))

	linked, err := svc.LinkedEntityIDs(ctx, assetID)
	require.NoError(t, err)
	assert.Empty(t, linked)

	last := syncer.calls[len(syncer.calls)-1]
	assert.Equal(t, syncCall{kind: "asset", assetID: assetID}, last)
}

func TestLinkedEntityIDsAreDistinctAcrossAnnotations(t *testing.T) {
	assetID := uuid.New()
	svc, _ := newTestService(t, assetID)
	ctx := context.Background()
	first, err := svc.Create(ctx, region(assetID), nil)
	require.NoError(t, err)
	second, err := svc.Create(ctx, region(assetID), nil)
	require.NoError(t, err)
	entityID := uuid.New()

	_, err = svc.CreateLink(ctx, CreateLinkInput{AnnotationID: first.ID, EntityID: entityID}, nil)
	require.NoError(t, err)
	_, err = svc.CreateLink(ctx, CreateLinkInput{AnnotationID: second.ID, EntityID: entityID}, nil)
	require.NoError(t, err)

	linked, err := svc.LinkedEntityIDs(ctx, assetID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{entityID}, linked)

	stillLinked, err := svc.EntityLinked(ctx, assetID, entityID)
	require.NoError(t, err)
	assert.True(t, stillLinked)

	// Removing one of two links keeps the entity linked.
	require.NoError(t, svc.DeleteLink(ctx, first.ID, entityID, nil))
	stillLinked, err = svc.EntityLinked(ctx, assetID, entityID)
	require.NoError(t, err)
	assert.True(t, stillLinked)
}
