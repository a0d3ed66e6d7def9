package presence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/enums"
)

func setupPresenceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	presences := `
CREATE TABLE IF NOT EXISTS presences (
  id TEXT PRIMARY KEY,
  entity_id TEXT NOT NULL,
  occurred_at DATETIME NOT NULL,
  latitude REAL,
  longitude REAL,
  source_asset_id TEXT,
  source_type TEXT NOT NULL,
  auto_from TEXT,
  notes TEXT,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uq_presences_source UNIQUE (source_asset_id, source_type, entity_id)
);`
	memberships := `
CREATE TABLE IF NOT EXISTS presence_memberships (
  id TEXT PRIMARY KEY,
  presence_id TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  role TEXT,
  confidence REAL NOT NULL DEFAULT 1.0,
  created_at DATETIME,
  CONSTRAINT uq_presence_memberships UNIQUE (presence_id, entity_id)
);`
	require.NoError(t, db.Exec(presences).Error)
	require.NoError(t, db.Exec(memberships).Error)
	return db
}

func autoRow(assetID, entityID uuid.UUID, occurredAt time.Time, lat, lng *float64) *models.Presence {
	from := enums.PresenceAutoFromAsset
	return &models.Presence{
		EntityID:      entityID,
		OccurredAt:    occurredAt,
		Latitude:      lat,
		Longitude:     lng,
		SourceAssetID: &assetID,
		SourceType:    enums.PresenceSourceAnnotationEntityLink,
		AutoFrom:      &from,
	}
}

func TestUpsertAutoInsertsThenUpdatesSameRow(t *testing.T) {
	db := setupPresenceTestDB(t)
	repository := NewRepository(db)
	ctx := context.Background()
	assetID := uuid.New()
	entityID := uuid.New()
	firstAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)

	id, created, err := repository.UpsertAuto(ctx, autoRow(assetID, entityID, firstAt, floatPtr(60.0), floatPtr(24.0)))
	require.NoError(t, err)
	assert.True(t, created)

	secondAt := firstAt.Add(30 * time.Minute)
	secondID, created, err := repository.UpsertAuto(ctx, autoRow(assetID, entityID, secondAt, floatPtr(61.0), floatPtr(25.0)))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, secondID)

	row, err := repository.FindAuto(ctx, assetID, entityID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, secondAt, row.OccurredAt.UTC())
	assert.Equal(t, 61.0, *row.Latitude)

	var count int64
	require.NoError(t, db.Model(&models.Presence{}).Where("source_asset_id = ?", assetID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertAutoCanClearCoordinates(t *testing.T) {
	db := setupPresenceTestDB(t)
	repository := NewRepository(db)
	ctx := context.Background()
	assetID := uuid.New()
	entityID := uuid.New()
	occurredAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)

	_, _, err := repository.UpsertAuto(ctx, autoRow(assetID, entityID, occurredAt, floatPtr(60.0), floatPtr(24.0)))
	require.NoError(t, err)

	_, _, err = repository.UpsertAuto(ctx, autoRow(assetID, entityID, occurredAt, nil, nil))
	require.NoError(t, err)

	row, err := repository.FindAuto(ctx, assetID, entityID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Nil(t, row.Latitude)
	assert.Nil(t, row.Longitude)
}

func TestFindAutoReturnsNilWhenMissing(t *testing.T) {
	db := setupPresenceTestDB(t)
	repository := NewRepository(db)

	row, err := repository.FindAuto(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestDeleteAutoLeavesManualPresencesAlone(t *testing.T) {
	db := setupPresenceTestDB(t)
	repository := NewRepository(db)
	ctx := context.Background()
	assetID := uuid.New()
	entityID := uuid.New()
	occurredAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)

	_, _, err := repository.UpsertAuto(ctx, autoRow(assetID, entityID, occurredAt, floatPtr(60.0), floatPtr(24.0)))
	require.NoError(t, err)

	manual := &models.Presence{
		EntityID:   entityID,
		OccurredAt: occurredAt,
		Latitude:   floatPtr(59.0),
		Longitude:  floatPtr(23.0),
	}
	require.NoError(t, repository.CreateManual(ctx, manual))

	deleted, err := repository.DeleteAuto(ctx, assetID, entityID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repository.DeleteAuto(ctx, assetID, entityID)
	require.NoError(t, err)
	assert.False(t, deleted)

	var count int64
	require.NoError(t, db.Model(&models.Presence{}).Where("entity_id = ?", entityID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureMembershipIsIdempotent(t *testing.T) {
	db := setupPresenceTestDB(t)
	repository := NewRepository(db)
	ctx := context.Background()
	presenceID := uuid.New()
	entityID := uuid.New()

	require.NoError(t, repository.EnsureMembership(ctx, presenceID, entityID, nil, 1.0))
	require.NoError(t, repository.EnsureMembership(ctx, presenceID, entityID, nil, 1.0))

	var count int64
	require.NoError(t, db.Model(&models.PresenceMembership{}).Where("presence_id = ?", presenceID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListForEntitiesOrdersNewestFirst(t *testing.T) {
	db := setupPresenceTestDB(t)
	repository := NewRepository(db)
	ctx := context.Background()
	entityID := uuid.New()
	base := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		row := &models.Presence{
			EntityID:   entityID,
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repository.CreateManual(ctx, row))
	}

	rows, err := repository.ListForEntities(ctx, []uuid.UUID{entityID}, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, base.Add(2*time.Hour), rows[0].OccurredAt.UTC())
	assert.Equal(t, base.Add(time.Hour), rows[1].OccurredAt.UTC())

	rows, err = repository.ListForEntities(ctx, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCollectPointsSkipsRowsWithoutCoordinates(t *testing.T) {
	db := setupPresenceTestDB(t)
	repository := NewRepository(db)
	ctx := context.Background()
	entityID := uuid.New()
	occurredAt := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repository.CreateManual(ctx, &models.Presence{
		EntityID:   entityID,
		OccurredAt: occurredAt,
		Latitude:   floatPtr(2.0),
		Longitude:  floatPtr(2.0),
	}))
	require.NoError(t, repository.CreateManual(ctx, &models.Presence{
		EntityID:   entityID,
		OccurredAt: occurredAt,
	}))

	points, err := repository.CollectPoints(ctx)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 2.0, points[0].Lat)
}
