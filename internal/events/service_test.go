package events

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/types"
)

func floatPtr(v float64) *float64 {
	return &v
}

func setupEventsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	events := `
CREATE TABLE IF NOT EXISTS events (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  entity_id TEXT,
  occurred_at DATETIME NOT NULL,
  latitude REAL,
  longitude REAL,
  notes TEXT,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(events).Error)
	return db
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	return NewService(NewRepository(setupEventsTestDB(t)), log)
}

func TestCreateRejectsHalfCoordinatePair(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateEventInput{
		Title:      "sighting",
		OccurredAt: time.Now().UTC(),
		Latitude:   floatPtr(60.0),
	}, nil)

	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestUpdateAppliesPatchSemantics(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	occurredAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	event, err := svc.Create(ctx, CreateEventInput{
		Title:      "sighting",
		OccurredAt: occurredAt,
		Latitude:   floatPtr(60.0),
		Longitude:  floatPtr(24.0),
	}, nil)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, event.ID, UpdateEventInput{
		Latitude:  types.ClearField[float64](),
		Longitude: types.ClearField[float64](),
	})
	require.NoError(t, err)
	assert.Equal(t, "sighting", updated.Title)
	assert.Nil(t, updated.Latitude)
	assert.Nil(t, updated.Longitude)

	_, err = svc.Update(ctx, event.ID, UpdateEventInput{Latitude: types.SetField(61.0)})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestListForEntitiesFiltersBySubject(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	subject := uuid.New()
	other := uuid.New()
	occurredAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, CreateEventInput{Title: "a", EntityID: &subject, OccurredAt: occurredAt}, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateEventInput{Title: "b", EntityID: &other, OccurredAt: occurredAt.Add(time.Hour)}, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateEventInput{Title: "c", OccurredAt: occurredAt}, nil)
	require.NoError(t, err)

	rows, err := svc.ListForEntities(ctx, []uuid.UUID{subject}, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].Title)

	rows, err = svc.ListForEntities(ctx, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCollectPointsSkipsUnlocatedEvents(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	occurredAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, CreateEventInput{
		Title:      "located",
		OccurredAt: occurredAt,
		Latitude:   floatPtr(0.0),
		Longitude:  floatPtr(0.0),
	}, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateEventInput{Title: "unlocated", OccurredAt: occurredAt}, nil)
	require.NoError(t, err)

	points, err := svc.CollectPoints(ctx)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 0.0, points[0].Lat)
}
