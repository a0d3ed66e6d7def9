package timeline

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
)

type fakeGraph struct {
	connected map[uuid.UUID][]uuid.UUID
}

func (f *fakeGraph) ConnectedEntityIDs(_ context.Context, entityID uuid.UUID) ([]uuid.UUID, error) {
	if scope, ok := f.connected[entityID]; ok {
		return scope, nil
	}
	return []uuid.UUID{entityID}, nil
}

type fakePresences struct {
	rows []models.Presence
}

func (f *fakePresences) ListForEntities(_ context.Context, entityIDs []uuid.UUID, _ int) ([]models.Presence, error) {
	allowed := map[uuid.UUID]struct{}{}
	for _, id := range entityIDs {
		allowed[id] = struct{}{}
	}
	var out []models.Presence
	for _, row := range f.rows {
		if _, ok := allowed[row.EntityID]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeEvents struct {
	rows []models.Event
}

func (f *fakeEvents) ListForEntities(_ context.Context, entityIDs []uuid.UUID, _ int) ([]models.Event, error) {
	allowed := map[uuid.UUID]struct{}{}
	for _, id := range entityIDs {
		allowed[id] = struct{}{}
	}
	var out []models.Event
	for _, row := range f.rows {
		if row.EntityID == nil {
			continue
		}
		if _, ok := allowed[*row.EntityID]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func newTestService(graph *fakeGraph, presences *fakePresences, events *fakeEvents) *Service {
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	return NewService(graph, presences, events, log)
}

func manualPresence(entityID uuid.UUID, occurredAt time.Time) models.Presence {
	return models.Presence{
		ID:         uuid.New(),
		EntityID:   entityID,
		OccurredAt: occurredAt,
		SourceType: enums.PresenceSourceManual,
	}
}

func TestForEntityWidensScopeToLinkedNeighbors(t *testing.T) {
	person := uuid.New()
	vehicle := uuid.New()
	stranger := uuid.New()
	base := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	graph := &fakeGraph{connected: map[uuid.UUID][]uuid.UUID{
		person: {person, vehicle},
	}}
	presences := &fakePresences{rows: []models.Presence{
		manualPresence(person, base),
		manualPresence(vehicle, base.Add(time.Hour)),
		manualPresence(stranger, base.Add(2*time.Hour)),
	}}

	items, err := newTestService(graph, presences, &fakeEvents{}).
		ForEntity(context.Background(), person, 10)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, vehicle, *items[0].EntityID)
	assert.Equal(t, person, *items[1].EntityID)
}

func TestForEntityMergesPresencesAndEventsNewestFirst(t *testing.T) {
	entity := uuid.New()
	base := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	auto := enums.PresenceAutoFromAsset
	assetID := uuid.New()
	presences := &fakePresences{rows: []models.Presence{
		{
			ID:            uuid.New(),
			EntityID:      entity,
			OccurredAt:    base,
			SourceAssetID: &assetID,
			SourceType:    enums.PresenceSourceAnnotationEntityLink,
			AutoFrom:      &auto,
		},
	}}
	events := &fakeEvents{rows: []models.Event{
		{ID: uuid.New(), Title: "meeting", EntityID: &entity, OccurredAt: base.Add(time.Hour)},
	}}

	items, err := newTestService(&fakeGraph{}, presences, events).
		ForEntity(context.Background(), entity, 10)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, KindEvent, items[0].Kind)
	require.NotNil(t, items[0].Title)
	assert.Equal(t, "meeting", *items[0].Title)
	assert.Equal(t, KindPresence, items[1].Kind)
	assert.True(t, items[1].Auto)
}

func TestForEntityRespectsLimit(t *testing.T) {
	entity := uuid.New()
	base := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	var rows []models.Presence
	for i := 0; i < 5; i++ {
		rows = append(rows, manualPresence(entity, base.Add(time.Duration(i)*time.Minute)))
	}

	items, err := newTestService(&fakeGraph{}, &fakePresences{rows: rows}, &fakeEvents{}).
		ForEntity(context.Background(), entity, 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}
