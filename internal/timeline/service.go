package timeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/pagination"
)

// Item kinds on the merged timeline.
const (
	KindPresence = "presence"
	KindEvent    = "event"
)

// Connectivity widens an entity filter to its one-hop neighborhood.
type Connectivity interface {
	ConnectedEntityIDs(ctx context.Context, entityID uuid.UUID) ([]uuid.UUID, error)
}

// PresenceLister supplies presences for a set of entities.
type PresenceLister interface {
	ListForEntities(ctx context.Context, entityIDs []uuid.UUID, limit int) ([]models.Presence, error)
}

// EventLister supplies events for a set of entities.
type EventLister interface {
	ListForEntities(ctx context.Context, entityIDs []uuid.UUID, limit int) ([]models.Event, error)
}

// Item is one merged timeline entry.
type Item struct {
	Kind       string     `json:"kind"`
	ID         uuid.UUID  `json:"id"`
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	Title      *string    `json:"title,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	Auto       bool       `json:"auto"`
}

// Service merges presences and events for an entity's one-hop neighborhood
// into a single reverse-chronological feed.
type Service struct {
	graph     Connectivity
	presences PresenceLister
	events    EventLister
	log       *logger.Logger
}

func NewService(graph Connectivity, presences PresenceLister, events EventLister, log *logger.Logger) *Service {
	return &Service{graph: graph, presences: presences, events: events, log: log}
}

// ForEntity returns the merged timeline for the entity and its directly linked
// neighbors, newest first, capped at limit.
func (s *Service) ForEntity(ctx context.Context, entityID uuid.UUID, limit int) ([]Item, error) {
	limit = pagination.NormalizeLimit(limit)
	scope, err := s.graph.ConnectedEntityIDs(ctx, entityID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "resolve entity connectivity")
	}

	presences, err := s.presences.ListForEntities(ctx, scope, limit)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load presences")
	}
	events, err := s.events.ListForEntities(ctx, scope, limit)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load events")
	}

	items := make([]Item, 0, len(presences)+len(events))
	for _, row := range presences {
		entity := row.EntityID
		items = append(items, Item{
			Kind:       KindPresence,
			ID:         row.ID,
			EntityID:   &entity,
			OccurredAt: row.OccurredAt,
			Latitude:   row.Latitude,
			Longitude:  row.Longitude,
			Auto:       row.IsAuto(),
		})
	}
	for _, row := range events {
		title := row.Title
		items = append(items, Item{
			Kind:       KindEvent,
			ID:         row.ID,
			EntityID:   row.EntityID,
			Title:      &title,
			OccurredAt: row.OccurredAt,
			Latitude:   row.Latitude,
			Longitude:  row.Longitude,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].OccurredAt.Equal(items[j].OccurredAt) {
			return items[i].OccurredAt.After(items[j].OccurredAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
