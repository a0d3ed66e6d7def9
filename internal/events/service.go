package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/types"
)

// Service owns investigator-entered events.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

type CreateEventInput struct {
	Title      string    `validate:"required"`
	EntityID   *uuid.UUID
	OccurredAt time.Time `validate:"required"`
	Latitude   *float64  `validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64  `validate:"omitempty,gte=-180,lte=180"`
	Notes      *string
}

type UpdateEventInput struct {
	Title      types.PatchField[string]    `json:"title"`
	EntityID   types.PatchField[uuid.UUID] `json:"entityId"`
	OccurredAt types.PatchField[time.Time] `json:"occurredAt"`
	Latitude   types.PatchField[float64]   `json:"latitude"`
	Longitude  types.PatchField[float64]   `json:"longitude"`
	Notes      types.PatchField[string]    `json:"notes"`
}

func (s *Service) Create(ctx context.Context, input CreateEventInput, actorID *uuid.UUID) (*models.Event, error) {
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, errors.New(errors.CodeValidation, "latitude and longitude must be provided together")
	}
	event := &models.Event{
		Title:      input.Title,
		EntityID:   input.EntityID,
		OccurredAt: input.OccurredAt,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Notes:      input.Notes,
		CreatedBy:  actorID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "create event")
	}
	return event, nil
}

func (s *Service) Get(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load event")
	}
	if event == nil {
		return nil, errors.New(errors.CodeNotFound, "event not found")
	}
	return event, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list events")
	}
	return rows, nil
}

func (s *Service) Update(ctx context.Context, eventID uuid.UUID, input UpdateEventInput) (*models.Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if title, ok := input.Title.Get(); ok {
		event.Title = title
	} else if input.Title.IsClear() {
		return nil, errors.New(errors.CodeValidation, "event title cannot be cleared")
	}
	if occurredAt, ok := input.OccurredAt.Get(); ok {
		event.OccurredAt = occurredAt
	} else if input.OccurredAt.IsClear() {
		return nil, errors.New(errors.CodeValidation, "event time cannot be cleared")
	}
	event.EntityID = input.EntityID.Apply(event.EntityID)
	event.Latitude = input.Latitude.Apply(event.Latitude)
	event.Longitude = input.Longitude.Apply(event.Longitude)
	event.Notes = input.Notes.Apply(event.Notes)

	if (event.Latitude == nil) != (event.Longitude == nil) {
		return nil, errors.New(errors.CodeValidation, "latitude and longitude must be provided together")
	}
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "update event")
	}
	return event, nil
}

func (s *Service) Delete(ctx context.Context, eventID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, eventID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "delete event")
	}
	if !deleted {
		return errors.New(errors.CodeNotFound, "event not found")
	}
	return nil
}

// ListForEntities feeds the timeline with events scoped to an entity set.
func (s *Service) ListForEntities(ctx context.Context, entityIDs []uuid.UUID, limit int) ([]models.Event, error) {
	return s.repo.ListForEntities(ctx, entityIDs, limit)
}

// CollectPoints contributes event coordinates to home-location aggregation.
func (s *Service) CollectPoints(ctx context.Context) ([]types.LatLng, error) {
	return s.repo.CollectPoints(ctx)
}
