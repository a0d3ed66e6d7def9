package presence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/pagination"
)

// Service owns investigator-entered presences. Derived rows belong to the
// Synchronizer and are refused here.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateManualInput records a sighting entered by hand.
type CreateManualInput struct {
	EntityID   uuid.UUID `validate:"required"`
	OccurredAt time.Time `validate:"required"`
	Latitude   *float64  `validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64  `validate:"omitempty,gte=-180,lte=180"`
	Notes      *string
}

func (s *Service) CreateManual(ctx context.Context, input CreateManualInput, actorID *uuid.UUID) (*models.Presence, error) {
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, errors.New(errors.CodeValidation, "latitude and longitude must be provided together")
	}
	row := &models.Presence{
		EntityID:   input.EntityID,
		OccurredAt: input.OccurredAt,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Notes:      input.Notes,
		CreatedBy:  actorID,
	}
	if err := s.repo.CreateManual(ctx, row); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "create presence")
	}
	return row, nil
}

// Delete removes a manual presence. Derived rows are owned by the
// synchronizer: deleting one by hand would only last until the next pass, so
// the call is rejected instead.
func (s *Service) Delete(ctx context.Context, presenceID uuid.UUID) error {
	row, err := s.repo.FindByID(ctx, presenceID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "load presence")
	}
	if row == nil {
		return errors.New(errors.CodeNotFound, "presence not found")
	}
	if row.IsAuto() {
		return errors.New(errors.CodeConflict, "derived presences are managed automatically; unlink the entity or ignore it on the asset instead")
	}
	deleted, err := s.repo.Delete(ctx, presenceID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "delete presence")
	}
	if !deleted {
		return errors.New(errors.CodeNotFound, "presence not found")
	}
	return nil
}

// ListForEntity returns the entity's presences newest first.
func (s *Service) ListForEntity(ctx context.Context, entityID uuid.UUID, limit int) ([]models.Presence, error) {
	rows, err := s.repo.ListForEntities(ctx, []uuid.UUID{entityID}, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list presences")
	}
	return rows, nil
}
