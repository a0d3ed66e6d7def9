package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Karethoth/noirion-backend/internal/repo"
	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/types"
)

// Repository encapsulates event persistence.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.DB(ctx).Create(event).Error
}

func (r *Repository) FindByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	var row models.Event
	err := r.DB(ctx).Where("id = ?", eventID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]models.Event, error) {
	query := r.DB(ctx).Order("occurred_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.Event
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListForEntities returns events whose subject is one of the listed entities.
func (r *Repository) ListForEntities(ctx context.Context, entityIDs []uuid.UUID, limit int) ([]models.Event, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	query := r.DB(ctx).
		Where("entity_id IN ?", entityIDs).
		Order("occurred_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.Event
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, event *models.Event) error {
	return r.DB(ctx).Save(event).Error
}

func (r *Repository) Delete(ctx context.Context, eventID uuid.UUID) (bool, error) {
	result := r.DB(ctx).Where("id = ?", eventID).Delete(&models.Event{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CollectPoints returns every event coordinate for centroid aggregation.
func (r *Repository) CollectPoints(ctx context.Context) ([]types.LatLng, error) {
	var rows []types.LatLng
	err := r.DB(ctx).
		Model(&models.Event{}).
		Select("latitude AS lat", "longitude AS lng").
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
