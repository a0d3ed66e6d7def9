package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Karethoth/noirion-backend/internal/repo"
	"github.com/Karethoth/noirion-backend/pkg/db/models"
)

// Repository owns the singleton project settings row.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Get returns the settings row, creating the singleton if the seed is missing.
func (r *Repository) Get(ctx context.Context) (*models.ProjectSettings, error) {
	var row models.ProjectSettings
	err := r.DB(ctx).Where("id = ?", models.ProjectSettingsID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.ProjectSettings{ID: models.ProjectSettingsID}
		if err := r.DB(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SaveHome persists the home location on the singleton row.
func (r *Repository) SaveHome(ctx context.Context, lat, lng *float64) (*models.ProjectSettings, error) {
	row, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	row.HomeLatitude = lat
	row.HomeLongitude = lng
	if err := r.DB(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
