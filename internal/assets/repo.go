package assets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Karethoth/noirion-backend/internal/repo"
	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/pagination"
)

// Repository encapsulates asset, override, and ignore-list persistence.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.Rebind(tx)}
}

func (r *Repository) Create(ctx context.Context, asset *models.Asset) error {
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	return r.DB(ctx).Create(asset).Error
}

// FindByID returns the asset or nil when it does not exist or is soft-deleted.
func (r *Repository) FindByID(ctx context.Context, assetID uuid.UUID) (*models.Asset, error) {
	var row models.Asset
	err := r.DB(ctx).Where("id = ?", assetID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List pages non-deleted assets newest first.
func (r *Repository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Asset, error) {
	query := r.DB(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit))
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.Time, cursor.Time, cursor.ID,
		)
	}
	var rows []models.Asset
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActive returns every non-deleted asset; used by batch analyses.
func (r *Repository) ListActive(ctx context.Context) ([]models.Asset, error) {
	var rows []models.Asset
	if err := r.DB(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) SoftDelete(ctx context.Context, assetID uuid.UUID) (bool, error) {
	result := r.DB(ctx).Where("id = ?", assetID).Delete(&models.Asset{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Update(ctx context.Context, asset *models.Asset) error {
	return r.DB(ctx).Save(asset).Error
}

// OverrideFor returns the asset's override row or nil when none exists.
func (r *Repository) OverrideFor(ctx context.Context, assetID uuid.UUID) (*models.AssetOverride, error) {
	var row models.AssetOverride
	err := r.DB(ctx).Where("asset_id = ?", assetID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// OverridesByAssetID loads every override keyed by asset for batch joins.
func (r *Repository) OverridesByAssetID(ctx context.Context) (map[uuid.UUID]*models.AssetOverride, error) {
	var rows []models.AssetOverride
	if err := r.DB(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.AssetOverride, len(rows))
	for i := range rows {
		out[rows[i].AssetID] = &rows[i]
	}
	return out, nil
}

// SaveOverride upserts the singleton override row for the asset.
func (r *Repository) SaveOverride(ctx context.Context, override *models.AssetOverride) error {
	if override.ID == uuid.Nil {
		override.ID = uuid.New()
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "asset_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "captured_at", "latitude", "longitude", "altitude",
			"subject_latitude", "subject_longitude", "updated_by", "updated_at",
		}),
	}).Create(override).Error
}

// IgnoredEntityIDs returns the asset's ignore set.
func (r *Repository) IgnoredEntityIDs(ctx context.Context, assetID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	var rows []models.AssetPresenceIgnore
	if err := r.DB(ctx).Where("asset_id = ?", assetID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		out[row.EntityID] = struct{}{}
	}
	return out, nil
}

func (r *Repository) ListIgnores(ctx context.Context, assetID uuid.UUID) ([]models.AssetPresenceIgnore, error) {
	var rows []models.AssetPresenceIgnore
	err := r.DB(ctx).
		Where("asset_id = ?", assetID).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AddIgnore inserts an ignore entry; repeats are absorbed by the unique pair
// constraint.
func (r *Repository) AddIgnore(ctx context.Context, assetID, entityID uuid.UUID, createdBy *uuid.UUID) error {
	return r.DB(ctx).Exec(`
INSERT INTO asset_presence_ignores (id, asset_id, entity_id, created_by, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (asset_id, entity_id) DO NOTHING`,
		uuid.New(), assetID, entityID, createdBy, time.Now().UTC(),
	).Error
}

func (r *Repository) RemoveIgnore(ctx context.Context, assetID, entityID uuid.UUID) (bool, error) {
	result := r.DB(ctx).
		Where("asset_id = ? AND entity_id = ?", assetID, entityID).
		Delete(&models.AssetPresenceIgnore{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
