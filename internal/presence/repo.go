package presence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Karethoth/noirion-backend/internal/repo"
	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/enums"
	"github.com/Karethoth/noirion-backend/pkg/types"
)

// Repository encapsulates presence persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a presence repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.Rebind(tx)}
}

// FindAuto looks up the derived presence for the (asset, entity) pair, keyed
// by the annotation_entity_link source type.
func (r *Repository) FindAuto(ctx context.Context, assetID, entityID uuid.UUID) (*models.Presence, error) {
	var row models.Presence
	err := r.DB(ctx).
		Where("source_asset_id = ? AND source_type = ? AND entity_id = ?",
			assetID, enums.PresenceSourceAnnotationEntityLink, entityID).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByID loads a presence row, nil when missing.
func (r *Repository) FindByID(ctx context.Context, presenceID uuid.UUID) (*models.Presence, error) {
	var row models.Presence
	err := r.DB(ctx).Where("id = ?", presenceID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertAuto writes a derived presence. The unique (source_asset_id,
// source_type, entity_id) constraint absorbs concurrent passes: the second
// writer updates the first writer's row instead of duplicating it. Returns the
// surviving row id and whether the call inserted it.
func (r *Repository) UpsertAuto(ctx context.Context, row *models.Presence) (uuid.UUID, bool, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()

	var surviving struct {
		ID uuid.UUID `gorm:"column:id"`
	}
	err := r.DB(ctx).Raw(`
INSERT INTO presences (id, entity_id, occurred_at, latitude, longitude, source_asset_id, source_type, auto_from, created_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (source_asset_id, source_type, entity_id) DO UPDATE SET
  occurred_at = excluded.occurred_at,
  latitude = excluded.latitude,
  longitude = excluded.longitude,
  auto_from = excluded.auto_from,
  updated_at = excluded.updated_at
RETURNING id`,
		row.ID, row.EntityID, row.OccurredAt, row.Latitude, row.Longitude,
		row.SourceAssetID, row.SourceType, row.AutoFrom, row.CreatedBy, now, now,
	).Scan(&surviving).Error
	if err != nil {
		return uuid.Nil, false, err
	}
	return surviving.ID, surviving.ID == row.ID, nil
}

// AutoEntityIDs returns the entities that currently hold a derived presence
// from the asset, so a reconcile pass can spot rows whose justifying links are
// gone.
func (r *Repository) AutoEntityIDs(ctx context.Context, assetID uuid.UUID) ([]uuid.UUID, error) {
	var rows []struct {
		EntityID uuid.UUID `gorm:"column:entity_id"`
	}
	err := r.DB(ctx).
		Model(&models.Presence{}).
		Select("entity_id").
		Where("source_asset_id = ? AND source_type = ? AND auto_from IS NOT NULL",
			assetID, enums.PresenceSourceAnnotationEntityLink).
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.EntityID)
	}
	return ids, nil
}

// DeleteAuto removes the derived presence for the pair if one exists. Manual
// presences never match: only rows stamped auto_from are deleted.
func (r *Repository) DeleteAuto(ctx context.Context, assetID, entityID uuid.UUID) (bool, error) {
	result := r.DB(ctx).
		Where("source_asset_id = ? AND source_type = ? AND entity_id = ? AND auto_from IS NOT NULL",
			assetID, enums.PresenceSourceAnnotationEntityLink, entityID).
		Delete(&models.Presence{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// EnsureMembership inserts the presence-entity membership row, ignoring
// duplicates so repeated passes are idempotent.
func (r *Repository) EnsureMembership(ctx context.Context, presenceID, entityID uuid.UUID, role *string, confidence float64) error {
	return r.DB(ctx).Exec(`
INSERT INTO presence_memberships (id, presence_id, entity_id, role, confidence, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (presence_id, entity_id) DO NOTHING`,
		uuid.New(), presenceID, entityID, role, confidence, time.Now().UTC(),
	).Error
}

// CreateManual stores an investigator-entered presence.
func (r *Repository) CreateManual(ctx context.Context, row *models.Presence) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.SourceType = enums.PresenceSourceManual
	row.AutoFrom = nil
	return r.DB(ctx).Create(row).Error
}

// Delete removes a presence row by id.
func (r *Repository) Delete(ctx context.Context, presenceID uuid.UUID) (bool, error) {
	result := r.DB(ctx).Where("id = ?", presenceID).Delete(&models.Presence{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListForEntities returns the presences of every listed entity ordered by
// observation time descending, id descending for stable ties.
func (r *Repository) ListForEntities(ctx context.Context, entityIDs []uuid.UUID, limit int) ([]models.Presence, error) {
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
	var rows []models.Presence
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CollectPoints returns every presence coordinate for centroid aggregation.
func (r *Repository) CollectPoints(ctx context.Context) ([]types.LatLng, error) {
	var rows []types.LatLng
	err := r.DB(ctx).
		Model(&models.Presence{}).
		Select("latitude AS lat", "longitude AS lng").
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
