package annotations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Karethoth/noirion-backend/internal/repo"
	"github.com/Karethoth/noirion-backend/pkg/db/models"
)

// Repository encapsulates annotation and annotation-entity-link persistence.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, annotation *models.Annotation) error {
	if annotation.ID == uuid.Nil {
		annotation.ID = uuid.New()
	}
	return r.DB(ctx).Create(annotation).Error
}

func (r *Repository) FindByID(ctx context.Context, annotationID uuid.UUID) (*models.Annotation, error) {
	var row models.Annotation
	err := r.DB(ctx).Where("id = ?", annotationID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListForAsset(ctx context.Context, assetID uuid.UUID) ([]models.Annotation, error) {
	var rows []models.Annotation
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

// Delete removes the annotation and its entity links.
func (r *Repository) Delete(ctx context.Context, annotationID uuid.UUID) (bool, error) {
	if err := r.DB(ctx).
		Where("annotation_id = ?", annotationID).
		Delete(&models.AnnotationEntityLink{}).
		Error; err != nil {
		return false, err
	}
	result := r.DB(ctx).Where("id = ?", annotationID).Delete(&models.Annotation{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) CreateLink(ctx context.Context, link *models.AnnotationEntityLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	return r.DB(ctx).Create(link).Error
}

func (r *Repository) FindLink(ctx context.Context, annotationID, entityID uuid.UUID) (*models.AnnotationEntityLink, error) {
	var row models.AnnotationEntityLink
	err := r.DB(ctx).
		Where("annotation_id = ? AND entity_id = ?", annotationID, entityID).
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

func (r *Repository) ListLinks(ctx context.Context, annotationID uuid.UUID) ([]models.AnnotationEntityLink, error) {
	var rows []models.AnnotationEntityLink
	err := r.DB(ctx).
		Where("annotation_id = ?", annotationID).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) DeleteLink(ctx context.Context, annotationID, entityID uuid.UUID) (bool, error) {
	result := r.DB(ctx).
		Where("annotation_id = ? AND entity_id = ?", annotationID, entityID).
		Delete(&models.AnnotationEntityLink{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// LinkedEntityIDs returns the distinct entities linked to the asset through
// any of its annotations.
func (r *Repository) LinkedEntityIDs(ctx context.Context, assetID uuid.UUID) ([]uuid.UUID, error) {
	var rows []struct {
		EntityID uuid.UUID `gorm:"column:entity_id"`
	}
	err := r.DB(ctx).Raw(`
SELECT DISTINCT ael.entity_id
FROM annotation_entity_links ael
JOIN annotations a ON a.id = ael.annotation_id
WHERE a.asset_id = ?`,
		assetID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.EntityID)
	}
	return out, nil
}

// AssetIDForAnnotation resolves an annotation to its asset.
func (r *Repository) AssetIDForAnnotation(ctx context.Context, annotationID uuid.UUID) (uuid.UUID, bool, error) {
	annotation, err := r.FindByID(ctx, annotationID)
	if err != nil {
		return uuid.Nil, false, err
	}
	if annotation == nil {
		return uuid.Nil, false, nil
	}
	return annotation.AssetID, true, nil
}

// EntityLinked reports whether any annotation on the asset still links the
// entity.
func (r *Repository) EntityLinked(ctx context.Context, assetID, entityID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.AnnotationEntityLink{}).
		Joins("JOIN annotations ON annotations.id = annotation_entity_links.annotation_id").
		Where("annotations.asset_id = ? AND annotation_entity_links.entity_id = ?", assetID, entityID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
