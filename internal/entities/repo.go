package entities

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Karethoth/noirion-backend/internal/repo"
	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/enums"
	"github.com/Karethoth/noirion-backend/pkg/types"
)

// Repository encapsulates entity, attribute, and entity-link persistence.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, entity *models.Entity) error {
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	return r.DB(ctx).Create(entity).Error
}

func (r *Repository) FindByID(ctx context.Context, entityID uuid.UUID) (*models.Entity, error) {
	var row models.Entity
	err := r.DB(ctx).Where("id = ?", entityID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, kind *enums.EntityKind) ([]models.Entity, error) {
	query := r.DB(ctx).Order("name ASC")
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	var rows []models.Entity
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, entity *models.Entity) error {
	return r.DB(ctx).Save(entity).Error
}

// DeleteCascade removes the entity with everything hanging off it: its
// attributes, its graph edges in both directions, its annotation links, and
// its presences with their memberships.
func (r *Repository) DeleteCascade(ctx context.Context, entityID uuid.UUID) (bool, error) {
	var deleted bool
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entity_id = ?", entityID).
			Delete(&models.EntityAttribute{}).Error; err != nil {
			return err
		}
		if err := tx.Where("from_entity_id = ? OR to_entity_id = ?", entityID, entityID).
			Delete(&models.EntityLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entity_id = ?", entityID).
			Delete(&models.AnnotationEntityLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entity_id = ?", entityID).
			Delete(&models.PresenceMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entity_id = ?", entityID).
			Delete(&models.Presence{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", entityID).Delete(&models.Entity{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// SetAttribute upserts the named attribute of the entity.
func (r *Repository) SetAttribute(ctx context.Context, attribute *models.EntityAttribute) error {
	if attribute.ID == uuid.Nil {
		attribute.ID = uuid.New()
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(attribute).Error
}

func (r *Repository) ListAttributes(ctx context.Context, entityID uuid.UUID) ([]models.EntityAttribute, error) {
	var rows []models.EntityAttribute
	err := r.DB(ctx).
		Where("entity_id = ?", entityID).
		Order("name ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) DeleteAttribute(ctx context.Context, entityID uuid.UUID, name string) (bool, error) {
	result := r.DB(ctx).
		Where("entity_id = ? AND name = ?", entityID, name).
		Delete(&models.EntityAttribute{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) CreateLink(ctx context.Context, link *models.EntityLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	return r.DB(ctx).Create(link).Error
}

func (r *Repository) ListLinks(ctx context.Context, entityID uuid.UUID) ([]models.EntityLink, error) {
	var rows []models.EntityLink
	err := r.DB(ctx).
		Where("from_entity_id = ? OR to_entity_id = ?", entityID, entityID).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) DeleteLink(ctx context.Context, linkID uuid.UUID) (bool, error) {
	result := r.DB(ctx).Where("id = ?", linkID).Delete(&models.EntityLink{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// LocationPoints extracts the coordinate attribute of every location-type
// entity for home-location aggregation.
func (r *Repository) LocationPoints(ctx context.Context) ([]types.LatLng, error) {
	var rows []models.EntityAttribute
	err := r.DB(ctx).
		Joins("JOIN entities ON entities.id = entity_attributes.entity_id").
		Where("entities.kind = ? AND entity_attributes.name = ?",
			enums.EntityKindLocation, models.AttributeNameCoordinates).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	var points []types.LatLng
	for _, row := range rows {
		lat, okLat := row.Value.Float("latitude")
		lng, okLng := row.Value.Float("longitude")
		if !okLat || !okLng {
			continue
		}
		points = append(points, types.LatLng{Lat: lat, Lng: lng})
	}
	return points, nil
}
