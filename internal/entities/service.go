package entities

import (
	"context"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/db"
	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/enums"
	"github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/types"
)

// Service owns entities, their attributes, and the entity-relationship graph.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

type CreateEntityInput struct {
	Kind  string `validate:"required"`
	Name  string `validate:"required"`
	Notes *string
}

type UpdateEntityInput struct {
	Name  types.PatchField[string] `json:"name"`
	Notes types.PatchField[string] `json:"notes"`
}

type CreateLinkInput struct {
	FromEntityID uuid.UUID `validate:"required"`
	ToEntityID   uuid.UUID `validate:"required"`
	Kind         string    `validate:"required"`
	Confidence   float64   `validate:"gte=0,lte=1"`
	Notes        *string
}

func (s *Service) Create(ctx context.Context, input CreateEntityInput, actorID *uuid.UUID) (*models.Entity, error) {
	kind, err := enums.ParseEntityKind(input.Kind)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid entity kind")
	}
	entity := &models.Entity{
		Kind:      kind,
		Name:      input.Name,
		Notes:     input.Notes,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "create entity")
	}
	return entity, nil
}

func (s *Service) Get(ctx context.Context, entityID uuid.UUID) (*models.Entity, error) {
	entity, err := s.repo.FindByID(ctx, entityID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load entity")
	}
	if entity == nil {
		return nil, errors.New(errors.CodeNotFound, "entity not found")
	}
	return entity, nil
}

func (s *Service) List(ctx context.Context, kindFilter *string) ([]models.Entity, error) {
	var kind *enums.EntityKind
	if kindFilter != nil {
		parsed, err := enums.ParseEntityKind(*kindFilter)
		if err != nil {
			return nil, errors.Wrap(errors.CodeValidation, err, "invalid entity kind")
		}
		kind = &parsed
	}
	rows, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list entities")
	}
	return rows, nil
}

func (s *Service) Update(ctx context.Context, entityID uuid.UUID, input UpdateEntityInput) (*models.Entity, error) {
	entity, err := s.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if name, ok := input.Name.Get(); ok {
		entity.Name = name
	} else if input.Name.IsClear() {
		return nil, errors.New(errors.CodeValidation, "entity name cannot be cleared")
	}
	entity.Notes = input.Notes.Apply(entity.Notes)
	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "update entity")
	}
	return entity, nil
}

// Delete removes the entity and cascades to its attributes, graph edges,
// annotation links, and presences.
func (s *Service) Delete(ctx context.Context, entityID uuid.UUID) error {
	deleted, err := s.repo.DeleteCascade(ctx, entityID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "delete entity")
	}
	if !deleted {
		return errors.New(errors.CodeNotFound, "entity not found")
	}
	return nil
}

// SetAttribute upserts a named attribute. The coordinates attribute of a
// location entity must carry a complete numeric pair because the home-location
// centroid reads it.
func (s *Service) SetAttribute(ctx context.Context, entityID uuid.UUID, name string, value types.JSONMap) (*models.EntityAttribute, error) {
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "attribute name is required")
	}
	entity, err := s.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if name == models.AttributeNameCoordinates {
		_, okLat := value.Float("latitude")
		_, okLng := value.Float("longitude")
		if !okLat || !okLng {
			return nil, errors.New(errors.CodeValidation, "coordinates attribute requires numeric latitude and longitude")
		}
	}
	attribute := &models.EntityAttribute{
		EntityID: entity.ID,
		Name:     name,
		Value:    value,
	}
	if err := s.repo.SetAttribute(ctx, attribute); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "set entity attribute")
	}
	return attribute, nil
}

func (s *Service) ListAttributes(ctx context.Context, entityID uuid.UUID) ([]models.EntityAttribute, error) {
	rows, err := s.repo.ListAttributes(ctx, entityID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list entity attributes")
	}
	return rows, nil
}

func (s *Service) DeleteAttribute(ctx context.Context, entityID uuid.UUID, name string) error {
	deleted, err := s.repo.DeleteAttribute(ctx, entityID, name)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "delete entity attribute")
	}
	if !deleted {
		return errors.New(errors.CodeNotFound, "entity attribute not found")
	}
	return nil
}

// CreateLink adds a directed edge between two entities.
func (s *Service) CreateLink(ctx context.Context, input CreateLinkInput, actorID *uuid.UUID) (*models.EntityLink, error) {
	if input.FromEntityID == input.ToEntityID {
		return nil, errors.New(errors.CodeValidation, "an entity cannot link to itself")
	}
	kind, err := enums.ParseEntityLinkKind(input.Kind)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid link kind")
	}
	for _, entityID := range []uuid.UUID{input.FromEntityID, input.ToEntityID} {
		if _, err := s.Get(ctx, entityID); err != nil {
			return nil, err
		}
	}

	confidence := input.Confidence
	if confidence == 0 {
		confidence = 1.0
	}
	link := &models.EntityLink{
		FromEntityID: input.FromEntityID,
		ToEntityID:   input.ToEntityID,
		Kind:         kind,
		Confidence:   confidence,
		Notes:        input.Notes,
		CreatedBy:    actorID,
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, errors.New(errors.CodeConflict, "link already exists")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "create entity link")
	}
	return link, nil
}

func (s *Service) ListLinks(ctx context.Context, entityID uuid.UUID) ([]models.EntityLink, error) {
	rows, err := s.repo.ListLinks(ctx, entityID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list entity links")
	}
	return rows, nil
}

func (s *Service) DeleteLink(ctx context.Context, linkID uuid.UUID) error {
	deleted, err := s.repo.DeleteLink(ctx, linkID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "delete entity link")
	}
	if !deleted {
		return errors.New(errors.CodeNotFound, "entity link not found")
	}
	return nil
}

// CollectPoints contributes location-entity coordinates to home-location
// aggregation.
func (s *Service) CollectPoints(ctx context.Context) ([]types.LatLng, error) {
	return s.repo.LocationPoints(ctx)
}
