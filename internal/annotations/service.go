package annotations

import (
	"context"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/internal/presence"
	"github.com/Karethoth/noirion-backend/pkg/db"
	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
)

// Syncer is the presence derivation hook fired after link mutations.
type Syncer interface {
	SyncAsset(ctx context.Context, assetID uuid.UUID, actorID *uuid.UUID) presence.Outcome
	SyncAnnotationLink(ctx context.Context, annotationID, entityID uuid.UUID, actorID *uuid.UUID) presence.Outcome
	SyncLinkRemoved(ctx context.Context, assetID, entityID uuid.UUID, actorID *uuid.UUID) presence.Outcome
}

// AssetChecker verifies the annotated asset exists before a region is placed
// on it.
type AssetChecker interface {
	AssetExists(ctx context.Context, assetID uuid.UUID) (bool, error)
}

// Service owns annotation regions and their entity links.
type Service struct {
	repo   *Repository
	assets AssetChecker
	syncer Syncer
	log    *logger.Logger
}

func NewService(repo *Repository, assets AssetChecker, syncer Syncer, log *logger.Logger) *Service {
	return &Service{repo: repo, assets: assets, syncer: syncer, log: log}
}

// BindSyncer attaches the synchronizer after construction; the service is
// also the synchronizer's link source, so the two cannot be built in one
// pass.
func (s *Service) BindSyncer(syncer Syncer) {
	s.syncer = syncer
}

// CreateAnnotationInput places a region of interest on an asset. Coordinates
// are normalized to the image, so every value lives in [0, 1].
type CreateAnnotationInput struct {
	AssetID uuid.UUID `validate:"required"`
	X       float64   `validate:"gte=0,lte=1"`
	Y       float64   `validate:"gte=0,lte=1"`
	Width   float64   `validate:"gt=0,lte=1"`
	Height  float64   `validate:"gt=0,lte=1"`
	Caption *string
}

// CreateLinkInput links an entity into an annotated region.
type CreateLinkInput struct {
	AnnotationID uuid.UUID `validate:"required"`
	EntityID     uuid.UUID `validate:"required"`
	Role         *string
	Confidence   float64 `validate:"gte=0,lte=1"`
	Notes        *string
}

func (s *Service) Create(ctx context.Context, input CreateAnnotationInput, actorID *uuid.UUID) (*models.Annotation, error) {
	if input.Width <= 0 || input.Height <= 0 {
		return nil, errors.New(errors.CodeValidation, "annotation region must have positive width and height")
	}
	exists, err := s.assets.AssetExists(ctx, input.AssetID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "check asset")
	}
	if !exists {
		return nil, errors.New(errors.CodeNotFound, "asset not found")
	}
	annotation := &models.Annotation{
		AssetID:   input.AssetID,
		X:         input.X,
		Y:         input.Y,
		Width:     input.Width,
		Height:    input.Height,
		Caption:   input.Caption,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, annotation); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "create annotation")
	}
	return annotation, nil
}

func (s *Service) Get(ctx context.Context, annotationID uuid.UUID) (*models.Annotation, error) {
	annotation, err := s.repo.FindByID(ctx, annotationID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load annotation")
	}
	if annotation == nil {
		return nil, errors.New(errors.CodeNotFound, "annotation not found")
	}
	return annotation, nil
}

func (s *Service) ListForAsset(ctx context.Context, assetID uuid.UUID) ([]models.Annotation, error) {
	rows, err := s.repo.ListForAsset(ctx, assetID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list annotations")
	}
	return rows, nil
}

// Delete removes the annotation; its links go with it, so the asset's derived
// presences are recomputed afterwards.
func (s *Service) Delete(ctx context.Context, annotationID uuid.UUID, actorID *uuid.UUID) error {
	annotation, err := s.repo.FindByID(ctx, annotationID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "load annotation")
	}
	if annotation == nil {
		return errors.New(errors.CodeNotFound, "annotation not found")
	}
	deleted, err := s.repo.Delete(ctx, annotationID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "delete annotation")
	}
	if !deleted {
		return errors.New(errors.CodeNotFound, "annotation not found")
	}
	if s.syncer != nil {
		outcome := s.syncer.SyncAsset(ctx, annotation.AssetID, actorID)
		if outcome.Err != nil {
			s.log.Error(ctx, "presence synchronization failed after annotation delete", outcome.Err)
		}
	}
	return nil
}

// CreateLink records that an entity appears in the annotated region and
// derives its presence.
func (s *Service) CreateLink(ctx context.Context, input CreateLinkInput, actorID *uuid.UUID) (*models.AnnotationEntityLink, error) {
	annotation, err := s.repo.FindByID(ctx, input.AnnotationID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load annotation")
	}
	if annotation == nil {
		return nil, errors.New(errors.CodeNotFound, "annotation not found")
	}

	confidence := input.Confidence
	if confidence == 0 {
		confidence = 1.0
	}
	link := &models.AnnotationEntityLink{
		AnnotationID: input.AnnotationID,
		EntityID:     input.EntityID,
		Role:         input.Role,
		Confidence:   confidence,
		Notes:        input.Notes,
		CreatedBy:    actorID,
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, errors.New(errors.CodeConflict, "entity already linked to this annotation")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "create annotation link")
	}

	if s.syncer != nil {
		outcome := s.syncer.SyncAnnotationLink(ctx, input.AnnotationID, input.EntityID, actorID)
		if outcome.Err != nil {
			s.log.Error(ctx, "presence synchronization failed after link create", outcome.Err)
		}
	}
	return link, nil
}

// DeleteLink unlinks the entity from the region and cleans up its derived
// presence when no other annotation on the asset still justifies it.
func (s *Service) DeleteLink(ctx context.Context, annotationID, entityID uuid.UUID, actorID *uuid.UUID) error {
	annotation, err := s.repo.FindByID(ctx, annotationID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "load annotation")
	}
	if annotation == nil {
		return errors.New(errors.CodeNotFound, "annotation not found")
	}
	deleted, err := s.repo.DeleteLink(ctx, annotationID, entityID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "delete annotation link")
	}
	if !deleted {
		return errors.New(errors.CodeNotFound, "annotation link not found")
	}

	if s.syncer != nil {
		outcome := s.syncer.SyncLinkRemoved(ctx, annotation.AssetID, entityID, actorID)
		if outcome.Err != nil {
			s.log.Error(ctx, "presence cleanup failed after link delete", outcome.Err)
		}
	}
	return nil
}

func (s *Service) ListLinks(ctx context.Context, annotationID uuid.UUID) ([]models.AnnotationEntityLink, error) {
	rows, err := s.repo.ListLinks(ctx, annotationID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list annotation links")
	}
	return rows, nil
}

// LinkedEntityIDs implements the link source for presence derivation.
func (s *Service) LinkedEntityIDs(ctx context.Context, assetID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.LinkedEntityIDs(ctx, assetID)
}

// AssetIDForAnnotation implements the link source for presence derivation.
func (s *Service) AssetIDForAnnotation(ctx context.Context, annotationID uuid.UUID) (uuid.UUID, bool, error) {
	return s.repo.AssetIDForAnnotation(ctx, annotationID)
}

// EntityLinked implements the link source for presence derivation.
func (s *Service) EntityLinked(ctx context.Context, assetID, entityID uuid.UUID) (bool, error) {
	return s.repo.EntityLinked(ctx, assetID, entityID)
}
