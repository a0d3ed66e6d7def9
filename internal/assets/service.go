package assets

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/internal/interpolate"
	"github.com/Karethoth/noirion-backend/internal/presence"
	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/pagination"
	"github.com/Karethoth/noirion-backend/pkg/types"
)

// Syncer is the presence synchronization hook the service fires after every
// mutation that can change an asset's derived presences. Outcomes are logged,
// never propagated.
type Syncer interface {
	SyncAsset(ctx context.Context, assetID uuid.UUID, actorID *uuid.UUID) presence.Outcome
}

// Service owns asset registration, manual metadata corrections, and the
// per-asset ignore list.
type Service struct {
	repo   *Repository
	syncer Syncer
	log    *logger.Logger
}

func NewService(repo *Repository, syncer Syncer, log *logger.Logger) *Service {
	return &Service{repo: repo, syncer: syncer, log: log}
}

// BindSyncer attaches the synchronizer after construction. The service feeds
// the synchronizer asset metadata, and the synchronizer runs after asset
// mutations, so the two cannot be built in one pass.
func (s *Service) BindSyncer(syncer Syncer) {
	s.syncer = syncer
}

// CreateAssetInput registers an uploaded image with whatever metadata the
// extraction step produced.
type CreateAssetInput struct {
	UploaderID  *uuid.UUID
	FileName    string     `validate:"required"`
	MimeType    string     `validate:"required"`
	SizeBytes   int64      `validate:"gte=0"`
	CapturedAt  *time.Time
	Latitude    *float64   `validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64   `validate:"omitempty,gte=-180,lte=180"`
	Altitude    *float64
	CameraMake  *string
	CameraModel *string
}

// OverridePatch carries three-state corrections: an absent field keeps the
// stored value, null clears it, a value replaces it.
type OverridePatch struct {
	DisplayName      types.PatchField[string]    `json:"displayName"`
	CapturedAt       types.PatchField[time.Time] `json:"capturedAt"`
	Latitude         types.PatchField[float64]   `json:"latitude"`
	Longitude        types.PatchField[float64]   `json:"longitude"`
	Altitude         types.PatchField[float64]   `json:"altitude"`
	SubjectLatitude  types.PatchField[float64]   `json:"subjectLatitude"`
	SubjectLongitude types.PatchField[float64]   `json:"subjectLongitude"`
}

// AssetDetail is the read model the API serves for one asset.
type AssetDetail struct {
	Asset     models.Asset          `json:"asset"`
	Override  *models.AssetOverride `json:"override,omitempty"`
	Effective Effective             `json:"effective"`
	Ignored   []uuid.UUID           `json:"ignoredEntityIds"`
}

func (s *Service) Create(ctx context.Context, input CreateAssetInput) (*models.Asset, error) {
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, errors.New(errors.CodeValidation, "latitude and longitude must be provided together")
	}
	asset := &models.Asset{
		UploaderID:  input.UploaderID,
		FileName:    input.FileName,
		MimeType:    input.MimeType,
		SizeBytes:   input.SizeBytes,
		CapturedAt:  input.CapturedAt,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Altitude:    input.Altitude,
		CameraMake:  input.CameraMake,
		CameraModel: input.CameraModel,
	}
	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "create asset")
	}
	return asset, nil
}

func (s *Service) Get(ctx context.Context, assetID uuid.UUID) (*AssetDetail, error) {
	asset, err := s.repo.FindByID(ctx, assetID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load asset")
	}
	if asset == nil {
		return nil, errors.New(errors.CodeNotFound, "asset not found")
	}
	override, err := s.repo.OverrideFor(ctx, assetID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load asset override")
	}
	ignores, err := s.repo.ListIgnores(ctx, assetID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load ignore list")
	}
	ignored := make([]uuid.UUID, 0, len(ignores))
	for _, row := range ignores {
		ignored = append(ignored, row.EntityID)
	}
	return &AssetDetail{
		Asset:     *asset,
		Override:  override,
		Effective: ResolveEffective(*asset, override),
		Ignored:   ignored,
	}, nil
}

func (s *Service) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Asset, error) {
	rows, err := s.repo.List(ctx, pagination.NormalizeLimit(limit), cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list assets")
	}
	return rows, nil
}

func (s *Service) Delete(ctx context.Context, assetID uuid.UUID) error {
	deleted, err := s.repo.SoftDelete(ctx, assetID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "delete asset")
	}
	if !deleted {
		return errors.New(errors.CodeNotFound, "asset not found")
	}
	return nil
}

// ApplyOverridePatch folds the patch into the asset's override row and
// re-derives presences. The primary write succeeds even when the follow-up
// synchronization fails.
func (s *Service) ApplyOverridePatch(ctx context.Context, assetID uuid.UUID, patch OverridePatch, actorID *uuid.UUID) (*AssetDetail, error) {
	asset, err := s.repo.FindByID(ctx, assetID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load asset")
	}
	if asset == nil {
		return nil, errors.New(errors.CodeNotFound, "asset not found")
	}

	override, err := s.repo.OverrideFor(ctx, assetID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load asset override")
	}
	if override == nil {
		override = &models.AssetOverride{AssetID: assetID}
	}

	override.DisplayName = patch.DisplayName.Apply(override.DisplayName)
	override.CapturedAt = patch.CapturedAt.Apply(override.CapturedAt)
	override.Latitude = patch.Latitude.Apply(override.Latitude)
	override.Longitude = patch.Longitude.Apply(override.Longitude)
	override.Altitude = patch.Altitude.Apply(override.Altitude)
	override.SubjectLatitude = patch.SubjectLatitude.Apply(override.SubjectLatitude)
	override.SubjectLongitude = patch.SubjectLongitude.Apply(override.SubjectLongitude)
	override.UpdatedBy = actorID

	if (override.Latitude == nil) != (override.Longitude == nil) {
		return nil, errors.New(errors.CodeValidation, "latitude and longitude must be provided together")
	}
	if (override.SubjectLatitude == nil) != (override.SubjectLongitude == nil) {
		return nil, errors.New(errors.CodeValidation, "subject latitude and longitude must be provided together")
	}

	if err := s.repo.SaveOverride(ctx, override); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "save asset override")
	}
	s.syncAfter(ctx, assetID, actorID)

	return s.Get(ctx, assetID)
}

// AddIgnore suppresses auto-presence derivation for the entity on this asset
// and removes any presence already derived.
func (s *Service) AddIgnore(ctx context.Context, assetID, entityID uuid.UUID, actorID *uuid.UUID) error {
	asset, err := s.repo.FindByID(ctx, assetID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "load asset")
	}
	if asset == nil {
		return errors.New(errors.CodeNotFound, "asset not found")
	}
	if err := s.repo.AddIgnore(ctx, assetID, entityID, actorID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "add ignore entry")
	}
	s.syncAfter(ctx, assetID, actorID)
	return nil
}

// RemoveIgnore lifts the suppression; the follow-up pass re-derives the
// presence when a link still justifies it.
func (s *Service) RemoveIgnore(ctx context.Context, assetID, entityID uuid.UUID, actorID *uuid.UUID) error {
	removed, err := s.repo.RemoveIgnore(ctx, assetID, entityID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "remove ignore entry")
	}
	if !removed {
		return errors.New(errors.CodeNotFound, "ignore entry not found")
	}
	s.syncAfter(ctx, assetID, actorID)
	return nil
}

func (s *Service) syncAfter(ctx context.Context, assetID uuid.UUID, actorID *uuid.UUID) {
	if s.syncer == nil {
		return
	}
	outcome := s.syncer.SyncAsset(ctx, assetID, actorID)
	if outcome.Err != nil {
		s.log.Error(ctx, "presence synchronization failed after asset mutation", outcome.Err)
	}
}

// AssetSnapshot implements the metadata source for presence derivation. A nil
// snapshot means the asset is gone and the pass should no-op.
func (s *Service) AssetSnapshot(ctx context.Context, assetID uuid.UUID) (*presence.AssetSnapshot, error) {
	asset, err := s.repo.FindByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, nil
	}
	override, err := s.repo.OverrideFor(ctx, assetID)
	if err != nil {
		return nil, err
	}
	effective := ResolveEffective(*asset, override)
	snapshot := &presence.AssetSnapshot{
		AssetID:         assetID,
		ObservedAt:      effective.ObservedAt,
		CameraLatitude:  effective.Latitude,
		CameraLongitude: effective.Longitude,
	}
	snapshot.SubjectLatitude = effective.SubjectLatitude
	snapshot.SubjectLongitude = effective.SubjectLongitude
	return snapshot, nil
}

// AssetExists reports whether a non-deleted asset with the id exists.
func (s *Service) AssetExists(ctx context.Context, assetID uuid.UUID) (bool, error) {
	asset, err := s.repo.FindByID(ctx, assetID)
	if err != nil {
		return false, err
	}
	return asset != nil, nil
}

// IgnoredEntityIDs implements the ignore source for presence derivation.
func (s *Service) IgnoredEntityIDs(ctx context.Context, assetID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return s.repo.IgnoredEntityIDs(ctx, assetID)
}

// InterpolationCandidates feeds the location interpolator every asset with a
// fully known device identity and an actual capture time. Assets that only
// carry an upload-time fallback stay out, their timestamps say nothing about
// where the camera was.
func (s *Service) InterpolationCandidates(ctx context.Context) ([]interpolate.Candidate, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := s.repo.OverridesByAssetID(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]interpolate.Candidate, 0, len(rows))
	for _, asset := range rows {
		override := overrides[asset.ID]
		if (override == nil || override.CapturedAt == nil) && asset.CapturedAt == nil {
			continue
		}
		effective := ResolveEffective(asset, override)
		if effective.DeviceKey == "" || effective.ObservedAt == nil {
			continue
		}
		candidates = append(candidates, interpolate.Candidate{
			AssetID:    asset.ID,
			DeviceKey:  effective.DeviceKey,
			ObservedAt: *effective.ObservedAt,
			Latitude:   effective.Latitude,
			Longitude:  effective.Longitude,
		})
	}
	return candidates, nil
}

// CollectPoints contributes effective asset coordinates to home-location
// aggregation.
func (s *Service) CollectPoints(ctx context.Context) ([]types.LatLng, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := s.repo.OverridesByAssetID(ctx)
	if err != nil {
		return nil, err
	}
	var points []types.LatLng
	for _, asset := range rows {
		effective := ResolveEffective(asset, overrides[asset.ID])
		if !effective.HasCoords() {
			continue
		}
		points = append(points, types.LatLng{Lat: *effective.Latitude, Lng: *effective.Longitude})
	}
	return points, nil
}
