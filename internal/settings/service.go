package settings

import (
	"context"

	"github.com/Karethoth/noirion-backend/pkg/db/models"
	"github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/types"
)

// Service serves project settings. With auto-update enabled every read
// refreshes the persisted home location from the live centroid; with it
// disabled the stored value is returned unchanged.
type Service struct {
	repo       *Repository
	aggregator *Aggregator
	autoUpdate bool
	log        *logger.Logger
}

func NewService(repo *Repository, aggregator *Aggregator, autoUpdate bool, log *logger.Logger) *Service {
	return &Service{repo: repo, aggregator: aggregator, autoUpdate: autoUpdate, log: log}
}

// Get returns the settings row, refreshing the home location first when
// auto-update is on. A failed refresh falls back to the persisted value.
func (s *Service) Get(ctx context.Context) (*models.ProjectSettings, error) {
	if s.autoUpdate {
		if refreshed, err := s.refreshHome(ctx); err != nil {
			s.log.Error(ctx, "home location refresh failed", err)
		} else {
			return refreshed, nil
		}
	}
	row, err := s.repo.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load project settings")
	}
	return row, nil
}

// SetHome stores a manually chosen home location; nil clears it.
func (s *Service) SetHome(ctx context.Context, home *types.LatLng) (*models.ProjectSettings, error) {
	var lat, lng *float64
	if home != nil {
		lat, lng = &home.Lat, &home.Lng
	}
	row, err := s.repo.SaveHome(ctx, lat, lng)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "save home location")
	}
	return row, nil
}

// ComputeHomeLocation exposes the raw centroid without persisting it.
func (s *Service) ComputeHomeLocation(ctx context.Context) (*types.LatLng, error) {
	centroid, err := s.aggregator.ComputeHomeLocation(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "compute home location")
	}
	return centroid, nil
}

func (s *Service) refreshHome(ctx context.Context) (*models.ProjectSettings, error) {
	centroid, err := s.aggregator.ComputeHomeLocation(ctx)
	if err != nil {
		return nil, err
	}
	if centroid == nil {
		// Nothing is geolocated yet; keep whatever was stored.
		return s.repo.Get(ctx)
	}
	return s.repo.SaveHome(ctx, &centroid.Lat, &centroid.Lng)
}
