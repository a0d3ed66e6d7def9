package settings

import (
	"context"

	"go.uber.org/multierr"

	"github.com/Karethoth/noirion-backend/pkg/types"
)

// PointSource contributes one table's worth of geolocated facts to the
// centroid. Assets, events, presences, and location entities each provide one.
type PointSource interface {
	CollectPoints(ctx context.Context) ([]types.LatLng, error)
}

// Aggregator computes the planar centroid over every known coordinate in the
// system. The result is advisory, used as the default map center.
type Aggregator struct {
	sources []PointSource
}

func NewAggregator(sources ...PointSource) *Aggregator {
	return &Aggregator{sources: sources}
}

// ComputeHomeLocation returns the arithmetic mean of all collected points, or
// nil when no source has any coordinate.
func (a *Aggregator) ComputeHomeLocation(ctx context.Context) (*types.LatLng, error) {
	var sumLat, sumLng float64
	var count int
	var errs error
	for _, source := range a.sources {
		points, err := source.CollectPoints(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, point := range points {
			sumLat += point.Lat
			sumLng += point.Lng
			count++
		}
	}
	if errs != nil {
		return nil, errs
	}
	if count == 0 {
		return nil, nil
	}
	return &types.LatLng{
		Lat: sumLat / float64(count),
		Lng: sumLng / float64(count),
	}, nil
}
