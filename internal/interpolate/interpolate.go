package interpolate

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/config"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/metrics"
)

// Candidate is one dated asset as the interpolator sees it: effective
// observation time, effective coordinates when known, and the device identity
// it groups under. Candidates without a device key never appear here.
type Candidate struct {
	AssetID    uuid.UUID
	DeviceKey  string
	ObservedAt time.Time
	Latitude   *float64
	Longitude  *float64
}

// HasCoords reports whether the candidate carries a complete coordinate pair.
func (c Candidate) HasCoords() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Source supplies the candidate set for one batch run.
type Source interface {
	InterpolationCandidates(ctx context.Context) ([]Candidate, error)
}

// Bracket describes one of the two known-coordinate assets a suggestion was
// interpolated between.
type Bracket struct {
	AssetID    uuid.UUID `json:"assetId"`
	ObservedAt time.Time `json:"observedAt"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
}

// Suggestion proposes coordinates for an asset that has a time but no
// location. It carries both brackets and the span so a reviewer can judge how
// much to trust it before applying; nothing is written automatically.
type Suggestion struct {
	AssetID     uuid.UUID `json:"assetId"`
	DeviceKey   string    `json:"deviceKey"`
	ObservedAt  time.Time `json:"observedAt"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Before      Bracket   `json:"before"`
	After       Bracket   `json:"after"`
	SpanMinutes float64   `json:"spanMinutes"`
}

// Suggester runs the batch analysis. It is read-only and safe to run
// concurrently with writers.
type Suggester struct {
	source  Source
	cfg     config.InterpolationConfig
	log     *logger.Logger
	metrics *metrics.SyncMetrics
}

func NewSuggester(source Source, cfg config.InterpolationConfig, log *logger.Logger, m *metrics.SyncMetrics) *Suggester {
	return &Suggester{source: source, cfg: cfg, log: log, metrics: m}
}

// Window resolves the caller-supplied window in minutes against the configured
// default and ceiling. Zero or negative means "use the default".
func (s *Suggester) Window(requested int) time.Duration {
	minutes := requested
	if minutes <= 0 {
		minutes = s.cfg.DefaultWindowMinutes
	}
	if s.cfg.MaxWindowMinutes > 0 && minutes > s.cfg.MaxWindowMinutes {
		minutes = s.cfg.MaxWindowMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Suggest proposes coordinates for every asset whose time falls between two
// located assets of the same device, provided the bracket span does not exceed
// maxWindow. Degenerate groups and unbracketed assets are skipped silently.
func (s *Suggester) Suggest(ctx context.Context, maxWindow time.Duration) ([]Suggestion, error) {
	candidates, err := s.source.InterpolationCandidates(ctx)
	if err != nil {
		return nil, err
	}

	groups := map[string][]Candidate{}
	for _, candidate := range candidates {
		if candidate.DeviceKey == "" {
			continue
		}
		groups[candidate.DeviceKey] = append(groups[candidate.DeviceKey], candidate)
	}

	var suggestions []Suggestion
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if !group[i].ObservedAt.Equal(group[j].ObservedAt) {
				return group[i].ObservedAt.Before(group[j].ObservedAt)
			}
			return group[i].AssetID.String() < group[j].AssetID.String()
		})
		suggestions = append(suggestions, suggestForGroup(group, maxWindow)...)
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if !suggestions[i].ObservedAt.Equal(suggestions[j].ObservedAt) {
			return suggestions[i].ObservedAt.Before(suggestions[j].ObservedAt)
		}
		return suggestions[i].AssetID.String() < suggestions[j].AssetID.String()
	})

	s.metrics.AddSuggestions(len(suggestions))
	if len(suggestions) > 0 {
		s.log.Debug(ctx, "interpolation batch produced suggestions")
	}
	return suggestions, nil
}

// suggestForGroup walks one time-sorted device group and interpolates each
// unlocated member between its nearest located neighbors.
func suggestForGroup(group []Candidate, maxWindow time.Duration) []Suggestion {
	var out []Suggestion
	for i, target := range group {
		if target.HasCoords() {
			continue
		}
		prev, ok := nearestBefore(group, i)
		if !ok {
			continue
		}
		next, ok := nearestAfter(group, i)
		if !ok {
			continue
		}
		span := next.ObservedAt.Sub(prev.ObservedAt)
		if span <= 0 || span > maxWindow {
			continue
		}
		w := float64(target.ObservedAt.Sub(prev.ObservedAt)) / float64(span)
		out = append(out, Suggestion{
			AssetID:     target.AssetID,
			DeviceKey:   target.DeviceKey,
			ObservedAt:  target.ObservedAt,
			Latitude:    lerp(*prev.Latitude, *next.Latitude, w),
			Longitude:   lerp(*prev.Longitude, *next.Longitude, w),
			Before:      bracketOf(prev),
			After:       bracketOf(next),
			SpanMinutes: span.Minutes(),
		})
	}
	return out
}

func nearestBefore(group []Candidate, index int) (Candidate, bool) {
	for i := index - 1; i >= 0; i-- {
		if group[i].HasCoords() {
			return group[i], true
		}
	}
	return Candidate{}, false
}

func nearestAfter(group []Candidate, index int) (Candidate, bool) {
	for i := index + 1; i < len(group); i++ {
		if group[i].HasCoords() {
			return group[i], true
		}
	}
	return Candidate{}, false
}

// lerp interpolates each axis independently; the window cap keeps spans short
// enough that planar interpolation is acceptable.
func lerp(from, to, w float64) float64 {
	return from + w*(to-from)
}

func bracketOf(c Candidate) Bracket {
	return Bracket{
		AssetID:    c.AssetID,
		ObservedAt: c.ObservedAt,
		Latitude:   *c.Latitude,
		Longitude:  *c.Longitude,
	}
}
