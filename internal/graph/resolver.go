package graph

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Karethoth/noirion-backend/internal/repo"
)

// Resolver answers one-hop entity connectivity queries over the entity_links
// graph. Expansion is deliberately not transitive so result sets stay bounded
// as the graph grows.
type Resolver struct {
	repo.Base
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{Base: repo.NewBase(db)}
}

// ConnectedEntityIDs returns the entity itself plus every entity on the other
// side of a direct link, in either direction. An entity with no links yields
// just itself. The seed entity is always first; neighbors follow in a stable
// order.
func (r *Resolver) ConnectedEntityIDs(ctx context.Context, entityID uuid.UUID) ([]uuid.UUID, error) {
	var neighbors []struct {
		ID uuid.UUID `gorm:"column:id"`
	}
	err := r.DB(ctx).Raw(`
SELECT to_entity_id AS id FROM entity_links WHERE from_entity_id = ?
UNION
SELECT from_entity_id AS id FROM entity_links WHERE to_entity_id = ?`,
		entityID, entityID,
	).Scan(&neighbors).Error
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]struct{}{entityID: {}}
	out := []uuid.UUID{entityID}
	for _, neighbor := range neighbors {
		if _, ok := seen[neighbor.ID]; ok {
			continue
		}
		seen[neighbor.ID] = struct{}{}
		out = append(out, neighbor.ID)
	}
	sort.Slice(out[1:], func(i, j int) bool {
		return out[i+1].String() < out[j+1].String()
	})
	return out, nil
}
