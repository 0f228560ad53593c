package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soundprediction/graphmend/pkg/driver"
	"github.com/soundprediction/graphmend/pkg/types"
	"github.com/soundprediction/graphmend/pkg/utils"
)

// Reader retrieves the candidate entity universe from the graph store. It
// supports two modes: a filtered fetch driven by name/type patterns, and a
// whitelist fetch driven by a canonical source document.
type Reader struct {
	driver driver.GraphDriver
	logger *slog.Logger
}

// NewReader creates a catalog reader over the given graph driver.
func NewReader(d driver.GraphDriver, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{driver: d, logger: logger}
}

// FetchFiltered returns entities matching the filter. At least one filter
// field must be set; an unconstrained fetch through this mode is almost
// always a caller bug, so it fails with types.ErrInvalidQuery.
func (r *Reader) FetchFiltered(ctx context.Context, filter driver.EntityFilter) ([]types.Entity, error) {
	if filter.Empty() {
		return nil, types.ErrInvalidQuery
	}

	entities, err := r.driver.FetchEntities(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entities: %w", err)
	}

	r.logger.Debug("fetched entities from graph store",
		"count", len(entities),
		"name_pattern", filter.NamePattern,
		"type_pattern", filter.TypePattern)

	return entities, nil
}

// FetchAll returns the full entity universe, optionally restricted to the
// given entity types.
func (r *Reader) FetchAll(ctx context.Context, entityTypes []string) ([]types.Entity, error) {
	entities, err := r.driver.FetchEntities(ctx, driver.EntityFilter{Types: entityTypes})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entities: %w", err)
	}
	return entities, nil
}

// FetchByWhitelist fetches the full entity universe and filters client-side
// to entities whose normalized name appears in the canonical set. This mode
// is used when the canonical answer for naming and typing comes from outside
// the graph.
func (r *Reader) FetchByWhitelist(ctx context.Context, set *CanonicalSet) ([]types.Entity, error) {
	if set == nil || set.Len() == 0 {
		return []types.Entity{}, nil
	}

	all, err := r.driver.FetchEntities(ctx, driver.EntityFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entity universe: %w", err)
	}

	matching := make([]types.Entity, 0, len(all))
	for _, e := range all {
		if set.Contains(utils.NormalizeName(e.Name)) {
			matching = append(matching, e)
		}
	}

	r.logger.Debug("filtered entity universe against canonical set",
		"universe", len(all),
		"matching", len(matching),
		"canonical", set.Len())

	return matching, nil
}
