package driver

import (
	"context"

	"github.com/soundprediction/graphmend/pkg/types"
)

// EntityFilter restricts which entities FetchEntities returns. NamePattern
// and TypePattern are regular expressions matched against the entity name
// and type; Types is an exact-match whitelist of entity types. Empty fields
// are ignored. Patterns are always passed to the store as bound query
// parameters, never spliced into query text.
type EntityFilter struct {
	NamePattern string
	TypePattern string
	Types       []string
}

// Empty reports whether the filter matches the full entity universe.
func (f EntityFilter) Empty() bool {
	return f.NamePattern == "" && f.TypePattern == "" && len(f.Types) == 0
}

// GraphDriver is the read surface over the property-graph store. It returns
// (name, type, relationship degree) tuples; which storage engine backs it is
// irrelevant to the rest of the pipeline.
//
// A relationship degree counts each distinct incident edge once, even when
// the entity appears as both source and target of the same edge.
type GraphDriver interface {
	// FetchEntities returns every entity matching the filter with its
	// relationship degree. An empty result is an empty slice, not an error.
	// Connection failures wrap types.ErrStoreUnavailable; reads are cheap
	// and idempotent, so there is no retry at this layer.
	FetchEntities(ctx context.Context, filter EntityFilter) ([]types.Entity, error)

	// VerifyConnectivity checks that the store is reachable.
	VerifyConnectivity(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
