package dedupe

import (
	"log/slog"
	"sort"

	"github.com/soundprediction/graphmend/pkg/catalog"
	"github.com/soundprediction/graphmend/pkg/types"
	"github.com/soundprediction/graphmend/pkg/utils"
)

// Options controls how entities are grouped into merge operations.
type Options struct {
	// CrossTypes merges entities whose names normalize identically even when
	// their entity types differ. When false, grouping is per (name, type).
	CrossTypes bool

	// PreferredTypes overrides the reported entity type of a cross-type group
	// with the first preferred type present in the group. Order in the slice
	// is the preference order.
	PreferredTypes []string

	// Canonical, when set, is authoritative for both the entity type and the
	// display name of every group whose normalized name it contains. The
	// degree heuristic still picks the surviving physical entity.
	Canonical *catalog.CanonicalSet
}

// Grouper partitions an entity catalog into merge operations.
type Grouper struct {
	logger *slog.Logger
}

// NewGrouper creates a grouper with the given logger.
func NewGrouper(logger *slog.Logger) *Grouper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grouper{logger: logger}
}

// Group partitions entities by normalized name and emits one merge operation
// per group of two or more. Within each group the survivor is the entity
// with the highest relationship count, ties broken by ascending name. Every
// entity name appears in at most one operation; singleton groups yield
// nothing. Output order is deterministic.
func (g *Grouper) Group(entities []types.Entity, opts Options) []types.MergeOperation {
	groups := make(map[string][]types.Entity)
	for _, e := range entities {
		key := utils.NormalizeName(e.Name)
		if key == "" {
			continue
		}
		if !opts.CrossTypes {
			key = key + "\x00" + e.Type
		}
		groups[key] = append(groups[key], e)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var ops []types.MergeOperation
	for _, key := range keys {
		members := rankMembers(groups[key])
		if len(members) < 2 {
			continue
		}

		op := g.buildOperation(members, opts)
		if len(op.EntitiesToChange) == 0 {
			continue
		}
		ops = append(ops, op)
	}

	g.logger.Debug("grouped entities into merge operations",
		"entities", len(entities),
		"groups", len(groups),
		"operations", len(ops))

	return ops
}

// rankMembers sorts group members by descending relationship count with
// ascending name as the tiebreak, then drops repeated names so the same
// entity is never listed twice. The first member is the survivor.
func rankMembers(members []types.Entity) []types.Entity {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].RelationshipCount != members[j].RelationshipCount {
			return members[i].RelationshipCount > members[j].RelationshipCount
		}
		return members[i].Name < members[j].Name
	})

	seen := make(map[string]struct{}, len(members))
	ranked := members[:0]
	for _, m := range members {
		if _, dup := seen[m.Name]; dup {
			continue
		}
		seen[m.Name] = struct{}{}
		ranked = append(ranked, m)
	}
	return ranked
}

func (g *Grouper) buildOperation(members []types.Entity, opts Options) types.MergeOperation {
	survivor := members[0]

	op := types.MergeOperation{
		EntityToChangeInto: survivor.Name,
		EntitiesToChange:   make([]string, 0, len(members)-1),
		EntityType:         survivor.Type,
		RelationshipCounts: make(map[string]int, len(members)),
	}
	for _, m := range members {
		op.RelationshipCounts[m.Name] = m.RelationshipCount
		if m.Name != survivor.Name {
			op.EntitiesToChange = append(op.EntitiesToChange, m.Name)
		}
	}

	if opts.CrossTypes {
		op.EntityTypesInvolved = distinctTypes(members)
		if preferred, ok := firstPreferredType(members, opts.PreferredTypes); ok {
			op.EntityType = preferred
		}
	}

	// The canonical source wins over any preference heuristic.
	if opts.Canonical != nil {
		key := utils.NormalizeName(survivor.Name)
		if name, ok := opts.Canonical.Name(key); ok {
			op.NormalizedName = name
		}
		if t, ok := opts.Canonical.Type(key); ok {
			op.EntityType = t
		}
	}

	return op
}

func distinctTypes(members []types.Entity) []string {
	set := make(map[string]struct{})
	for _, m := range members {
		if m.Type != "" {
			set[m.Type] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func firstPreferredType(members []types.Entity, preferred []string) (string, bool) {
	present := make(map[string]struct{}, len(members))
	for _, m := range members {
		present[m.Type] = struct{}{}
	}
	for _, p := range preferred {
		if _, ok := present[p]; ok {
			return p, true
		}
	}
	return "", false
}
