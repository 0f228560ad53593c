package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphmend/pkg/catalog"
	"github.com/soundprediction/graphmend/pkg/types"
)

func TestGroupBasic(t *testing.T) {
	g := NewGrouper(nil)

	ops := g.Group([]types.Entity{
		{Name: "Software Engineer", Type: "PROFILE", RelationshipCount: 10},
		{Name: "software_engineer", Type: "PROFILE", RelationshipCount: 3},
		{Name: "SOFTWARE-ENGINEER", Type: "PROFILE", RelationshipCount: 1},
		{Name: "Plumber", Type: "PROFILE", RelationshipCount: 2},
	}, Options{})

	require.Len(t, ops, 1)
	op := ops[0]
	assert.Equal(t, "Software Engineer", op.EntityToChangeInto)
	assert.ElementsMatch(t, []string{"software_engineer", "SOFTWARE-ENGINEER"}, op.EntitiesToChange)
	assert.Equal(t, "PROFILE", op.EntityType)
	assert.Equal(t, 10, op.RelationshipCounts["Software Engineer"])
}

func TestGroupTieBreakIsByteOrder(t *testing.T) {
	g := NewGrouper(nil)

	ops := g.Group([]types.Entity{
		{Name: "Cv_001", Type: "CV", RelationshipCount: 5},
		{Name: "CV_001", Type: "CV", RelationshipCount: 5},
	}, Options{})

	require.Len(t, ops, 1)
	assert.Equal(t, "CV_001", ops[0].EntityToChangeInto)
	assert.Equal(t, []string{"Cv_001"}, ops[0].EntitiesToChange)
}

func TestGroupSingletonsYieldNothing(t *testing.T) {
	g := NewGrouper(nil)

	ops := g.Group([]types.Entity{
		{Name: "Alpha", Type: "CV", RelationshipCount: 1},
		{Name: "Beta", Type: "CV", RelationshipCount: 2},
	}, Options{})

	assert.Empty(t, ops)
}

func TestGroupPartitionInvariant(t *testing.T) {
	g := NewGrouper(nil)

	ops := g.Group([]types.Entity{
		{Name: "A B", Type: "CV", RelationshipCount: 1},
		{Name: "a_b", Type: "CV", RelationshipCount: 2},
		{Name: "C-D", Type: "CV", RelationshipCount: 3},
		{Name: "c d", Type: "CV", RelationshipCount: 1},
		{Name: "cd", Type: "CV", RelationshipCount: 0},
	}, Options{})

	seen := make(map[string]int)
	for _, op := range ops {
		seen[op.EntityToChangeInto]++
		for _, name := range op.EntitiesToChange {
			seen[name]++
			assert.NotEqual(t, op.EntityToChangeInto, name)
		}
	}
	for name, n := range seen {
		assert.Equal(t, 1, n, "entity %q appears in more than one operation", name)
	}
	assert.Len(t, seen, 5)
}

func TestGroupPerTypeKeepsTypesApart(t *testing.T) {
	g := NewGrouper(nil)

	ops := g.Group([]types.Entity{
		{Name: "Programmer", Type: "PROFILE", RelationshipCount: 4},
		{Name: "programmer", Type: "SKILL", RelationshipCount: 9},
	}, Options{})

	assert.Empty(t, ops)
}

func TestGroupCrossTypesWithPreferredType(t *testing.T) {
	g := NewGrouper(nil)

	ops := g.Group([]types.Entity{
		{Name: "Programmer", Type: "SKILL", RelationshipCount: 9},
		{Name: "PROGRAMMER", Type: "PROFILE", RelationshipCount: 4},
	}, Options{
		CrossTypes:     true,
		PreferredTypes: []string{"PROFILE", "SKILL"},
	})

	require.Len(t, ops, 1)
	op := ops[0]
	// Degree still decides the survivor; preference only retypes the group.
	assert.Equal(t, "Programmer", op.EntityToChangeInto)
	assert.Equal(t, "PROFILE", op.EntityType)
	assert.Equal(t, []string{"PROFILE", "SKILL"}, op.EntityTypesInvolved)
}

func TestGroupPreferredTypeFollowsPreferenceOrder(t *testing.T) {
	g := NewGrouper(nil)

	ops := g.Group([]types.Entity{
		{Name: "Welder", Type: "SKILL", RelationshipCount: 2},
		{Name: "welder", Type: "OCCUPATION", RelationshipCount: 1},
	}, Options{
		CrossTypes:     true,
		PreferredTypes: []string{"PROFILE", "OCCUPATION", "SKILL"},
	})

	require.Len(t, ops, 1)
	assert.Equal(t, "OCCUPATION", ops[0].EntityType)
}

func TestGroupCanonicalOverridesTypeAndName(t *testing.T) {
	g := NewGrouper(nil)

	set := catalog.NewCanonicalSet()
	set.Add("Software Engineer", catalog.TypeProfile)

	ops := g.Group([]types.Entity{
		{Name: "software_engineer", Type: "SKILL", RelationshipCount: 7},
		{Name: "SOFTWARE ENGINEER", Type: "OCCUPATION", RelationshipCount: 2},
	}, Options{
		CrossTypes:     true,
		PreferredTypes: []string{"OCCUPATION"},
		Canonical:      set,
	})

	require.Len(t, ops, 1)
	op := ops[0]
	assert.Equal(t, "software_engineer", op.EntityToChangeInto)
	assert.Equal(t, "Software Engineer", op.NormalizedName)
	// Canonical source beats the preferred-type override.
	assert.Equal(t, "PROFILE", op.EntityType)
}

func TestGroupDedupsRepeatedNames(t *testing.T) {
	g := NewGrouper(nil)

	ops := g.Group([]types.Entity{
		{Name: "Foo Bar", Type: "CV", RelationshipCount: 3},
		{Name: "Foo Bar", Type: "CV", RelationshipCount: 3},
		{Name: "foo_bar", Type: "CV", RelationshipCount: 1},
	}, Options{})

	require.Len(t, ops, 1)
	assert.Equal(t, []string{"foo_bar"}, ops[0].EntitiesToChange)
}

func TestGroupOutputOrderIsDeterministic(t *testing.T) {
	g := NewGrouper(nil)

	entities := []types.Entity{
		{Name: "Zeta One", Type: "CV", RelationshipCount: 1},
		{Name: "zeta_one", Type: "CV", RelationshipCount: 0},
		{Name: "Alpha Two", Type: "CV", RelationshipCount: 1},
		{Name: "alpha-two", Type: "CV", RelationshipCount: 0},
	}

	first := g.Group(entities, Options{})
	second := g.Group(entities, Options{})
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "Alpha Two", first[0].EntityToChangeInto)
	assert.Equal(t, "Zeta One", first[1].EntityToChangeInto)
}
