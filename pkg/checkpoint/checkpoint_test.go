package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphmend/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePlan() []types.MergeOperation {
	return []types.MergeOperation{
		{
			EntityToChangeInto: "Software Engineer",
			EntitiesToChange:   []string{"software_engineer"},
			RelationshipCounts: map[string]int{"Software Engineer": 10, "software_engineer": 3},
		},
		{
			EntityToChangeInto: "CV_001",
			EntitiesToChange:   []string{"Cv_001"},
		},
	}
}

func TestMarkAndReadApplied(t *testing.T) {
	s := openStore(t)
	digest := PlanDigest(samplePlan())

	_, ok, err := s.Applied(digest, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.MarkApplied(digest, 0, types.StatusSuccess))
	require.NoError(t, s.MarkApplied(digest, 1, types.StatusSkipped))

	status, ok, err := s.Applied(digest, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, types.StatusSuccess, status)

	count, err := s.AppliedCount(digest)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCheckpointsAreScopedToPlanDigest(t *testing.T) {
	s := openStore(t)

	plan := samplePlan()
	digest := PlanDigest(plan)
	require.NoError(t, s.MarkApplied(digest, 0, types.StatusSuccess))

	// An edited plan has a different digest and sees no checkpoints.
	plan[0].EntityToChangeInto = "Software  Engineer"
	edited := PlanDigest(plan)
	require.NotEqual(t, digest, edited)

	_, ok, err := s.Applied(edited, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlanDigestStableAcrossMapOrder(t *testing.T) {
	a := PlanDigest(samplePlan())
	for i := 0; i < 10; i++ {
		assert.Equal(t, a, PlanDigest(samplePlan()))
	}
}

func TestClear(t *testing.T) {
	s := openStore(t)
	digest := PlanDigest(samplePlan())

	require.NoError(t, s.MarkApplied(digest, 0, types.StatusSuccess))
	require.NoError(t, s.MarkApplied(digest, 1, types.StatusFailed))
	require.NoError(t, s.Clear(digest))

	count, err := s.AppliedCount(digest)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
