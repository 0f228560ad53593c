package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphmend/pkg/types"
)

func fixedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir(), "clean", nil)
	s.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	}
	return s
}

func TestSaveOperationsFilename(t *testing.T) {
	s := fixedStore(t)

	path, err := s.SaveOperations([]types.MergeOperation{{
		EntityToChangeInto: "A",
		EntitiesToChange:   []string{"a"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "clean_merge_identify_20260314_150926.json", filepath.Base(path))
}

func TestPlanRoundTrip(t *testing.T) {
	s := fixedStore(t)

	ops := []types.MergeOperation{
		{
			EntityToChangeInto:  "Software Engineer",
			EntitiesToChange:    []string{"software_engineer", "SOFTWARE-ENGINEER"},
			EntityType:          "PROFILE",
			RelationshipCounts:  map[string]int{"Software Engineer": 10, "software_engineer": 3, "SOFTWARE-ENGINEER": 1},
			NormalizedName:      "Software Engineer",
			EntityTypesInvolved: []string{"PROFILE", "SKILL"},
		},
		{
			EntityToChangeInto: "CV_001",
			EntitiesToChange:   []string{"Cv_001"},
		},
	}

	path, err := s.SaveOperations(ops)
	require.NoError(t, err)

	got, err := LoadOperations(path)
	require.NoError(t, err)
	assert.Equal(t, ops, got)
}

func TestLoadOperationsMissingSurvivor(t *testing.T) {
	path := writePlan(t, `[
		{"entity_to_change_into": "A", "entities_to_change": ["a"]},
		{"entity_to_change_into": "", "entities_to_change": ["b"]}
	]`)

	_, err := LoadOperations(path)
	var malformed *MalformedPlanError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Index)
	assert.Equal(t, "entity_to_change_into", malformed.Field)
}

func TestLoadOperationsEmptyTargets(t *testing.T) {
	path := writePlan(t, `[{"entity_to_change_into": "A", "entities_to_change": []}]`)

	_, err := LoadOperations(path)
	var malformed *MalformedPlanError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 0, malformed.Index)
	assert.Equal(t, "entities_to_change", malformed.Field)
}

func TestLoadOperationsSelfMerge(t *testing.T) {
	path := writePlan(t, `[{"entity_to_change_into": "A", "entities_to_change": ["A"]}]`)

	_, err := LoadOperations(path)
	var malformed *MalformedPlanError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "entities_to_change", malformed.Field)
}

func TestLoadOperationsRepairsHandEditedJSON(t *testing.T) {
	// Trailing comma, the classic hand-edit casualty.
	path := writePlan(t, `[
		{"entity_to_change_into": "A", "entities_to_change": ["a"],}
	]`)

	ops, err := LoadOperations(path)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "A", ops[0].EntityToChangeInto)
}

func TestLoadOperationsMissingFile(t *testing.T) {
	_, err := LoadOperations(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSaveReportAndEntities(t *testing.T) {
	s := fixedStore(t)

	report := &types.MergeReport{Total: 1, Successful: 1,
		Details: []types.OperationResult{{EntityToChangeInto: "A", Status: types.StatusSuccess}}}
	path, err := s.SaveReport(report)
	require.NoError(t, err)
	assert.True(t, strings.Contains(filepath.Base(path), "clean_merge_report_"))

	entities := []types.Entity{{Name: "CV_001", Type: "CV", RelationshipCount: 2}}
	path, err = s.SaveEntities(entities)
	require.NoError(t, err)
	assert.Equal(t, "clean_extract_20260314_150926.json", filepath.Base(path))

	got, err := LoadEntities(path)
	require.NoError(t, err)
	assert.Equal(t, entities, got)
}

func TestSaveReportEmptyDetailsIsArray(t *testing.T) {
	s := fixedStore(t)

	path, err := s.SaveReport(&types.MergeReport{})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"details": []`)
	assert.NotContains(t, string(raw), "null")
}

func TestSaveOperationsCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	s := NewStore(dir, "clean", nil)

	_, err := s.SaveOperations(nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
