package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	jsonrepair "github.com/kaptinlin/jsonrepair"

	"github.com/soundprediction/graphmend/pkg/types"
)

const timestampLayout = "20060102_150405"

// MalformedPlanError reports the first structural violation found in a plan
// file. Index is the zero-based position of the offending operation and
// Field names the requirement it breaks.
type MalformedPlanError struct {
	Index int
	Field string
}

func (e *MalformedPlanError) Error() string {
	return fmt.Sprintf("malformed plan: operation %d: invalid %s", e.Index, e.Field)
}

// Store writes and reads the timestamped JSON artifacts of a pipeline run.
// Subject is the filename prefix shared by a run's plan, report, and extract
// files.
type Store struct {
	dir     string
	subject string
	logger  *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewStore creates a plan store rooted at dir with the given filename subject.
func NewStore(dir, subject string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, subject: subject, logger: logger, now: time.Now}
}

// SaveOperations writes a merge plan for operator review and returns its path.
func (s *Store) SaveOperations(ops []types.MergeOperation) (string, error) {
	if ops == nil {
		ops = []types.MergeOperation{}
	}
	path := s.path("merge_identify")
	if err := s.writeJSON(path, ops); err != nil {
		return "", err
	}
	s.logger.Info("wrote merge plan", "path", path, "operations", len(ops))
	return path, nil
}

// SaveReport writes an execution report and returns its path.
func (s *Store) SaveReport(report *types.MergeReport) (string, error) {
	if report.Details == nil {
		report.Details = []types.OperationResult{}
	}
	path := s.path("merge_report")
	if err := s.writeJSON(path, report); err != nil {
		return "", err
	}
	s.logger.Info("wrote merge report", "path", path)
	return path, nil
}

// SaveEntities writes an extract artifact and returns its path.
func (s *Store) SaveEntities(entities []types.Entity) (string, error) {
	if entities == nil {
		entities = []types.Entity{}
	}
	path := s.path("extract")
	if err := s.writeJSON(path, entities); err != nil {
		return "", err
	}
	s.logger.Info("wrote entity extract", "path", path, "entities", len(entities))
	return path, nil
}

// LoadOperations reads a plan file and validates every operation before any
// of them is executed. Plans are often edited by hand between identify and
// merge, so unparseable JSON gets one repair pass before failing, and
// structural violations are reported with their operation index.
func LoadOperations(path string) ([]types.MergeOperation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var ops []types.MergeOperation
	if err := json.Unmarshal(data, &ops); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return nil, fmt.Errorf("failed to parse plan file %s: %w", path, err)
		}
		if err := json.Unmarshal([]byte(repaired), &ops); err != nil {
			return nil, fmt.Errorf("failed to parse plan file %s: %w", path, err)
		}
	}

	for i := range ops {
		if err := ops[i].Validate(); err != nil {
			return nil, &MalformedPlanError{Index: i, Field: fieldFor(err)}
		}
	}
	return ops, nil
}

// LoadEntities reads an extract artifact back, for the clean tool.
func LoadEntities(path string) ([]types.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read extract file: %w", err)
	}
	var entities []types.Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse extract file %s: %w", path, err)
	}
	return entities, nil
}

func fieldFor(err error) string {
	if errors.Is(err, types.ErrEmptySurvivor) {
		return "entity_to_change_into"
	}
	return "entities_to_change"
}

func (s *Store) path(kind string) string {
	ts := s.now().Format(timestampLayout)
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_%s.json", s.subject, kind, ts))
}

func (s *Store) writeJSON(path string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
