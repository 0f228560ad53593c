package types

import (
	"errors"
	"fmt"
)

// Validation and pipeline errors
var (
	ErrEmptySurvivor    = errors.New("entity_to_change_into cannot be empty")
	ErrNoEntities       = errors.New("entities_to_change cannot be empty")
	ErrSelfMerge        = errors.New("entity cannot be merged into itself")
	ErrInvalidQuery     = errors.New("at least one of name pattern or type pattern must be provided")
	ErrStoreUnavailable = errors.New("graph store unavailable")
)

// Entity is a named node read from the knowledge graph. RelationshipCount is
// the number of distinct incident edges and serves only as a ranking signal
// for canonical selection, never as an identity key.
type Entity struct {
	Name              string `json:"entity_name" mapstructure:"entity_name"`
	Type              string `json:"entity_type,omitempty" mapstructure:"entity_type"`
	RelationshipCount int    `json:"relationship_count" mapstructure:"relationship_count"`
}

// MergeOperation is the unit of a merge plan: retire EntitiesToChange by
// merging them into EntityToChangeInto. NormalizedName, when set, is the
// canonical display form the survivor should be renamed to after the merge.
type MergeOperation struct {
	EntityToChangeInto  string         `json:"entity_to_change_into"`
	EntitiesToChange    []string       `json:"entities_to_change"`
	EntityType          string         `json:"entity_type,omitempty"`
	RelationshipCounts  map[string]int `json:"relationship_counts,omitempty"`
	NormalizedName      string         `json:"normalized_name,omitempty"`
	EntityTypesInvolved []string       `json:"entity_types_involved,omitempty"`
}

// Validate checks the structural requirements every plan element must meet
// before execution.
func (op *MergeOperation) Validate() error {
	if op.EntityToChangeInto == "" {
		return ErrEmptySurvivor
	}
	if len(op.EntitiesToChange) == 0 {
		return ErrNoEntities
	}
	for _, name := range op.EntitiesToChange {
		if name == op.EntityToChangeInto {
			return fmt.Errorf("%w: %q", ErrSelfMerge, name)
		}
	}
	return nil
}

// OperationStatus is the terminal state of a single merge operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "success"
	StatusFailed  OperationStatus = "failed"
	// StatusSkipped marks operations whose source entities were already gone,
	// which happens when a partially-completed plan is re-run.
	StatusSkipped OperationStatus = "skipped"
	StatusDryRun  OperationStatus = "dry_run"
)

// OperationResult is the per-operation entry appended to a MergeReport.
type OperationResult struct {
	EntityToChangeInto       string          `json:"entity_to_change_into"`
	EntitiesToChange         []string        `json:"entities_to_change"`
	EntityType               string          `json:"entity_type,omitempty"`
	NormalizedName           string          `json:"normalized_name,omitempty"`
	Status                   OperationStatus `json:"status"`
	Message                  string          `json:"message,omitempty"`
	RelationshipsTransferred int             `json:"relationships_transferred"`
	EntityUpdated            bool            `json:"entity_updated"`
	UpdateMessage            string          `json:"update_message,omitempty"`
}

// MergeReport aggregates the results of executing a merge plan.
type MergeReport struct {
	RunID      string            `json:"run_id,omitempty"`
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Skipped    int               `json:"skipped,omitempty"`
	Details    []OperationResult `json:"details"`
}

// Add records a result and updates the aggregate counters.
func (r *MergeReport) Add(res OperationResult) {
	switch res.Status {
	case StatusSuccess:
		r.Successful++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
	r.Details = append(r.Details, res)
}

// EntitiesRenamed counts operations whose survivor was renamed to its
// canonical display form.
func (r *MergeReport) EntitiesRenamed() int {
	n := 0
	for _, d := range r.Details {
		if d.EntityUpdated {
			n++
		}
	}
	return n
}

// DeleteStats aggregates the outcomes of a bulk deletion run. NotFound is an
// acceptable terminal state and is tracked separately from Failed.
type DeleteStats struct {
	Total         int `json:"total"`
	Deleted       int `json:"deleted"`
	NotFound      int `json:"not_found"`
	Failed        int `json:"failed"`
	ClientErrors  int `json:"client_errors"`
	ServerErrors  int `json:"server_errors"`
	NetworkErrors int `json:"network_errors"`
}
