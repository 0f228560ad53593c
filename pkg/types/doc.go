// Package types defines the core data types for the graphmend entity
// resolution pipeline.
//
// This package contains the fundamental types shared by every stage:
//   - Entity: an entity read from the knowledge graph with its relationship degree
//   - MergeOperation: a proposed merge of duplicate entities into one survivor
//   - MergeReport / OperationResult: the outcome of executing a merge plan
//   - DeleteStats: the outcome of a bulk deletion run
//
// # Validation
//
// MergeOperation provides Validate() for structural checks performed when a
// plan file is loaded:
//
//	op := types.MergeOperation{EntityToChangeInto: "CV_001", EntitiesToChange: []string{"cv_001"}}
//	if err := op.Validate(); err != nil {
//	    // Handle validation error
//	}
//
// # JSON Serialization
//
// All types are designed to round-trip through JSON; the struct tags match the
// merge-plan and report file formats reviewed by operators.
package types
