// Package driver provides the read-side connection to the property-graph
// store backing the knowledge graph.
//
// The GraphDriver interface exposes a single retrieval operation returning
// (entity name, entity type, relationship degree) tuples, filterable by
// regex on name and type. Neo4jDriver is the production implementation; the
// rest of the pipeline depends only on the interface, so tests substitute
// in-memory fakes.
package driver
