// Package executor drives reviewed merge plans and bulk deletions against
// the graph API with bounded retry, progress logging, and reporting.
package executor
