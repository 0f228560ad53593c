// Package telemetry writes per-operation execution records to Parquet files
// for offline analysis of merge and cleanup runs.
package telemetry
