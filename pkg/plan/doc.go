// Package plan persists merge plans, execution reports, and entity extracts
// as timestamped JSON artifacts, and validates plans before execution.
package plan
