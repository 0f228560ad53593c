// Package checkpoint persists per-operation execution state locally so a
// partially completed merge run can resume without repeating work.
package checkpoint
