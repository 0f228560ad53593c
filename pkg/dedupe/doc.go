// Package dedupe groups catalog entities whose names normalize identically
// and turns each group into a reviewable merge operation.
package dedupe
