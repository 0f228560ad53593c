package utils

import (
	"regexp"
	"strings"
)

var separatorRuns = regexp.MustCompile(`[\s_\-]+`)

// NormalizeName maps an entity name to its case/separator-insensitive key.
// It lowercases the input and removes every run of spaces, underscores, and
// hyphens, so "APPLICATION_LIFE_CYCLE", "Application Life Cycle", and
// "application-life-cycle" all normalize to "applicationlifecycle".
//
// NormalizeName is pure and idempotent; it is safe to call concurrently.
func NormalizeName(name string) string {
	return separatorRuns.ReplaceAllString(strings.ToLower(name), "")
}
