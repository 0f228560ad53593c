package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/graphmend/pkg/utils"
)

// Entity types assigned by the job-profile taxonomy.
const (
	TypeDomainProfile = "DOMAIN_PROFILE"
	TypeProfile       = "PROFILE"
)

// CanonicalSet maps normalized names to the authoritative display name and
// entity type taken from a source-of-truth taxonomy document. When a
// canonical set is in play it overrides any heuristic for type and display
// name; the degree heuristic still decides which physical entity survives.
type CanonicalSet struct {
	names map[string]string
	types map[string]string
}

// NewCanonicalSet creates an empty canonical set.
func NewCanonicalSet() *CanonicalSet {
	return &CanonicalSet{
		names: make(map[string]string),
		types: make(map[string]string),
	}
}

// Add registers a canonical entity under its normalized name. Later entries
// win, matching the order of the source document.
func (s *CanonicalSet) Add(name, entityType string) {
	key := utils.NormalizeName(name)
	if key == "" {
		return
	}
	s.names[key] = name
	s.types[key] = entityType
}

// Contains reports whether the normalized key belongs to the set.
func (s *CanonicalSet) Contains(key string) bool {
	_, ok := s.names[key]
	return ok
}

// Name returns the canonical display name for a normalized key.
func (s *CanonicalSet) Name(key string) (string, bool) {
	name, ok := s.names[key]
	return name, ok
}

// Type returns the canonical entity type for a normalized key.
func (s *CanonicalSet) Type(key string) (string, bool) {
	t, ok := s.types[key]
	return t, ok
}

// Len returns the number of canonical entities.
func (s *CanonicalSet) Len() int {
	return len(s.names)
}

// Keys returns the normalized keys in sorted order.
func (s *CanonicalSet) Keys() []string {
	keys := make([]string, 0, len(s.names))
	for k := range s.names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// taxonomyJSON mirrors the parsed taxonomy document produced by the ingest
// pipeline: a domains map whose chunks carry the job profile in metadata.
type taxonomyJSON struct {
	Domains map[string][]struct {
		Metadata struct {
			JobProfile string `json:"job_profile"`
		} `json:"metadata"`
	} `json:"domains"`
}

// taxonomyYAML is the flat hand-maintained taxonomy form: domains with their
// profile lists.
type taxonomyYAML struct {
	Domains []struct {
		Name     string   `yaml:"name"`
		Profiles []string `yaml:"profiles"`
	} `yaml:"domains"`
}

// LoadCanonicalSet reads a taxonomy file (JSON or YAML by extension) and
// builds the canonical set: domains become DOMAIN_PROFILE entities and job
// profiles become PROFILE entities.
func LoadCanonicalSet(path string) (*CanonicalSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseTaxonomyYAML(data)
	default:
		return parseTaxonomyJSON(data)
	}
}

func parseTaxonomyJSON(data []byte) (*CanonicalSet, error) {
	var doc taxonomyJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy JSON: %w", err)
	}

	set := NewCanonicalSet()
	for domain, chunks := range doc.Domains {
		set.Add(domain, TypeDomainProfile)
		for _, chunk := range chunks {
			profile := strings.TrimSpace(chunk.Metadata.JobProfile)
			if profile != "" {
				set.Add(profile, TypeProfile)
			}
		}
	}
	return set, nil
}

func parseTaxonomyYAML(data []byte) (*CanonicalSet, error) {
	var doc taxonomyYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy YAML: %w", err)
	}

	set := NewCanonicalSet()
	for _, domain := range doc.Domains {
		if name := strings.TrimSpace(domain.Name); name != "" {
			set.Add(name, TypeDomainProfile)
		}
		for _, profile := range domain.Profiles {
			if p := strings.TrimSpace(profile); p != "" {
				set.Add(p, TypeProfile)
			}
		}
	}
	return set, nil
}
