package liftcontrol

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// registry.go loads the competition registry: the externally-maintained
// YAML file listing every importable LiftControl competition with its
// base slug, session sub-slugs, and the competition metadata the platform
// itself does not expose (dates, venue, federation). New competitions are
// added by editing the file, not by rebuilding the binary.

// FederationInfo names the sanctioning federation of a competition.
type FederationInfo struct {
	Name         string `yaml:"name"`
	Abbreviation string `yaml:"abbreviation"`
	Country      string `yaml:"country"`
}

// CompetitionMetadata supplies the fields of a canonical competition that
// the LiftControl API does not carry.
type CompetitionMetadata struct {
	Name           string         `yaml:"name"`
	Federation     FederationInfo `yaml:"federation"`
	StartDate      time.Time      `yaml:"start_date"`
	EndDate        time.Time      `yaml:"end_date"`
	Venue          string         `yaml:"venue"`
	City           string         `yaml:"city"`
	Country        string         `yaml:"country"`
	NumberOfJudges *int16         `yaml:"number_of_judges"`

	// Applied to every athlete in the competition; the platform does not
	// record athlete countries.
	DefaultAthleteCountry     string `yaml:"default_athlete_country"`
	DefaultAthleteNationality string `yaml:"default_athlete_nationality"`
}

// CompetitionConfig is one registry entry. The base slug groups all
// session sub-slugs into a single logical competition.
type CompetitionConfig struct {
	ID       string              `yaml:"id"`
	BaseSlug string              `yaml:"base_slug"`
	SubSlugs []string            `yaml:"sub_slugs"`
	Metadata CompetitionMetadata `yaml:"metadata"`
}

type registryFile struct {
	Competitions []CompetitionConfig `yaml:"competitions"`
}

// Registry is the loaded set of importable competitions, keyed by ID.
type Registry struct {
	byID map[string]CompetitionConfig
}

// LoadRegistry reads and validates a registry YAML file.
func LoadRegistry(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	reg, err := ParseRegistry(f)
	if err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return reg, nil
}

// ParseRegistry decodes and validates registry YAML from a reader.
func ParseRegistry(r io.Reader) (*Registry, error) {
	var file registryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	reg := &Registry{byID: make(map[string]CompetitionConfig, len(file.Competitions))}
	for _, c := range file.Competitions {
		switch {
		case c.ID == "":
			return nil, fmt.Errorf("competition with base_slug %q has no id", c.BaseSlug)
		case c.BaseSlug == "":
			return nil, fmt.Errorf("competition %q has no base_slug", c.ID)
		case len(c.SubSlugs) == 0:
			return nil, fmt.Errorf("competition %q has no sub_slugs", c.ID)
		case c.Metadata.Name == "":
			return nil, fmt.Errorf("competition %q has no metadata.name", c.ID)
		case c.Metadata.Federation.Name == "":
			return nil, fmt.Errorf("competition %q has no metadata.federation.name", c.ID)
		}
		if _, dup := reg.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate competition id %q", c.ID)
		}
		reg.byID[c.ID] = c
	}
	return reg, nil
}

// Get looks up a competition by ID.
func (r *Registry) Get(id string) (CompetitionConfig, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// IDs lists every registered competition ID, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
