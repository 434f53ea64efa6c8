package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
)

// Seed is the baseline taxonomy shipped with a deployment, used to
// initialize an empty store or capture an intentional version bump.
type Seed struct {
	Version  Version
	Taxonomy Map
}

// LoadSeed reads a seed definition from disk.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy seed %s: %w", path, err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("parse taxonomy seed %s: %w", path, err)
	}
	return seed, nil
}

// ParseSeed accepts either the wrapped document shape
// ({"id": "v1.0", "taxonomy": {...}}) or a flat object with domains at the
// root. Flat files may carry id/version/rules bookkeeping keys, which are
// not treated as domains. A seed without a usable id defaults to v1.0.
func ParseSeed(data []byte) (*Seed, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	seed := &Seed{Version: Version{Major: 1}, Taxonomy: Map{}}

	if wrapped, ok := raw["taxonomy"]; ok {
		if err := json.Unmarshal(wrapped, &seed.Taxonomy); err != nil {
			return nil, fmt.Errorf("seed taxonomy: %w", err)
		}
		seed.Version = seedVersion(raw, seed.Version)
		seed.Taxonomy.Normalize()
		return seed, nil
	}

	for key, value := range raw {
		switch key {
		case "id", "version", "rules":
			continue
		}
		var group Group
		if err := json.Unmarshal(value, &group); err != nil {
			return nil, fmt.Errorf("seed domain %q: %w", key, err)
		}
		seed.Taxonomy[key] = group
	}
	seed.Version = seedVersion(raw, seed.Version)
	seed.Taxonomy.Normalize()
	return seed, nil
}

// seedVersion reads an id or version string key if one parses cleanly.
func seedVersion(raw map[string]json.RawMessage, fallback Version) Version {
	for _, key := range []string{"id", "version"} {
		value, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			continue
		}
		if v, err := ParseVersion(s); err == nil {
			return v
		}
	}
	return fallback
}
