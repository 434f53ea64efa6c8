package taxonomy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CategoryNode holds the allowed subcategories and attributes of one
// category. Both lists behave as case-insensitive sets: no duplicates,
// first-seen casing wins, order is not significant.
type CategoryNode struct {
	Subcategories []string `json:"subcategories,omitempty"`
	Attributes    []string `json:"attributes,omitempty"`
}

// Group maps category name to its node within one domain.
type Group map[string]CategoryNode

// Map is the full taxonomy hierarchy: domain name to group.
type Map map[string]Group

// Specification is the data shape of a taxonomy: a version plus the
// domain hierarchy it allows.
type Specification struct {
	Version  Version
	Taxonomy Map
}

// Document is one persisted, immutable taxonomy snapshot: a Specification
// plus audit metadata. Evolution never mutates a document; it produces a new
// one under an incremented version.
type Document struct {
	Specification
	UpdatedAt           time.Time
	Changes             []string
	ProposedFromVideoID string
}

// documentJSON is the exact wire shape taxonomy documents are stored under.
type documentJSON struct {
	ID                  string    `json:"id"`
	Taxonomy            Map       `json:"taxonomy"`
	UpdatedAt           time.Time `json:"updatedAt"`
	Changes             []string  `json:"changes"`
	ProposedFromVideoID *string   `json:"proposedFromVideoId"`
}

func (d Document) MarshalJSON() ([]byte, error) {
	out := documentJSON{
		ID:        d.Version.String(),
		Taxonomy:  d.Taxonomy,
		UpdatedAt: d.UpdatedAt,
		Changes:   d.Changes,
	}
	if out.Taxonomy == nil {
		out.Taxonomy = Map{}
	}
	if out.Changes == nil {
		out.Changes = []string{}
	}
	if d.ProposedFromVideoID != "" {
		out.ProposedFromVideoID = &d.ProposedFromVideoID
	}
	return json.Marshal(out)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	version, err := ParseVersion(raw.ID)
	if err != nil {
		return fmt.Errorf("taxonomy document id: %w", err)
	}
	*d = Document{
		Specification: Specification{Version: version, Taxonomy: raw.Taxonomy},
		UpdatedAt:     raw.UpdatedAt,
		Changes:       raw.Changes,
	}
	if d.Taxonomy == nil {
		d.Taxonomy = Map{}
	}
	if raw.ProposedFromVideoID != nil {
		d.ProposedFromVideoID = *raw.ProposedFromVideoID
	}
	return nil
}

// Clone deep-copies the hierarchy so merges never touch the source document.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for domain, group := range m {
		cloned := make(Group, len(group))
		for category, node := range group {
			cloned[category] = CategoryNode{
				Subcategories: append([]string(nil), node.Subcategories...),
				Attributes:    append([]string(nil), node.Attributes...),
			}
		}
		out[domain] = cloned
	}
	return out
}

// Normalize rewrites every category node with deduplicated member sets.
func (m Map) Normalize() {
	for _, group := range m {
		for category, node := range group {
			group[category] = CategoryNode{
				Subcategories: dedupeFold(node.Subcategories),
				Attributes:    dedupeFold(node.Attributes),
			}
		}
	}
}

// dedupeFold drops blank entries and case-insensitive duplicates, keeping
// the first-seen casing.
func dedupeFold(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// unionFold appends the incoming values not already present, case-insensitively.
func unionFold(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		seen[strings.ToLower(v)] = struct{}{}
	}
	for _, v := range incoming {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		existing = append(existing, v)
	}
	return existing
}
