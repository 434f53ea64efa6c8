package taxonomy

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Merge folds proposals into the current document and returns the evolved
// snapshot plus its change log. It is a pure function: the current document
// is never mutated.
//
// A nil document with an empty log means nothing changed; the caller must
// not persist anything and must not bump the version. Otherwise the returned
// document carries the full merged hierarchy under current.Version with the
// minor component incremented.
func Merge(current *Document, proposals []Proposal, now time.Time) (*Document, []string) {
	working := current.Taxonomy.Clone()
	var changes []string

	for _, proposal := range proposals {
		domain := strings.TrimSpace(proposal.Domain)
		if domain == "" {
			continue
		}

		group, ok := working[domain]
		if !ok {
			group = Group{}
			working[domain] = group
			changes = append(changes, fmt.Sprintf("Add domain '%s'", domain))
		}

		for _, category := range sortedCategories(proposal.Group) {
			node := proposal.Group[category]
			existing, ok := group[category]
			if !ok {
				group[category] = CategoryNode{
					Subcategories: dedupeFold(node.Subcategories),
					Attributes:    dedupeFold(node.Attributes),
				}
				changes = append(changes, fmt.Sprintf("Add category '%s.%s'", domain, category))
				continue
			}
			existing.Subcategories = unionFold(existing.Subcategories, node.Subcategories)
			existing.Attributes = unionFold(existing.Attributes, node.Attributes)
			group[category] = existing
			changes = append(changes, fmt.Sprintf("Merge category '%s.%s'", domain, category))
		}
	}

	if len(changes) == 0 {
		return nil, nil
	}

	return &Document{
		Specification: Specification{
			Version:  current.Version.IncrementMinor(),
			Taxonomy: working,
		},
		UpdatedAt: now.UTC(),
		Changes:   changes,
	}, changes
}

// sortedCategories fixes the change-log order within one proposal.
func sortedCategories(group Group) []string {
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
