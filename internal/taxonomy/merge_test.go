package taxonomy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseDocument() *Document {
	return &Document{
		Specification: Specification{
			Version: Version{1, 0},
			Taxonomy: Map{
				"healing": Group{
					"physical_health": CategoryNode{Subcategories: []string{"obesity"}},
				},
			},
		},
	}
}

func TestMergeNoProposalsIsNoOp(t *testing.T) {
	doc := baseDocument()
	next, changes := Merge(doc, nil, time.Now())
	assert.Nil(t, next)
	assert.Empty(t, changes)
}

func TestMergeExistingCategory(t *testing.T) {
	doc := baseDocument()
	proposals := []Proposal{{
		Domain:        "healing",
		Group:         Group{"physical_health": CategoryNode{Subcategories: []string{"diabetes"}}},
		Justification: "seen in transcript",
	}}

	next, changes := Merge(doc, proposals, time.Now())
	require.NotNil(t, next)
	assert.Equal(t, Version{1, 1}, next.Version)
	assert.Contains(t, changes, "Merge category 'healing.physical_health'")
	assert.ElementsMatch(t,
		[]string{"obesity", "diabetes"},
		next.Taxonomy["healing"]["physical_health"].Subcategories)

	// Source document untouched.
	assert.Equal(t, []string{"obesity"}, doc.Taxonomy["healing"]["physical_health"].Subcategories)
}

func TestMergeNewDomainAndCategory(t *testing.T) {
	doc := baseDocument()
	proposals := []Proposal{{
		Domain: "new_domain",
		Group: Group{"new_category": CategoryNode{
			Subcategories: []string{"sub1", "sub2"},
			Attributes:    []string{"attr1"},
		}},
	}}

	next, changes := Merge(doc, proposals, time.Now())
	require.NotNil(t, next)
	assert.Equal(t, Version{1, 1}, next.Version)
	assert.Contains(t, changes, "Add domain 'new_domain'")
	assert.Contains(t, changes, "Add category 'new_domain.new_category'")

	node := next.Taxonomy["new_domain"]["new_category"]
	assert.Equal(t, []string{"sub1", "sub2"}, node.Subcategories)
	assert.Equal(t, []string{"attr1"}, node.Attributes)

	// Prior domains survive the merge.
	assert.Contains(t, next.Taxonomy, "healing")
}

func TestMergeSkipsBlankDomain(t *testing.T) {
	doc := baseDocument()
	proposals := []Proposal{{Domain: "  ", Group: Group{"x": CategoryNode{}}}}
	next, changes := Merge(doc, proposals, time.Now())
	assert.Nil(t, next)
	assert.Empty(t, changes)
}

func TestMergeIdempotentInContent(t *testing.T) {
	doc := baseDocument()
	proposal := Proposal{
		Domain: "healing",
		Group:  Group{"physical_health": CategoryNode{Subcategories: []string{"Diabetes", "diabetes", "DIABETES"}}},
	}

	next, _ := Merge(doc, []Proposal{proposal, proposal}, time.Now())
	require.NotNil(t, next)
	assert.ElementsMatch(t,
		[]string{"obesity", "Diabetes"},
		next.Taxonomy["healing"]["physical_health"].Subcategories)
}

func TestMergeDropsBlankMembers(t *testing.T) {
	doc := baseDocument()
	proposals := []Proposal{{
		Domain: "healing",
		Group: Group{"mental_health": CategoryNode{
			Subcategories: []string{"", "  ", "anxiety"},
			Attributes:    []string{""},
		}},
	}}

	next, _ := Merge(doc, proposals, time.Now())
	require.NotNil(t, next)
	node := next.Taxonomy["healing"]["mental_health"]
	assert.Equal(t, []string{"anxiety"}, node.Subcategories)
	assert.Empty(t, node.Attributes)
}

func TestMergeSetsTimestamp(t *testing.T) {
	doc := baseDocument()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	next, _ := Merge(doc, []Proposal{{
		Domain: "healing",
		Group:  Group{"physical_health": CategoryNode{Subcategories: []string{"diabetes"}}},
	}}, now)
	require.NotNil(t, next)
	assert.Equal(t, now, next.UpdatedAt)
}
