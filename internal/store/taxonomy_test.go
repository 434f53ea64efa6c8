package store

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/driver"
	"github.com/agenthands/cobalt/internal/taxonomy"
)

type storedDoc struct {
	major   int64
	minor   int64
	payload string
}

// mockDriver emulates the document store with an in-memory map keyed by id.
type mockDriver struct {
	taxonomies map[string]storedDoc
	saves      []string
	err        error
}

func newMockDriver() *mockDriver {
	return &mockDriver{taxonomies: map[string]storedDoc{}}
}

func (m *mockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	if m.err != nil {
		return neo4j.EagerResult{}, m.err
	}
	switch query {
	case driver.UpsertTaxonomyQuery:
		id := params["id"].(string)
		m.taxonomies[id] = storedDoc{
			major:   params["major"].(int64),
			minor:   params["minor"].(int64),
			payload: params["payload"].(string),
		}
		m.saves = append(m.saves, id)
		return neo4j.EagerResult{}, nil
	case driver.LatestTaxonomyQuery:
		ids := make([]string, 0, len(m.taxonomies))
		for id := range m.taxonomies {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			a, b := m.taxonomies[ids[i]], m.taxonomies[ids[j]]
			if a.major != b.major {
				return a.major > b.major
			}
			return a.minor > b.minor
		})
		if len(ids) == 0 {
			return neo4j.EagerResult{}, nil
		}
		return payloadResult(m.taxonomies[ids[0]].payload), nil
	case driver.TaxonomyByIDQuery:
		doc, ok := m.taxonomies[params["id"].(string)]
		if !ok {
			return neo4j.EagerResult{}, nil
		}
		return payloadResult(doc.payload), nil
	}
	return neo4j.EagerResult{}, nil
}

func (m *mockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *mockDriver) Close(ctx context.Context) error        { return nil }

func payloadResult(payload string) neo4j.EagerResult {
	return neo4j.EagerResult{
		Records: []*neo4j.Record{{Keys: []string{"payload"}, Values: []any{payload}}},
	}
}

func testSeed(v taxonomy.Version) *taxonomy.Seed {
	return &taxonomy.Seed{
		Version: v,
		Taxonomy: taxonomy.Map{
			"healing": taxonomy.Group{
				"physical_health": taxonomy.CategoryNode{Subcategories: []string{"obesity"}},
			},
		},
	}
}

func TestInitializeSeedsEmptyStore(t *testing.T) {
	d := newMockDriver()
	s := NewTaxonomyStore(d, testSeed(taxonomy.Version{Major: 1, Minor: 0}), zap.NewNop())

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, []string{"v1.0"}, d.saves)

	doc, err := s.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, taxonomy.Version{Major: 1, Minor: 0}, doc.Version)
	assert.Contains(t, doc.Taxonomy, "healing")
}

func TestInitializeUpgradesOnNewerSeed(t *testing.T) {
	d := newMockDriver()
	existing := NewTaxonomyStore(d, testSeed(taxonomy.Version{Major: 1, Minor: 0}), zap.NewNop())
	require.NoError(t, existing.Initialize(context.Background()))

	upgraded := NewTaxonomyStore(d, testSeed(taxonomy.Version{Major: 2, Minor: 0}), zap.NewNop())
	require.NoError(t, upgraded.Initialize(context.Background()))

	doc, err := upgraded.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, taxonomy.Version{Major: 2, Minor: 0}, doc.Version)
}

func TestInitializeNoOpOnOlderSeed(t *testing.T) {
	d := newMockDriver()
	current := NewTaxonomyStore(d, testSeed(taxonomy.Version{Major: 2, Minor: 1}), zap.NewNop())
	require.NoError(t, current.Initialize(context.Background()))
	saves := len(d.saves)

	stale := NewTaxonomyStore(d, testSeed(taxonomy.Version{Major: 1, Minor: 0}), zap.NewNop())
	require.NoError(t, stale.Initialize(context.Background()))
	assert.Len(t, d.saves, saves)
}

func TestInitializeWithoutSeed(t *testing.T) {
	d := newMockDriver()
	s := NewTaxonomyStore(d, nil, zap.NewNop())
	require.NoError(t, s.Initialize(context.Background()))
	assert.Empty(t, d.saves)

	_, err := s.GetLatest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitializeRunsOnce(t *testing.T) {
	d := newMockDriver()
	s := NewTaxonomyStore(d, testSeed(taxonomy.Version{Major: 1, Minor: 0}), zap.NewNop())

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Initialize(context.Background()))
	}
	assert.Len(t, d.saves, 1)
}

func TestGetByVersion(t *testing.T) {
	d := newMockDriver()
	s := NewTaxonomyStore(d, testSeed(taxonomy.Version{Major: 1, Minor: 0}), zap.NewNop())
	require.NoError(t, s.Initialize(context.Background()))

	doc, err := s.GetByVersion(context.Background(), taxonomy.Version{Major: 1, Minor: 0})
	require.NoError(t, err)
	assert.Equal(t, "v1.0", doc.Version.String())

	_, err = s.GetByVersion(context.Background(), taxonomy.Version{Major: 9, Minor: 9})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveIsUpsertByVersion(t *testing.T) {
	d := newMockDriver()
	s := NewTaxonomyStore(d, nil, zap.NewNop())

	doc := &taxonomy.Document{
		Specification: taxonomy.Specification{
			Version:  taxonomy.Version{Major: 1, Minor: 1},
			Taxonomy: taxonomy.Map{"healing": taxonomy.Group{}},
		},
		Changes: []string{"Add domain 'healing'"},
	}
	require.NoError(t, s.Save(context.Background(), doc))
	require.NoError(t, s.Save(context.Background(), doc))

	// Same version id, overwritten identically.
	assert.Len(t, d.taxonomies, 1)

	var stored taxonomy.Document
	require.NoError(t, json.Unmarshal([]byte(d.taxonomies["v1.1"].payload), &stored))
	assert.Equal(t, doc.Changes, stored.Changes)
}
