package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeedWrapped(t *testing.T) {
	data := []byte(`{
		"id": "v2.3",
		"taxonomy": {
			"healing": {
				"physical_health": {"subcategories": ["obesity", "Obesity", "diabetes"]}
			}
		}
	}`)

	seed, err := ParseSeed(data)
	require.NoError(t, err)
	assert.Equal(t, Version{2, 3}, seed.Version)
	assert.Equal(t, []string{"obesity", "diabetes"},
		seed.Taxonomy["healing"]["physical_health"].Subcategories)
}

func TestParseSeedFlat(t *testing.T) {
	data := []byte(`{
		"id": "v1.4",
		"rules": {"note": "ignored"},
		"healing": {
			"physical_health": {"subcategories": ["obesity"], "attributes": ["chronic"]}
		},
		"relationships": {
			"family": {"subcategories": ["reconciliation"]}
		}
	}`)

	seed, err := ParseSeed(data)
	require.NoError(t, err)
	assert.Equal(t, Version{1, 4}, seed.Version)
	assert.Len(t, seed.Taxonomy, 2)
	assert.NotContains(t, seed.Taxonomy, "rules")
	assert.Equal(t, []string{"chronic"}, seed.Taxonomy["healing"]["physical_health"].Attributes)
	assert.Equal(t, []string{"reconciliation"}, seed.Taxonomy["relationships"]["family"].Subcategories)
}

func TestParseSeedDefaultsVersion(t *testing.T) {
	seed, err := ParseSeed([]byte(`{"healing": {}}`))
	require.NoError(t, err)
	assert.Equal(t, Version{1, 0}, seed.Version)
}

func TestParseSeedRejectsBadJSON(t *testing.T) {
	_, err := ParseSeed([]byte(`{"healing": [1,2]}`))
	assert.Error(t, err)

	_, err = ParseSeed([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadSeedFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": "v1.0", "taxonomy": {"healing": {}}}`), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, Version{1, 0}, seed.Version)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
