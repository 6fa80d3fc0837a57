package location

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-insights/internal/models"
)

func writeArtifact(t *testing.T, a artifact) string {
	t.Helper()
	data, err := json.Marshal(a)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "location.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testFinder(t *testing.T) *Finder {
	t.Helper()
	f, err := Load(writeArtifact(t, artifact{
		Landmarks: []string{"Railway Station", "Airport"},
		Properties: map[string]map[string]float64{
			"Alder Court":  {"Railway Station": 1200, "Airport": 9000},
			"Birch Villas": {"Railway Station": 4800, "Airport": 2500},
			"Cedar Mews":   {"Railway Station": 300, "Airport": 15000},
			"Deodar Rise":  {"Railway Station": 7100, "Airport": 500},
		},
	}))
	require.NoError(t, err)
	return f
}

func TestWithinFiltersAndSortsAscending(t *testing.T) {
	f := testFinder(t)

	hits, err := f.Within("Railway Station", 5000, 0)
	require.NoError(t, err)

	require.Len(t, hits, 3)
	assert.Equal(t, "Cedar Mews", hits[0].Name)
	assert.Equal(t, "Alder Court", hits[1].Name)
	assert.Equal(t, "Birch Villas", hits[2].Name)
	for _, h := range hits {
		assert.LessOrEqual(t, h.DistanceMeters, 5000.0)
	}
}

func TestWithinRespectsLimit(t *testing.T) {
	f := testFinder(t)

	hits, err := f.Within("Railway Station", 5000, 2)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "Cedar Mews", hits[0].Name)
	assert.Equal(t, "Alder Court", hits[1].Name)
}

func TestWithinNoHits(t *testing.T) {
	f := testFinder(t)

	hits, err := f.Within("Airport", 100, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestWithinUnknownLandmark(t *testing.T) {
	f := testFinder(t)

	_, err := f.Within("Bus Depot", 5000, 0)

	var lookupErr *models.LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "landmark", lookupErr.Kind)
}

func TestLandmarksSorted(t *testing.T) {
	f := testFinder(t)
	assert.Equal(t, []string{"Airport", "Railway Station"}, f.Landmarks())
}
