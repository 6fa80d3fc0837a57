package location

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"estate-insights/internal/models"
)

// artifact mirrors the serialized location table: properties as rows,
// landmarks as columns, distances in meters.
type artifact struct {
	Landmarks  []string                      `json:"landmarks"`
	Properties map[string]map[string]float64 `json:"properties"`
}

// Nearby is one radius-search hit.
type Nearby struct {
	Name           string  `json:"name"`
	DistanceMeters float64 `json:"distance_meters"`
}

// Finder answers threshold-filter-and-sort queries over the distance table.
type Finder struct {
	landmarks  []string
	properties map[string]map[string]float64
}

func Load(path string) (*Finder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading location artifact: %w", err)
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing location artifact: %w", err)
	}
	return &Finder{landmarks: a.Landmarks, properties: a.Properties}, nil
}

// Landmarks lists the fixed landmarks, sorted.
func (f *Finder) Landmarks() []string {
	out := make([]string, len(f.landmarks))
	copy(out, f.landmarks)
	sort.Strings(out)
	return out
}

// Within returns the properties whose distance to the landmark is at most
// radiusMeters, nearest first. limit <= 0 returns all hits. Ties on distance
// break by name so the ordering is deterministic.
func (f *Finder) Within(landmark string, radiusMeters float64, limit int) ([]Nearby, error) {
	if !f.knows(landmark) {
		return nil, &models.LookupError{Kind: "landmark", Key: landmark}
	}

	var hits []Nearby
	for name, distances := range f.properties {
		d, ok := distances[landmark]
		if !ok || d > radiusMeters {
			continue
		}
		hits = append(hits, Nearby{Name: name, DistanceMeters: d})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceMeters != hits[j].DistanceMeters {
			return hits[i].DistanceMeters < hits[j].DistanceMeters
		}
		return hits[i].Name < hits[j].Name
	})

	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *Finder) knows(landmark string) bool {
	for _, l := range f.landmarks {
		if l == landmark {
			return true
		}
	}
	return false
}
