package recommend

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"estate-insights/internal/config"
	"estate-insights/internal/models"
)

// artifact mirrors the serialized recommender data: a named-entity index and
// three precomputed pairwise similarity matrices over it.
type artifact struct {
	Names    []string    `json:"names"`
	Facility [][]float64 `json:"facility"`
	Price    [][]float64 `json:"price"`
	Location [][]float64 `json:"location"`
}

// Match is one recommendation. MatchPercent is the score normalized for
// display; the normalizer is a compatibility constant, not a derived bound.
type Match struct {
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	MatchPercent int     `json:"match_percent"`
}

// Recommender answers similarity lookups over the precomputed matrices
// combined with the configured fixed weights.
type Recommender struct {
	names     []string
	byName    map[string]int
	combined  [][]float64
	normalize float64
}

// Load reads the artifact and precombines the matrices. The weights come
// from the artifacts that produced the matrices and must match them exactly.
func Load(path string, cfg *config.RecommenderConfig) (*Recommender, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recommender artifact: %w", err)
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing recommender artifact: %w", err)
	}

	n := len(a.Names)
	if len(a.Facility) != n || len(a.Price) != n || len(a.Location) != n {
		return nil, fmt.Errorf("recommender artifact matrices do not match %d names", n)
	}

	byName := make(map[string]int, n)
	for i, name := range a.Names {
		byName[name] = i
	}

	combined := make([][]float64, n)
	for i := 0; i < n; i++ {
		if len(a.Facility[i]) != n || len(a.Price[i]) != n || len(a.Location[i]) != n {
			return nil, fmt.Errorf("recommender artifact row %d is not square", i)
		}
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = cfg.FacilityWeight*a.Facility[i][j] +
				cfg.PriceWeight*a.Price[i][j] +
				cfg.LocationWeight*a.Location[i][j]
		}
		combined[i] = row
	}

	return &Recommender{
		names:     a.Names,
		byName:    byName,
		combined:  combined,
		normalize: cfg.MatchNormalize,
	}, nil
}

// Names lists the entities the recommender knows, in artifact order.
func (r *Recommender) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Similar returns the topN entities most similar to name, descending by
// combined score. The query entity itself is excluded; ties keep the
// matrices' natural ordering.
func (r *Recommender) Similar(name string, topN int) ([]Match, error) {
	idx, ok := r.byName[name]
	if !ok {
		return nil, &models.LookupError{Kind: "property", Key: name}
	}
	if topN <= 0 {
		topN = 5
	}

	row := r.combined[idx]
	order := make([]int, 0, len(row)-1)
	for j := range row {
		if j != idx {
			order = append(order, j)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return row[order[a]] > row[order[b]]
	})

	if topN > len(order) {
		topN = len(order)
	}
	matches := make([]Match, 0, topN)
	for _, j := range order[:topN] {
		score := row[j]
		pct := int(score / r.normalize * 100)
		if pct > 100 {
			pct = 100
		}
		matches = append(matches, Match{
			Name:         r.names[j],
			Score:        math.Round(score*1000) / 1000,
			MatchPercent: pct,
		})
	}
	return matches, nil
}
