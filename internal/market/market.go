package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"estate-insights/internal/models"
)

type listing struct {
	sector       string
	price        float64
	pricePerSqft float64
	builtUpArea  float64
}

// Summary is the tabular input behind the market dashboard for one sector.
type Summary struct {
	Sector          string  `json:"sector"`
	Listings        int     `json:"listings"`
	AvgPrice        float64 `json:"avg_price"`
	AvgPricePerSqft float64 `json:"avg_price_per_sqft"`
	AvgBuiltUpArea  float64 `json:"avg_built_up_area"`
}

// Store holds the precomputed properties dataset in memory.
type Store struct {
	bySector map[string][]listing
}

// Load reads the properties CSV. Rows with unparsable numerics are skipped,
// matching how the dataset's own loader coerces bad values to missing.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening properties dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"sector", "price", "price_per_sqft", "built_up_area"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("properties dataset missing column %q", required)
		}
	}

	store := &Store{bySector: make(map[string][]listing)}
	skipped := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row, ok := parseListing(record, col)
		if !ok {
			skipped++
			continue
		}
		store.bySector[row.sector] = append(store.bySector[row.sector], row)
	}
	if skipped > 0 {
		log.Debug().Int("rows", skipped).Msg("Skipped dataset rows with missing numerics")
	}
	return store, nil
}

func parseListing(record []string, col map[string]int) (listing, bool) {
	get := func(name string) (float64, bool) {
		i := col[name]
		if i >= len(record) {
			return 0, false
		}
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	sectorIdx := col["sector"]
	if sectorIdx >= len(record) || record[sectorIdx] == "" {
		return listing{}, false
	}
	price, ok1 := get("price")
	perSqft, ok2 := get("price_per_sqft")
	area, ok3 := get("built_up_area")
	if !ok1 || !ok2 || !ok3 {
		return listing{}, false
	}
	return listing{
		sector:       record[sectorIdx],
		price:        price,
		pricePerSqft: perSqft,
		builtUpArea:  area,
	}, true
}

// Sectors lists the known sectors, sorted.
func (s *Store) Sectors() []string {
	out := make([]string, 0, len(s.bySector))
	for sector := range s.bySector {
		out = append(out, sector)
	}
	sort.Strings(out)
	return out
}

// Summary aggregates one sector's listings.
func (s *Store) Summary(sector string) (Summary, error) {
	rows, ok := s.bySector[sector]
	if !ok {
		return Summary{}, &models.LookupError{Kind: "sector", Key: sector}
	}

	var price, perSqft, area float64
	for _, row := range rows {
		price += row.price
		perSqft += row.pricePerSqft
		area += row.builtUpArea
	}
	n := float64(len(rows))
	return Summary{
		Sector:          sector,
		Listings:        len(rows),
		AvgPrice:        price / n,
		AvgPricePerSqft: perSqft / n,
		AvgBuiltUpArea:  area / n,
	}, nil
}
