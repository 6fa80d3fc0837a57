package valuation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"estate-insights/internal/config"
)

// Record is the fixed input shape of the pretrained valuation pipeline. The
// pipeline expects its categorical columns as text even when the value looks
// numeric, so every categorical field here is a string; only the genuinely
// numeric columns are floats.
type Record struct {
	PropertyType   string  `json:"property_type" validate:"required"`
	Sector         string  `json:"sector" validate:"required"`
	Bedrooms       float64 `json:"bedRoom" validate:"gt=0"`
	Bathrooms      float64 `json:"bathroom" validate:"gt=0"`
	Balcony        string  `json:"balcony" validate:"required"`
	AgePossession  string  `json:"agePossession" validate:"required"`
	BuiltUpArea    float64 `json:"built_up_area" validate:"gte=100,lte=20000"`
	ServantRoom    float64 `json:"servant room" validate:"oneof=0 1"`
	StoreRoom      float64 `json:"store room" validate:"oneof=0 1"`
	FurnishingType string  `json:"furnishing_type" validate:"required"`
	LuxuryCategory string  `json:"luxury_category" validate:"required"`
	FloorCategory  string  `json:"floor_category" validate:"required"`
}

// Predictor is the opaque valuation capability: one structured record in,
// one point estimate out (crores).
type Predictor interface {
	Predict(ctx context.Context, record Record) (float64, error)
}

// Client calls an external model server hosting the serialized pipeline.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg *config.ValuationConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Predict(ctx context.Context, record Record) (float64, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("valuation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("valuation request failed: %d, %s", resp.StatusCode, string(body))
	}

	var out struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding valuation response: %w", err)
	}
	return out.Price, nil
}
