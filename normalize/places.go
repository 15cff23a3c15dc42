package normalize

import (
	"encoding/json"

	"areadata.app/models"
	"areadata.app/pkg/errors"
)

// categoryWeights scores how much each amenity category contributes to
// an area's livability. Categories not listed fall back to a small
// default so unknown amenities still count for something.
var categoryWeights = map[string]float64{
	"Grocery Store":      1.5,
	"Supermarket":        1.5,
	"School":             1.4,
	"Hospital":           1.3,
	"Pharmacy":           1.2,
	"Park":               1.2,
	"Transit Station":    1.6,
	"Bus Stop":           1.0,
	"Restaurant":         1.0,
	"Gym":                0.9,
	"Coffee Shop":        0.8,
	"Bar":                0.6,
	"Convenience Store":  0.7,
	"Library":            1.1,
	"Playground":         1.0,
	"Shopping Mall":      0.9,
	"Bank":               0.8,
	"Gas Station":        0.5,
}

const defaultCategoryWeight = 0.5

// Places search payload: one entry per place, each tagged with
// categories. The first category is treated as the primary one.
type placesResponse struct {
	Results []struct {
		Name       string `json:"name"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	} `json:"results"`
}

// normalizePlaces differs from the time-series adapters: it produces
// category counts and a single weighted amenity score instead of points.
func normalizePlaces(raw []byte) (*models.NormalizedSeries, error) {
	var resp placesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewNormalizationError("places payload is not valid JSON", err)
	}
	if resp.Results == nil {
		return nil, errors.NewNormalizationError("places payload has no results field", nil)
	}

	counts := make(map[string]int)
	for _, place := range resp.Results {
		category := "Uncategorized"
		if len(place.Categories) > 0 && place.Categories[0].Name != "" {
			category = place.Categories[0].Name
		}
		counts[category]++
	}

	score := 0.0
	for category, count := range counts {
		weight, ok := categoryWeights[category]
		if !ok {
			weight = defaultCategoryWeight
		}
		score += float64(count) * weight
	}

	return &models.NormalizedSeries{
		Label: "amenities",
		Places: &models.PlacesSummary{
			Categories:   counts,
			AmenityScore: score,
		},
	}, nil
}
