package normalize

import (
	"encoding/json"

	"areadata.app/models"
	"areadata.app/pkg/errors"
)

// Climate records payload: dated observations for one datatype. Daily
// observations are averaged into months so the series has one point per
// period.
type climateResponse struct {
	Results []struct {
		Date     string   `json:"date"`
		Datatype string   `json:"datatype"`
		Value    *float64 `json:"value"`
	} `json:"results"`
}

func normalizeClimate(raw []byte) (*models.NormalizedSeries, error) {
	var resp climateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewNormalizationError("climate payload is not valid JSON", err)
	}
	if len(resp.Results) == 0 {
		return nil, errors.NewNormalizationError("climate payload has no results", nil)
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, obs := range resp.Results {
		if len(obs.Date) < 7 || obs.Value == nil {
			continue
		}
		month := obs.Date[:7] // "2024-03-01T00:00:00" -> "2024-03"
		sums[month] += *obs.Value
		counts[month]++
	}
	if len(counts) == 0 {
		return nil, errors.NewNormalizationError("climate payload has no dated values", nil)
	}

	byPeriod := make(map[string]*float64, len(counts))
	for month, count := range counts {
		mean := sums[month] / float64(count)
		byPeriod[month] = &mean
	}

	return seriesFromPeriodMap(resp.Results[0].Datatype, byPeriod), nil
}
