package normalize

import (
	"encoding/json"
	"sort"

	"areadata.app/models"
	"areadata.app/pkg/errors"
)

// Crime statistics payload: actual offense counts keyed by series label
// and then by period. Values arrive as numbers or numeric strings
// depending on the endpoint.
type crimeResponse struct {
	Offenses struct {
		Actuals map[string]map[string]interface{} `json:"actuals"`
	} `json:"offenses"`
}

func normalizeCrime(raw []byte) (*models.NormalizedSeries, error) {
	var resp crimeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewNormalizationError("crime payload is not valid JSON", err)
	}
	if len(resp.Offenses.Actuals) == 0 {
		return nil, errors.NewNormalizationError("crime payload has no actuals", nil)
	}

	// The payload may carry several series (agency plus state or
	// national baselines); take the first by name for determinism.
	labels := make([]string, 0, len(resp.Offenses.Actuals))
	for label := range resp.Offenses.Actuals {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	label := labels[0]
	rows := resp.Offenses.Actuals[label]
	if len(rows) == 0 {
		return nil, errors.NewNormalizationError("crime series has no periods", nil)
	}

	byPeriod := make(map[string]*float64, len(rows))
	for period, value := range rows {
		byPeriod[period] = coerceValue(value)
	}

	return seriesFromPeriodMap(label, byPeriod), nil
}
