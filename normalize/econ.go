package normalize

import (
	"encoding/json"

	"areadata.app/models"
	"areadata.app/pkg/errors"
)

// Economic statistics payload: rows with a time period and a value that
// arrives as a string with thousands separators, or "(NA)" for
// suppressed periods.
type econResponse struct {
	BEAAPI struct {
		Results struct {
			Data []struct {
				TimePeriod  string `json:"TimePeriod"`
				DataValue   string `json:"DataValue"`
				GeoName     string `json:"GeoName"`
				Description string `json:"LineDescription"`
			} `json:"Data"`
		} `json:"Results"`
	} `json:"BEAAPI"`
}

func normalizeEcon(raw []byte) (*models.NormalizedSeries, error) {
	var resp econResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewNormalizationError("econ payload is not valid JSON", err)
	}

	rows := resp.BEAAPI.Results.Data
	if len(rows) == 0 {
		return nil, errors.NewNormalizationError("econ payload has no data rows", nil)
	}

	byPeriod := make(map[string]*float64, len(rows))
	for _, row := range rows {
		if row.TimePeriod == "" {
			continue
		}
		byPeriod[row.TimePeriod] = parseValue(row.DataValue)
	}
	if len(byPeriod) == 0 {
		return nil, errors.NewNormalizationError("econ payload has no usable periods", nil)
	}

	label := rows[0].Description
	if label == "" {
		label = rows[0].GeoName
	}
	return seriesFromPeriodMap(label, byPeriod), nil
}
