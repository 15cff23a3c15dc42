package normalize

import (
	"encoding/json"
	"fmt"

	"areadata.app/models"
	"areadata.app/pkg/errors"
)

// Labor statistics payload: series with string year/period/value rows,
// newest first. Period "M01".."M12" is a month; "M13" is the annual
// average and maps onto the plain year key.
type laborResponse struct {
	Status  string `json:"status"`
	Results struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year   string `json:"year"`
				Period string `json:"period"`
				Value  string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

func normalizeLabor(raw []byte) (*models.NormalizedSeries, error) {
	var resp laborResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewNormalizationError("labor payload is not valid JSON", err)
	}
	if len(resp.Results.Series) == 0 {
		return nil, errors.NewNormalizationError("labor payload has no series", nil)
	}

	series := resp.Results.Series[0]
	byPeriod := make(map[string]*float64, len(series.Data))
	for _, row := range series.Data {
		period, ok := laborPeriodKey(row.Year, row.Period)
		if !ok {
			continue
		}
		byPeriod[period] = parseValue(row.Value)
	}
	if len(byPeriod) == 0 {
		return nil, errors.NewNormalizationError("labor series has no data rows", nil)
	}

	return seriesFromPeriodMap(series.SeriesID, byPeriod), nil
}

func laborPeriodKey(year, period string) (string, bool) {
	if year == "" {
		return "", false
	}

	switch {
	case period == "M13" || period == "A01" || period == "":
		return year, true
	case len(period) == 3 && period[0] == 'M':
		return fmt.Sprintf("%s-%s", year, period[1:]), true
	case len(period) == 3 && period[0] == 'Q':
		return fmt.Sprintf("%s-Q%s", year, period[2:]), true
	default:
		return "", false
	}
}
