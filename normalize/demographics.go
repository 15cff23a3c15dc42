package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"areadata.app/models"
	"areadata.app/pkg/errors"
)

// Demographic profiles arrive as arrays of rows: a header row of column
// names followed by one row per geography and year. The variable column
// is recognized by its code form (e.g. "B01003_001E").
func normalizeDemographics(raw []byte) (*models.NormalizedSeries, error) {
	var rows [][]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, errors.NewNormalizationError("demographics payload is not valid JSON", err)
	}
	if len(rows) < 2 {
		return nil, errors.NewNormalizationError("demographics payload has no data rows", nil)
	}

	header := make([]string, 0, len(rows[0]))
	for _, cell := range rows[0] {
		name, ok := cell.(string)
		if !ok {
			return nil, errors.NewNormalizationError("demographics header row is not strings", nil)
		}
		header = append(header, name)
	}

	yearCol, valueCol, nameCol := -1, -1, -1
	for i, name := range header {
		switch {
		case strings.EqualFold(name, "year"):
			yearCol = i
		case strings.EqualFold(name, "NAME"):
			nameCol = i
		case valueCol == -1 && strings.Contains(name, "_"):
			valueCol = i
		}
	}
	if yearCol == -1 || valueCol == -1 {
		return nil, errors.NewNormalizationError("demographics payload is missing year or variable column", nil)
	}

	byPeriod := make(map[string]*float64, len(rows)-1)
	label := header[valueCol]
	for _, row := range rows[1:] {
		if len(row) <= yearCol || len(row) <= valueCol {
			continue
		}
		year, ok := row[yearCol].(string)
		if !ok || year == "" {
			continue
		}
		byPeriod[year] = coerceValue(row[valueCol])

		if nameCol != -1 && nameCol < len(row) {
			if name, ok := row[nameCol].(string); ok && name != "" {
				label = fmt.Sprintf("%s: %s", name, header[valueCol])
			}
		}
	}
	if len(byPeriod) == 0 {
		return nil, errors.NewNormalizationError("demographics payload has no usable rows", nil)
	}

	return seriesFromPeriodMap(label, byPeriod), nil
}
