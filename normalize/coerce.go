package normalize

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"areadata.app/models"
)

// parseValue coerces an upstream value string to a float. Suppression
// markers and empty strings become nil; thousands separators are
// stripped. Zero parses to a real zero, it is valid data.
func parseValue(raw string) *float64 {
	s := strings.TrimSpace(raw)
	switch s {
	case "", "-", "(NA)", "NA", "N/A", "(S)", "(D)", "(X)", "null":
		return nil
	}

	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// coerceValue handles the mixed types upstream JSON carries: numbers,
// numeric strings, or explicit nulls.
func coerceValue(v interface{}) *float64 {
	switch value := v.(type) {
	case nil:
		return nil
	case float64:
		return &value
	case json.Number:
		return parseValue(value.String())
	case string:
		return parseValue(value)
	default:
		return nil
	}
}

// sortedPoints flattens a period->value map into points sorted
// ascending by period key. Period keys are zero-padded, so the
// lexicographic order is the chronological one.
func sortedPoints(byPeriod map[string]*float64) []models.SeriesPoint {
	periods := make([]string, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Strings(periods)

	points := make([]models.SeriesPoint, 0, len(periods))
	for _, period := range periods {
		points = append(points, models.SeriesPoint{Period: period, Value: byPeriod[period]})
	}
	return points
}
