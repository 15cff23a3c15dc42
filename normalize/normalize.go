// Package normalize converts upstream-specific payloads into the
// canonical NormalizedSeries shape. Normalization is a pure function of
// the payload: the same bytes always produce the same series.
package normalize

import (
	"fmt"

	"areadata.app/models"
	"areadata.app/pkg/errors"
	"areadata.app/upstream"
)

// Normalize maps a raw 2xx payload from the given upstream family into
// a NormalizedSeries. A payload the adapter cannot make sense of yields
// a NormalizationError, never a panic.
func Normalize(family upstream.Family, raw []byte) (*models.NormalizedSeries, error) {
	switch family {
	case upstream.FamilyLabor:
		return normalizeLabor(raw)
	case upstream.FamilyEcon:
		return normalizeEcon(raw)
	case upstream.FamilyCrime:
		return normalizeCrime(raw)
	case upstream.FamilyClimate:
		return normalizeClimate(raw)
	case upstream.FamilyDemographics:
		return normalizeDemographics(raw)
	case upstream.FamilyPlaces:
		return normalizePlaces(raw)
	default:
		return nil, errors.NewNormalizationError(
			fmt.Sprintf("no adapter for upstream family %q", family), nil)
	}
}

// seriesFromPeriodMap builds the sorted point list from a period->value
// map and attaches freshly computed derived metrics.
func seriesFromPeriodMap(label string, byPeriod map[string]*float64) *models.NormalizedSeries {
	points := sortedPoints(byPeriod)
	return &models.NormalizedSeries{
		Label:   label,
		Points:  points,
		Derived: computeDerived(points),
	}
}
