package normalize

import (
	"math"
	"strconv"
	"strings"

	"areadata.app/models"
)

// computeDerived calculates the summary metrics for a sorted series.
// Points with nil values are skipped entirely, so a "(NA)" period never
// enters a change or CAGR window. With fewer than two usable points all
// metrics stay null.
func computeDerived(points []models.SeriesPoint) *models.DerivedMetrics {
	derived := &models.DerivedMetrics{}

	usable := make([]models.SeriesPoint, 0, len(points))
	for _, p := range points {
		if p.Value != nil {
			usable = append(usable, p)
		}
	}
	if len(usable) < 2 {
		return derived
	}

	latest := usable[len(usable)-1]
	prior := usable[len(usable)-2]
	derived.Latest = latest.Value

	change := *latest.Value - *prior.Value
	derived.ChangeAbsolute = &change

	if *prior.Value != 0 {
		pct := change / *prior.Value * 100
		derived.ChangePercent = &pct
	}

	first := usable[0]
	years := periodYears(latest.Period) - periodYears(first.Period)
	if years > 0 && *first.Value > 0 && *latest.Value > 0 {
		cagr := (math.Pow(*latest.Value / *first.Value, 1/years) - 1) * 100
		derived.CAGR = &cagr
	}

	return derived
}

// periodYears maps a period key to a fractional year so that spans can
// be measured across both annual ("2024") and monthly ("2024-03") keys.
func periodYears(period string) float64 {
	parts := strings.SplitN(period, "-", 2)

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}

	if len(parts) == 2 {
		if month, err := strconv.Atoi(parts[1]); err == nil && month >= 1 && month <= 12 {
			return float64(year) + float64(month-1)/12
		}
	}
	return float64(year)
}
