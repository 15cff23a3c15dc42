package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"areadata.app/models"
)

func ptr(v float64) *float64 { return &v }

func TestComputeDerived(t *testing.T) {
	t.Run("change and CAGR", func(t *testing.T) {
		points := []models.SeriesPoint{
			{Period: "2022", Value: ptr(100)},
			{Period: "2023", Value: ptr(110)},
			{Period: "2024", Value: ptr(121)},
		}

		d := computeDerived(points)
		require.NotNil(t, d.Latest)
		assert.Equal(t, 121.0, *d.Latest)
		require.NotNil(t, d.ChangeAbsolute)
		assert.InDelta(t, 11.0, *d.ChangeAbsolute, 1e-9)
		require.NotNil(t, d.ChangePercent)
		assert.InDelta(t, 10.0, *d.ChangePercent, 1e-9)
		require.NotNil(t, d.CAGR)
		assert.InDelta(t, 10.0, *d.CAGR, 1e-9)
	})

	t.Run("fewer than two points leaves everything null", func(t *testing.T) {
		d := computeDerived([]models.SeriesPoint{{Period: "2024", Value: ptr(5)}})
		assert.Nil(t, d.Latest)
		assert.Nil(t, d.ChangeAbsolute)
		assert.Nil(t, d.ChangePercent)
		assert.Nil(t, d.CAGR)
	})

	t.Run("null points are excluded from windows", func(t *testing.T) {
		points := []models.SeriesPoint{
			{Period: "2022", Value: ptr(100)},
			{Period: "2023", Value: nil},
			{Period: "2024", Value: ptr(121)},
		}

		d := computeDerived(points)
		require.NotNil(t, d.ChangeAbsolute)
		// Change is measured against 2022, the prior usable point.
		assert.InDelta(t, 21.0, *d.ChangeAbsolute, 1e-9)
		require.NotNil(t, d.CAGR)
		assert.InDelta(t, 10.0, *d.CAGR, 1e-9)
	})

	t.Run("zero prior guards percent change", func(t *testing.T) {
		points := []models.SeriesPoint{
			{Period: "2023", Value: ptr(0)},
			{Period: "2024", Value: ptr(5)},
		}

		d := computeDerived(points)
		require.NotNil(t, d.ChangeAbsolute)
		assert.InDelta(t, 5.0, *d.ChangeAbsolute, 1e-9)
		assert.Nil(t, d.ChangePercent)
		assert.Nil(t, d.CAGR, "non-positive endpoint disables CAGR")
	})

	t.Run("zero is valid data", func(t *testing.T) {
		points := []models.SeriesPoint{
			{Period: "2023", Value: ptr(4)},
			{Period: "2024", Value: ptr(0)},
		}

		d := computeDerived(points)
		require.NotNil(t, d.Latest)
		assert.Equal(t, 0.0, *d.Latest)
		require.NotNil(t, d.ChangePercent)
		assert.InDelta(t, -100.0, *d.ChangePercent, 1e-9)
	})

	t.Run("monthly periods span fractional years", func(t *testing.T) {
		points := []models.SeriesPoint{
			{Period: "2023-01", Value: ptr(100)},
			{Period: "2024-01", Value: ptr(110)},
		}

		d := computeDerived(points)
		require.NotNil(t, d.CAGR)
		assert.InDelta(t, 10.0, *d.CAGR, 1e-9)
	})
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{"3.8", ptr(3.8)},
		{"1,234.5", ptr(1234.5)},
		{"0", ptr(0)},
		{"(NA)", nil},
		{"NA", nil},
		{"(S)", nil},
		{"", nil},
		{"-", nil},
		{"not a number", nil},
	}

	for _, tt := range tests {
		got := parseValue(tt.raw)
		if tt.want == nil {
			assert.Nil(t, got, "parseValue(%q)", tt.raw)
		} else {
			require.NotNil(t, got, "parseValue(%q)", tt.raw)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		}
	}
}
