package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"areadata.app/pkg/errors"
	"areadata.app/upstream"
)

const laborPayload = `{
	"status": "REQUEST_SUCCEEDED",
	"Results": {
		"series": [{
			"seriesID": "LAUCN040010000000005",
			"data": [
				{"year": "2024", "period": "M03", "value": "4.1"},
				{"year": "2024", "period": "M02", "value": "4.3"},
				{"year": "2024", "period": "M01", "value": "(NA)"},
				{"year": "2023", "period": "M12", "value": "4.6"}
			]
		}]
	}
}`

func TestNormalizeLabor(t *testing.T) {
	series, err := Normalize(upstream.FamilyLabor, []byte(laborPayload))
	require.NoError(t, err)

	assert.Equal(t, "LAUCN040010000000005", series.Label)
	require.Len(t, series.Points, 4)

	// Points come back sorted ascending even though the payload is
	// newest first.
	assert.Equal(t, "2023-12", series.Points[0].Period)
	assert.Equal(t, "2024-01", series.Points[1].Period)
	assert.Equal(t, "2024-03", series.Points[3].Period)

	assert.Nil(t, series.Points[1].Value, `"(NA)" becomes null`)
	require.NotNil(t, series.Points[3].Value)
	assert.InDelta(t, 4.1, *series.Points[3].Value, 1e-9)

	// Derived change uses 2024-02, skipping the null 2024-01.
	require.NotNil(t, series.Derived.ChangeAbsolute)
	assert.InDelta(t, -0.2, *series.Derived.ChangeAbsolute, 1e-9)

	t.Run("annual average period maps to the year", func(t *testing.T) {
		period, ok := laborPeriodKey("2023", "M13")
		require.True(t, ok)
		assert.Equal(t, "2023", period)
	})

	t.Run("idempotent", func(t *testing.T) {
		again, err := Normalize(upstream.FamilyLabor, []byte(laborPayload))
		require.NoError(t, err)
		assert.Equal(t, series, again)
	})
}

func TestNormalizeEcon(t *testing.T) {
	payload := `{
		"BEAAPI": {
			"Results": {
				"Data": [
					{"TimePeriod": "2022", "DataValue": "1,234.5", "GeoName": "Travis County", "LineDescription": "Real GDP"},
					{"TimePeriod": "2023", "DataValue": "1,300.0", "GeoName": "Travis County", "LineDescription": "Real GDP"},
					{"TimePeriod": "2024", "DataValue": "(NA)", "GeoName": "Travis County", "LineDescription": "Real GDP"}
				]
			}
		}
	}`

	series, err := Normalize(upstream.FamilyEcon, []byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "Real GDP", series.Label)
	require.Len(t, series.Points, 3)
	require.NotNil(t, series.Points[0].Value)
	assert.InDelta(t, 1234.5, *series.Points[0].Value, 1e-9)
	assert.Nil(t, series.Points[2].Value)

	// The null 2024 is excluded, so latest is 2023.
	require.NotNil(t, series.Derived.Latest)
	assert.InDelta(t, 1300.0, *series.Derived.Latest, 1e-9)
}

func TestNormalizeCrime(t *testing.T) {
	payload := `{
		"offenses": {
			"actuals": {
				"Austin PD Burglary": {
					"2021": 4100,
					"2022": "3,950",
					"2023": 3800
				}
			}
		}
	}`

	series, err := Normalize(upstream.FamilyCrime, []byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "Austin PD Burglary", series.Label)
	require.Len(t, series.Points, 3)
	require.NotNil(t, series.Points[1].Value)
	assert.InDelta(t, 3950.0, *series.Points[1].Value, 1e-9)
}

func TestNormalizeClimate(t *testing.T) {
	payload := `{
		"results": [
			{"date": "2024-03-01T00:00:00", "datatype": "TAVG", "value": 60.0},
			{"date": "2024-03-15T00:00:00", "datatype": "TAVG", "value": 70.0},
			{"date": "2024-04-01T00:00:00", "datatype": "TAVG", "value": 72.5}
		]
	}`

	series, err := Normalize(upstream.FamilyClimate, []byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "TAVG", series.Label)
	require.Len(t, series.Points, 2)

	// Daily observations are averaged into their month.
	assert.Equal(t, "2024-03", series.Points[0].Period)
	require.NotNil(t, series.Points[0].Value)
	assert.InDelta(t, 65.0, *series.Points[0].Value, 1e-9)
}

func TestNormalizeDemographics(t *testing.T) {
	payload := `[
		["NAME", "B01003_001E", "year"],
		["Travis County, Texas", "1290188", "2022"],
		["Travis County, Texas", "1305154", "2023"]
	]`

	series, err := Normalize(upstream.FamilyDemographics, []byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "Travis County, Texas: B01003_001E", series.Label)
	require.Len(t, series.Points, 2)
	assert.Equal(t, "2022", series.Points[0].Period)
	require.NotNil(t, series.Points[1].Value)
	assert.InDelta(t, 1305154.0, *series.Points[1].Value, 1e-9)
}

func TestNormalizePlaces(t *testing.T) {
	payload := `{
		"results": [
			{"name": "Central Market", "categories": [{"name": "Grocery Store"}]},
			{"name": "Houndstooth", "categories": [{"name": "Coffee Shop"}]},
			{"name": "Flitch", "categories": [{"name": "Coffee Shop"}]},
			{"name": "Mystery Spot", "categories": []}
		]
	}`

	series, err := Normalize(upstream.FamilyPlaces, []byte(payload))
	require.NoError(t, err)

	require.NotNil(t, series.Places)
	assert.Nil(t, series.Points)
	assert.Equal(t, 1, series.Places.Categories["Grocery Store"])
	assert.Equal(t, 2, series.Places.Categories["Coffee Shop"])
	assert.Equal(t, 1, series.Places.Categories["Uncategorized"])

	// 1*1.5 + 2*0.8 + 1*0.5 (default weight)
	assert.InDelta(t, 3.6, series.Places.AmenityScore, 1e-9)
}

func TestNormalizeRejectsUnexpectedShapes(t *testing.T) {
	tests := []struct {
		name    string
		family  upstream.Family
		payload string
	}{
		{"labor without series", upstream.FamilyLabor, `{"status":"REQUEST_SUCCEEDED","Results":{"series":[]}}`},
		{"econ without rows", upstream.FamilyEcon, `{"BEAAPI":{"Results":{"Data":[]}}}`},
		{"crime without actuals", upstream.FamilyCrime, `{"offenses":{}}`},
		{"climate without results", upstream.FamilyClimate, `{"results":[]}`},
		{"demographics without year column", upstream.FamilyDemographics, `[["NAME","B01003_001E"],["X","1"]]`},
		{"not JSON at all", upstream.FamilyLabor, `<html>rate limited</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.family, []byte(tt.payload))
			require.Error(t, err)
			assert.True(t, errors.IsNormalizationError(err))
		})
	}
}
