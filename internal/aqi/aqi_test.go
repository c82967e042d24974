package aqi_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aqipro/aqipro/internal/aqi"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want aqi.Query
	}{
		{"plain name", "Pune", aqi.Query{Kind: aqi.QueryPlainName, Name: "Pune"}},
		{"trims whitespace", "  New Delhi  ", aqi.Query{Kind: aqi.QueryPlainName, Name: "New Delhi"}},
		{"station ref", "@1437", aqi.Query{Kind: aqi.QueryStationRef, StationID: "1437"}},
		{"bare at sign is a name", "@", aqi.Query{Kind: aqi.QueryPlainName, Name: "@"}},
		{"geo coord", "geo:18.52;73.85", aqi.Query{Kind: aqi.QueryGeoCoord, Lat: 18.52, Lon: 73.85}},
		{"geo with spaces", "geo: 18.52 ; 73.85", aqi.Query{Kind: aqi.QueryGeoCoord, Lat: 18.52, Lon: 73.85}},
		{"malformed geo is a name", "geo:18.52", aqi.Query{Kind: aqi.QueryPlainName, Name: "geo:18.52"}},
		{"non-numeric geo is a name", "geo:x;y", aqi.Query{Kind: aqi.QueryPlainName, Name: "geo:x;y"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := aqi.ParseQuery(tc.raw)
			assert.Equal(t, tc.want.Kind, got.Kind)
			assert.Equal(t, tc.want.Name, got.Name)
			assert.Equal(t, tc.want.StationID, got.StationID)
			assert.Equal(t, tc.want.Lat, got.Lat)
			assert.Equal(t, tc.want.Lon, got.Lon)
		})
	}
}

func TestQueryRawAndCacheKey(t *testing.T) {
	q := aqi.ParseQuery("  New Delhi ")
	assert.Equal(t, "New Delhi", q.Raw())
	assert.Equal(t, "new delhi", q.CacheKey())

	assert.Equal(t, "@1437", aqi.StationQuery(1437).Raw())
	assert.Equal(t, "geo:18.52;73.85", aqi.GeoQuery(18.52, 73.85).Raw())
}

func TestNameParts(t *testing.T) {
	assert.Equal(t, "Pune", aqi.CityPart("Pune, Maharashtra, India"))
	assert.Equal(t, "Pune", aqi.CityPart("Pune"))
	assert.Equal(t, "India", aqi.CountryPart("Pune, Maharashtra, India"))
	assert.Equal(t, "", aqi.CountryPart("Pune"))
}

func TestCategoryBands(t *testing.T) {
	tests := []struct {
		aqi   int
		id    string
		color string
	}{
		{0, "good", "#00e676"},
		{50, "good", "#00e676"},
		{51, "moderate", "#ffea00"},
		{100, "moderate", "#ffea00"},
		{101, "unhealthy-sens", "#ff9100"},
		{150, "unhealthy-sens", "#ff9100"},
		{151, "unhealthy", "#ff5252"},
		{200, "unhealthy", "#ff5252"},
		{201, "very-unhealthy", "#d500f9"},
		{300, "very-unhealthy", "#d500f9"},
		{301, "hazardous", "#b71c1c"},
		{999, "hazardous", "#b71c1c"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.id, aqi.CategoryFor(tc.aqi).ID, "aqi=%d", tc.aqi)
		assert.Equal(t, tc.color, aqi.ColorFor(tc.aqi), "aqi=%d", tc.aqi)
	}
}

func TestBuildViewModel(t *testing.T) {
	observed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	r := &aqi.Reading{
		AQI:         57,
		StationName: "Pune, Maharashtra, India",
		Lat:         18.52,
		Lon:         73.85,
		SubIndices: map[aqi.Pollutant]float64{
			aqi.PollutantPM25: 57,
			aqi.PollutantO3:   400,
		},
		Forecast:   []aqi.ForecastDay{{Day: "2026-08-31", Avg: 60, Max: 80, Min: 40}},
		ObservedAt: observed,
	}

	vm := aqi.BuildViewModel(r)

	assert.False(t, vm.Unavailable)
	assert.Equal(t, 57, vm.AQI)
	assert.Equal(t, "Pune", vm.CityName)
	assert.Equal(t, "Station", vm.StationLabel)
	assert.Equal(t, "moderate", vm.Category.ID)
	assert.Equal(t, "#ffea00", vm.Color)
	assert.Equal(t, observed, vm.UpdatedAt)
	assert.Len(t, vm.Trend, 1)

	// One row per supported pollutant, in display order.
	assert.Len(t, vm.Pollutants, len(aqi.Pollutants()))
	pm25 := vm.Pollutants[0]
	assert.Equal(t, aqi.PollutantPM25, pm25.Pollutant)
	assert.True(t, pm25.Present)
	assert.InDelta(t, 28.5, pm25.Progress, 0.01)

	// Missing pollutants render as absent rows.
	pm10 := vm.Pollutants[1]
	assert.False(t, pm10.Present)

	// The progress bar caps at 100 even for extreme sub-indices.
	o3 := vm.Pollutants[4]
	assert.Equal(t, aqi.PollutantO3, o3.Pollutant)
	assert.Equal(t, 100.0, o3.Progress)
}

func TestBuildViewModelNearestFallback(t *testing.T) {
	r := &aqi.Reading{
		AQI:          42,
		StationName:  "Shivajinagar, Pune, India",
		IsNearest:    true,
		SearchedName: "Koregaon Park",
	}

	vm := aqi.BuildViewModel(r)

	assert.Equal(t, "Koregaon Park", vm.CityName)
	assert.Equal(t, "Nearest Station", vm.StationLabel)
	assert.Equal(t, "Shivajinagar, Pune, India", vm.StationName)
}

func TestBuildViewModelUnavailable(t *testing.T) {
	r := &aqi.Reading{
		AQI:         aqi.AQIUnavailable,
		StationName: "Remote Station, Nowhere",
	}

	vm := aqi.BuildViewModel(r)

	assert.True(t, vm.Unavailable)
	assert.Equal(t, aqi.AQIUnavailable, vm.AQI)
	assert.Equal(t, "Remote Station", vm.CityName)
	assert.Empty(t, vm.Pollutants)
}
