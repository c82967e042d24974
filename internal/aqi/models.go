// Package aqi holds the core air-quality domain types shared by the
// lookup pipeline, search controller, and presentation layer.
package aqi

import (
	"time"
)

// AQIUnavailable marks a reading whose station is not reporting an index.
const AQIUnavailable = -1

// Pollutant identifies a pollutant sub-index reported by a station.
type Pollutant string

// Supported pollutants, in display order.
const (
	PollutantPM25 Pollutant = "pm25"
	PollutantPM10 Pollutant = "pm10"
	PollutantNO2  Pollutant = "no2"
	PollutantSO2  Pollutant = "so2"
	PollutantO3   Pollutant = "o3"
	PollutantCO   Pollutant = "co"
)

// Pollutants lists all supported pollutants in display order.
func Pollutants() []Pollutant {
	return []Pollutant{
		PollutantPM25,
		PollutantPM10,
		PollutantNO2,
		PollutantSO2,
		PollutantO3,
		PollutantCO,
	}
}

// ForecastDay is one day of the PM2.5 forecast series.
type ForecastDay struct {
	Day string  `json:"day"` // YYYY-MM-DD
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// Reading is a resolved AQI snapshot for one station. A new successful
// lookup supersedes the previous Reading; readings are never mutated
// after creation.
type Reading struct {
	// AQI is the composite index, or AQIUnavailable when the station
	// is not reporting one.
	AQI int `json:"aqi"`

	// StationName is the full provider station name (may include a
	// comma-separated region/country suffix).
	StationName string `json:"stationName"`

	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// SubIndices maps pollutants to their individual sub-index values.
	SubIndices map[Pollutant]float64 `json:"subIndices,omitempty"`

	// Forecast is the optional multi-day PM2.5 forecast.
	Forecast []ForecastDay `json:"forecast,omitempty"`

	// ObservedAt is the provider's measurement timestamp.
	ObservedAt time.Time `json:"observedAt"`

	// IsNearest is set when the reading came from the geocoding
	// fallback and the station is merely the nearest one, not an
	// exact match for what the user typed.
	IsNearest bool `json:"isNearest,omitempty"`

	// SearchedName retains the originally searched name when
	// IsNearest is set, so the UI can show what the user asked for.
	SearchedName string `json:"searchedName,omitempty"`
}

// Unavailable reports whether the station is not publishing an AQI.
func (r *Reading) Unavailable() bool {
	return r.AQI == AQIUnavailable
}

// DisplayName returns the name the UI should headline: the searched
// name for nearest-station fallbacks, otherwise the city portion of
// the station name.
func (r *Reading) DisplayName() string {
	if r.IsNearest && r.SearchedName != "" {
		return r.SearchedName
	}
	return CityPart(r.StationName)
}

// Suggestion is one autocomplete candidate. It lives only for the
// duration of a single suggestion render cycle.
type Suggestion struct {
	// City is the primary label.
	City string

	// Country is the optional secondary label.
	Country string

	// Query resolves the suggestion, usually a station ref.
	Query Query

	// Rank is the position in the suggestion list (relevance order).
	Rank int
}

// MapStation is a nearby monitoring station for the map rendering.
type MapStation struct {
	Name string
	Lat  float64
	Lon  float64
	// AQI is AQIUnavailable when the station reports "-".
	AQI int
}
