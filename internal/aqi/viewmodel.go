package aqi

import (
	"math"
	"time"
)

// PollutantRow is one pollutant entry of the breakdown panel.
type PollutantRow struct {
	Pollutant Pollutant

	// Value is the sub-index value; ignore when Present is false.
	Value   float64
	Present bool

	// Progress is the 0-100 fill for the value bar, scaled so 200
	// fills the bar (the dashboard's fixed scale).
	Progress float64
}

// ViewModel is everything the presentation layer needs to render a
// reading, precomputed so renderers stay free of domain logic.
type ViewModel struct {
	// Unavailable is set when the station reports no AQI; only
	// CityName and StationLabel are meaningful then.
	Unavailable bool

	AQI      int
	CityName string
	Category Category
	Color    string

	// StationLabel is "Nearest Station" for geocoding fallbacks,
	// "Station" otherwise.
	StationLabel string
	StationName  string

	Pollutants []PollutantRow
	Trend      []ForecastDay

	// UpdatedAt is zero when the provider sent no timestamp.
	UpdatedAt time.Time

	Lat float64
	Lon float64
}

// BuildViewModel converts a Reading into its ViewModel. Pure function:
// no I/O, no mutation of the reading.
func BuildViewModel(r *Reading) ViewModel {
	vm := ViewModel{
		CityName:    r.DisplayName(),
		StationName: r.StationName,
		UpdatedAt:   r.ObservedAt,
		Lat:         r.Lat,
		Lon:         r.Lon,
	}

	if r.IsNearest {
		vm.StationLabel = "Nearest Station"
	} else {
		vm.StationLabel = "Station"
	}

	if r.Unavailable() {
		vm.Unavailable = true
		vm.AQI = AQIUnavailable
		return vm
	}

	vm.AQI = r.AQI
	vm.Category = CategoryFor(r.AQI)
	vm.Color = ColorFor(r.AQI)
	vm.Trend = r.Forecast

	for _, p := range Pollutants() {
		row := PollutantRow{Pollutant: p}
		if v, ok := r.SubIndices[p]; ok {
			row.Value = v
			row.Present = true
			row.Progress = math.Min(v/200*100, 100)
		}
		vm.Pollutants = append(vm.Pollutants, row)
	}

	return vm
}
