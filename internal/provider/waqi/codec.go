package waqi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aqipro/aqipro/internal/aqi"
)

// Envelope is the outer WAQI response shape. On success Data holds the
// payload object; on error it holds a plain message string.
type Envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// OK reports whether the upstream accepted the request.
func (e *Envelope) OK() bool {
	return e.Status == "ok"
}

// ErrMessage extracts the error message from a non-ok envelope. Falls
// back to the raw data when it is not a JSON string.
func (e *Envelope) ErrMessage() string {
	var msg string
	if err := json.Unmarshal(e.Data, &msg); err == nil {
		return msg
	}
	return string(e.Data)
}

// DecodeEnvelope parses the outer response envelope.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode waqi envelope: %w", err)
	}
	return &env, nil
}

// flexIndex is an AQI value that arrives as either a number or the
// string "-" when the station is not reporting.
type flexIndex int

func (f *flexIndex) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexIndex(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("aqi value is neither number nor string: %s", data)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexIndex(n)
		return nil
	}

	*f = aqi.AQIUnavailable
	return nil
}

type feedPayload struct {
	AQI  flexIndex `json:"aqi"`
	City struct {
		Geo  []float64 `json:"geo"`
		Name string    `json:"name"`
	} `json:"city"`
	IAQI map[string]struct {
		V float64 `json:"v"`
	} `json:"iaqi"`
	Time struct {
		V int64 `json:"v"`
	} `json:"time"`
	Forecast struct {
		Daily struct {
			PM25 []aqi.ForecastDay `json:"pm25"`
		} `json:"daily"`
	} `json:"forecast"`
}

// ParseFeedData converts a successful feed payload into a Reading.
// Fails when the payload carries no station name, which indicates a
// malformed upstream response rather than an unavailable station.
func ParseFeedData(data json.RawMessage) (*aqi.Reading, error) {
	var p feedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode feed payload: %w", err)
	}
	if p.City.Name == "" {
		return nil, fmt.Errorf("feed payload has no station name")
	}

	r := &aqi.Reading{
		AQI:         int(p.AQI),
		StationName: p.City.Name,
		Forecast:    p.Forecast.Daily.PM25,
	}
	if len(p.City.Geo) >= 2 {
		r.Lat = p.City.Geo[0]
		r.Lon = p.City.Geo[1]
	}
	if p.Time.V > 0 {
		r.ObservedAt = time.Unix(p.Time.V, 0).UTC()
	}

	for _, pollutant := range aqi.Pollutants() {
		if v, ok := p.IAQI[string(pollutant)]; ok {
			if r.SubIndices == nil {
				r.SubIndices = make(map[aqi.Pollutant]float64)
			}
			r.SubIndices[pollutant] = v.V
		}
	}

	return r, nil
}

// SearchResult is one station from a keyword search.
type SearchResult struct {
	UID  int
	Name string
	AQI  int
}

type searchPayload []struct {
	UID     int `json:"uid"`
	Station struct {
		Name string `json:"name"`
	} `json:"station"`
	AQI flexIndex `json:"aqi"`
}

// ParseSearchData converts a successful search payload. Entries without
// a station name are skipped.
func ParseSearchData(data json.RawMessage) ([]SearchResult, error) {
	var p searchPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode search payload: %w", err)
	}

	results := make([]SearchResult, 0, len(p))
	for _, entry := range p {
		if entry.Station.Name == "" {
			continue
		}
		results = append(results, SearchResult{
			UID:  entry.UID,
			Name: entry.Station.Name,
			AQI:  int(entry.AQI),
		})
	}
	return results, nil
}

type boundsPayload []struct {
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
	AQI     flexIndex `json:"aqi"`
	Station struct {
		Name string `json:"name"`
	} `json:"station"`
}

// ParseBoundsData converts a successful map-bounds payload.
func ParseBoundsData(data json.RawMessage) ([]aqi.MapStation, error) {
	var p boundsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode bounds payload: %w", err)
	}

	stations := make([]aqi.MapStation, 0, len(p))
	for _, entry := range p {
		stations = append(stations, aqi.MapStation{
			Name: entry.Station.Name,
			Lat:  entry.Lat,
			Lon:  entry.Lon,
			AQI:  int(entry.AQI),
		})
	}
	return stations, nil
}
