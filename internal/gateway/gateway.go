// Package gateway defines the client-side access to the AQI proxy. The
// proxy forwards the provider envelope verbatim, so this package owns
// the split between provider-level refusals (carried in FeedResult)
// and transport failures (returned as errors).
package gateway

import (
	"context"
	"fmt"

	"github.com/aqipro/aqipro/internal/aqi"
)

// FeedResult is the outcome of a feed lookup. OK=false means the
// provider answered but refused the query ("Unknown station", invalid
// key); that is a displayable outcome, not a Go error.
type FeedResult struct {
	OK      bool
	Message string
	Reading *aqi.Reading
}

// StationHit is one station from a keyword search.
type StationHit struct {
	UID  int
	Name string
	AQI  int
}

// Place is one geocoding candidate.
type Place struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Gateway is the client-side view of the proxy API.
type Gateway interface {
	// LookupByName resolves a plain city name.
	LookupByName(ctx context.Context, name string) (FeedResult, error)

	// LookupByStation resolves an "@uid" station ref (uid without "@").
	LookupByStation(ctx context.Context, uid string) (FeedResult, error)

	// LookupByGeo resolves the station nearest a coordinate.
	LookupByGeo(ctx context.Context, lat, lon float64) (FeedResult, error)

	// SearchStations performs a keyword search for autocomplete.
	SearchStations(ctx context.Context, keyword string) ([]StationHit, error)

	// Geocode resolves a free-form place name to coordinates. An empty
	// result means the place is unknown.
	Geocode(ctx context.Context, query string) ([]Place, error)

	// StationsInBounds lists stations in a "lat1,lon1,lat2,lon2" box.
	StationsInBounds(ctx context.Context, latlng string) ([]aqi.MapStation, error)
}

// TransportError wraps a network or proxy-level failure. The lookup
// pipeline treats these as retryable and distinct from provider
// refusals.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedError indicates the provider sent a payload this client
// cannot interpret, such as a feed with no station name.
type MalformedError struct {
	Op     string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Reason)
}
