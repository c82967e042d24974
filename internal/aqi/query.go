package aqi

import (
	"fmt"
	"strconv"
	"strings"
)

// QueryKind discriminates the parsed query variants.
type QueryKind int

const (
	// QueryPlainName is free text resolved by the provider's own
	// index, with geocoding as a fallback.
	QueryPlainName QueryKind = iota

	// QueryStationRef refers to a specific station by provider uid
	// ("@12345"). Assumed precise; no fallback.
	QueryStationRef

	// QueryGeoCoord is an explicit coordinate pair ("geo:lat;lon").
	// Assumed precise; no fallback.
	QueryGeoCoord
)

// Query is a user-entered lookup target, parsed once at submission
// time and immutable thereafter.
type Query struct {
	Kind QueryKind

	// Name is set for QueryPlainName.
	Name string

	// StationID is set for QueryStationRef (without the "@" prefix).
	StationID string

	// Lat and Lon are set for QueryGeoCoord.
	Lat float64
	Lon float64

	raw string
}

// ParseQuery classifies a raw input string. "@uid" is a station ref,
// "geo:lat;lon" a coordinate pair, anything else a plain name.
// Surrounding whitespace is trimmed; the trimmed raw form is retained.
func ParseQuery(raw string) Query {
	raw = strings.TrimSpace(raw)

	if rest, ok := strings.CutPrefix(raw, "@"); ok && rest != "" {
		return Query{Kind: QueryStationRef, StationID: rest, raw: raw}
	}

	if rest, ok := strings.CutPrefix(raw, "geo:"); ok {
		if lat, lon, valid := parseLatLon(rest); valid {
			return Query{Kind: QueryGeoCoord, Lat: lat, Lon: lon, raw: raw}
		}
	}

	return Query{Kind: QueryPlainName, Name: raw, raw: raw}
}

// GeoQuery builds a coordinate query directly, e.g. from device
// geolocation.
func GeoQuery(lat, lon float64) Query {
	return Query{
		Kind: QueryGeoCoord,
		Lat:  lat,
		Lon:  lon,
		raw:  fmt.Sprintf("geo:%g;%g", lat, lon),
	}
}

// StationQuery builds a station-ref query from a provider uid.
func StationQuery(uid int) Query {
	id := strconv.Itoa(uid)
	return Query{Kind: QueryStationRef, StationID: id, raw: "@" + id}
}

// Raw returns the trimmed raw input the query was parsed from.
func (q Query) Raw() string {
	return q.raw
}

// CacheKey returns the normalized reading-cache key for this query.
func (q Query) CacheKey() string {
	return strings.ToLower(q.raw)
}

func parseLatLon(s string) (lat, lon float64, ok bool) {
	parts := strings.SplitN(s, ";", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// CityPart returns the city portion of a comma-separated station name
// ("Pune, Maharashtra, India" -> "Pune").
func CityPart(stationName string) string {
	name, _, _ := strings.Cut(stationName, ",")
	return strings.TrimSpace(name)
}

// CountryPart returns the trailing segment of a comma-separated
// station name, or "" when there is only one segment.
func CountryPart(stationName string) string {
	parts := strings.Split(stationName, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}
