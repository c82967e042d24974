package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aqipro/aqipro/internal/aqi"
	"github.com/aqipro/aqipro/internal/provider/resilience"
	"github.com/aqipro/aqipro/internal/provider/waqi"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the HTTP gateway.
type ClientConfig struct {
	// BaseURL is the proxy base URL, e.g. "https://aqipro.example.com".
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a resilient client
	// with defaults is created.
	HTTPClient HTTPDoer

	// Timeout for individual requests (default: 10s).
	Timeout time.Duration
}

// Client talks to the proxy over HTTP and implements Gateway.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

var _ Gateway = (*Client)(nil)

// NewClient creates a gateway client for the given proxy.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig("proxy")
		if cfg.Timeout != 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}
}

// LookupByName implements Gateway.
func (c *Client) LookupByName(ctx context.Context, name string) (FeedResult, error) {
	return c.feed(ctx, "lookup by name", "/api/feed/"+url.PathEscape(name))
}

// LookupByStation implements Gateway.
func (c *Client) LookupByStation(ctx context.Context, uid string) (FeedResult, error) {
	return c.feed(ctx, "lookup by station", "/api/feed/"+url.PathEscape("@"+uid))
}

// LookupByGeo implements Gateway.
func (c *Client) LookupByGeo(ctx context.Context, lat, lon float64) (FeedResult, error) {
	path := fmt.Sprintf("/api/feed/geo/%g/%g", lat, lon)
	return c.feed(ctx, "lookup by geo", path)
}

func (c *Client) feed(ctx context.Context, op, path string) (FeedResult, error) {
	body, err := c.get(ctx, op, path)
	if err != nil {
		return FeedResult{}, err
	}

	env, err := waqi.DecodeEnvelope(body)
	if err != nil {
		return FeedResult{}, &MalformedError{Op: op, Reason: err.Error()}
	}
	if !env.OK() {
		return FeedResult{Message: env.ErrMessage()}, nil
	}

	reading, err := waqi.ParseFeedData(env.Data)
	if err != nil {
		return FeedResult{}, &MalformedError{Op: op, Reason: err.Error()}
	}

	return FeedResult{OK: true, Reading: reading}, nil
}

// SearchStations implements Gateway.
func (c *Client) SearchStations(ctx context.Context, keyword string) ([]StationHit, error) {
	const op = "search stations"

	body, err := c.get(ctx, op, "/api/search?keyword="+url.QueryEscape(keyword))
	if err != nil {
		return nil, err
	}

	env, err := waqi.DecodeEnvelope(body)
	if err != nil {
		return nil, &MalformedError{Op: op, Reason: err.Error()}
	}
	if !env.OK() {
		// A refused search has nothing to suggest.
		return nil, nil
	}

	results, err := waqi.ParseSearchData(env.Data)
	if err != nil {
		return nil, &MalformedError{Op: op, Reason: err.Error()}
	}

	hits := make([]StationHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, StationHit{UID: r.UID, Name: r.Name, AQI: r.AQI})
	}
	return hits, nil
}

// Geocode implements Gateway.
func (c *Client) Geocode(ctx context.Context, query string) ([]Place, error) {
	const op = "geocode"

	body, err := c.get(ctx, op, "/api/geocode?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Lat         float64 `json:"lat"`
		Lon         float64 `json:"lon"`
		DisplayName string  `json:"displayName"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedError{Op: op, Reason: err.Error()}
	}

	places := make([]Place, 0, len(raw))
	for _, r := range raw {
		places = append(places, Place{Lat: r.Lat, Lon: r.Lon, DisplayName: r.DisplayName})
	}
	return places, nil
}

// StationsInBounds implements Gateway.
func (c *Client) StationsInBounds(ctx context.Context, latlng string) ([]aqi.MapStation, error) {
	const op = "stations in bounds"

	body, err := c.get(ctx, op, "/api/map/bounds?latlng="+url.QueryEscape(latlng))
	if err != nil {
		return nil, err
	}

	env, err := waqi.DecodeEnvelope(body)
	if err != nil {
		return nil, &MalformedError{Op: op, Reason: err.Error()}
	}
	if !env.OK() {
		return nil, nil
	}

	stations, err := waqi.ParseBoundsData(env.Data)
	if err != nil {
		return nil, &MalformedError{Op: op, Reason: err.Error()}
	}
	return stations, nil
}

// get issues the request. The proxy shapes transport failures as a 502
// with an error envelope, so non-200 statuses and network errors both
// become TransportErrors here.
func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("proxy returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return body, nil
}
