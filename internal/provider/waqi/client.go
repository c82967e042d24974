// Package waqi provides a client for the World Air Quality Index API
// (api.waqi.info), plus decoding of its response envelope into domain
// types.
package waqi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aqipro/aqipro/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the WAQI API.
	DefaultBaseURL = "https://api.waqi.info"

	// ProviderName identifies this provider.
	ProviderName = "waqi"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the WAQI client.
type ClientConfig struct {
	// Token is the WAQI API token, injected into every request.
	Token string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a resilient
	// client with defaults is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration

	// Registry tracks provider health (optional).
	Registry *resilience.Registry
}

// Client is a WAQI API client.
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new WAQI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout != 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		token:      cfg.Token,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Feed fetches the city feed. The city may be a name or an
// "@uid" station ref; both map to the same upstream endpoint.
func (c *Client) Feed(ctx context.Context, city string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/feed/%s/?token=%s",
		c.baseURL, url.PathEscape(city), url.QueryEscape(c.token)))
}

// FeedByStation fetches the feed for a specific station uid.
func (c *Client) FeedByStation(ctx context.Context, uid string) ([]byte, error) {
	return c.Feed(ctx, "@"+uid)
}

// FeedByGeo fetches the feed for the station nearest a coordinate.
func (c *Client) FeedByGeo(ctx context.Context, lat, lon float64) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/feed/geo:%g;%g/?token=%s",
		c.baseURL, lat, lon, url.QueryEscape(c.token)))
}

// Search performs a station keyword search.
func (c *Client) Search(ctx context.Context, keyword string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/search/?keyword=%s&token=%s",
		c.baseURL, url.QueryEscape(keyword), url.QueryEscape(c.token)))
}

// MapBounds fetches stations within a "lat1,lon1,lat2,lon2" bounding box.
func (c *Client) MapBounds(ctx context.Context, latlng string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/map/bounds/?latlng=%s&token=%s",
		c.baseURL, url.QueryEscape(latlng), url.QueryEscape(c.token)))
}

// get issues the request and returns the raw upstream body. The WAQI
// envelope carries its own ok/error status, so any 2xx body is
// returned verbatim for the caller to decode or forward.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("waqi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from waqi", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read waqi response: %w", err)
	}

	return body, nil
}
