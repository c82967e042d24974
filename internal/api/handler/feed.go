// Package handler provides HTTP handlers for the proxy API.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aqipro/aqipro/internal/api/middleware"
	"github.com/aqipro/aqipro/internal/api/response"
	"github.com/aqipro/aqipro/internal/provider/waqi"
)

// AirClient is the subset of the WAQI client the feed handlers use.
type AirClient interface {
	Feed(ctx context.Context, city string) ([]byte, error)
	FeedByGeo(ctx context.Context, lat, lon float64) ([]byte, error)
	Search(ctx context.Context, keyword string) ([]byte, error)
	MapBounds(ctx context.Context, latlng string) ([]byte, error)
}

// FeedHandler proxies air quality requests to the upstream provider,
// injecting the API token server-side and forwarding the provider's
// envelope verbatim.
type FeedHandler struct {
	client  AirClient
	metrics *middleware.UpstreamMetrics
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(client AirClient, metrics *middleware.UpstreamMetrics) *FeedHandler {
	return &FeedHandler{client: client, metrics: metrics}
}

// GetByCity handles GET /api/feed/{city}. The city segment may also be
// an "@uid" station ref; the upstream treats both the same way.
func (h *FeedHandler) GetByCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	if city == "" {
		response.BadRequest(w, r, "city is required")
		return
	}

	start := time.Now()
	body, err := h.client.Feed(r.Context(), city)
	h.metrics.RecordRequest(waqi.ProviderName, "feed", time.Since(start), err)
	if err != nil {
		response.UpstreamError(w, r, "Failed to fetch air quality data")
		return
	}

	response.Raw(w, r, http.StatusOK, body)
}

// GetByGeo handles GET /api/feed/geo/{lat}/{lon}.
func (h *FeedHandler) GetByGeo(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(chi.URLParam(r, "lat"), 64)
	if err != nil {
		response.BadRequest(w, r, "lat must be a number")
		return
	}
	lon, err := strconv.ParseFloat(chi.URLParam(r, "lon"), 64)
	if err != nil {
		response.BadRequest(w, r, "lon must be a number")
		return
	}

	start := time.Now()
	body, err := h.client.FeedByGeo(r.Context(), lat, lon)
	h.metrics.RecordRequest(waqi.ProviderName, "feed_geo", time.Since(start), err)
	if err != nil {
		response.UpstreamError(w, r, "Failed to fetch air quality data")
		return
	}

	response.Raw(w, r, http.StatusOK, body)
}

// Search handles GET /api/search?keyword=.
func (h *FeedHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		response.BadRequest(w, r, `query parameter "keyword" is required`)
		return
	}

	start := time.Now()
	body, err := h.client.Search(r.Context(), keyword)
	h.metrics.RecordRequest(waqi.ProviderName, "search", time.Since(start), err)
	if err != nil {
		response.UpstreamError(w, r, "Failed to fetch search results")
		return
	}

	response.Raw(w, r, http.StatusOK, body)
}

// MapBounds handles GET /api/map/bounds?latlng=lat1,lon1,lat2,lon2.
func (h *FeedHandler) MapBounds(w http.ResponseWriter, r *http.Request) {
	latlng := r.URL.Query().Get("latlng")
	if latlng == "" {
		response.BadRequest(w, r, `query parameter "latlng" is required`)
		return
	}

	start := time.Now()
	body, err := h.client.MapBounds(r.Context(), latlng)
	h.metrics.RecordRequest(waqi.ProviderName, "map_bounds", time.Since(start), err)
	if err != nil {
		response.UpstreamError(w, r, "Failed to fetch map stations")
		return
	}

	response.Raw(w, r, http.StatusOK, body)
}
