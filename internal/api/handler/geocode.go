package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/aqipro/aqipro/internal/api/middleware"
	"github.com/aqipro/aqipro/internal/api/response"
	"github.com/aqipro/aqipro/internal/provider/nominatim"
)

// Geocoder is the subset of the geocoding client the handler uses.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]nominatim.Place, error)
}

// GeocodeHandler proxies geocoding lookups.
type GeocodeHandler struct {
	geocoder Geocoder
	metrics  *middleware.UpstreamMetrics
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocoder Geocoder, metrics *middleware.UpstreamMetrics) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder, metrics: metrics}
}

// place is the wire shape for one geocoding candidate.
type place struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName"`
}

// Search handles GET /api/geocode?q=. An empty array means the place is
// unknown; that is a valid response, not an error.
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, r, `query parameter "q" is required`)
		return
	}

	start := time.Now()
	places, err := h.geocoder.Search(r.Context(), query)
	h.metrics.RecordRequest(nominatim.ProviderName, "search", time.Since(start), err)
	if err != nil {
		response.UpstreamError(w, r, "Geocoding failed")
		return
	}

	out := make([]place, 0, len(places))
	for _, p := range places {
		out = append(out, place{Lat: p.Lat, Lon: p.Lon, DisplayName: p.DisplayName})
	}

	response.JSON(w, r, http.StatusOK, out)
}
