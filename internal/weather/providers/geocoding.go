package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultGeocodeBaseURL is the public Open-Meteo geocoding API.
const DefaultGeocodeBaseURL = "https://geocoding-api.open-meteo.com/v1"

const geocodeFailed = "Geocoding failed"

// GeocodingProvider implements weather.Resolver with the Open-Meteo search endpoint.
type GeocodingProvider struct {
	http *upstream
}

var _ weather.Resolver = (*GeocodingProvider)(nil)

func NewGeocodingProvider(opts Options) *GeocodingProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGeocodeBaseURL
	}
	return &GeocodingProvider{http: newUpstream("geocode", opts)}
}

type geocodePayload struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

// Resolve asks for a single match and returns it as-is. The upstream's
// ranking is trusted; there is no local disambiguation.
func (p *GeocodingProvider) Resolve(ctx context.Context, query string) (weather.Place, error) {
	values := url.Values{}
	values.Set("name", query)
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")

	body, err := p.http.get(ctx, "/search", values)
	if err != nil {
		return weather.Place{}, &weather.NetworkError{Message: geocodeFailed, Err: err}
	}

	var payload geocodePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Place{}, &weather.NetworkError{Message: geocodeFailed, Err: fmt.Errorf("decode geocode: %w", err)}
	}

	if len(payload.Results) == 0 {
		return weather.Place{}, &weather.NotFoundError{Query: query}
	}

	first := payload.Results[0]
	return weather.Place{
		Name:      first.Name,
		Country:   first.Country,
		Latitude:  first.Latitude,
		Longitude: first.Longitude,
		Timezone:  first.Timezone,
	}, nil
}
