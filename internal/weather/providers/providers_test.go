package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/observability"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const forecastBody = `{
  "latitude": 51.5,
  "longitude": -0.12,
  "current": {
    "time": "2026-10-18T12:00",
    "temperature_2m": 14.2,
    "apparent_temperature": 12.9,
    "relative_humidity_2m": 72,
    "wind_speed_10m": 11.5,
    "weather_code": 3
  },
  "daily": {
    "time": ["2026-10-18", "2026-10-19"],
    "weather_code": [3, 61],
    "temperature_2m_max": [15.1, 13.4],
    "temperature_2m_min": [8.2, 7.9],
    "uv_index_max": [2.1, 1.4],
    "precipitation_sum": [0, 3.2]
  }
}`

func serve(t *testing.T, status int, body string, seen func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			seen(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// --- geocoding ---

func TestGeocoding_Resolve(t *testing.T) {
	var got *http.Request
	srv := serve(t, http.StatusOK, `{"results":[{"name":"London","country":"United Kingdom","latitude":51.5,"longitude":-0.12,"timezone":"Europe/London"},{"name":"London","country":"Canada","latitude":42.98,"longitude":-81.23}]}`,
		func(r *http.Request) { got = r })

	p := NewGeocodingProvider(Options{BaseURL: srv.URL})
	place, err := p.Resolve(context.Background(), "London")
	require.NoError(t, err)

	assert.Equal(t, weather.Place{
		Name:      "London",
		Country:   "United Kingdom",
		Latitude:  51.5,
		Longitude: -0.12,
		Timezone:  "Europe/London",
	}, place)

	require.NotNil(t, got)
	assert.Equal(t, "/search", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "London", q.Get("name"))
	assert.Equal(t, "1", q.Get("count"))
	assert.Equal(t, "en", q.Get("language"))
	assert.Equal(t, "json", q.Get("format"))
}

func TestGeocoding_QueryIsPercentEncoded(t *testing.T) {
	var raw, name string
	srv := serve(t, http.StatusOK, `{"results":[{"name":"São Paulo","country":"Brazil","latitude":-23.5,"longitude":-46.6}]}`,
		func(r *http.Request) {
			raw = r.URL.RawQuery
			name = r.URL.Query().Get("name")
		})

	p := NewGeocodingProvider(Options{BaseURL: srv.URL})
	_, err := p.Resolve(context.Background(), "São Paulo & Co+1")
	require.NoError(t, err)

	assert.Equal(t, "São Paulo & Co+1", name)
	assert.Equal(t, "count=1&format=json&language=en&name=S%C3%A3o%20Paulo%20%26%20Co%2B1", raw)
}

func TestEncodeQuery(t *testing.T) {
	assert.Equal(t, "a=x%20y&b=1%2B2", encodeQuery(url.Values{"a": {"x y"}, "b": {"1+2"}}))
	assert.Empty(t, encodeQuery(nil))
}

func TestGeocoding_NoResults(t *testing.T) {
	for name, body := range map[string]string{
		"missing": `{"generationtime_ms":0.5}`,
		"empty":   `{"results":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, body, nil)
			p := NewGeocodingProvider(Options{BaseURL: srv.URL})

			_, err := p.Resolve(context.Background(), "Atlantis")
			var notFound *weather.NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, "Location not found", err.Error())
		})
	}
}

func TestGeocoding_ServerError(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, `{"error":true}`, nil)
	p := NewGeocodingProvider(Options{BaseURL: srv.URL})

	_, err := p.Resolve(context.Background(), "London")
	var netErr *weather.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "Geocoding failed", netErr.Error())
	assert.ErrorIs(t, err, errUnexpected)
}

func TestGeocoding_MalformedBody(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html>`, nil)
	p := NewGeocodingProvider(Options{BaseURL: srv.URL})

	_, err := p.Resolve(context.Background(), "London")
	var netErr *weather.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "Geocoding failed", netErr.Error())
}

// --- forecast ---

func TestOpenMeteo_Fetch(t *testing.T) {
	var got *http.Request
	srv := serve(t, http.StatusOK, forecastBody, func(r *http.Request) { got = r })

	p := NewOpenMeteoProvider(Options{BaseURL: srv.URL})
	f, err := p.Fetch(context.Background(), 51.5, -0.12)
	require.NoError(t, err)

	assert.Equal(t, weather.CurrentConditions{
		Temperature2m:       14.2,
		ApparentTemperature: 12.9,
		RelativeHumidity2m:  72,
		WindSpeed10m:        11.5,
		WeatherCode:         3,
	}, f.Current)
	assert.Equal(t, []string{"2026-10-18", "2026-10-19"}, f.Daily.Time)
	assert.Equal(t, []int{3, 61}, f.Daily.WeatherCode)
	assert.Equal(t, []float64{0, 3.2}, f.Daily.PrecipitationSum)

	require.NotNil(t, got)
	assert.Equal(t, "/forecast", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "51.5", q.Get("latitude"))
	assert.Equal(t, "-0.12", q.Get("longitude"))
	assert.Equal(t, "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,weather_code", q.Get("current"))
	assert.Equal(t, "weather_code,temperature_2m_max,temperature_2m_min,uv_index_max,precipitation_sum", q.Get("daily"))
	assert.Equal(t, "auto", q.Get("timezone"))
	assert.Len(t, q, 5)
}

func TestOpenMeteo_ZeroReadingsAreValid(t *testing.T) {
	body := `{"current":{"temperature_2m":0,"apparent_temperature":-2.5,"relative_humidity_2m":0,"wind_speed_10m":0,"weather_code":0},"daily":{"time":[],"weather_code":[],"temperature_2m_max":[],"temperature_2m_min":[],"uv_index_max":[],"precipitation_sum":[]}}`
	srv := serve(t, http.StatusOK, body, nil)

	p := NewOpenMeteoProvider(Options{BaseURL: srv.URL})
	f, err := p.Fetch(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Current.WeatherCode)
	assert.Equal(t, -2.5, f.Current.ApparentTemperature)
}

func TestOpenMeteo_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusServiceUnavailable, `{}`},
		{"bad request", http.StatusBadRequest, `{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`},
		{"malformed", http.StatusOK, `not json`},
		{"missing current", http.StatusOK, `{"daily":{"time":[]}}`},
		{"missing current field", http.StatusOK, strings.Replace(forecastBody, `"wind_speed_10m": 11.5,`, ``, 1)},
		{"mismatched daily", http.StatusOK, strings.Replace(forecastBody, `"uv_index_max": [2.1, 1.4]`, `"uv_index_max": [2.1]`, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := serve(t, tc.status, tc.body, nil)
			p := NewOpenMeteoProvider(Options{BaseURL: srv.URL})

			_, err := p.Fetch(context.Background(), 51.5, -0.12)
			var netErr *weather.NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Equal(t, "Weather fetch failed", weather.UserMessage(err))
		})
	}
}

func TestOpenMeteo_NoRetry(t *testing.T) {
	var hits atomic.Int32
	srv := serve(t, http.StatusBadGateway, `{}`, func(*http.Request) { hits.Add(1) })

	p := NewOpenMeteoProvider(Options{BaseURL: srv.URL})
	_, err := p.Fetch(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestOpenMeteo_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	p := NewOpenMeteoProvider(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := p.Fetch(context.Background(), 1, 2)
	var netErr *weather.NetworkError
	require.ErrorAs(t, err, &netErr)
}

// --- breaker and metrics ---

func TestUpstream_BreakerDisabledByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := serve(t, http.StatusInternalServerError, `{}`, func(*http.Request) { hits.Add(1) })

	p := NewGeocodingProvider(Options{BaseURL: srv.URL})
	for i := 0; i < 5; i++ {
		_, _ = p.Resolve(context.Background(), "London")
	}
	assert.Equal(t, int32(5), hits.Load())
}

func TestUpstream_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := serve(t, http.StatusInternalServerError, `{}`, func(*http.Request) { hits.Add(1) })

	p := NewGeocodingProvider(Options{BaseURL: srv.URL, BreakerFailures: 2})
	for i := 0; i < 2; i++ {
		_, err := p.Resolve(context.Background(), "London")
		require.ErrorIs(t, err, errUnexpected)
	}

	_, err := p.Resolve(context.Background(), "London")
	require.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, "Geocoding failed", weather.UserMessage(err))
	assert.Equal(t, int32(2), hits.Load())
}

func TestUpstream_RecordsMetrics(t *testing.T) {
	m := observability.NewMetricsForTesting()
	ok := serve(t, http.StatusOK, forecastBody, nil)
	bad := serve(t, http.StatusInternalServerError, `{}`, nil)

	_, err := NewOpenMeteoProvider(Options{BaseURL: ok.URL, Metrics: m}).Fetch(context.Background(), 1, 2)
	require.NoError(t, err)
	_, err = NewOpenMeteoProvider(Options{BaseURL: bad.URL, Metrics: m}).Fetch(context.Background(), 1, 2)
	require.Error(t, err)

	assert.Equal(t, 1.0, counterValue(t, m.UpstreamRequests.WithLabelValues("forecast", "success")))
	assert.Equal(t, 1.0, counterValue(t, m.UpstreamRequests.WithLabelValues("forecast", "error")))
	assert.Equal(t, 0.0, counterValue(t, m.UpstreamRequests.WithLabelValues("geocode", "success")))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
