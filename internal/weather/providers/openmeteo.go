package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultForecastBaseURL is the public Open-Meteo forecast API.
const DefaultForecastBaseURL = "https://api.open-meteo.com/v1"

const forecastFailed = "Weather fetch failed"

// Variables requested from the forecast endpoint. The set is fixed.
var (
	currentVariables = []string{
		"temperature_2m",
		"apparent_temperature",
		"relative_humidity_2m",
		"wind_speed_10m",
		"weather_code",
	}
	dailyVariables = []string{
		"weather_code",
		"temperature_2m_max",
		"temperature_2m_min",
		"uv_index_max",
		"precipitation_sum",
	}
)

var validate = validator.New()

// OpenMeteoProvider implements weather.ForecastFetcher against Open-Meteo.
type OpenMeteoProvider struct {
	http *upstream
}

var _ weather.ForecastFetcher = (*OpenMeteoProvider)(nil)

func NewOpenMeteoProvider(opts Options) *OpenMeteoProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultForecastBaseURL
	}
	return &OpenMeteoProvider{http: newUpstream("forecast", opts)}
}

// forecastPayload mirrors the response. Current fields are pointers so a
// missing field can be told apart from a zero reading.
type forecastPayload struct {
	Current *struct {
		Temperature2m       *float64 `json:"temperature_2m" validate:"required"`
		ApparentTemperature *float64 `json:"apparent_temperature" validate:"required"`
		RelativeHumidity2m  *float64 `json:"relative_humidity_2m" validate:"required"`
		WindSpeed10m        *float64 `json:"wind_speed_10m" validate:"required"`
		WeatherCode         *int     `json:"weather_code" validate:"required"`
	} `json:"current" validate:"required"`
	Daily *weather.DailyForecast `json:"daily"`
}

// Fetch returns current conditions and the daily summary for lat/lon.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, lat, lon float64) (weather.Forecast, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("current", strings.Join(currentVariables, ","))
	values.Set("daily", strings.Join(dailyVariables, ","))
	values.Set("timezone", "auto")

	body, err := p.http.get(ctx, "/forecast", values)
	if err != nil {
		return weather.Forecast{}, &weather.NetworkError{Message: forecastFailed, Err: err}
	}

	var payload forecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Forecast{}, &weather.NetworkError{Message: forecastFailed, Err: fmt.Errorf("decode forecast: %w", err)}
	}
	if err := validate.Struct(payload); err != nil {
		return weather.Forecast{}, &weather.NetworkError{Message: forecastFailed, Err: fmt.Errorf("incomplete forecast: %w", err)}
	}

	var daily weather.DailyForecast
	if payload.Daily != nil {
		daily = *payload.Daily
	}
	if !daily.Consistent() {
		return weather.Forecast{}, &weather.NetworkError{Message: forecastFailed, Err: fmt.Errorf("daily sequences have mismatched lengths")}
	}

	c := payload.Current
	return weather.Forecast{
		Current: weather.CurrentConditions{
			Temperature2m:       *c.Temperature2m,
			ApparentTemperature: *c.ApparentTemperature,
			RelativeHumidity2m:  *c.RelativeHumidity2m,
			WindSpeed10m:        *c.WindSpeed10m,
			WeatherCode:         *c.WeatherCode,
		},
		Daily: daily,
	}, nil
}

// formatCoord renders a coordinate the way it was given, without padding.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
