package weather

// DeviceLocationName is the display name given to places built from device coordinates.
const DeviceLocationName = "Your location"

// Place is a resolved location. Country and Timezone are empty for places
// synthesized from device coordinates.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`
}

// DevicePlace builds the placeholder Place used when coordinates come from the device.
func DevicePlace(c Coordinates) Place {
	return Place{
		Name:      DeviceLocationName,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
	}
}

// Coordinates are a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentConditions is the upstream "current" block. Units are the provider
// defaults: °C, %, km/h.
type CurrentConditions struct {
	Temperature2m       float64 `json:"temperature_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	RelativeHumidity2m  float64 `json:"relative_humidity_2m"`
	WindSpeed10m        float64 `json:"wind_speed_10m"`
	WeatherCode         int     `json:"weather_code"`
}

// DailyForecast holds parallel per-day sequences; index i across all of them
// describes the same day.
type DailyForecast struct {
	Time             []string  `json:"time"`
	WeatherCode      []int     `json:"weather_code"`
	Temperature2mMax []float64 `json:"temperature_2m_max"`
	Temperature2mMin []float64 `json:"temperature_2m_min"`
	UVIndexMax       []float64 `json:"uv_index_max"`
	PrecipitationSum []float64 `json:"precipitation_sum"`
}

// Consistent reports whether every sequence has the same length.
func (d DailyForecast) Consistent() bool {
	n := len(d.Time)
	return len(d.WeatherCode) == n &&
		len(d.Temperature2mMax) == n &&
		len(d.Temperature2mMin) == n &&
		len(d.UVIndexMax) == n &&
		len(d.PrecipitationSum) == n
}

// Day is one row of a DailyForecast.
type Day struct {
	Date             string
	WeatherCode      int
	TemperatureMax   float64
	TemperatureMin   float64
	UVIndexMax       float64
	PrecipitationSum float64
}

// Days zips the parallel sequences into rows. It returns nil when the
// sequences are inconsistent.
func (d DailyForecast) Days() []Day {
	if !d.Consistent() {
		return nil
	}
	days := make([]Day, len(d.Time))
	for i := range d.Time {
		days[i] = Day{
			Date:             d.Time[i],
			WeatherCode:      d.WeatherCode[i],
			TemperatureMax:   d.Temperature2mMax[i],
			TemperatureMin:   d.Temperature2mMin[i],
			UVIndexMax:       d.UVIndexMax[i],
			PrecipitationSum: d.PrecipitationSum[i],
		}
	}
	return days
}

// Forecast is what the forecast fetcher returns for one pair of coordinates.
type Forecast struct {
	Current CurrentConditions `json:"current"`
	Daily   DailyForecast     `json:"daily"`
}
