package httpapi

import (
	"html/template"
	"math"
	"strconv"
	"time"

	"github.com/i474232898/weather-lookup/internal/theme"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// pageView is everything index.html needs; no logic runs in the template
// beyond conditionals and ranges.
type pageView struct {
	ThemeClass  string
	ThemeLabel  string
	Query       string
	Loading     bool
	SubmitLabel string
	Error       string
	Card        *cardView
}

type cardView struct {
	Title       string
	Timezone    string
	Icon        string
	Temperature string
	Condition   string
	Meta        string
	Days        []dayView
}

type dayView struct {
	Date        string
	Class       string
	Icon        string
	Text        string
	Max         string
	Min         string
	MinBarStyle template.CSS
}

func newPageView(st weather.State, t theme.Theme, query string) pageView {
	v := pageView{
		ThemeClass:  t.Class(),
		ThemeLabel:  themeButtonLabel(t),
		Query:       query,
		Loading:     st.Loading,
		SubmitLabel: "Search",
		Error:       st.Err,
	}
	if st.Loading {
		v.SubmitLabel = "Searching…"
	}
	if st.Renderable() {
		v.Card = newCardView(*st.Place, *st.Current, st.Daily)
	}
	return v
}

// themeButtonLabel names the theme the button switches to.
func themeButtonLabel(t theme.Theme) string {
	if t == theme.Dark {
		return "Light mode"
	}
	return "Dark mode"
}

func newCardView(p weather.Place, c weather.CurrentConditions, daily *weather.DailyForecast) *cardView {
	title := p.Name
	if p.Country != "" {
		title += ", " + p.Country
	}

	card := &cardView{
		Title:       title,
		Timezone:    p.Timezone,
		Icon:        weather.CodeToIcon(c.WeatherCode),
		Temperature: roundedDegrees(c.Temperature2m),
		Condition:   weather.CodeToText(c.WeatherCode),
		Meta: "Feels " + roundedDegrees(c.ApparentTemperature) +
			" · Humidity " + strconv.FormatFloat(c.RelativeHumidity2m, 'f', -1, 64) + "%" +
			" · Wind " + strconv.FormatInt(jsRound(c.WindSpeed10m), 10) + " km/h",
	}

	if daily == nil {
		return card
	}
	for _, d := range daily.Days() {
		maxT, minT := jsRound(d.TemperatureMax), jsRound(d.TemperatureMin)
		card.Days = append(card.Days, dayView{
			Date:        displayDate(d.Date),
			Class:       "wx-code-" + strconv.Itoa(d.WeatherCode),
			Icon:        weather.CodeToIcon(d.WeatherCode),
			Text:        weather.CodeToText(d.WeatherCode),
			Max:         strconv.FormatInt(maxT, 10) + "°",
			Min:         strconv.FormatInt(minT, 10) + "°",
			MinBarStyle: template.CSS("width: " + barWidth(minT, maxT)),
		})
	}
	return card
}

// jsRound rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func jsRound(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

func roundedDegrees(v float64) string {
	return strconv.FormatInt(jsRound(v), 10) + "°"
}

// barWidth is the min-temperature bar as a percentage of the max, floored at 5%.
// A zero max is treated as 1.
func barWidth(minT, maxT int64) string {
	denom := float64(maxT)
	if denom == 0 {
		denom = 1
	}
	w := math.Max(5, float64(minT)/denom*100)
	return strconv.FormatFloat(w, 'f', -1, 64) + "%"
}

// displayDate renders an ISO day as month/day/year; unparseable input is shown as-is.
func displayDate(iso string) string {
	d, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return d.Format("1/2/2006")
}
