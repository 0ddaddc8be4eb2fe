package weather

import "strconv"

// FallbackIcon is rendered for codes outside the condition table.
const FallbackIcon = "🌡️"

// Open-Meteo (WMO) weather interpretation codes we know how to describe.
var conditionText = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	95: "Thunderstorm",
}

// CodeToText returns a human-readable label for a weather code.
// Unknown codes render as "Code <n>".
func CodeToText(code int) string {
	if text, ok := conditionText[code]; ok {
		return text
	}
	return "Code " + strconv.Itoa(code)
}

// CodeToIcon returns the symbol for a weather code, or FallbackIcon.
func CodeToIcon(code int) string {
	switch code {
	case 0:
		return "☀️"
	case 1:
		return "🌤️"
	case 2:
		return "⛅"
	case 3:
		return "☁️"
	case 45, 48:
		return "🌫️"
	case 51, 53, 55, 61:
		return "🌦️"
	case 63, 65:
		return "🌧️"
	case 71, 73, 75:
		return "❄️"
	case 95:
		return "⛈️"
	default:
		return FallbackIcon
	}
}
