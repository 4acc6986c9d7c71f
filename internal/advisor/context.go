package advisor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/i474232898/weather-advisor/internal/common"
	"github.com/i474232898/weather-advisor/internal/weather"
)

// Detail is one labelled line of extra context, kept ordered for
// reproducible prompts.
type Detail struct {
	Key   string
	Value string
}

// Astronomy holds the sunrise/sunset/moon data for the current day.
type Astronomy struct {
	Sunrise   string
	Sunset    string
	MoonPhase float64
}

// Context is the intent-shaped subset of a snapshot. The Fallback Answerer
// consumes this structured form; FormatContext renders it for prompts.
type Context struct {
	Location    string
	Temperature float64
	FeelsLike   float64
	Conditions  string
	Humidity    float64
	WindSpeed   float64
	WindDeg     float64
	UVIndex     *float64

	Details    []Detail
	Daily      []weather.DailyEntry
	Hourly     []weather.HourlyEntry
	Alerts     []weather.Alert
	Astronomy  *Astronomy
	AirQuality string
	Comparison *weather.Comparison
}

// ExtractContext selects the snapshot fields relevant to the intent.
func ExtractContext(snap weather.Snapshot, intent Intent) Context {
	cur := snap.Current
	uv := cur.UVIndex

	data := Context{
		Location:    snap.Location.String(),
		Temperature: cur.Temperature,
		FeelsLike:   cur.FeelsLike,
		Conditions:  cur.Description,
		Humidity:    cur.Humidity,
		WindSpeed:   cur.WindSpeed,
		WindDeg:     cur.WindDeg,
		UVIndex:     &uv,
	}
	if data.Conditions == "" {
		data.Conditions = cur.Condition
	}

	rainChance := func() string {
		if len(snap.Hourly) == 0 {
			return "0%"
		}
		return formatPercent(snap.Hourly[0].PrecipChance)
	}

	switch intent {
	case IntentForecast:
		data.Daily = snap.Daily
		data.Hourly = firstHours(snap.Hourly, 24)

	case IntentCurrentConditions:
		data.Details = append(data.Details,
			Detail{"Visibility", formatMiles(cur.Visibility)},
			Detail{"Pressure", fmt.Sprintf("%.0f hPa", cur.Pressure)},
			Detail{"UV Index", formatUV(cur.UVIndex)},
			Detail{"Dew Point", formatTemp(cur.DewPoint)},
			Detail{"Cloud Cover", formatPercent(cur.CloudCover)},
		)

	case IntentClothing:
		data.Details = append(data.Details,
			Detail{"UV Index", formatUV(cur.UVIndex)},
			Detail{"Cloud Cover", formatPercent(cur.CloudCover)},
			Detail{"Rain Chance", rainChance()},
		)

	case IntentActivity:
		data.Details = append(data.Details,
			Detail{"UV Index", formatUV(cur.UVIndex)},
			Detail{"Cloud Cover", formatPercent(cur.CloudCover)},
			Detail{"Rain Chance", rainChance()},
		)
		data.Hourly = firstHours(snap.Hourly, 12)

	case IntentSafety, IntentAlerts:
		data.Alerts = snap.Alerts
		if data.Alerts == nil {
			data.Alerts = []weather.Alert{}
		}

	case IntentAstronomy:
		if len(snap.Daily) > 0 {
			today := snap.Daily[0]
			data.Astronomy = &Astronomy{
				Sunrise:   formatClock(today.Sunrise),
				Sunset:    formatClock(today.Sunset),
				MoonPhase: today.MoonPhase,
			}
		}

	case IntentTravel:
		data.Details = append(data.Details,
			Detail{"Visibility", formatMiles(cur.Visibility)},
			Detail{"Wind", fmt.Sprintf("%.0f mph", cur.WindSpeed)},
		)
		data.Alerts = snap.Alerts
		if data.Alerts == nil {
			data.Alerts = []weather.Alert{}
		}

	case IntentComparison:
		data.Daily = firstDays(snap.Daily, 3)
		data.Comparison = snap.Comparison

	case IntentExplanation:
		data.AirQuality = snap.AirQuality
		data.Details = append(data.Details,
			Detail{"UV Index", formatUV(cur.UVIndex)},
		)
	}

	return data
}

// FormatContext renders the extracted data as the plain-text block included
// in the user prompt: current-conditions header, detail lines, then
// intent-specific sections.
func FormatContext(data Context, intent Intent) string {
	var b strings.Builder

	b.WriteString("CURRENT WEATHER:\n")
	fmt.Fprintf(&b, "Temperature: %s\n", formatTemp(data.Temperature))
	fmt.Fprintf(&b, "Conditions: %s\n", data.Conditions)
	fmt.Fprintf(&b, "Feels Like: %s\n", formatTemp(data.FeelsLike))
	fmt.Fprintf(&b, "Humidity: %s\n", formatPercent(data.Humidity))
	fmt.Fprintf(&b, "Wind: %.0f mph from %s\n", data.WindSpeed, WindDirection(data.WindDeg))

	for _, d := range data.Details {
		fmt.Fprintf(&b, "%s: %s\n", d.Key, d.Value)
	}

	if intent == IntentForecast || intent == IntentComparison {
		if len(data.Daily) > 0 {
			b.WriteString("\nDAILY FORECAST:\n")
			for _, day := range data.Daily {
				fmt.Fprintf(&b, "%s: High %s, Low %s, %s\n",
					day.Date.Format("1/2/2006"), formatTemp(day.TempHigh), formatTemp(day.TempLow), day.Condition)
			}
		}
		if intent == IntentForecast && len(data.Hourly) > 0 {
			b.WriteString("\nHOURLY FORECAST (next 12 hours):\n")
			for _, hour := range firstHours(data.Hourly, 12) {
				fmt.Fprintf(&b, "%s: %s, %s, %s chance of precipitation\n",
					formatClock(hour.Time), formatTemp(hour.Temperature), hour.Condition, formatPercent(hour.PrecipChance))
			}
		}
		if intent == IntentComparison && data.Comparison != nil {
			cmp := data.Comparison
			b.WriteString("\nYESTERDAY COMPARISON:\n")
			fmt.Fprintf(&b, "Yesterday: %s, %s\n", formatTemp(cmp.TempYesterday), cmp.ConditionYesterday)
			fmt.Fprintf(&b, "Temperature difference: %+.0f°F\n", cmp.TempDifference)
		}
	}

	if intent == IntentActivity && len(data.Hourly) > 0 {
		b.WriteString("\nUPCOMING HOURS:\n")
		for _, hour := range firstHours(data.Hourly, 6) {
			fmt.Fprintf(&b, "%s: %s, %s, %s chance of precipitation\n",
				formatClock(hour.Time), formatTemp(hour.Temperature), hour.Condition, formatPercent(hour.PrecipChance))
		}
	}

	if intent == IntentSafety || intent == IntentAlerts || intent == IntentTravel {
		if len(data.Alerts) > 0 {
			b.WriteString("\nWEATHER ALERTS:\n")
			for _, alert := range data.Alerts {
				fmt.Fprintf(&b, "%s: %s\n", alert.Event, common.Truncate(alert.Description, 200))
				fmt.Fprintf(&b, "Valid: %s to %s\n\n", formatClock(alert.Start), formatClock(alert.End))
			}
		} else {
			b.WriteString("\nNo weather alerts currently in effect.\n")
		}
	}

	if intent == IntentAstronomy && data.Astronomy != nil {
		b.WriteString("\nASTRONOMY INFO:\n")
		fmt.Fprintf(&b, "Sunrise: %s\n", data.Astronomy.Sunrise)
		fmt.Fprintf(&b, "Sunset: %s\n", data.Astronomy.Sunset)
		fmt.Fprintf(&b, "Moon Phase: %s\n", MoonPhaseName(data.Astronomy.MoonPhase))
	}

	if intent == IntentExplanation {
		b.WriteString("\nREFERENCE DATA FOR EXPLANATIONS:\n")
		if data.AirQuality != "" {
			fmt.Fprintf(&b, "Current Air Quality: %s\n", data.AirQuality)
		}
		if data.UVIndex != nil {
			fmt.Fprintf(&b, "Current UV Index: %s\n", formatUV(*data.UVIndex))
		}
		b.WriteString("AQI Scale: 0-50 (Good), 51-100 (Moderate), 101-150 (Unhealthy for Sensitive Groups), 151-200 (Unhealthy), 201-300 (Very Unhealthy), 301+ (Hazardous)\n")
		b.WriteString("UV Index Scale: 0-2 (Low), 3-5 (Moderate), 6-7 (High), 8-10 (Very High), 11+ (Extreme)\n")
	}

	return b.String()
}

var compassLabels = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirection maps degrees to one of 16 compass labels.
func WindDirection(degrees float64) string {
	idx := int(math.Round(degrees/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassLabels[idx]
}

// MoonPhaseName names the 0..1 moon phase fraction, where 0 and 1 are the
// new moon and 0.5 the full moon.
func MoonPhaseName(phase float64) string {
	switch {
	case phase == 0 || phase == 1:
		return "New Moon"
	case phase < 0.25:
		return "Waxing Crescent"
	case phase == 0.25:
		return "First Quarter"
	case phase < 0.5:
		return "Waxing Gibbous"
	case phase == 0.5:
		return "Full Moon"
	case phase < 0.75:
		return "Waning Gibbous"
	case phase == 0.75:
		return "Last Quarter"
	case phase < 1:
		return "Waning Crescent"
	default:
		return "Unknown"
	}
}

func formatTemp(v float64) string {
	return fmt.Sprintf("%.0f°F", math.Round(v))
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", math.Round(v))
}

func formatUV(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func formatMiles(visibilityM float64) string {
	return fmt.Sprintf("%.1f mi", visibilityM/1609)
}

func formatClock(t time.Time) string {
	return t.Format("3:04 PM")
}

func firstHours(hours []weather.HourlyEntry, n int) []weather.HourlyEntry {
	if len(hours) > n {
		return hours[:n]
	}
	return hours
}

func firstDays(days []weather.DailyEntry, n int) []weather.DailyEntry {
	if len(days) > n {
		return days[:n]
	}
	return days
}
