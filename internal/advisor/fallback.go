package advisor

import (
	"fmt"
	"strings"
)

// FallbackAnswer produces a templated answer from the extracted context data
// when the LLM call fails or returns nothing usable. It never fails and
// always returns a non-empty string.
func FallbackAnswer(intent Intent, data Context) string {
	switch intent {
	case IntentCurrentConditions:
		return fmt.Sprintf("Currently in %s, it's %s with %s. It feels like %s with %s humidity and wind at %.0f mph.",
			data.Location, formatTemp(data.Temperature), data.Conditions,
			formatTemp(data.FeelsLike), formatPercent(data.Humidity), data.WindSpeed)

	case IntentForecast:
		answer := fmt.Sprintf("The current temperature in %s is %s with %s.",
			data.Location, formatTemp(data.Temperature), data.Conditions)
		if len(data.Daily) > 0 {
			day := data.Daily[0]
			answer += fmt.Sprintf(" The forecast shows: %s: High %s, Low %s, %s.",
				day.Date.Format("1/2/2006"), formatTemp(day.TempHigh), formatTemp(day.TempLow), day.Condition)
		}
		return answer

	case IntentClothing:
		var clothing string
		switch temp := data.Temperature; {
		case temp > 85:
			clothing = "light, breathable clothing like shorts and t-shirts"
		case temp > 70:
			clothing = "comfortable clothing like light pants or shorts and a t-shirt"
		case temp > 55:
			clothing = "layers such as a light jacket or sweater"
		case temp > 40:
			clothing = "a warm jacket, gloves, and a hat"
		default:
			clothing = "a heavy winter coat, layers, gloves, and a warm hat"
		}

		if strings.Contains(strings.ToLower(data.Conditions), "rain") {
			clothing += " and bring an umbrella or raincoat"
		}
		if data.UVIndex != nil && *data.UVIndex > 5 {
			clothing += ". Don't forget sunscreen and sunglasses as the UV index is high"
		}

		return fmt.Sprintf("Based on the current weather in %s (%s, %s), I recommend wearing %s.",
			data.Location, formatTemp(data.Temperature), data.Conditions, clothing)
	}

	return fmt.Sprintf("Currently in %s, it's %s with %s. I'm sorry, but I couldn't provide more specific information about your question.",
		data.Location, formatTemp(data.Temperature), data.Conditions)
}
