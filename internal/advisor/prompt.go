package advisor

import (
	"fmt"
	"strings"

	"github.com/i474232898/weather-advisor/internal/memory"
)

// uvProtectionTable is interpolated into the clothing system prompt.
const uvProtectionTable = `- UV Index 0-2: No protection needed
- UV Index 3-5: Some protection recommended (hat, sunglasses)
- UV Index 6-7: Protection required (sunscreen SPF 30+, hat, sunglasses)
- UV Index 8-10: Extra protection needed (sunscreen SPF 50+, stay in shade during midday)
- UV Index 11+: Extreme protection required (minimize outdoor activities)`

// SystemPrompt returns the intent-specific instruction template. The clothing
// and explanation templates interpolate the current UV index.
func SystemPrompt(intent Intent, data Context) string {
	uv := "Not available"
	if data.UVIndex != nil {
		uv = formatUV(*data.UVIndex)
	}

	switch intent {
	case IntentForecast:
		return `You're providing weather forecast information.
Focus on the forecast data and highlight weather patterns over the requested time period.
Be concise yet thorough in explaining temperature trends, precipitation chances, and conditions.`

	case IntentCurrentConditions:
		return `You're providing current weather conditions information.
Focus on the current temperature, conditions, and how it feels outside right now.
Include relevant details like humidity, wind, and visibility if they're significant.`

	case IntentComparison:
		return `You're comparing weather conditions.
Focus on effectively comparing the elements the user is asking about.
Highlight meaningful differences or similarities in the weather patterns.`

	case IntentClothing:
		return fmt.Sprintf(`You're currently focused on providing clothing recommendations based on the weather.
Consider these key factors:
- Temperature: %s (feels like %s)
- Conditions: %s
- Humidity: %s
- Wind: %.0f mph
- UV Index: %s

For UV protection specifically:
%s

Provide practical clothing advice that keeps the person comfortable, protected, and appropriate for the weather conditions.`,
			formatTemp(data.Temperature), formatTemp(data.FeelsLike), data.Conditions,
			formatPercent(data.Humidity), data.WindSpeed, uv, uvProtectionTable)

	case IntentActivity:
		return `You're providing recommendations about suitable outdoor activities based on the weather.
Consider the current conditions, forecast, and any potential weather hazards.
Suggest specific activities that would be enjoyable and safe in the current weather.`

	case IntentSafety:
		return `You're providing weather safety advice.
Focus on potential weather hazards and appropriate safety measures.
Be clear and direct about any precautions that should be taken.`

	case IntentAstronomy:
		return `You're providing astronomy-related weather information.
Focus on conditions for skygazing, sunrise/sunset times, moon phases, or other celestial observations.
Consider cloud cover, visibility, and light pollution in your response.`

	case IntentTravel:
		return `You're providing weather advice related to travel.
Focus on how weather might impact travel plans, road conditions, or transportation.
Offer practical advice for dealing with the weather while traveling.`

	case IntentAlerts:
		return `You're providing information about weather alerts or warnings.
Focus on communicating any active weather alerts, their severity, and recommended precautions.
If no alerts are active, reassure the user about the current weather safety.`

	case IntentExplanation:
		return fmt.Sprintf(`You're providing a detailed explanation about weather concepts.
For UV Index explanation requests:
- Explain what the UV Index is (a measure of UV radiation strength)
- Describe the scale (0-11+)
- Describe health risks at different levels
- Provide specific protection recommendations for each level
- Connect the current UV Index value (%s) to what it means for the user
- Include time of day considerations (UV peaks at solar noon)
- Mention that UV can be present even on cloudy days

For AQI explanation requests:
- Explain what the Air Quality Index measures
- Describe the AQI scale and categories
- Explain health implications of different AQI levels
- Connect to current AQI level if available
- Suggest protective measures for poor air quality

For other weather concepts, provide clear, educational explanations that help the user understand the science behind the weather.`, uv)
	}

	return fmt.Sprintf(`You are a helpful weather assistant providing information about the weather in %s.
Based on the weather data provided, answer the user's question accurately and helpfully.
If you don't have certain information, acknowledge that limitation but provide what you do know.`, data.Location)
}

// UserPrompt assembles the user message: optional recent-history block, then
// the location and literal question, then the formatted weather context.
func UserPrompt(history []memory.Turn, location, question, contextBlock string) string {
	var b strings.Builder

	if len(history) > 0 {
		for _, turn := range history {
			speaker := "Assistant"
			if turn.Role == "user" {
				speaker = "Human"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, turn.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "I need information about the weather in %s. My question is: %q\n\n", location, question)
	b.WriteString(contextBlock)

	return b.String()
}

// MaxTokensForIntent bounds the completion length by answer type.
func MaxTokensForIntent(intent Intent) int {
	switch intent {
	case IntentCurrentConditions:
		return 300
	case IntentForecast:
		return 600
	case IntentExplanation:
		return 800
	default:
		return 500
	}
}
