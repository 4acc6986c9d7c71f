package advisor

import (
	"strings"

	"github.com/i474232898/weather-advisor/internal/common"
)

// Intent is the classified purpose of a weather question.
type Intent string

const (
	IntentForecast          Intent = "forecast"
	IntentCurrentConditions Intent = "current_conditions"
	IntentClothing          Intent = "clothing"
	IntentActivity          Intent = "activity"
	IntentSafety            Intent = "safety"
	IntentAstronomy         Intent = "astronomy"
	IntentTravel            Intent = "travel"
	IntentComparison        Intent = "comparison"
	IntentAlerts            Intent = "alerts"
	IntentExplanation       Intent = "explanation"
)

// ClassifyIntent assigns a question to an intent by evaluating keyword rules
// in priority order and returning the first match. It is a pure function of
// the question text; unmatched questions default to current_conditions.
func ClassifyIntent(question string) Intent {
	q := strings.ToLower(question)

	// UV and air quality questions are explanations; checked first so
	// "sunscreen" on its own is not mistaken for a clothing question.
	if common.HasAny(q, "uv index", "ultraviolet") ||
		(strings.Contains(q, "sunscreen") && !strings.Contains(q, "need sunscreen")) {
		return IntentExplanation
	}
	if common.HasAny(q, "air quality", "aqi", "pollution") {
		return IntentExplanation
	}

	if common.HasAny(q, "forecast", "tomorrow", "next week", "this week",
		"upcoming", "future", "later", "tonight") {
		return IntentForecast
	}

	if common.HasAny(q, "current", "now", "temperature", "hot", "cold", "warm",
		"cool", "humidity", "pressure", "wind", "feels like", "real feel") {
		return IntentCurrentConditions
	}

	if common.HasAny(q, "wear", "dress", "clothes", "jacket", "coat", "layers",
		"sunscreen", "hat", "umbrella", "rain gear") {
		return IntentClothing
	}

	if common.HasAny(q, "activity", "exercise", "outdoor", "picnic", "hike",
		"run", "walk", "bike", "swimming", "beach") {
		return IntentActivity
	}

	if common.HasAny(q, "safe", "danger", "warning", "alert", "storm", "tornado",
		"hurricane", "flood", "lightning", "thunder") {
		return IntentSafety
	}

	if common.HasAny(q, "sunrise", "sunset", "moon", "star", "night sky", "astronomy") {
		return IntentAstronomy
	}

	if common.HasAny(q, "travel", "trip", "drive", "fly", "flight", "road", "traffic") {
		return IntentTravel
	}

	if common.HasAny(q, "compare", "difference", "vs", "versus", "than", "compared to") {
		return IntentComparison
	}

	if common.HasAny(q, "alert", "warning", "watch", "advisory") {
		return IntentAlerts
	}

	return IntentCurrentConditions
}
