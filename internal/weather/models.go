package weather

import (
	"strings"
	"time"
)

// Location represents a logical place for which we answer weather questions.
// City must be provided; coordinates are filled in lazily via geocoding.
type Location struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + "|" + l.Country
}

func (l Location) String() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + ", " + l.Country
}

// ParseLocation parses user-entered "City, Country" text. A missing country
// defaults to "United States".
func ParseLocation(text string) Location {
	parts := strings.SplitN(text, ",", 2)
	loc := Location{City: strings.TrimSpace(parts[0]), Country: "United States"}
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		loc.Country = strings.TrimSpace(parts[1])
	}
	return loc
}

// Current holds the present-moment conditions for a location.
// Temperatures are Fahrenheit, wind is mph, visibility is meters.
type Current struct {
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	WindDeg     float64   `json:"windDeg"`
	Pressure    float64   `json:"pressureHpa"`
	Visibility  float64   `json:"visibilityM"`
	UVIndex     float64   `json:"uvIndex"`
	DewPoint    float64   `json:"dewPoint"`
	CloudCover  float64   `json:"cloudCoverPercent"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
}

// DailyEntry is one day of forecast data.
type DailyEntry struct {
	Date         time.Time `json:"date"`
	TempHigh     float64   `json:"tempHigh"`
	TempLow      float64   `json:"tempLow"`
	Condition    string    `json:"condition"`
	PrecipChance float64   `json:"precipChancePercent"`
	Humidity     float64   `json:"humidityPercent"`
	WindSpeed    float64   `json:"windSpeed"`
	Sunrise      time.Time `json:"sunrise"`
	Sunset       time.Time `json:"sunset"`
	MoonPhase    float64   `json:"moonPhase"`
}

// HourlyEntry is one hour of forecast data.
type HourlyEntry struct {
	Time         time.Time `json:"time"`
	Temperature  float64   `json:"temperature"`
	Condition    string    `json:"condition"`
	PrecipChance float64   `json:"precipChancePercent"`
}

// Alert is an active weather alert issued for a location.
type Alert struct {
	Event       string    `json:"event"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// YesterdayConditions is the subset of historical data kept for the
// day-over-day comparison. Cached separately with a long TTL.
type YesterdayConditions struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidityPercent"`
	WindSpeed   float64 `json:"windSpeed"`
	Condition   string  `json:"condition"`
}

// Comparison contrasts current conditions with yesterday's.
type Comparison struct {
	TempYesterday      float64 `json:"tempYesterday"`
	TempDifference     float64 `json:"tempDifference"`
	ConditionYesterday string  `json:"conditionYesterday"`
	WasWarmer          bool    `json:"wasWarmer"`
	WasDrier           bool    `json:"wasDrier"`
	WasWindier         bool    `json:"wasWindier"`
}

// Snapshot is the aggregated weather view for one location at one point in time.
type Snapshot struct {
	Location   Location      `json:"location"`
	FetchedAt  time.Time     `json:"fetchedAt"` // always UTC
	Current    Current       `json:"current"`
	Daily      []DailyEntry  `json:"daily"`
	Hourly     []HourlyEntry `json:"hourly"`
	Alerts     []Alert       `json:"alerts"`
	AirQuality string        `json:"airQuality,omitempty"`
	Comparison *Comparison   `json:"comparison,omitempty"`
}
