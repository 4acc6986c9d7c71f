package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-advisor/internal/store"
	"github.com/i474232898/weather-advisor/internal/upstream"
)

var (
	// ErrMissingAPIKey signals a configuration problem, not a user error.
	ErrMissingAPIKey = errors.New("openweather api key is not configured")
	// ErrLocationNotFound means geocoding produced no coordinates for the location.
	ErrLocationNotFound = errors.New("location not found")
	// ErrFetchFailed wraps a total upstream failure with no cached data to fall back on.
	ErrFetchFailed = errors.New("failed to fetch weather data")
)

var aqiDescriptions = []string{"Good", "Fair", "Moderate", "Poor", "Very Poor"}

// Source is the contract the advisory pipeline consumes weather data through.
type Source interface {
	Snapshot(ctx context.Context, loc Location) (Snapshot, error)
}

// Fetcher retrieves weather data from OpenWeatherMap and assembles snapshots,
// reading through a short-lived cache. Historical (yesterday) data is cached
// separately with a long TTL and its failure is never fatal.
type Fetcher struct {
	apiKey  string
	baseURL string
	httpCfg upstream.ClientConfig
	circuit *gobreaker.CircuitBreaker

	cache      *store.TTL[Snapshot]
	historical *store.TTL[YesterdayConditions]

	now func() time.Time
}

// NewFetcher creates a Fetcher backed by the given caches.
func NewFetcher(client *http.Client, apiKey string, cache *store.TTL[Snapshot], historical *store.TTL[YesterdayConditions]) *Fetcher {
	return &Fetcher{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org",
		httpCfg: upstream.ClientConfig{
			Client:  client,
			Backoff: upstream.DefaultBackoff,
		},
		circuit:    upstream.NewBreaker("openweather"),
		cache:      cache,
		historical: historical,
		now:        time.Now,
	}
}

// Snapshot returns the weather snapshot for loc, from cache when fresh. On a
// total fetch failure an expired cached entry is served as degraded data; only
// when none exists does the error propagate.
func (f *Fetcher) Snapshot(ctx context.Context, loc Location) (Snapshot, error) {
	key := loc.Key()

	if snap, ok := f.cache.Get(key); ok {
		log.Printf("DEBUG: using cached weather data for %s", key)
		return snap, nil
	}

	if f.apiKey == "" {
		return Snapshot{}, ErrMissingAPIKey
	}

	snap, err := f.fetch(ctx, loc)
	if err != nil {
		if stale, ok := f.cache.GetStale(key); ok {
			log.Printf("INFO: serving expired cached weather data for %s after fetch failure: %v", key, err)
			return stale, nil
		}
		return Snapshot{}, fmt.Errorf("%w for %s: %v", ErrFetchFailed, key, err)
	}

	f.cache.Put(key, snap)
	return snap, nil
}

func (f *Fetcher) fetch(ctx context.Context, loc Location) (Snapshot, error) {
	log.Printf("INFO: fetching weather data for %s", loc.Key())

	lat, lon, err := f.coordinates(ctx, loc)
	if err != nil {
		return Snapshot{}, err
	}

	oneCall, err := f.oneCall(ctx, lat, lon)
	if err != nil {
		return Snapshot{}, err
	}

	snap := f.assemble(loc, oneCall)

	// Air quality is a separate call; its failure degrades the snapshot
	// rather than failing the fetch.
	if aqi, err := f.airQuality(ctx, lat, lon); err != nil {
		log.Printf("INFO: air quality fetch failed for %s: %v", loc.Key(), err)
	} else {
		snap.AirQuality = aqi
	}

	// Best-effort day-over-day comparison.
	if yesterday, err := f.yesterday(ctx, loc, lat, lon); err != nil {
		log.Printf("INFO: historical fetch failed for %s: %v", loc.Key(), err)
	} else {
		snap.Comparison = compare(snap.Current, yesterday)
	}

	return snap, nil
}

// coordinates resolves loc to lat/lon, using OpenWeather's geocoding endpoint
// when the location does not already carry coordinates.
func (f *Fetcher) coordinates(ctx context.Context, loc Location) (float64, float64, error) {
	if loc.Lat != nil && loc.Lng != nil {
		return *loc.Lat, *loc.Lng, nil
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", fmt.Sprintf("%s,%s", loc.City, loc.Country))
		values.Set("limit", "1")
		values.Set("appid", f.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/geo/1.0/direct?%s", f.baseURL, values.Encode()), nil)
	}

	resp, err := upstream.Do(ctx, f.httpCfg, f.circuit, buildRequest)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	var results []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("decoding geocoding response: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrLocationNotFound, loc.Key())
	}

	log.Printf("DEBUG: resolved %s to lat=%f lon=%f", loc.Key(), results[0].Lat, results[0].Lon)
	return results[0].Lat, results[0].Lon, nil
}

// oneCallPayload mirrors the subset of the One Call 3.0 response we consume.
type oneCallPayload struct {
	Current struct {
		Dt         int64   `json:"dt"`
		Sunrise    int64   `json:"sunrise"`
		Sunset     int64   `json:"sunset"`
		Temp       float64 `json:"temp"`
		FeelsLike  float64 `json:"feels_like"`
		Pressure   float64 `json:"pressure"`
		Humidity   float64 `json:"humidity"`
		DewPoint   float64 `json:"dew_point"`
		Uvi        float64 `json:"uvi"`
		Clouds     float64 `json:"clouds"`
		Visibility float64 `json:"visibility"`
		WindSpeed  float64 `json:"wind_speed"`
		WindDeg    float64 `json:"wind_deg"`
		Weather    []weatherDesc `json:"weather"`
	} `json:"current"`
	Hourly []struct {
		Dt      int64         `json:"dt"`
		Temp    float64       `json:"temp"`
		Pop     float64       `json:"pop"`
		Weather []weatherDesc `json:"weather"`
	} `json:"hourly"`
	Daily []struct {
		Dt        int64 `json:"dt"`
		Sunrise   int64 `json:"sunrise"`
		Sunset    int64 `json:"sunset"`
		MoonPhase float64 `json:"moon_phase"`
		Temp      struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Humidity  float64       `json:"humidity"`
		WindSpeed float64       `json:"wind_speed"`
		Pop       float64       `json:"pop"`
		Weather   []weatherDesc `json:"weather"`
	} `json:"daily"`
	Alerts []struct {
		Event       string `json:"event"`
		Description string `json:"description"`
		Start       int64  `json:"start"`
		End         int64  `json:"end"`
	} `json:"alerts"`
}

type weatherDesc struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

func (f *Fetcher) oneCall(ctx context.Context, lat, lon float64) (oneCallPayload, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("units", "imperial")
		values.Set("exclude", "minutely")
		values.Set("appid", f.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/data/3.0/onecall?%s", f.baseURL, values.Encode()), nil)
	}

	var payload oneCallPayload

	resp, err := upstream.Do(ctx, f.httpCfg, f.circuit, buildRequest)
	if err != nil {
		return payload, fmt.Errorf("onecall request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("decoding onecall response: %w", err)
	}
	return payload, nil
}

func (f *Fetcher) assemble(loc Location, p oneCallPayload) Snapshot {
	firstMain := func(w []weatherDesc) string {
		if len(w) == 0 {
			return ""
		}
		return w[0].Main
	}
	firstDesc := func(w []weatherDesc) string {
		if len(w) == 0 {
			return ""
		}
		return w[0].Description
	}

	snap := Snapshot{
		Location:  loc,
		FetchedAt: f.now().UTC(),
		Current: Current{
			Temperature: p.Current.Temp,
			FeelsLike:   p.Current.FeelsLike,
			Condition:   firstMain(p.Current.Weather),
			Description: firstDesc(p.Current.Weather),
			Humidity:    p.Current.Humidity,
			WindSpeed:   p.Current.WindSpeed,
			WindDeg:     p.Current.WindDeg,
			Pressure:    p.Current.Pressure,
			Visibility:  p.Current.Visibility,
			UVIndex:     p.Current.Uvi,
			DewPoint:    p.Current.DewPoint,
			CloudCover:  p.Current.Clouds,
			Sunrise:     time.Unix(p.Current.Sunrise, 0).UTC(),
			Sunset:      time.Unix(p.Current.Sunset, 0).UTC(),
		},
		Alerts: []Alert{},
	}

	for _, d := range p.Daily {
		snap.Daily = append(snap.Daily, DailyEntry{
			Date:         time.Unix(d.Dt, 0).UTC(),
			TempHigh:     d.Temp.Max,
			TempLow:      d.Temp.Min,
			Condition:    firstDesc(d.Weather),
			PrecipChance: d.Pop * 100,
			Humidity:     d.Humidity,
			WindSpeed:    d.WindSpeed,
			Sunrise:      time.Unix(d.Sunrise, 0).UTC(),
			Sunset:       time.Unix(d.Sunset, 0).UTC(),
			MoonPhase:    d.MoonPhase,
		})
	}

	hourly := p.Hourly
	if len(hourly) > 24 {
		hourly = hourly[:24]
	}
	for _, h := range hourly {
		snap.Hourly = append(snap.Hourly, HourlyEntry{
			Time:         time.Unix(h.Dt, 0).UTC(),
			Temperature:  h.Temp,
			Condition:    firstDesc(h.Weather),
			PrecipChance: h.Pop * 100,
		})
	}

	for _, a := range p.Alerts {
		snap.Alerts = append(snap.Alerts, Alert{
			Event:       a.Event,
			Description: a.Description,
			Start:       time.Unix(a.Start, 0).UTC(),
			End:         time.Unix(a.End, 0).UTC(),
		})
	}

	return snap
}

func (f *Fetcher) airQuality(ctx context.Context, lat, lon float64) (string, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("appid", f.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/data/2.5/air_pollution?%s", f.baseURL, values.Encode()), nil)
	}

	resp, err := upstream.Do(ctx, f.httpCfg, f.circuit, buildRequest)
	if err != nil {
		return "", fmt.Errorf("air pollution request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Main struct {
				Aqi int `json:"aqi"`
			} `json:"main"`
		} `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding air pollution response: %w", err)
	}
	if len(payload.List) == 0 {
		return "", fmt.Errorf("empty air pollution response")
	}

	aqi := payload.List[0].Main.Aqi
	if aqi < 1 || aqi > len(aqiDescriptions) {
		return "Unknown", nil
	}
	return aqiDescriptions[aqi-1], nil
}

// yesterday fetches conditions 24 hours ago through the long-TTL historical
// cache.
func (f *Fetcher) yesterday(ctx context.Context, loc Location, lat, lon float64) (YesterdayConditions, error) {
	key := loc.Key()

	if y, ok := f.historical.Get(key); ok {
		return y, nil
	}

	dt := f.now().Add(-24 * time.Hour).Unix()

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("dt", fmt.Sprintf("%d", dt))
		values.Set("units", "imperial")
		values.Set("appid", f.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/data/3.0/onecall/timemachine?%s", f.baseURL, values.Encode()), nil)
	}

	resp, err := upstream.Do(ctx, f.httpCfg, f.circuit, buildRequest)
	if err != nil {
		return YesterdayConditions{}, fmt.Errorf("timemachine request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Data []struct {
			Temp      float64       `json:"temp"`
			Humidity  float64       `json:"humidity"`
			WindSpeed float64       `json:"wind_speed"`
			Weather   []weatherDesc `json:"weather"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return YesterdayConditions{}, fmt.Errorf("decoding timemachine response: %w", err)
	}
	if len(payload.Data) == 0 {
		return YesterdayConditions{}, fmt.Errorf("empty timemachine response")
	}

	y := YesterdayConditions{
		Temperature: payload.Data[0].Temp,
		Humidity:    payload.Data[0].Humidity,
		WindSpeed:   payload.Data[0].WindSpeed,
	}
	if len(payload.Data[0].Weather) > 0 {
		y.Condition = payload.Data[0].Weather[0].Main
	}

	f.historical.Put(key, y)
	return y, nil
}

func compare(cur Current, y YesterdayConditions) *Comparison {
	return &Comparison{
		TempYesterday:      math.Round(y.Temperature),
		TempDifference:     math.Round(cur.Temperature - y.Temperature),
		ConditionYesterday: y.Condition,
		WasWarmer:          cur.Temperature > y.Temperature,
		WasDrier:           cur.Humidity < y.Humidity,
		WasWindier:         cur.WindSpeed > y.WindSpeed,
	}
}
