package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-advisor/internal/store"
	"github.com/i474232898/weather-advisor/internal/upstream"
)

const geoJSON = `[{"lat": 51.5074, "lon": -0.1278}]`

const oneCallJSON = `{
	"current": {
		"dt": 1767780000, "sunrise": 1767772800, "sunset": 1767801600,
		"temp": 58.4, "feels_like": 55.2, "pressure": 1012, "humidity": 72,
		"dew_point": 49.1, "uvi": 3.4, "clouds": 90, "visibility": 9656,
		"wind_speed": 11.6, "wind_deg": 225,
		"weather": [{"main": "Clouds", "description": "overcast clouds"}]
	},
	"hourly": [
		{"dt": 1767783600, "temp": 57.0, "pop": 0.4, "weather": [{"main": "Rain", "description": "light rain"}]},
		{"dt": 1767787200, "temp": 56.1, "pop": 0.6, "weather": [{"main": "Rain", "description": "light rain"}]}
	],
	"daily": [
		{"dt": 1767780000, "sunrise": 1767772800, "sunset": 1767801600, "moon_phase": 0.5,
		 "temp": {"min": 45.0, "max": 60.0}, "humidity": 70, "wind_speed": 10.0, "pop": 0.6,
		 "weather": [{"main": "Rain", "description": "light rain"}]}
	],
	"alerts": [
		{"event": "Wind Advisory", "description": "Strong winds expected.", "start": 1767780000, "end": 1767801600}
	]
}`

const airJSON = `{"list": [{"main": {"aqi": 2}}]}`

const timemachineJSON = `{
	"data": [{"temp": 52.0, "humidity": 80, "wind_speed": 14.0, "weather": [{"main": "Rain", "description": "moderate rain"}]}]
}`

// fakeProvider serves the OpenWeather endpoints the fetcher calls and counts
// requests per path.
type fakeProvider struct {
	server *httptest.Server

	geoCalls  atomic.Int64
	callCalls atomic.Int64
	airCalls  atomic.Int64
	histCalls atomic.Int64

	failOneCall     bool
	failTimemachine bool
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{}
	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/geo/1.0/direct":
			p.geoCalls.Add(1)
			w.Write([]byte(geoJSON))
		case "/data/3.0/onecall":
			p.callCalls.Add(1)
			if p.failOneCall {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(oneCallJSON))
		case "/data/2.5/air_pollution":
			p.airCalls.Add(1)
			w.Write([]byte(airJSON))
		case "/data/3.0/onecall/timemachine":
			p.histCalls.Add(1)
			if p.failTimemachine {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(timemachineJSON))
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(p.server.Close)
	return p
}

func newTestFetcher(p *fakeProvider, cacheTTL time.Duration) (*Fetcher, *store.TTL[Snapshot]) {
	cache := store.New[Snapshot](cacheTTL)
	historical := store.New[YesterdayConditions](24 * time.Hour)

	f := NewFetcher(http.DefaultClient, "test-key", cache, historical)
	f.baseURL = p.server.URL
	f.httpCfg.Backoff = upstream.BackoffConfig{
		MaxRetries:      1,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}
	return f, cache
}

func london() Location {
	return Location{City: "London", Country: "United Kingdom"}
}

func TestSnapshotAssemblesAllSections(t *testing.T) {
	p := newFakeProvider(t)
	f, _ := newTestFetcher(p, 15*time.Minute)

	snap, err := f.Snapshot(context.Background(), london())
	require.NoError(t, err)

	assert.Equal(t, "London", snap.Location.City)
	assert.InDelta(t, 58.4, snap.Current.Temperature, 0.001)
	assert.Equal(t, "Clouds", snap.Current.Condition)
	assert.Equal(t, "overcast clouds", snap.Current.Description)
	assert.InDelta(t, 3.4, snap.Current.UVIndex, 0.001)

	require.Len(t, snap.Daily, 1)
	assert.InDelta(t, 60.0, snap.Daily[0].TempHigh, 0.001)
	assert.InDelta(t, 60.0, snap.Daily[0].PrecipChance, 0.001)
	assert.InDelta(t, 0.5, snap.Daily[0].MoonPhase, 0.001)

	require.Len(t, snap.Hourly, 2)
	assert.InDelta(t, 40.0, snap.Hourly[0].PrecipChance, 0.001)

	require.Len(t, snap.Alerts, 1)
	assert.Equal(t, "Wind Advisory", snap.Alerts[0].Event)

	assert.Equal(t, "Fair", snap.AirQuality)

	require.NotNil(t, snap.Comparison)
	assert.InDelta(t, 52.0, snap.Comparison.TempYesterday, 0.001)
	assert.InDelta(t, 6.0, snap.Comparison.TempDifference, 0.001)
	assert.True(t, snap.Comparison.WasWarmer)
	assert.True(t, snap.Comparison.WasDrier)
	assert.False(t, snap.Comparison.WasWindier)
}

func TestSnapshotUsesCacheWithinTTL(t *testing.T) {
	p := newFakeProvider(t)
	f, _ := newTestFetcher(p, 15*time.Minute)

	first, err := f.Snapshot(context.Background(), london())
	require.NoError(t, err)

	second, err := f.Snapshot(context.Background(), london())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), p.callCalls.Load(), "second request must not hit the network")
}

func TestSnapshotSkipsGeocodingWhenCoordinatesKnown(t *testing.T) {
	p := newFakeProvider(t)
	f, _ := newTestFetcher(p, 15*time.Minute)

	lat, lng := 51.5074, -0.1278
	loc := london()
	loc.Lat, loc.Lng = &lat, &lng

	_, err := f.Snapshot(context.Background(), loc)
	require.NoError(t, err)
	assert.Zero(t, p.geoCalls.Load())
}

func TestSnapshotHistoricalFailureIsNonFatal(t *testing.T) {
	p := newFakeProvider(t)
	p.failTimemachine = true
	f, _ := newTestFetcher(p, 15*time.Minute)

	snap, err := f.Snapshot(context.Background(), london())
	require.NoError(t, err)
	assert.Nil(t, snap.Comparison)
}

func TestSnapshotServesExpiredCacheOnFetchFailure(t *testing.T) {
	p := newFakeProvider(t)
	p.failOneCall = true
	// A nanosecond TTL makes every cached entry stale immediately.
	f, cache := newTestFetcher(p, time.Nanosecond)

	stale := Snapshot{
		Location: london(),
		Current:  Current{Temperature: 50, Description: "stale data"},
	}
	cache.Put(london().Key(), stale)
	time.Sleep(time.Millisecond)

	snap, err := f.Snapshot(context.Background(), london())
	require.NoError(t, err)
	assert.Equal(t, "stale data", snap.Current.Description)
}

func TestSnapshotPropagatesFailureWithoutCache(t *testing.T) {
	p := newFakeProvider(t)
	p.failOneCall = true
	f, _ := newTestFetcher(p, 15*time.Minute)

	_, err := f.Snapshot(context.Background(), london())
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestSnapshotRequiresAPIKey(t *testing.T) {
	cache := store.New[Snapshot](15 * time.Minute)
	historical := store.New[YesterdayConditions](24 * time.Hour)
	f := NewFetcher(http.DefaultClient, "", cache, historical)

	_, err := f.Snapshot(context.Background(), london())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestSnapshotHistoricalIsCached(t *testing.T) {
	p := newFakeProvider(t)
	// The snapshot cache expires immediately while the historical cache keeps
	// its 24h TTL, forcing a second full fetch that reuses yesterday's data.
	f, _ := newTestFetcher(p, time.Nanosecond)

	_, err := f.Snapshot(context.Background(), london())
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	_, err = f.Snapshot(context.Background(), london())
	require.NoError(t, err)

	assert.Equal(t, int64(2), p.callCalls.Load())
	assert.Equal(t, int64(1), p.histCalls.Load(), "historical data must come from the long-TTL cache")
}
