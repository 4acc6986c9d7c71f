package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const answerJSON = `{
	"id": "gen-1", "object": "chat.completion", "created": 1767780000,
	"model": "google/gemini-2.0-flash-exp:free",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "Pack a light jacket."}, "finish_reason": "stop"}]
}`

const emptyChoicesJSON = `{
	"id": "gen-2", "object": "chat.completion", "created": 1767780000,
	"model": "google/gemini-2.0-flash-exp:free",
	"choices": []
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	c := NewClient(Config{
		BaseURL:        server.URL + "/v1",
		APIKey:         "test-key",
		Referer:        "http://localhost:8080",
		MaxRetries:     2,
		Timeout:        5 * time.Second,
		InitialBackoff: time.Millisecond,
	})
	return c, &calls
}

func TestCompleteReturnsAnswer(t *testing.T) {
	var gotReferer, gotTitle, gotAuth string
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(answerJSON))
	})

	answer, err := c.Complete(context.Background(), "system", "user", 300)
	require.NoError(t, err)
	assert.Equal(t, "Pack a light jacket.", answer)
	assert.Equal(t, int64(1), calls.Load())

	assert.Equal(t, "http://localhost:8080", gotReferer)
	assert.Equal(t, "Weather Advisor", gotTitle)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int64
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(answerJSON))
	})

	answer, err := c.Complete(context.Background(), "system", "user", 300)
	require.NoError(t, err)
	assert.Equal(t, "Pack a light jacket.", answer)
	assert.Equal(t, int64(3), calls.Load())
}

func TestCompleteGivesUpAfterRetries(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Complete(context.Background(), "system", "user", 300)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int64(3), calls.Load())
}

func TestCompleteEmptyChoicesIsNotRetried(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(emptyChoicesJSON))
	})

	_, err := c.Complete(context.Background(), "system", "user", 300)
	assert.ErrorIs(t, err, ErrEmptyChoices)
	assert.Equal(t, int64(1), calls.Load())
}

func TestCompleteTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	c.cfg.Timeout = 50 * time.Millisecond

	_, err := c.Complete(context.Background(), "system", "user", 300)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	c := NewClient(Config{})

	_, err := c.Complete(context.Background(), "system", "user", 300)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewClientAppliesDefaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"})

	assert.Equal(t, "https://openrouter.ai/api/v1", c.cfg.BaseURL)
	assert.Equal(t, "google/gemini-2.0-flash-exp:free", c.cfg.Model)
	assert.Equal(t, "Weather Advisor", c.cfg.Title)
	assert.Equal(t, 2, c.cfg.MaxRetries)
	assert.Equal(t, 60*time.Second, c.cfg.Timeout)
	assert.Equal(t, time.Second, c.cfg.InitialBackoff)
}

// A client configured only with the fields main.go sets must still retry
// transient failures and send the attribution headers.
func TestNewClientMinimalConfigRetries(t *testing.T) {
	var attempts atomic.Int64
	var gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("X-Title")
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(answerJSON))
	}))
	t.Cleanup(server.Close)

	// MaxRetries and Title are deliberately unset, as in main.go.
	c := NewClient(Config{
		BaseURL:        server.URL + "/v1",
		APIKey:         "test-key",
		Model:          "google/gemini-2.0-flash-exp:free",
		Referer:        "http://localhost:8080",
		Timeout:        5 * time.Second,
		InitialBackoff: time.Millisecond,
	})

	answer, err := c.Complete(context.Background(), "system", "user", 300)
	require.NoError(t, err)
	assert.Equal(t, "Pack a light jacket.", answer)
	assert.Equal(t, int64(2), attempts.Load(), "one transient failure must be retried")
	assert.Equal(t, "Weather Advisor", gotTitle)
}
