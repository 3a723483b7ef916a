package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

func testFeedLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testHTTPClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = time.Millisecond
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, testFeedLogger())
}

func newGamesClient(serverURL string, books []string) *GamesFeedClient {
	return NewGamesFeedClient(testHTTPClient(), serverURL, "test-key", books, time.Minute, testFeedLogger())
}

func TestParseLineValue(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{"plain number", `-7.5`, -7.5, true},
		{"integer", `48`, 48, true},
		{"quoted number", `"-3.5"`, -3.5, true},
		{"null", `null`, 0, false},
		{"empty", ``, 0, false},
		{"empty string", `""`, 0, false},
		{"garbage", `"pick"`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLineValue(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestFetchGames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games", r.URL.Path)
		assert.Equal(t, "2024", r.URL.Query().Get("year"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 401001, "season": 2024, "week": 8, "start_date": "2024-10-19T23:30:00Z",
			 "neutral_site": false, "home_team": "Georgia", "home_conference": "SEC",
			 "home_points": null, "away_team": "Texas", "away_conference": "SEC", "away_points": null},
			{"id": 401002, "season": 2024, "week": 8, "start_date": "not-a-date",
			 "home_team": "Ohio State", "away_team": "Oregon"}
		]`))
	}))
	defer server.Close()

	client := newGamesClient(server.URL, []string{"draftkings"})
	games, err := client.FetchGames(context.Background(), 2024, 8)

	require.NoError(t, err)
	require.Len(t, games, 1, "unparseable kickoff should be skipped")
	assert.Equal(t, int64(401001), games[0].ID)
	assert.Equal(t, "Georgia", games[0].HomeTeam)
	assert.Equal(t, "SEC", games[0].HomeConference)
	assert.False(t, games[0].IsCompleted())
	assert.Equal(t, time.UTC, games[0].Kickoff.Location())
}

func TestFetchLinesFiltersBooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lines", r.URL.Path)
		w.Write([]byte(`[
			{"id": 401001, "lines": [
				{"provider": "draftkings", "spread": -7.5, "spread_price": -110,
				 "over_under": "54.5", "total_price": -105, "last_updated": "2024-10-18T12:00:00Z"},
				{"provider": "unlisted_book", "spread": -8, "over_under": 55}
			]}
		]`))
	}))
	defer server.Close()

	client := newGamesClient(server.URL, []string{"draftkings", "fanduel"})
	ticks, err := client.FetchLines(context.Background(), 2024, 8)

	require.NoError(t, err)
	require.Len(t, ticks, 2, "one spread and one total from the allowed book")

	bySide := make(map[models.MarketType]models.OddsTick)
	for _, tick := range ticks {
		bySide[tick.MarketType] = tick
		assert.Equal(t, "draftkings", tick.Sportsbook)
		assert.Equal(t, int64(401001), tick.EventID)
	}
	assert.InDelta(t, -7.5, bySide[models.MarketTypeSpread].Line, 1e-9)
	assert.Equal(t, -110, bySide[models.MarketTypeSpread].PriceAmerican)
	assert.InDelta(t, 54.5, bySide[models.MarketTypeTotal].Line, 1e-9)
	assert.Equal(t, time.Date(2024, 10, 18, 12, 0, 0, 0, time.UTC), bySide[models.MarketTypeSpread].CapturedAt)
}

func TestFetchLinesSkipsMissingMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 401001, "lines": [
				{"provider": "circa", "spread": -3, "over_under": null}
			]}
		]`))
	}))
	defer server.Close()

	client := newGamesClient(server.URL, []string{"circa"})
	ticks, err := client.FetchLines(context.Background(), 2024, 8)

	require.NoError(t, err)
	require.Len(t, ticks, 1)
	assert.Equal(t, models.MarketTypeSpread, ticks[0].MarketType)
}

func TestFetchGamesCachesResponse(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newGamesClient(server.URL, nil)

	_, err := client.FetchGames(context.Background(), 2024, 8)
	require.NoError(t, err)
	_, err = client.FetchGames(context.Background(), 2024, 8)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second fetch should be served from cache")

	// A different week is a different cache key.
	_, err = client.FetchGames(context.Background(), 2024, 9)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetchGamesAuthenticationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newGamesClient(server.URL, nil)
	_, err := client.FetchGames(context.Background(), 2024, 8)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthenticationFailed))

	var feedErr FeedError
	require.True(t, errors.As(err, &feedErr))
	assert.Equal(t, "games_api", feedErr.Source)
	assert.Equal(t, ErrCodeAuthenticationFailed, feedErr.Code)
}

func TestFetchGamesRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newGamesClient(server.URL, nil)
	_, err := client.FetchGames(context.Background(), 2024, 8)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimitExceeded))
}

func TestFetchGamesInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer server.Close()

	client := newGamesClient(server.URL, nil)
	_, err := client.FetchGames(context.Background(), 2024, 8)

	require.Error(t, err)
	var feedErr FeedError
	require.True(t, errors.As(err, &feedErr))
	assert.Equal(t, ErrCodeInvalidData, feedErr.Code)
}
