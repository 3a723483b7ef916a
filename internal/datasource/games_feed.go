package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// GamesFeedClient fetches schedules, scores and sportsbook lines from the
// games API. It implements both GameFeed and LineFeed because the provider
// serves both from the same endpoint family. Responses are cached so a
// pipeline run that asks for the same slate twice hits the network once.
type GamesFeedClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	books      []string
	cache      *cache.Cache
	logger     *logrus.Logger
}

// feedGame represents a game from the games API
type feedGame struct {
	ID             int64   `json:"id"`
	Season         int     `json:"season"`
	Week           int     `json:"week"`
	StartDate      string  `json:"start_date"`
	NeutralSite    bool    `json:"neutral_site"`
	HomeTeam       string  `json:"home_team"`
	HomeConference *string `json:"home_conference"`
	HomePoints     *int    `json:"home_points"`
	AwayTeam       string  `json:"away_team"`
	AwayConference *string `json:"away_conference"`
	AwayPoints     *int    `json:"away_points"`
}

// feedGameLines represents the line block for one game from the lines API
type feedGameLines struct {
	ID    int64      `json:"id"`
	Lines []feedLine `json:"lines"`
}

// feedLine represents a single sportsbook quote. Providers are inconsistent
// about numeric encoding, so spread/total arrive as raw JSON and go through
// decimal parsing.
type feedLine struct {
	Provider    string          `json:"provider"`
	Spread      json.RawMessage `json:"spread"`
	SpreadPrice *int            `json:"spread_price"`
	OverUnder   json.RawMessage `json:"over_under"`
	TotalPrice  *int            `json:"total_price"`
	LastUpdated string          `json:"last_updated"`
}

// NewGamesFeedClient creates a new games API client
func NewGamesFeedClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, books []string, cacheTTL time.Duration, logger *logrus.Logger) *GamesFeedClient {
	return &GamesFeedClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		books:      books,
		cache:      cache.New(cacheTTL, 2*cacheTTL),
		logger:     logger,
	}
}

// Name returns the name of the feed provider.
func (c *GamesFeedClient) Name() string {
	return "games_api"
}

// FetchGames retrieves all games for the given season and week.
func (c *GamesFeedClient) FetchGames(ctx context.Context, season, week int) ([]models.Game, error) {
	body, err := c.get(ctx, "/games", season, week)
	if err != nil {
		return nil, err
	}

	var raw []feedGame
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, NewFeedError(c.Name(), ErrCodeInvalidData, "failed to decode games response", err)
	}

	games := make([]models.Game, 0, len(raw))
	for _, fg := range raw {
		kickoff, err := time.Parse(time.RFC3339, fg.StartDate)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"event_id":   fg.ID,
				"start_date": fg.StartDate,
			}).Warn("Skipping game with unparseable kickoff")
			continue
		}

		g := models.Game{
			ID:          fg.ID,
			Season:      fg.Season,
			Week:        fg.Week,
			HomeTeam:    fg.HomeTeam,
			AwayTeam:    fg.AwayTeam,
			NeutralSite: fg.NeutralSite,
			Kickoff:     kickoff.UTC(),
			HomeScore:   fg.HomePoints,
			AwayScore:   fg.AwayPoints,
		}
		if fg.HomeConference != nil {
			g.HomeConference = *fg.HomeConference
		}
		if fg.AwayConference != nil {
			g.AwayConference = *fg.AwayConference
		}
		games = append(games, g)
	}

	c.logger.WithFields(logrus.Fields{
		"season": season,
		"week":   week,
		"games":  len(games),
	}).Debug("Fetched games from feed")

	return games, nil
}

// FetchLines retrieves the current spread and total quotes for every game in
// the given season and week. Books outside the configured list are dropped.
func (c *GamesFeedClient) FetchLines(ctx context.Context, season, week int) ([]models.OddsTick, error) {
	body, err := c.get(ctx, "/lines", season, week)
	if err != nil {
		return nil, err
	}

	var raw []feedGameLines
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, NewFeedError(c.Name(), ErrCodeInvalidData, "failed to decode lines response", err)
	}

	allowed := make(map[string]bool, len(c.books))
	for _, b := range c.books {
		allowed[b] = true
	}

	var ticks []models.OddsTick
	for _, gl := range raw {
		for _, line := range gl.Lines {
			if !allowed[line.Provider] {
				continue
			}

			capturedAt := time.Now().UTC()
			if line.LastUpdated != "" {
				if ts, err := time.Parse(time.RFC3339, line.LastUpdated); err == nil {
					capturedAt = ts.UTC()
				}
			}

			if spread, ok := parseLineValue(line.Spread); ok {
				tick := models.OddsTick{
					EventID:    gl.ID,
					Sportsbook: line.Provider,
					MarketType: models.MarketTypeSpread,
					Line:       spread,
					CapturedAt: capturedAt,
				}
				if line.SpreadPrice != nil {
					tick.PriceAmerican = *line.SpreadPrice
				}
				ticks = append(ticks, tick)
			}

			if total, ok := parseLineValue(line.OverUnder); ok {
				tick := models.OddsTick{
					EventID:    gl.ID,
					Sportsbook: line.Provider,
					MarketType: models.MarketTypeTotal,
					Line:       total,
					CapturedAt: capturedAt,
				}
				if line.TotalPrice != nil {
					tick.PriceAmerican = *line.TotalPrice
				}
				ticks = append(ticks, tick)
			}
		}
	}

	c.logger.WithFields(logrus.Fields{
		"season": season,
		"week":   week,
		"ticks":  len(ticks),
	}).Debug("Fetched lines from feed")

	return ticks, nil
}

// get fetches one slate endpoint, serving from cache when possible.
func (c *GamesFeedClient) get(ctx context.Context, path string, season, week int) ([]byte, error) {
	cacheKey := fmt.Sprintf("%s:%d:%d", path, season, week)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]byte), nil
	}

	u := fmt.Sprintf("%s%s?year=%d&week=%s", c.baseURL, path, season, url.QueryEscape(fmt.Sprintf("%d", week)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewFeedError(c.Name(), ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewFeedError(c.Name(), ErrCodeAuthenticationFailed, "authentication failed", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewFeedError(c.Name(), ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode >= 500:
		return nil, NewFeedError(c.Name(), ErrCodeServerError, fmt.Sprintf("server returned %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, NewFeedError(c.Name(), ErrCodeInvalidData, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewFeedError(c.Name(), ErrCodeNetworkError, "failed to read response body", err)
	}

	c.cache.Set(cacheKey, body, cache.DefaultExpiration)
	return body, nil
}

// parseLineValue decodes a line that may arrive as a JSON number, a quoted
// numeric string, or null. The decimal round-trip avoids binary float drift
// on half-point lines.
func parseLineValue(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	s := string(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
