package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// WeatherFeedClient fetches per-game venue forecasts from the weather API.
type WeatherFeedClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	cache      *cache.Cache
	logger     *logrus.Logger
}

// feedForecast represents a forecast entry from the weather API
type feedForecast struct {
	GameID      int64    `json:"game_id"`
	HomeTeam    string   `json:"home_team"`
	AwayTeam    string   `json:"away_team"`
	Temperature *float64 `json:"temperature"`
	WindSpeed   *float64 `json:"wind_speed"`
	Indoor      bool     `json:"indoor"`
}

// NewWeatherFeedClient creates a new weather API client
func NewWeatherFeedClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, cacheTTL time.Duration, logger *logrus.Logger) *WeatherFeedClient {
	return &WeatherFeedClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cache:      cache.New(cacheTTL, 2*cacheTTL),
		logger:     logger,
	}
}

// Name returns the name of the feed provider.
func (c *WeatherFeedClient) Name() string {
	return "weather_api"
}

// FetchWeather retrieves forecasts for the given games. Outdoor games whose
// forecast lacks temperature or wind are omitted rather than defaulted; the
// engine must be able to tell "no data" from "calm conditions".
func (c *WeatherFeedClient) FetchWeather(ctx context.Context, games []models.Game) ([]models.WeatherRecord, error) {
	if len(games) == 0 {
		return nil, nil
	}

	season, week := games[0].Season, games[0].Week
	body, err := c.get(ctx, season, week)
	if err != nil {
		return nil, err
	}

	var raw []feedForecast
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, NewFeedError(c.Name(), ErrCodeInvalidData, "failed to decode weather response", err)
	}

	wanted := make(map[int64]bool, len(games))
	for _, g := range games {
		wanted[g.ID] = true
	}

	now := time.Now().UTC()
	records := make([]models.WeatherRecord, 0, len(raw))
	for _, f := range raw {
		if !wanted[f.GameID] {
			continue
		}

		rec := models.WeatherRecord{
			HomeTeam:   f.HomeTeam,
			AwayTeam:   f.AwayTeam,
			IsIndoor:   f.Indoor,
			CapturedAt: now,
		}
		if !f.Indoor {
			if f.Temperature == nil || f.WindSpeed == nil {
				c.logger.WithFields(logrus.Fields{
					"game_id": f.GameID,
				}).Debug("Skipping incomplete outdoor forecast")
				continue
			}
			rec.Temperature = *f.Temperature
			rec.WindSpeed = *f.WindSpeed
		}
		records = append(records, rec)
	}

	c.logger.WithFields(logrus.Fields{
		"season":    season,
		"week":      week,
		"forecasts": len(records),
	}).Debug("Fetched weather from feed")

	return records, nil
}

func (c *WeatherFeedClient) get(ctx context.Context, season, week int) ([]byte, error) {
	cacheKey := fmt.Sprintf("forecasts:%d:%d", season, week)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]byte), nil
	}

	u := fmt.Sprintf("%s/forecasts?year=%d&week=%d", c.baseURL, season, week)
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

	if resp.StatusCode != http.StatusOK {
		return nil, NewFeedError(c.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewFeedError(c.Name(), ErrCodeNetworkError, "failed to read response body", err)
	}

	c.cache.Set(cacheKey, body, cache.DefaultExpiration)
	return body, nil
}
