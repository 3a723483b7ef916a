package datasource

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
)

// Feeds bundles the concrete feed clients the pipeline consumes.
type Feeds struct {
	Games   GameFeed
	Lines   LineFeed
	Weather WeatherFeed
}

// NewFeeds builds the feed clients from configuration, sharing a single
// rate-limited HTTP client so the provider rate limit applies across feeds.
func NewFeeds(cfg *config.Config, logger *logrus.Logger) (*Feeds, *RateLimitedHTTPClient) {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.RateLimit = cfg.Feeds.RateLimitPerSecond
	if cfg.Feeds.MaxRetries > 0 {
		httpCfg.MaxRetries = cfg.Feeds.MaxRetries
	}
	if cfg.Feeds.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.Feeds.TimeoutSeconds) * time.Second
	}

	httpClient := NewRateLimitedHTTPClient(httpCfg, logger)
	ttl := cfg.FeedCacheTTL()

	games := NewGamesFeedClient(httpClient, cfg.Feeds.GamesAPIURL, cfg.Feeds.GamesAPIKey, cfg.Feeds.Sportsbooks, ttl, logger)
	weather := NewWeatherFeedClient(httpClient, cfg.Feeds.WeatherAPIURL, cfg.Feeds.WeatherAPIKey, ttl, logger)

	return &Feeds{
		Games:   games,
		Lines:   games,
		Weather: weather,
	}, httpClient
}
