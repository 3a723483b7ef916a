package datasource

import (
	"context"
	"errors"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// GameFeed fetches schedules and final scores for a slate.
type GameFeed interface {
	// FetchGames retrieves all games for the given season and week.
	FetchGames(ctx context.Context, season, week int) ([]models.Game, error)

	// Name returns the name of the feed provider.
	Name() string
}

// LineFeed fetches sportsbook quotes for a slate.
type LineFeed interface {
	// FetchLines retrieves the current spread and total quotes for every
	// game in the given season and week, one tick per game/book/market.
	FetchLines(ctx context.Context, season, week int) ([]models.OddsTick, error)

	// Name returns the name of the feed provider.
	Name() string
}

// WeatherFeed fetches venue forecasts for a slate.
type WeatherFeed interface {
	// FetchWeather retrieves forecasts for the given games. Games without
	// a forecast are simply absent from the result; callers treat absence
	// as "no weather data", never as a default forecast.
	FetchWeather(ctx context.Context, games []models.Game) ([]models.WeatherRecord, error)

	// Name returns the name of the feed provider.
	Name() string
}

// FeedError represents errors from feed operations
type FeedError struct {
	Source  string // Feed provider name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e FeedError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e FeedError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors for callers that branch on failure class rather than
// provider specifics.
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidData          = errors.New("invalid data format")
)

// NewFeedError creates a new feed error
func NewFeedError(source, code, message string, err error) FeedError {
	return FeedError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
