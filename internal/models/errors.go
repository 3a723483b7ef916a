package models

import "errors"

// Custom errors
var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateKey         = errors.New("duplicate key violation")
	ErrInsufficientCoverage = errors.New("projection coverage below required threshold")
	ErrSlateLocked          = errors.New("slate is locked by another pipeline run")
	ErrUnknownModelVersion  = errors.New("unknown model version")
	ErrMissingMarketLine    = errors.New("market line unavailable")
)
