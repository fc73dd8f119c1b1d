package repository

import (
	"context"
	"errors"

	"fraudstream/internal/domain"
)

// Stats summarizes the outcome stream without re-parsing stored records.
type Stats struct {
	Alerts      int64                      `json:"alerts"`
	Errors      int64                      `json:"errors"`
	ByFraudType map[domain.FraudType]int64 `json:"by_fraud_type"`
}

// AlertRepository stores recent pipeline outcomes for the query API. The
// write path is on the hot loop, so implementations must be cheap and
// bounded.
type AlertRepository interface {
	SaveOutcome(ctx context.Context, outcome domain.Outcome) error
	RecentAlerts(ctx context.Context, limit int) ([]domain.FraudAlert, error)
	RecentErrors(ctx context.Context, limit int) ([]domain.ErrorRecord, error)
	Stats(ctx context.Context) (Stats, error)
}

var ErrNotFound = errors.New("not found")
