package memory

import (
	"context"
	"fmt"
	"sync"

	"fraudstream/internal/domain"
	"fraudstream/internal/repository"
)

var _ repository.AlertRepository = (*AlertRepository)(nil)

// AlertRepository keeps the most recent alerts and error records in fixed
// size ring buffers, plus running counters per fraud type. Old entries
// are overwritten; counters are never reset.
type AlertRepository struct {
	mu          sync.RWMutex
	alerts      []domain.FraudAlert
	alertNext   int
	alertCount  int64
	errs        []domain.ErrorRecord
	errNext     int
	errCount    int64
	byFraudType map[domain.FraudType]int64
}

func NewAlertRepository(capacity int) *AlertRepository {
	if capacity <= 0 {
		capacity = 256
	}
	return &AlertRepository{
		alerts:      make([]domain.FraudAlert, 0, capacity),
		errs:        make([]domain.ErrorRecord, 0, capacity),
		byFraudType: make(map[domain.FraudType]int64),
	}
}

func (r *AlertRepository) SaveOutcome(ctx context.Context, outcome domain.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch rec := outcome.(type) {
	case domain.FraudAlert:
		r.alertCount++
		r.byFraudType[rec.FraudType]++
		if len(r.alerts) < cap(r.alerts) {
			r.alerts = append(r.alerts, rec)
		} else {
			r.alerts[r.alertNext] = rec
			r.alertNext = (r.alertNext + 1) % cap(r.alerts)
		}
	case domain.ErrorRecord:
		r.errCount++
		if len(r.errs) < cap(r.errs) {
			r.errs = append(r.errs, rec)
		} else {
			r.errs[r.errNext] = rec
			r.errNext = (r.errNext + 1) % cap(r.errs)
		}
	default:
		return fmt.Errorf("unknown outcome variant %T", outcome)
	}

	return nil
}

// RecentAlerts returns up to limit alerts, newest first.
func (r *AlertRepository) RecentAlerts(ctx context.Context, limit int) ([]domain.FraudAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.alerts)
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]domain.FraudAlert, 0, limit)
	for i := 0; i < limit; i++ {
		// alertNext is the oldest slot once the buffer wrapped, so the
		// newest entry sits just before it.
		idx := (r.alertNext - 1 - i + 2*n) % n
		result = append(result, r.alerts[idx])
	}
	return result, nil
}

// RecentErrors returns up to limit error records, newest first.
func (r *AlertRepository) RecentErrors(ctx context.Context, limit int) ([]domain.ErrorRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.errs)
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]domain.ErrorRecord, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (r.errNext - 1 - i + 2*n) % n
		result = append(result, r.errs[idx])
	}
	return result, nil
}

func (r *AlertRepository) Stats(ctx context.Context) (repository.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byType := make(map[domain.FraudType]int64, len(r.byFraudType))
	for k, v := range r.byFraudType {
		byType[k] = v
	}

	return repository.Stats{
		Alerts:      r.alertCount,
		Errors:      r.errCount,
		ByFraudType: byType,
	}, nil
}
