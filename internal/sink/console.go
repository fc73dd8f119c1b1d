package sink

import (
	"context"
	"fmt"
	"log/slog"

	"fraudstream/internal/domain"
)

var _ Sink = (*ConsoleSink)(nil)

// ConsoleSink logs every outcome. Alerts go out at warn level with the
// full detail set; error records are structurally distinct (no alert
// fields, an "error" attribute instead) so the two are tellable apart in
// the log stream without parsing payloads.
type ConsoleSink struct {
	logger *slog.Logger
}

func NewConsoleSink(logger *slog.Logger) *ConsoleSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleSink{logger: logger}
}

func (s *ConsoleSink) Write(ctx context.Context, outcome domain.Outcome) error {
	switch rec := outcome.(type) {
	case domain.FraudAlert:
		s.logger.Warn("fraud alert detected",
			slog.String("alert_id", rec.AlertID),
			slog.String("fraud_type", string(rec.FraudType)),
			slog.String("risk_score", fmt.Sprintf("%.1f/100", rec.RiskScore)),
			slog.String("user_id", rec.UserID),
			slog.String("transaction_id", rec.TransactionID),
			slog.Float64("amount", rec.OriginalTransaction.Amount),
			slog.String("merchant", rec.OriginalTransaction.Merchant),
			slog.String("location", rec.OriginalTransaction.Location),
			slog.String("reason", rec.Reason))
	case domain.ErrorRecord:
		s.logger.Warn("record failed processing",
			slog.String("error", rec.Error),
			slog.String("original_data", rec.OriginalData))
	}
	return nil
}

func (s *ConsoleSink) Close() error {
	return nil
}
