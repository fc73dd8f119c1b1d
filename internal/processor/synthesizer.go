package processor

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fraudstream/internal/domain"
)

// Synthesizer turns a (transaction, matched rule) pair into a fully
// populated FraudAlert with a computed risk score and a human-readable
// reason.
type Synthesizer struct {
	logger *slog.Logger
}

func NewSynthesizer(logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{logger: logger}
}

// Synthesize builds the alert for a transaction known to have matched the
// rule producing fraudType. baseRiskScore is used verbatim (clamped to
// [0,100]) for fraud types without a dedicated scoring policy; the three
// built-in types ignore it.
func (s *Synthesizer) Synthesize(tx domain.Transaction, fraudType domain.FraudType, baseRiskScore float64) domain.FraudAlert {
	return domain.FraudAlert{
		AlertID:             newAlertID(tx.Timestamp),
		TransactionID:       tx.TransactionID,
		UserID:              tx.UserID,
		FraudType:           fraudType,
		RiskScore:           s.riskScore(tx, fraudType, baseRiskScore),
		Reason:              reason(tx, fraudType),
		Timestamp:           tx.Timestamp,
		OriginalTransaction: tx,
	}
}

func (s *Synthesizer) riskScore(tx domain.Transaction, fraudType domain.FraudType, baseRiskScore float64) float64 {
	switch fraudType {
	case domain.FraudHighAmount:
		// Linear in the amount, $1000 -> 10 points, capped at 100.
		return clampScore(tx.Amount / 1000 * 10)
	case domain.FraudLocation:
		return 80
	case domain.FraudMerchant:
		return 85
	default:
		s.logger.Warn("no scoring policy for fraud type, using base risk score",
			slog.String("fraud_type", string(fraudType)),
			slog.String("transaction_id", tx.TransactionID),
			slog.Float64("base_risk_score", baseRiskScore))
		return clampScore(baseRiskScore)
	}
}

func reason(tx domain.Transaction, fraudType domain.FraudType) string {
	switch fraudType {
	case domain.FraudHighAmount:
		return fmt.Sprintf("Transaction amount $%.2f exceeds normal limits", tx.Amount)
	case domain.FraudLocation:
		return fmt.Sprintf("Transaction from suspicious location: %s", tx.Location)
	case domain.FraudMerchant:
		return fmt.Sprintf("Transaction with suspicious merchant: %s", tx.Merchant)
	default:
		return "Suspicious transaction detected"
	}
}

// newAlertID keeps the transaction timestamp visible in the ID and relies
// on a uuid fragment for uniqueness across alerts sharing a timestamp.
func newAlertID(timestamp int64) string {
	return fmt.Sprintf("alert_%d_%s", timestamp, uuid.NewString()[:8])
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
