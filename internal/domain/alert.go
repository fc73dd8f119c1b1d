package domain

type FraudType string

const (
	FraudHighAmount FraudType = "HIGH_AMOUNT_FRAUD"
	FraudMerchant   FraudType = "MERCHANT_FRAUD"
	FraudLocation   FraudType = "LOCATION_FRAUD"
)

// FraudAlert is produced once per (transaction, matched rule) pair and is
// terminal: nothing downstream mutates it or links alerts together. The
// triggering transaction is embedded in full for audit.
type FraudAlert struct {
	AlertID             string      `json:"alert_id"`
	TransactionID       string      `json:"transaction_id"`
	UserID              string      `json:"user_id"`
	FraudType           FraudType   `json:"fraud_type"`
	RiskScore           float64     `json:"risk_score"`
	Reason              string      `json:"reason"`
	Timestamp           int64       `json:"timestamp"`
	OriginalTransaction Transaction `json:"original_transaction"`
}

// ErrorRecord is the sink-visible shape of a record that could not be
// processed. On the wire it is discriminated from FraudAlert by the
// presence of the "error" key; OriginalData holds at most the first 200
// characters of the raw input.
type ErrorRecord struct {
	Error        string `json:"error"`
	OriginalData string `json:"original_data"`
}

// Outcome is what the pipeline emits: either a FraudAlert or an
// ErrorRecord. Consumers type-switch over the two variants instead of
// probing decoded JSON for an "error" key.
type Outcome interface {
	outcome()
}

func (FraudAlert) outcome()  {}
func (ErrorRecord) outcome() {}
