package domain

// Transaction is a single financial purchase event. Instances are created
// once by a source, validated on ingest and never mutated afterwards, so
// they can be fanned out to rule branches without copying or locking.
type Transaction struct {
	TransactionID string  `json:"transaction_id"`
	UserID        string  `json:"user_id"`
	Amount        float64 `json:"amount"`
	Merchant      string  `json:"merchant"`
	Category      string  `json:"category"`
	Timestamp     int64   `json:"timestamp"`
	Location      string  `json:"location"`
}
