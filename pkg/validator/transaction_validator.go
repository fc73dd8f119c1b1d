package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fraudstream/internal/domain"
)

var ErrMalformedRecord = errors.New("malformed transaction record")

// rawPreviewLen bounds how much of a bad input is carried in an error
// record, matching the sink wire format.
const rawPreviewLen = 200

// MalformedRecordError describes a record that failed validation: either
// the payload was not valid JSON (Cause set) or one or more required
// fields were absent (Missing set). Raw holds a truncated copy of the
// offending input.
type MalformedRecordError struct {
	Missing []string
	Cause   error
	Raw     string
}

func (e *MalformedRecordError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing fields: [%s]", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid transaction JSON: %v", e.Cause)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// Record converts the error into its sink-visible shape.
func (e *MalformedRecordError) Record() domain.ErrorRecord {
	return domain.ErrorRecord{
		Error:        e.Error(),
		OriginalData: e.Raw,
	}
}

// rawTransaction mirrors the wire format with pointer fields so that an
// absent key is distinguishable from a zero value.
type rawTransaction struct {
	TransactionID *string  `json:"transaction_id"`
	UserID        *string  `json:"user_id"`
	Amount        *float64 `json:"amount"`
	Merchant      *string  `json:"merchant"`
	Category      *string  `json:"category"`
	Timestamp     *int64   `json:"timestamp"`
	Location      *string  `json:"location"`
}

type TransactionValidator struct{}

func NewTransactionValidator() *TransactionValidator {
	return &TransactionValidator{}
}

// Parse decodes a raw wire record into a Transaction. A record missing
// any of the seven required fields, carrying a wrong-typed field or a
// negative amount is rejected with a *MalformedRecordError; it is never
// repaired.
func (v *TransactionValidator) Parse(raw []byte) (domain.Transaction, error) {
	preview := truncate(raw)

	var rec rawTransaction
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Transaction{}, &MalformedRecordError{Cause: err, Raw: preview}
	}

	var missing []string
	if rec.TransactionID == nil {
		missing = append(missing, "transaction_id")
	}
	if rec.UserID == nil {
		missing = append(missing, "user_id")
	}
	if rec.Amount == nil {
		missing = append(missing, "amount")
	}
	if rec.Merchant == nil {
		missing = append(missing, "merchant")
	}
	if rec.Category == nil {
		missing = append(missing, "category")
	}
	if rec.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if rec.Location == nil {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return domain.Transaction{}, &MalformedRecordError{Missing: missing, Raw: preview}
	}

	if *rec.Amount < 0 {
		return domain.Transaction{}, &MalformedRecordError{
			Cause: fmt.Errorf("amount must be non-negative, got %.2f", *rec.Amount),
			Raw:   preview,
		}
	}

	return domain.Transaction{
		TransactionID: *rec.TransactionID,
		UserID:        *rec.UserID,
		Amount:        *rec.Amount,
		Merchant:      *rec.Merchant,
		Category:      *rec.Category,
		Timestamp:     *rec.Timestamp,
		Location:      *rec.Location,
	}, nil
}

func truncate(raw []byte) string {
	if len(raw) > rawPreviewLen {
		return string(raw[:rawPreviewLen])
	}
	return string(raw)
}
