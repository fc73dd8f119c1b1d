package processor

import (
	"strings"
	"testing"

	"fraudstream/internal/domain"
)

func sampleTransaction() domain.Transaction {
	return domain.Transaction{
		TransactionID: "txn_1",
		UserID:        "user_0001",
		Amount:        5000,
		Merchant:      "Shell",
		Category:      "gas",
		Timestamp:     1700000000000,
		Location:      "New York",
	}
}

func TestSynthesizer_HighAmountRiskScoreScalesWithAmount(t *testing.T) {
	s := NewSynthesizer(nil)

	cases := []struct {
		amount float64
		want   float64
	}{
		{amount: 5000, want: 50},
		{amount: 6000, want: 60},
		{amount: 12000, want: 100}, // clamped
		{amount: 0, want: 0},
	}

	for _, tc := range cases {
		tx := sampleTransaction()
		tx.Amount = tc.amount
		alert := s.Synthesize(tx, domain.FraudHighAmount, 90)
		if alert.RiskScore != tc.want {
			t.Errorf("amount=%.0f: expected risk score %.1f, got %.1f", tc.amount, tc.want, alert.RiskScore)
		}
	}
}

func TestSynthesizer_ConstantScoresIgnoreTransactionContent(t *testing.T) {
	s := NewSynthesizer(nil)

	for _, amount := range []float64{1, 500, 999999} {
		tx := sampleTransaction()
		tx.Amount = amount

		if got := s.Synthesize(tx, domain.FraudLocation, 10).RiskScore; got != 80 {
			t.Errorf("LOCATION_FRAUD: expected 80, got %.1f", got)
		}
		if got := s.Synthesize(tx, domain.FraudMerchant, 10).RiskScore; got != 85 {
			t.Errorf("MERCHANT_FRAUD: expected 85, got %.1f", got)
		}
	}
}

func TestSynthesizer_UnrecognizedFraudTypeFallsBackToBaseScore(t *testing.T) {
	s := NewSynthesizer(nil)
	tx := sampleTransaction()

	alert := s.Synthesize(tx, domain.FraudType("VELOCITY_FRAUD"), 72.5)

	if alert.RiskScore != 72.5 {
		t.Errorf("expected base risk score 72.5 verbatim, got %.1f", alert.RiskScore)
	}
	if alert.Reason != "Suspicious transaction detected" {
		t.Errorf("expected generic reason, got %q", alert.Reason)
	}
}

func TestSynthesizer_BaseScoreIsClamped(t *testing.T) {
	s := NewSynthesizer(nil)
	tx := sampleTransaction()

	if got := s.Synthesize(tx, domain.FraudType("X"), 150).RiskScore; got != 100 {
		t.Errorf("expected clamp to 100, got %.1f", got)
	}
	if got := s.Synthesize(tx, domain.FraudType("X"), -5).RiskScore; got != 0 {
		t.Errorf("expected clamp to 0, got %.1f", got)
	}
}

func TestSynthesizer_ReasonEmbedsRelevantField(t *testing.T) {
	s := NewSynthesizer(nil)
	tx := sampleTransaction()
	tx.Amount = 6000
	tx.Location = "International"
	tx.Merchant = "Unknown_Merchant"

	if reason := s.Synthesize(tx, domain.FraudHighAmount, 90).Reason; !strings.Contains(reason, "6000.00") {
		t.Errorf("high amount reason should embed the amount, got %q", reason)
	}
	if reason := s.Synthesize(tx, domain.FraudLocation, 80).Reason; !strings.Contains(reason, "International") {
		t.Errorf("location reason should embed the location, got %q", reason)
	}
	if reason := s.Synthesize(tx, domain.FraudMerchant, 85).Reason; !strings.Contains(reason, "Unknown_Merchant") {
		t.Errorf("merchant reason should embed the merchant, got %q", reason)
	}
}

func TestSynthesizer_AlertCarriesTransactionSnapshot(t *testing.T) {
	s := NewSynthesizer(nil)
	tx := sampleTransaction()

	alert := s.Synthesize(tx, domain.FraudHighAmount, 90)

	if alert.TransactionID != tx.TransactionID || alert.UserID != tx.UserID {
		t.Errorf("alert must copy transaction identity, got %+v", alert)
	}
	if alert.Timestamp != tx.Timestamp {
		t.Errorf("alert must copy the transaction timestamp, got %d", alert.Timestamp)
	}
	if alert.OriginalTransaction != tx {
		t.Errorf("alert must embed the full original transaction, got %+v", alert.OriginalTransaction)
	}
}

func TestSynthesizer_AlertIDsAreUnique(t *testing.T) {
	s := NewSynthesizer(nil)
	tx := sampleTransaction()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		alert := s.Synthesize(tx, domain.FraudHighAmount, 90)
		if _, dup := seen[alert.AlertID]; dup {
			t.Fatalf("duplicate alert id %s", alert.AlertID)
		}
		seen[alert.AlertID] = struct{}{}
	}
}
