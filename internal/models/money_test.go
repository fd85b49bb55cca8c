package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewMoneyFromFloatRounds(t *testing.T) {
	if got := NewMoneyFromFloat(19.999).String(); got != "20.00" {
		t.Fatalf("expected 20.00, got %s", got)
	}
	if got := NewMoneyFromFloat(750000).String(); got != "750000.00" {
		t.Fatalf("expected 750000.00, got %s", got)
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyFromDecimal(decimal.NewFromInt(500000))
	payload, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(payload) != `"500000.00"` {
		t.Fatalf("expected quoted fixed-2 string, got %s", payload)
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"19.995"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if fromString.String() != "20.00" {
		t.Fatalf("expected 20.00 from string form, got %s", fromString.String())
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`42.5`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromNumber.String() != "42.50" {
		t.Fatalf("expected 42.50 from numeric form, got %s", fromNumber.String())
	}
}
