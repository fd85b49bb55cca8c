package models

import (
	"errors"
	"testing"
	"time"

	"github.com/eskept/pricing-engine/internal/constants"

	"github.com/shopspring/decimal"
)

func moneyPtr(amount int64) *Money {
	m := NewMoneyFromDecimal(decimal.NewFromInt(amount))
	return &m
}

func decimalPtr(amount int64) *decimal.Decimal {
	d := decimal.NewFromInt(amount)
	return &d
}

func TestAdjustmentValueValidateFixed(t *testing.T) {
	valid := AdjustmentValue{FixedVND: moneyPtr(-50000)}
	if err := valid.ValidateFor(constants.AdjustmentTypeFixed); err != nil {
		t.Fatalf("negative fixed amount should be valid (discount), got %v", err)
	}

	empty := AdjustmentValue{}
	if err := empty.ValidateFor(constants.AdjustmentTypeFixed); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for empty fixed payload, got %v", err)
	}

	mixed := AdjustmentValue{FixedVND: moneyPtr(1000), Percentage: decimalPtr(10)}
	if err := mixed.ValidateFor(constants.AdjustmentTypeFixed); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for fixed payload with percentage, got %v", err)
	}
}

func TestAdjustmentValueValidatePercentage(t *testing.T) {
	valid := AdjustmentValue{Percentage: decimalPtr(10)}
	if err := valid.ValidateFor(constants.AdjustmentTypePercentage); err != nil {
		t.Fatalf("10%% should be valid, got %v", err)
	}

	zero := AdjustmentValue{Percentage: decimalPtr(0)}
	if err := zero.ValidateFor(constants.AdjustmentTypePercentage); err != nil {
		t.Fatalf("0%% should be valid, got %v", err)
	}

	over := AdjustmentValue{Percentage: decimalPtr(150)}
	if err := over.ValidateFor(constants.AdjustmentTypePercentage); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for 150%%, got %v", err)
	}

	negative := AdjustmentValue{Percentage: decimalPtr(-5)}
	if err := negative.ValidateFor(constants.AdjustmentTypePercentage); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for -5%%, got %v", err)
	}

	missing := AdjustmentValue{FixedVND: moneyPtr(1000)}
	if err := missing.ValidateFor(constants.AdjustmentTypePercentage); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for percentage payload with fixed amount, got %v", err)
	}
}

func TestTimeRangeValueValidate(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	inverted := TimeRangeValue{StartAt: &start, EndAt: &end}
	if err := inverted.ValidateFor(constants.TimeRangeTypePeriod); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for inverted period, got %v", err)
	}

	open := TimeRangeValue{}
	if err := open.ValidateFor(constants.TimeRangeTypePeriod); err != nil {
		t.Fatalf("fully open period should be valid, got %v", err)
	}

	badWeekday := TimeRangeValue{Weekdays: []string{"caturday"}}
	if err := badWeekday.ValidateFor(constants.TimeRangeTypeRecurringWeekday); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for unknown weekday token, got %v", err)
	}

	goodWeekday := TimeRangeValue{Weekdays: []string{"saturday", "sunday"}}
	if err := goodWeekday.ValidateFor(constants.TimeRangeTypeRecurringWeekday); err != nil {
		t.Fatalf("weekend tokens should be valid, got %v", err)
	}

	badDay := TimeRangeValue{MonthDays: []int{0}}
	if err := badDay.ValidateFor(constants.TimeRangeTypeRecurringDayOfMonth); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for day 0, got %v", err)
	}
}

func TestValidateAvailabilityValue(t *testing.T) {
	if err := ValidateAvailabilityValue(constants.AvailabilityTypeBlock, -99); err != nil {
		t.Fatalf("block ignores value, got %v", err)
	}
	if err := ValidateAvailabilityValue(constants.AvailabilityTypeFixedQuantity, 0); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for fixed quantity 0, got %v", err)
	}
	if err := ValidateAvailabilityValue(constants.AvailabilityTypePercentageQuantity, 101); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for 101%%, got %v", err)
	}
	if err := ValidateAvailabilityValue("mystery", 1); !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for unknown type, got %v", err)
	}
}

func TestPriceRuleAppliesTo(t *testing.T) {
	global := PriceRule{}
	if !global.AppliesTo(42) {
		t.Fatal("rule with empty scope should apply to every product")
	}

	scoped := PriceRule{Products: []Product{{ID: 7}}}
	if !scoped.AppliesTo(7) {
		t.Fatal("scoped rule should apply to its product")
	}
	if scoped.AppliesTo(8) {
		t.Fatal("scoped rule should not apply outside its scope")
	}
}
