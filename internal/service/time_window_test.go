package service

import (
	"testing"
	"time"

	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/models"
)

func TestRuleInEffectPeriod(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	window := models.TimeRangeValue{StartAt: &start, EndAt: &end}

	inside := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	if ok, err := RuleInEffect(constants.TimeRangeTypePeriod, window, inside); err != nil || !ok {
		t.Fatalf("expected in effect inside period, got ok=%v err=%v", ok, err)
	}
	if ok, _ := RuleInEffect(constants.TimeRangeTypePeriod, window, start); !ok {
		t.Fatal("start bound should be inclusive")
	}
	if ok, _ := RuleInEffect(constants.TimeRangeTypePeriod, window, end); !ok {
		t.Fatal("end bound should be inclusive")
	}
	before := start.Add(-time.Second)
	if ok, _ := RuleInEffect(constants.TimeRangeTypePeriod, window, before); ok {
		t.Fatal("instant before start should be out of effect")
	}

	openEnded := models.TimeRangeValue{StartAt: &start}
	farFuture := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	if ok, _ := RuleInEffect(constants.TimeRangeTypePeriod, openEnded, farFuture); !ok {
		t.Fatal("missing end bound should be unbounded")
	}
}

func TestRuleInEffectRecurringWeekday(t *testing.T) {
	window := models.TimeRangeValue{Weekdays: []string{"saturday", "sunday"}}

	saturday := time.Date(2025, 1, 4, 9, 0, 0, 0, time.UTC)
	if ok, _ := RuleInEffect(constants.TimeRangeTypeRecurringWeekday, window, saturday); !ok {
		t.Fatal("saturday should match weekend rule")
	}
	monday := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	if ok, _ := RuleInEffect(constants.TimeRangeTypeRecurringWeekday, window, monday); ok {
		t.Fatal("monday should not match weekend rule")
	}
}

func TestRuleInEffectRecurringDayOfMonth(t *testing.T) {
	window := models.TimeRangeValue{MonthDays: []int{1, 15}}

	first := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if ok, _ := RuleInEffect(constants.TimeRangeTypeRecurringDayOfMonth, window, first); !ok {
		t.Fatal("the 1st should match")
	}
	second := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	if ok, _ := RuleInEffect(constants.TimeRangeTypeRecurringDayOfMonth, window, second); ok {
		t.Fatal("the 2nd should not match")
	}
}

func TestRuleInEffectUnknownType(t *testing.T) {
	if _, err := RuleInEffect("mystery", models.TimeRangeValue{}, time.Now()); err == nil {
		t.Fatal("expected an error for an unknown time range type")
	}
}
