package service

import (
	"testing"
	"time"

	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/models"
	"github.com/eskept/pricing-engine/internal/repository"

	"github.com/shopspring/decimal"
)

func TestResolvePriceSelectsCheapest(t *testing.T) {
	db := newTestDB(t)
	productRepo := repository.NewProductRepository(db)
	priceRuleRepo := repository.NewPriceRuleRepository(db)
	svc := NewPricingService(productRepo, priceRuleRepo)

	product := seedProduct(t, db, "transfer", 500000, 20, 10)

	// Scoped discount: 500000 - 50000 = 450000.
	discount := &models.PriceRule{
		Code:            "PC2501010001",
		Name:            "scoped discount",
		AdjustmentType:  constants.AdjustmentTypeFixed,
		AdjustmentValue: models.AdjustmentValue{FixedVND: fixedVNDPtr(-50000)},
		TimeRangeType:   constants.TimeRangeTypePeriod,
		IsActive:        true,
		Products:        []models.Product{*product},
	}
	if err := priceRuleRepo.Create(discount); err != nil {
		t.Fatalf("create discount rule failed: %v", err)
	}

	// Catalog-wide surcharge: 500000 * 1.10 = 550000.
	surcharge := &models.PriceRule{
		Code:            "PC2501010002",
		Name:            "global surcharge",
		AdjustmentType:  constants.AdjustmentTypePercentage,
		AdjustmentValue: models.AdjustmentValue{Percentage: pctPtr(10)},
		TimeRangeType:   constants.TimeRangeTypePeriod,
		IsActive:        true,
	}
	if err := priceRuleRepo.Create(surcharge); err != nil {
		t.Fatalf("create surcharge rule failed: %v", err)
	}

	set, err := svc.LoadActiveRules()
	if err != nil {
		t.Fatalf("load active rules failed: %v", err)
	}

	best := svc.ResolvePrice(set, product, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))
	if best == nil {
		t.Fatal("expected a resolved price")
	}
	if best.RuleID != discount.ID {
		t.Fatalf("expected discount rule %d to win, got rule %d", discount.ID, best.RuleID)
	}
	if !best.PriceVND.Equal(decimal.NewFromInt(450000)) {
		t.Fatalf("expected 450000 VND, got %s", best.PriceVND)
	}
	if !best.BasePriceVND.Equal(decimal.NewFromInt(500000)) {
		t.Fatalf("expected base 500000 VND, got %s", best.BasePriceVND)
	}
}

func TestResolvePriceFallsBackToBase(t *testing.T) {
	db := newTestDB(t)
	productRepo := repository.NewProductRepository(db)
	priceRuleRepo := repository.NewPriceRuleRepository(db)
	svc := NewPricingService(productRepo, priceRuleRepo)

	product := seedProduct(t, db, "evisa", 1250000, 50, 100)

	// Weekend-only rule: does not apply on a Wednesday.
	weekend := &models.PriceRule{
		Code:            "PC2501010001",
		Name:            "weekend only",
		AdjustmentType:  constants.AdjustmentTypePercentage,
		AdjustmentValue: models.AdjustmentValue{Percentage: pctPtr(20)},
		TimeRangeType:   constants.TimeRangeTypeRecurringWeekday,
		TimeRangeValue:  models.TimeRangeValue{Weekdays: []string{"saturday", "sunday"}},
		IsActive:        true,
	}
	if err := priceRuleRepo.Create(weekend); err != nil {
		t.Fatalf("create weekend rule failed: %v", err)
	}

	set, err := svc.LoadActiveRules()
	if err != nil {
		t.Fatalf("load active rules failed: %v", err)
	}

	wednesday := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	best := svc.ResolvePrice(set, product, wednesday)
	if best == nil {
		t.Fatal("expected a base price fallback")
	}
	if best.RuleID != 0 {
		t.Fatalf("expected no rule applied, got rule %d", best.RuleID)
	}
	if !best.PriceVND.Equal(decimal.NewFromInt(1250000)) {
		t.Fatalf("expected base 1250000 VND, got %s", best.PriceVND)
	}

	saturday := time.Date(2025, 1, 18, 12, 0, 0, 0, time.UTC)
	best = svc.ResolvePrice(set, product, saturday)
	if best.RuleID != weekend.ID {
		t.Fatalf("expected weekend rule on saturday, got rule %d", best.RuleID)
	}
	if !best.PriceVND.Equal(decimal.NewFromInt(1500000)) {
		t.Fatalf("expected 1500000 VND on saturday, got %s", best.PriceVND)
	}
}

func TestApplyRuleRejectsOutOfWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(repository.NewProductRepository(db), repository.NewPriceRuleRepository(db))
	product := seedProduct(t, db, "fasttrack", 750000, 30, 50)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rule := &models.PriceRule{
		ID:              1,
		AdjustmentType:  constants.AdjustmentTypePercentage,
		AdjustmentValue: models.AdjustmentValue{Percentage: pctPtr(10)},
		TimeRangeType:   constants.TimeRangeTypePeriod,
		TimeRangeValue:  models.TimeRangeValue{StartAt: &start},
	}

	before := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.ApplyRule(product, rule, before); err != ErrRuleNotInEffect {
		t.Fatalf("expected ErrRuleNotInEffect, got %v", err)
	}

	after := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	outcome, err := svc.ApplyRule(product, rule, after)
	if err != nil {
		t.Fatalf("apply rule failed: %v", err)
	}
	if !outcome.PriceVND.Equal(decimal.NewFromInt(825000)) {
		t.Fatalf("expected 825000 VND, got %s", outcome.PriceVND)
	}
}

func TestSelectCheapestTieBreaks(t *testing.T) {
	vnd := func(amount int64) models.Money {
		return models.NewMoneyFromDecimal(decimal.NewFromInt(amount))
	}

	if SelectCheapest(nil) != nil {
		t.Fatal("empty slate should yield nil")
	}

	// Same VND, lower USD wins.
	byUSD := SelectCheapest([]AppliedPrice{
		{RuleID: 1, PriceVND: vnd(100000), PriceUSD: vnd(5)},
		{RuleID: 2, PriceVND: vnd(100000), PriceUSD: vnd(4)},
	})
	if byUSD.RuleID != 2 {
		t.Fatalf("expected rule 2 to win on USD tie-break, got %d", byUSD.RuleID)
	}

	// Same VND and USD, lowest rule id wins.
	byID := SelectCheapest([]AppliedPrice{
		{RuleID: 9, PriceVND: vnd(100000), PriceUSD: vnd(4)},
		{RuleID: 3, PriceVND: vnd(100000), PriceUSD: vnd(4)},
		{RuleID: 5, PriceVND: vnd(100000), PriceUSD: vnd(4)},
	})
	if byID.RuleID != 3 {
		t.Fatalf("expected rule 3 to win on id tie-break, got %d", byID.RuleID)
	}

	// Lower VND always wins regardless of USD.
	byVND := SelectCheapest([]AppliedPrice{
		{RuleID: 1, PriceVND: vnd(90000), PriceUSD: vnd(50)},
		{RuleID: 2, PriceVND: vnd(100000), PriceUSD: vnd(1)},
	})
	if byVND.RuleID != 1 {
		t.Fatalf("expected rule 1 to win on VND, got %d", byVND.RuleID)
	}
}
