package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/eskept/pricing-engine/internal/cache"
	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/models"
	"github.com/eskept/pricing-engine/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func idsPtr(ids ...uint) *[]uint { return &ids }

func newAdminService(t *testing.T) (*PriceRuleAdminService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	productRepo := repository.NewProductRepository(db)
	ruleRepo := repository.NewPriceRuleRepository(db)
	pricing := NewPricingService(productRepo, ruleRepo)
	svc := NewPriceRuleAdminService(ruleRepo, productRepo, pricing, cache.NewMemoryStore(), nil)
	return svc, db
}

func percentageInput(name string, pct int64) PriceRuleInput {
	return PriceRuleInput{
		Name:            strPtr(name),
		AdjustmentType:  strPtr(constants.AdjustmentTypePercentage),
		AdjustmentValue: &models.AdjustmentValue{Percentage: pctPtr(pct)},
		TimeRangeType:   strPtr(constants.TimeRangeTypePeriod),
		TimeRangeValue:  &models.TimeRangeValue{},
	}
}

func TestCreateSequencesDailyCodes(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, percentageInput("first", 10))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := svc.Create(ctx, percentageInput("second", 20))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	day := time.Now().Format("060102")
	if want := fmt.Sprintf("PC%s0001", day); first.Code != want {
		t.Fatalf("expected first code %s, got %s", want, first.Code)
	}
	if want := fmt.Sprintf("PC%s0002", day); second.Code != want {
		t.Fatalf("expected second code %s, got %s", want, second.Code)
	}
	if !first.IsActive {
		t.Fatal("new rules should default to active")
	}
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, percentageInput("too steep", 150)); !errors.Is(err, models.ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for 150%%, got %v", err)
	}

	mixed := percentageInput("mixed", 10)
	mixed.AdjustmentValue.FixedVND = fixedVNDPtr(1000)
	if _, err := svc.Create(ctx, mixed); !errors.Is(err, models.ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid for mixed payload, got %v", err)
	}

	scoped := percentageInput("phantom scope", 10)
	scoped.ProductIDs = idsPtr(9999)
	if _, err := svc.Create(ctx, scoped); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for unknown scope, got %v", err)
	}
}

func TestUpdateScopeAndMissingRule(t *testing.T) {
	svc, db := newAdminService(t)
	ctx := context.Background()

	product := seedProduct(t, db, "transfer", 500000, 20, 10)

	input := percentageInput("scoped", 10)
	input.ProductIDs = idsPtr(product.ID)
	rule, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(rule.Products) != 1 {
		t.Fatalf("expected 1 scoped product, got %d", len(rule.Products))
	}

	// Empty non-nil scope clears the rule to catalog-wide.
	updated, err := svc.Update(ctx, rule.ID, PriceRuleInput{ProductIDs: idsPtr()})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Products) != 0 {
		t.Fatalf("expected cleared scope, got %d products", len(updated.Products))
	}
	if updated.Code != rule.Code {
		t.Fatalf("code must be immutable, got %s -> %s", rule.Code, updated.Code)
	}

	if _, err := svc.Update(ctx, 9999, PriceRuleInput{Name: strPtr("ghost")}); !errors.Is(err, ErrPriceRuleNotFound) {
		t.Fatalf("expected ErrPriceRuleNotFound, got %v", err)
	}
	if err := svc.SetActive(ctx, 9999, false); !errors.Is(err, ErrPriceRuleNotFound) {
		t.Fatalf("expected ErrPriceRuleNotFound from SetActive, got %v", err)
	}
	if err := svc.Delete(ctx, 9999); !errors.Is(err, ErrPriceRuleNotFound) {
		t.Fatalf("expected ErrPriceRuleNotFound from Delete, got %v", err)
	}
}

func TestSetActiveExcludesRuleFromResolution(t *testing.T) {
	svc, db := newAdminService(t)
	ctx := context.Background()

	product := seedProduct(t, db, "evisa", 1000000, 40, 100)
	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	rule, err := svc.Create(ctx, percentageInput("surcharge", 10))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	preview, err := svc.PreviewPrice(product.ID, at)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !preview.PriceVND.Equal(decimal.NewFromInt(1100000)) {
		t.Fatalf("expected 1100000 VND with surcharge, got %s", preview.PriceVND)
	}

	if err := svc.SetActive(ctx, rule.ID, false); err != nil {
		t.Fatalf("set active failed: %v", err)
	}
	preview, err = svc.PreviewPrice(product.ID, at)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview.RuleID != 0 {
		t.Fatalf("expected base price after deactivation, got rule %d", preview.RuleID)
	}
	if !preview.PriceVND.Equal(decimal.NewFromInt(1000000)) {
		t.Fatalf("expected base 1000000 VND, got %s", preview.PriceVND)
	}
}

func TestPreviewRuleDoesNotPersist(t *testing.T) {
	svc, db := newAdminService(t)

	product := seedProduct(t, db, "fasttrack", 800000, 32, 50)
	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	preview, err := svc.PreviewRule(product.ID, percentageInput("draft", 25), at)
	if err != nil {
		t.Fatalf("preview rule failed: %v", err)
	}
	if !preview.PriceVND.Equal(decimal.NewFromInt(1000000)) {
		t.Fatalf("expected 1000000 VND from draft uplift, got %s", preview.PriceVND)
	}

	// Nothing was saved: the live resolution still yields the base price.
	resolved, err := svc.PreviewPrice(product.ID, at)
	if err != nil {
		t.Fatalf("preview price failed: %v", err)
	}
	if resolved.RuleID != 0 || !resolved.PriceVND.Equal(decimal.NewFromInt(800000)) {
		t.Fatalf("expected untouched base price, got rule %d price %s", resolved.RuleID, resolved.PriceVND)
	}

	if _, err := svc.PreviewRule(9999, percentageInput("draft", 10), at); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDeleteKeepsCodeSequenceMonotonic(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, percentageInput("short lived", 10))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(first.ID); !errors.Is(err, ErrPriceRuleNotFound) {
		t.Fatalf("expected deleted rule to be gone, got %v", err)
	}

	// Soft-deleted codes still count toward the daily sequence.
	second, err := svc.Create(ctx, percentageInput("successor", 10))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	day := time.Now().Format("060102")
	if want := fmt.Sprintf("PC%s0002", day); second.Code != want {
		t.Fatalf("expected code %s after soft delete, got %s", want, second.Code)
	}
}
