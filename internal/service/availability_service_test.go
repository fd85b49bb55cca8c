package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eskept/pricing-engine/internal/cache"
	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/models"
	"github.com/eskept/pricing-engine/internal/repository"
)

func newAvailabilityService(t *testing.T) (*AvailabilityService, *models.Product, *models.Product) {
	t.Helper()
	db := newTestDB(t)
	productRepo := repository.NewProductRepository(db)
	availabilityRepo := repository.NewAvailabilityRuleRepository(db)
	svc := NewAvailabilityService(productRepo, availabilityRepo, cache.NewMemoryStore(), nil)

	small := seedProduct(t, db, "transfer-small", 500000, 20, 20)
	large := seedProduct(t, db, "fasttrack-large", 750000, 30, 200)
	return svc, small, large
}

func TestBlockCreatesOneRulePerProductPerDay(t *testing.T) {
	svc, small, large := newAvailabilityService(t)
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

	rules, err := svc.Block(ctx, []uint{small.ID, large.ID}, start, end)
	if err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if len(rules) != 6 {
		t.Fatalf("expected 6 rules (2 products x 3 days), got %d", len(rules))
	}
	seen := make(map[string]struct{})
	for _, rule := range rules {
		if rule.Type != constants.AvailabilityTypeBlock {
			t.Fatalf("expected block rule, got %s", rule.Type)
		}
		if !strings.HasPrefix(rule.Code, constants.AvailabilityRuleCodePrefix) {
			t.Fatalf("expected %s code prefix, got %s", constants.AvailabilityRuleCodePrefix, rule.Code)
		}
		if _, dup := seen[rule.Code]; dup {
			t.Fatalf("duplicate rule code %s", rule.Code)
		}
		seen[rule.Code] = struct{}{}
	}

	computed, err := svc.ComputeRange([]uint{small.ID, large.ID}, start, end)
	if err != nil {
		t.Fatalf("compute range failed: %v", err)
	}
	if len(computed) != 6 {
		t.Fatalf("expected 6 computed entries, got %d", len(computed))
	}
	for _, entry := range computed {
		if entry.MaxCapacity != 0 {
			t.Fatalf("expected capacity 0 on blocked day %s, got %d", entry.Day, entry.MaxCapacity)
		}
	}
}

func TestUnblockRestoresNoLimit(t *testing.T) {
	svc, small, _ := newAvailabilityService(t)
	ctx := context.Background()

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Block(ctx, []uint{small.ID}, start, end); err != nil {
		t.Fatalf("block failed: %v", err)
	}
	removed, err := svc.Unblock(ctx, []uint{small.ID}, start, end)
	if err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed rules, got %d", removed)
	}

	computed, err := svc.ComputeRange([]uint{small.ID}, start, end)
	if err != nil {
		t.Fatalf("compute range failed: %v", err)
	}
	for _, entry := range computed {
		if entry.MaxCapacity != models.NoLimitMaxCapacity {
			t.Fatalf("expected no-limit capacity after unblock, got %d", entry.MaxCapacity)
		}
		if entry.RuleID != 0 {
			t.Fatalf("expected no rule bound after unblock, got rule %d", entry.RuleID)
		}
	}
}

func TestSetCapacityPercentage(t *testing.T) {
	svc, _, large := newAvailabilityService(t)
	ctx := context.Background()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if _, err := svc.SetCapacity(ctx, []uint{large.ID}, day, day, constants.AvailabilityTypePercentageQuantity, 50); err != nil {
		t.Fatalf("set capacity failed: %v", err)
	}

	computed, err := svc.ComputeRange([]uint{large.ID}, day, day)
	if err != nil {
		t.Fatalf("compute range failed: %v", err)
	}
	if len(computed) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(computed))
	}
	// 50% of the 200-unit ceiling.
	if computed[0].MaxCapacity != 100 {
		t.Fatalf("expected capacity 100, got %d", computed[0].MaxCapacity)
	}
}

func TestSetCapacityRejectsBadInput(t *testing.T) {
	svc, small, _ := newAvailabilityService(t)
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.SetCapacity(ctx, []uint{small.ID}, day, day, constants.AvailabilityTypeFixedQuantity, 0); !errors.Is(err, ErrAvailabilityRuleInvalid) {
		t.Fatalf("expected ErrAvailabilityRuleInvalid for fixed quantity 0, got %v", err)
	}
	if _, err := svc.SetCapacity(ctx, []uint{small.ID}, day.AddDate(0, 0, 1), day, constants.AvailabilityTypeBlock, 0); !errors.Is(err, ErrDateRangeInvalid) {
		t.Fatalf("expected ErrDateRangeInvalid for inverted range, got %v", err)
	}
	if _, err := svc.Block(ctx, []uint{9999}, day, day); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for unknown product, got %v", err)
	}
}

func TestSetCapacityKeepsSpanOnCreateFailure(t *testing.T) {
	db := newTestDB(t)
	productRepo := repository.NewProductRepository(db)
	availabilityRepo := repository.NewAvailabilityRuleRepository(db)
	svc := NewAvailabilityService(productRepo, availabilityRepo, cache.NewMemoryStore(), nil)
	ctx := context.Background()

	product := seedProduct(t, db, "transfer", 500000, 20, 20)
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Block(ctx, []uint{product.ID}, day, day); err != nil {
		t.Fatalf("block failed: %v", err)
	}

	// A malformed persisted code sorts above today's codes but fails the
	// sequencer's length check, so the next mutation restarts at 0001 and
	// collides with the block rule's code on insert.
	junk := &models.AvailabilityRule{
		Code:      constants.AvailabilityRuleCodePrefix + time.Now().Format("060102") + "00010",
		ProductID: product.ID,
		Day:       day.AddDate(0, 0, 30),
		Type:      constants.AvailabilityTypeNoLimit,
	}
	if err := db.Create(junk).Error; err != nil {
		t.Fatalf("create junk rule failed: %v", err)
	}

	if _, err := svc.SetCapacity(ctx, []uint{product.ID}, day, day, constants.AvailabilityTypeFixedQuantity, 5); err == nil {
		t.Fatal("expected set capacity to fail on the code collision")
	}

	// The failed recreate must roll back the delete: the day stays blocked.
	computed, err := svc.ComputeRange([]uint{product.ID}, day, day)
	if err != nil {
		t.Fatalf("compute range failed: %v", err)
	}
	if len(computed) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(computed))
	}
	if computed[0].MaxCapacity != 0 {
		t.Fatalf("expected blocked day to survive the failed mutation, got capacity %d", computed[0].MaxCapacity)
	}
}

func TestGroupAvailabilityByDay(t *testing.T) {
	grouped := GroupAvailabilityByDay([]ComputedAvailability{
		{ProductID: 1, Day: "2025-01-01", MaxCapacity: 0},
		{ProductID: 2, Day: "2025-01-01", MaxCapacity: 5},
		{ProductID: 1, Day: "2025-01-02", MaxCapacity: 10},
	})
	if len(grouped) != 2 {
		t.Fatalf("expected 2 days, got %d", len(grouped))
	}
	if len(grouped["2025-01-01"]) != 2 {
		t.Fatalf("expected 2 entries on 2025-01-01, got %d", len(grouped["2025-01-01"]))
	}
	if len(grouped["2025-01-02"]) != 1 {
		t.Fatalf("expected 1 entry on 2025-01-02, got %d", len(grouped["2025-01-02"]))
	}
}

func TestSelectMostRestrictive(t *testing.T) {
	product := &models.Product{ID: 1, MaxQuantity: 200}

	result, err := SelectMostRestrictive(product, []models.AvailabilityRule{
		{ID: 1, Type: constants.AvailabilityTypeFixedQuantity, Value: 50},
		{ID: 2, Type: constants.AvailabilityTypePercentageQuantity, Value: 10}, // 20 units
		{ID: 3, Type: constants.AvailabilityTypeNoLimit},
	})
	if err != nil {
		t.Fatalf("select most restrictive failed: %v", err)
	}
	if result.RuleID != 2 || result.MaxCapacity != 20 {
		t.Fatalf("expected rule 2 with capacity 20, got rule %d capacity %d", result.RuleID, result.MaxCapacity)
	}

	blocked, err := SelectMostRestrictive(product, []models.AvailabilityRule{
		{ID: 4, Type: constants.AvailabilityTypeBlock},
		{ID: 5, Type: constants.AvailabilityTypeFixedQuantity, Value: 5},
	})
	if err != nil {
		t.Fatalf("select most restrictive failed: %v", err)
	}
	if blocked.MaxCapacity != 0 || blocked.RuleID != 4 {
		t.Fatalf("expected block to win, got rule %d capacity %d", blocked.RuleID, blocked.MaxCapacity)
	}

	empty, err := SelectMostRestrictive(product, nil)
	if err != nil {
		t.Fatalf("select most restrictive failed: %v", err)
	}
	if empty.MaxCapacity != models.NoLimitMaxCapacity || empty.RuleID != 0 {
		t.Fatalf("expected no-limit default, got rule %d capacity %d", empty.RuleID, empty.MaxCapacity)
	}
}
