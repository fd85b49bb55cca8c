package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/eskept/pricing-engine/internal/cache"
	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/logger"
	"github.com/eskept/pricing-engine/internal/models"
	"github.com/eskept/pricing-engine/internal/queue"
	"github.com/eskept/pricing-engine/internal/repository"

	"gorm.io/gorm"
)

// ComputedAvailability is the resolved capacity of one product on one
// day. RuleID 0 means no rule constrained the day.
type ComputedAvailability struct {
	ProductID   uint   `json:"product_id"`
	RuleID      uint   `json:"rule_id"`
	RuleCode    string `json:"rule_code,omitempty"`
	Day         string `json:"day"`
	Type        string `json:"type"`
	MaxCapacity int64  `json:"max_capacity"`
}

// AvailabilityService computes per-day capacities and manages the
// underlying per-day rules. Mutations replace the affected span
// wholesale, then invalidate the cached range and enqueue a recompute.
type AvailabilityService struct {
	productRepo      repository.ProductRepository
	availabilityRepo repository.AvailabilityRuleRepository
	store            cache.Store
	queueClient      *queue.Client
}

// NewAvailabilityService creates an availability service.
func NewAvailabilityService(
	productRepo repository.ProductRepository,
	availabilityRepo repository.AvailabilityRuleRepository,
	store cache.Store,
	queueClient *queue.Client,
) *AvailabilityService {
	return &AvailabilityService{
		productRepo:      productRepo,
		availabilityRepo: availabilityRepo,
		store:            store,
		queueClient:      queueClient,
	}
}

// CapacityFor turns one rule into a concrete capacity for a product.
func CapacityFor(product *models.Product, rule *models.AvailabilityRule) (int64, error) {
	if rule == nil {
		return models.NoLimitMaxCapacity, nil
	}
	switch rule.Type {
	case constants.AvailabilityTypeBlock:
		return 0, nil
	case constants.AvailabilityTypeNoLimit:
		return models.NoLimitMaxCapacity, nil
	case constants.AvailabilityTypeFixedQuantity:
		return int64(rule.Value), nil
	case constants.AvailabilityTypePercentageQuantity:
		if product == nil {
			return 0, ErrProductNotFound
		}
		return int64(math.Round(float64(product.MaxQuantity*rule.Value) / 100.0)), nil
	default:
		return 0, fmt.Errorf("%w: type %q", models.ErrRuleConfigInvalid, rule.Type)
	}
}

// SelectMostRestrictive resolves competing rules on the same day to the
// lowest capacity. Candidates start against the no-limit sentinel; a tie
// keeps the later candidate so newer rules win equal capacities.
func SelectMostRestrictive(product *models.Product, rules []models.AvailabilityRule) (ComputedAvailability, error) {
	result := ComputedAvailability{
		Type:        constants.AvailabilityTypeNoLimit,
		MaxCapacity: models.NoLimitMaxCapacity,
	}
	if product != nil {
		result.ProductID = product.ID
	}
	for i := range rules {
		rule := rules[i]
		capacity, err := CapacityFor(product, &rule)
		if err != nil {
			return result, err
		}
		if capacity <= result.MaxCapacity {
			result.RuleID = rule.ID
			result.RuleCode = rule.Code
			result.Day = rule.DayKey()
			result.Type = rule.Type
			result.MaxCapacity = capacity
		}
	}
	return result, nil
}

// ComputeRange resolves availability for the given products over
// [start, end], one entry per product per day. Products without a rule
// on a day yield a no-limit entry so consumers see the full grid.
func (s *AvailabilityService) ComputeRange(productIDs []uint, start, end time.Time) ([]ComputedAvailability, error) {
	start, end, err := normalizeDayRange(start, end)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.ListByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	rules, err := s.availabilityRepo.ListByRange(productIDs, start, end)
	if err != nil {
		return nil, err
	}

	type slot struct {
		productID uint
		day       string
	}
	grouped := make(map[slot][]models.AvailabilityRule)
	for _, rule := range rules {
		key := slot{productID: rule.ProductID, day: rule.DayKey()}
		grouped[key] = append(grouped[key], rule)
	}

	var results []ComputedAvailability
	for i := range products {
		product := &products[i]
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			dayKey := day.Format(constants.DayFormat)
			computed, err := SelectMostRestrictive(product, grouped[slot{productID: product.ID, day: dayKey}])
			if err != nil {
				logger.Warnw("availability_compute_failed", "product_id", product.ID, "day", dayKey, "error", err)
				continue
			}
			computed.Day = dayKey
			results = append(results, computed)
		}
	}
	return results, nil
}

// Block replaces the span with block rules, zeroing capacity for every
// listed product on every day in [start, end].
func (s *AvailabilityService) Block(ctx context.Context, productIDs []uint, start, end time.Time) ([]models.AvailabilityRule, error) {
	return s.replaceRange(ctx, productIDs, start, end, constants.AvailabilityTypeBlock, 0)
}

// Unblock removes every rule for the listed products in [start, end],
// restoring the no-limit default. Returns the number of removed rules.
func (s *AvailabilityService) Unblock(ctx context.Context, productIDs []uint, start, end time.Time) (int64, error) {
	start, end, err := normalizeDayRange(start, end)
	if err != nil {
		return 0, err
	}
	if err := s.ensureProductsExist(productIDs); err != nil {
		return 0, err
	}
	removed, err := s.availabilityRepo.DeleteRange(productIDs, start, end)
	if err != nil {
		return 0, err
	}
	s.afterMutation(ctx, productIDs, start, end)
	return removed, nil
}

// SetCapacity replaces the span with rules of the given type and value,
// e.g. a fixed quantity or a percentage of each product's ceiling.
func (s *AvailabilityService) SetCapacity(ctx context.Context, productIDs []uint, start, end time.Time, ruleType string, value int) ([]models.AvailabilityRule, error) {
	return s.replaceRange(ctx, productIDs, start, end, ruleType, value)
}

// replaceRange is the shared delete-then-recreate mutation. Rules are
// created per (product, day) with freshly sequenced codes. Delete and
// recreate run in one transaction so a failed insert never leaves the
// span wiped.
func (s *AvailabilityService) replaceRange(ctx context.Context, productIDs []uint, start, end time.Time, ruleType string, value int) ([]models.AvailabilityRule, error) {
	start, end, err := normalizeDayRange(start, end)
	if err != nil {
		return nil, err
	}
	if len(productIDs) == 0 {
		return nil, fmt.Errorf("%w: no products given", ErrAvailabilityRuleInvalid)
	}
	if err := models.ValidateAvailabilityValue(ruleType, value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAvailabilityRuleInvalid, err)
	}
	if err := s.ensureProductsExist(productIDs); err != nil {
		return nil, err
	}

	var rules []*models.AvailabilityRule
	err = s.availabilityRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.availabilityRepo.WithTx(tx)

		lastCode, err := repo.LastCodeForPrefix(constants.AvailabilityRuleCodePrefix)
		if err != nil {
			return err
		}
		sequencer := newCodeSequencer(constants.AvailabilityRuleCodePrefix, lastCode, time.Now())

		if _, err := repo.DeleteRange(productIDs, start, end); err != nil {
			return err
		}

		rules = rules[:0]
		for _, productID := range productIDs {
			for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
				rules = append(rules, &models.AvailabilityRule{
					Code:      sequencer.Next(),
					ProductID: productID,
					Day:       day,
					Type:      ruleType,
					Value:     value,
				})
			}
		}
		return repo.BulkCreate(rules)
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, productIDs, start, end)

	created := make([]models.AvailabilityRule, len(rules))
	for i, rule := range rules {
		created[i] = *rule
	}
	return created, nil
}

// afterMutation drops the cached availability range and enqueues a
// recompute. Both are best-effort; the rules themselves are durable.
func (s *AvailabilityService) afterMutation(ctx context.Context, productIDs []uint, start, end time.Time) {
	if s.store != nil {
		if err := s.store.Del(ctx, constants.CacheKeyAvailability); err != nil {
			logger.Warnw("availability_cache_invalidate_failed", "error", err)
		}
	}
	if s.queueClient != nil {
		err := s.queueClient.EnqueuePrecomputeAvailability(queue.PrecomputeAvailabilityPayload{
			ProductIDs: productIDs,
			StartDate:  start.Format(constants.DayFormat),
			EndDate:    end.Format(constants.DayFormat),
		})
		if err != nil {
			logger.Warnw("availability_recompute_enqueue_failed", "error", err)
		}
	}
}

func (s *AvailabilityService) ensureProductsExist(productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	products, err := s.productRepo.ListByIDs(productIDs)
	if err != nil {
		return err
	}
	if len(products) != len(productIDs) {
		return ErrProductNotFound
	}
	return nil
}

// GroupAvailabilityByDay buckets computed entries by calendar day for
// the public read surface.
func GroupAvailabilityByDay(entries []ComputedAvailability) map[string][]ComputedAvailability {
	grouped := make(map[string][]ComputedAvailability, len(entries))
	for _, entry := range entries {
		grouped[entry.Day] = append(grouped[entry.Day], entry)
	}
	return grouped
}

// List exposes the raw per-day rules for the admin surface.
func (s *AvailabilityService) List(filter repository.AvailabilityRuleListFilter) ([]models.AvailabilityRule, int64, error) {
	return s.availabilityRepo.List(filter)
}

// normalizeDayRange truncates both bounds to calendar days and rejects
// inverted ranges.
func normalizeDayRange(start, end time.Time) (time.Time, time.Time, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return start, end, ErrDateRangeInvalid
	}
	return start, end, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
