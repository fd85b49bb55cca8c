package service

import (
	"context"
	"time"

	"github.com/eskept/pricing-engine/internal/cache"
	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/logger"
	"github.com/eskept/pricing-engine/internal/models"
	"github.com/eskept/pricing-engine/internal/queue"
	"github.com/eskept/pricing-engine/internal/repository"
)

// PriceRuleInput carries the mutable fields of a price rule. Nil
// pointers on update mean "leave unchanged"; a nil ProductIDs keeps the
// current scope while an empty non-nil slice clears it to catalog-wide.
type PriceRuleInput struct {
	Name            *string                 `json:"name"`
	Description     *string                 `json:"description"`
	AdjustmentType  *string                 `json:"adjustment_type"`
	AdjustmentValue *models.AdjustmentValue `json:"adjustment_value"`
	TimeRangeType   *string                 `json:"time_range_type"`
	TimeRangeValue  *models.TimeRangeValue  `json:"time_range_value"`
	IsActive        *bool                   `json:"is_active"`
	ProductIDs      *[]uint                 `json:"product_ids"`
}

// PriceRuleAdminService manages the rule lifecycle. Every successful
// mutation invalidates the price cache and enqueues a full recompute,
// since a rule change can reprice any product in its scope.
type PriceRuleAdminService struct {
	priceRuleRepo repository.PriceRuleRepository
	productRepo   repository.ProductRepository
	pricing       *PricingService
	store         cache.Store
	queueClient   *queue.Client
}

// NewPriceRuleAdminService creates a price rule admin service.
func NewPriceRuleAdminService(
	priceRuleRepo repository.PriceRuleRepository,
	productRepo repository.ProductRepository,
	pricing *PricingService,
	store cache.Store,
	queueClient *queue.Client,
) *PriceRuleAdminService {
	return &PriceRuleAdminService{
		priceRuleRepo: priceRuleRepo,
		productRepo:   productRepo,
		pricing:       pricing,
		store:         store,
		queueClient:   queueClient,
	}
}

// Create validates and persists a new rule with a freshly sequenced code.
func (s *PriceRuleAdminService) Create(ctx context.Context, input PriceRuleInput) (*models.PriceRule, error) {
	rule := &models.PriceRule{IsActive: true}
	if err := s.applyInput(rule, input); err != nil {
		return nil, err
	}

	lastCode, err := s.priceRuleRepo.LastCodeForPrefix(constants.PriceRuleCodePrefix)
	if err != nil {
		return nil, err
	}
	rule.Code = newCodeSequencer(constants.PriceRuleCodePrefix, lastCode, time.Now()).Next()

	if err := s.priceRuleRepo.Create(rule); err != nil {
		return nil, err
	}
	s.afterMutation(ctx)
	return rule, nil
}

// Update applies a partial update to an existing rule. The code is
// immutable and never touched.
func (s *PriceRuleAdminService) Update(ctx context.Context, id uint, input PriceRuleInput) (*models.PriceRule, error) {
	rule, err := s.priceRuleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrPriceRuleNotFound
	}
	if err := s.applyInput(rule, input); err != nil {
		return nil, err
	}
	if err := s.priceRuleRepo.Update(rule); err != nil {
		return nil, err
	}
	if input.ProductIDs != nil {
		if err := s.priceRuleRepo.ReplaceProducts(rule, rule.Products); err != nil {
			return nil, err
		}
	}
	s.afterMutation(ctx)
	return rule, nil
}

// applyInput copies set fields onto the rule, resolves the product
// scope and validates the result as one unit.
func (s *PriceRuleAdminService) applyInput(rule *models.PriceRule, input PriceRuleInput) error {
	if input.Name != nil {
		rule.Name = *input.Name
	}
	if input.Description != nil {
		rule.Description = *input.Description
	}
	if input.AdjustmentType != nil {
		rule.AdjustmentType = *input.AdjustmentType
	}
	if input.AdjustmentValue != nil {
		rule.AdjustmentValue = *input.AdjustmentValue
	}
	if input.TimeRangeType != nil {
		rule.TimeRangeType = *input.TimeRangeType
	}
	if input.TimeRangeValue != nil {
		rule.TimeRangeValue = *input.TimeRangeValue
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if input.ProductIDs != nil {
		ids := *input.ProductIDs
		if len(ids) == 0 {
			rule.Products = nil
		} else {
			products, err := s.productRepo.ListByIDs(ids)
			if err != nil {
				return err
			}
			if len(products) != len(ids) {
				return ErrProductNotFound
			}
			rule.Products = products
		}
	}
	if err := rule.Validate(); err != nil {
		return err
	}
	return nil
}

// SetActive toggles a rule on or off.
func (s *PriceRuleAdminService) SetActive(ctx context.Context, id uint, active bool) error {
	rule, err := s.priceRuleRepo.GetByID(id)
	if err != nil {
		return err
	}
	if rule == nil {
		return ErrPriceRuleNotFound
	}
	if err := s.priceRuleRepo.SetActive(id, active); err != nil {
		return err
	}
	s.afterMutation(ctx)
	return nil
}

// Delete soft-deletes a rule.
func (s *PriceRuleAdminService) Delete(ctx context.Context, id uint) error {
	rule, err := s.priceRuleRepo.GetByID(id)
	if err != nil {
		return err
	}
	if rule == nil {
		return ErrPriceRuleNotFound
	}
	if err := s.priceRuleRepo.Delete(id); err != nil {
		return err
	}
	s.afterMutation(ctx)
	return nil
}

// Get fetches one rule with its product scope.
func (s *PriceRuleAdminService) Get(id uint) (*models.PriceRule, error) {
	rule, err := s.priceRuleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrPriceRuleNotFound
	}
	return rule, nil
}

// List fetches rules with filtering and pagination.
func (s *PriceRuleAdminService) List(filter repository.PriceRuleListFilter) ([]models.PriceRule, int64, error) {
	return s.priceRuleRepo.List(filter)
}

// PreviewPrice resolves a product's price at an arbitrary instant
// straight from the rule store, bypassing the cache. Admins use it to
// check a rule before activating it.
func (s *PriceRuleAdminService) PreviewPrice(productID uint, at time.Time) (*AppliedPrice, error) {
	return s.pricing.ResolvePriceByID(productID, at)
}

// PreviewRule applies a draft rule to a product without persisting
// anything, so admins can see the adjusted price before saving.
func (s *PriceRuleAdminService) PreviewRule(productID uint, input PriceRuleInput, at time.Time) (*AppliedPrice, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	rule := &models.PriceRule{IsActive: true}
	if err := s.applyInput(rule, input); err != nil {
		return nil, err
	}
	return s.pricing.ApplyRule(product, rule, at)
}

// afterMutation drops the cached prices and enqueues a full recompute.
// Best-effort: the rule change itself is already durable.
func (s *PriceRuleAdminService) afterMutation(ctx context.Context) {
	if s.store != nil {
		if err := s.store.Del(ctx, constants.CacheKeyPrices); err != nil {
			logger.Warnw("price_cache_invalidate_failed", "error", err)
		}
	}
	if s.queueClient != nil {
		if err := s.queueClient.EnqueuePrecomputeAllPrices(); err != nil {
			logger.Warnw("price_recompute_enqueue_failed", "error", err)
		}
	}
}
