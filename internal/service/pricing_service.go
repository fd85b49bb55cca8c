package service

import (
	"time"

	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/logger"
	"github.com/eskept/pricing-engine/internal/models"
	"github.com/eskept/pricing-engine/internal/repository"

	"github.com/shopspring/decimal"
)

// AppliedPrice is one rule applied to one product. RuleID 0 means the
// base price with no rule applied.
type AppliedPrice struct {
	ProductID    uint         `json:"product_id"`
	ProductName  string       `json:"product_name"`
	RuleID       uint         `json:"rule_id"`
	RuleCode     string       `json:"rule_code"`
	RuleName     string       `json:"rule_name"`
	BasePriceVND models.Money `json:"base_price_vnd"`
	PriceVND     models.Money `json:"price_vnd"`
	BasePriceUSD models.Money `json:"base_price_usd"`
	PriceUSD     models.Money `json:"price_usd"`
}

// PricingService resolves the selling price of products: it gathers
// candidate rules, applies each, and selects the cheapest outcome.
type PricingService struct {
	productRepo   repository.ProductRepository
	priceRuleRepo repository.PriceRuleRepository
}

// NewPricingService creates a pricing service.
func NewPricingService(productRepo repository.ProductRepository, priceRuleRepo repository.PriceRuleRepository) *PricingService {
	return &PricingService{productRepo: productRepo, priceRuleRepo: priceRuleRepo}
}

// RuleSet holds active rules partitioned once so bulk resolution does
// not rescan the full rule list per product.
type RuleSet struct {
	global    []models.PriceRule
	byProduct map[uint][]models.PriceRule
}

// LoadActiveRules fetches active rules and partitions them into
// catalog-wide rules and per-product scopes.
func (s *PricingService) LoadActiveRules() (*RuleSet, error) {
	rules, err := s.priceRuleRepo.ListActive()
	if err != nil {
		return nil, err
	}
	set := &RuleSet{byProduct: make(map[uint][]models.PriceRule)}
	for _, rule := range rules {
		if len(rule.Products) == 0 {
			set.global = append(set.global, rule)
			continue
		}
		for _, product := range rule.Products {
			set.byProduct[product.ID] = append(set.byProduct[product.ID], rule)
		}
	}
	return set, nil
}

// CandidatesFor returns the rules whose scope covers the product and
// whose window covers the instant. Rules with a broken window payload
// are skipped with a warning rather than failing the whole resolution.
func (s *PricingService) CandidatesFor(set *RuleSet, productID uint, at time.Time) []models.PriceRule {
	if set == nil {
		return nil
	}
	scoped := make([]models.PriceRule, 0, len(set.global)+len(set.byProduct[productID]))
	scoped = append(scoped, set.global...)
	scoped = append(scoped, set.byProduct[productID]...)

	candidates := make([]models.PriceRule, 0, len(scoped))
	for _, rule := range scoped {
		ok, err := RuleInEffect(rule.TimeRangeType, rule.TimeRangeValue, at)
		if err != nil {
			logger.Warnw("price_rule_window_invalid", "rule_id", rule.ID, "error", err)
			continue
		}
		if ok {
			candidates = append(candidates, rule)
		}
	}
	return candidates
}

// ApplyRule computes the adjusted price of a product under one rule.
// Returns ErrRuleNotInEffect when the rule's window misses the instant.
func (s *PricingService) ApplyRule(product *models.Product, rule *models.PriceRule, at time.Time) (*AppliedPrice, error) {
	if product == nil {
		return nil, ErrProductNotFound
	}
	if rule == nil {
		return nil, ErrPriceRuleNotFound
	}
	inEffect, err := RuleInEffect(rule.TimeRangeType, rule.TimeRangeValue, at)
	if err != nil {
		return nil, err
	}
	if !inEffect {
		return nil, ErrRuleNotInEffect
	}
	priceVND, priceUSD, err := applyAdjustment(product, rule)
	if err != nil {
		return nil, err
	}
	return &AppliedPrice{
		ProductID:    product.ID,
		ProductName:  product.Name,
		RuleID:       rule.ID,
		RuleCode:     rule.Code,
		RuleName:     rule.Name,
		BasePriceVND: product.BasePriceVND,
		PriceVND:     priceVND,
		BasePriceUSD: product.BasePriceUSD,
		PriceUSD:     priceUSD,
	}, nil
}

// applyAdjustment runs the arithmetic for one rule. Fixed amounts add to
// the base per currency and may be negative; percentages scale both
// currencies by (1 + p/100).
func applyAdjustment(product *models.Product, rule *models.PriceRule) (models.Money, models.Money, error) {
	switch rule.AdjustmentType {
	case constants.AdjustmentTypeFixed:
		vnd := product.BasePriceVND.Decimal
		usd := product.BasePriceUSD.Decimal
		if rule.AdjustmentValue.FixedVND != nil {
			vnd = vnd.Add(rule.AdjustmentValue.FixedVND.Decimal)
		}
		if rule.AdjustmentValue.FixedUSD != nil {
			usd = usd.Add(rule.AdjustmentValue.FixedUSD.Decimal)
		}
		return models.NewMoneyFromDecimal(vnd), models.NewMoneyFromDecimal(usd), nil
	case constants.AdjustmentTypePercentage:
		if rule.AdjustmentValue.Percentage == nil {
			return models.Money{}, models.Money{}, models.ErrRuleConfigInvalid
		}
		factor := decimal.NewFromInt(100).Add(*rule.AdjustmentValue.Percentage)
		hundred := decimal.NewFromInt(100)
		vnd := product.BasePriceVND.Decimal.Mul(factor).Div(hundred)
		usd := product.BasePriceUSD.Decimal.Mul(factor).Div(hundred)
		return models.NewMoneyFromDecimal(vnd), models.NewMoneyFromDecimal(usd), nil
	default:
		return models.Money{}, models.Money{}, models.ErrRuleConfigInvalid
	}
}

// BasePrice builds the no-rule fallback outcome for a product.
func (s *PricingService) BasePrice(product *models.Product) *AppliedPrice {
	if product == nil {
		return nil
	}
	return &AppliedPrice{
		ProductID:    product.ID,
		ProductName:  product.Name,
		BasePriceVND: product.BasePriceVND,
		PriceVND:     product.BasePriceVND,
		BasePriceUSD: product.BasePriceUSD,
		PriceUSD:     product.BasePriceUSD,
	}
}

// SelectCheapest picks the outcome with the lowest VND price, breaking
// ties by lowest USD price, then by lowest rule id so the result is
// deterministic. Returns nil for an empty slate.
func SelectCheapest(outcomes []AppliedPrice) *AppliedPrice {
	if len(outcomes) == 0 {
		return nil
	}
	best := outcomes[0]
	for _, candidate := range outcomes[1:] {
		cmp := candidate.PriceVND.Cmp(best.PriceVND.Decimal)
		if cmp > 0 {
			continue
		}
		if cmp < 0 {
			best = candidate
			continue
		}
		cmp = candidate.PriceUSD.Cmp(best.PriceUSD.Decimal)
		if cmp > 0 {
			continue
		}
		if cmp < 0 {
			best = candidate
			continue
		}
		if candidate.RuleID < best.RuleID {
			best = candidate
		}
	}
	return &best
}

// ResolvePrice runs the full pipeline for one product at one instant:
// candidates, application, cheapest selection, base-price fallback.
func (s *PricingService) ResolvePrice(set *RuleSet, product *models.Product, at time.Time) *AppliedPrice {
	if product == nil {
		return nil
	}
	candidates := s.CandidatesFor(set, product.ID, at)
	outcomes := make([]AppliedPrice, 0, len(candidates))
	for i := range candidates {
		rule := candidates[i]
		outcome, err := s.ApplyRule(product, &rule, at)
		if err != nil {
			logger.Warnw("price_rule_apply_failed", "rule_id", rule.ID, "product_id", product.ID, "error", err)
			continue
		}
		outcomes = append(outcomes, *outcome)
	}
	if best := SelectCheapest(outcomes); best != nil {
		return best
	}
	return s.BasePrice(product)
}

// ResolvePriceByID resolves a single product's price on demand, loading
// the active rule set fresh. Used by the preview endpoint.
func (s *PricingService) ResolvePriceByID(productID uint, at time.Time) (*AppliedPrice, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	set, err := s.LoadActiveRules()
	if err != nil {
		return nil, err
	}
	return s.ResolvePrice(set, product, at), nil
}
