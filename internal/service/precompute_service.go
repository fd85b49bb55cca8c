package service

import (
	"context"
	"strconv"
	"time"

	"github.com/eskept/pricing-engine/internal/cache"
	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/logger"
	"github.com/eskept/pricing-engine/internal/repository"
)

// availabilityCacheEntry is the cached availability grid together with
// the coverage it was computed for. Requests outside the coverage are
// treated as full misses.
type availabilityCacheEntry struct {
	ProductIDs []uint                 `json:"product_ids"`
	StartDate  string                 `json:"start_date"`
	EndDate    string                 `json:"end_date"`
	Entries    []ComputedAvailability `json:"entries"`
	ComputedAt time.Time              `json:"computed_at"`
}

// PrecomputeService materializes resolved prices and availability into
// the cache so reads never touch the resolution pipeline. Prices live in
// a hash keyed by product id; different precompute runs merge field by
// field instead of overwriting each other.
type PrecomputeService struct {
	pricing      *PricingService
	availability *AvailabilityService
	productRepo  repository.ProductRepository
	store        cache.Store
	ttl          time.Duration
}

// NewPrecomputeService creates a precompute service.
func NewPrecomputeService(
	pricing *PricingService,
	availability *AvailabilityService,
	productRepo repository.ProductRepository,
	store cache.Store,
	ttl time.Duration,
) *PrecomputeService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PrecomputeService{
		pricing:      pricing,
		availability: availability,
		productRepo:  productRepo,
		store:        store,
		ttl:          ttl,
	}
}

func priceField(productID uint) string {
	return strconv.FormatUint(uint64(productID), 10)
}

// RunFull recomputes and caches prices for the whole catalog.
func (s *PrecomputeService) RunFull(ctx context.Context, at time.Time) error {
	ids, err := s.productRepo.ListIDs()
	if err != nil {
		return err
	}
	return s.RunForProducts(ctx, ids, at)
}

// RunForProducts recomputes prices for the given products and merges
// them into the cache without touching other products' entries.
func (s *PrecomputeService) RunForProducts(ctx context.Context, productIDs []uint, at time.Time) error {
	if len(productIDs) == 0 {
		return nil
	}
	resolved, err := s.computePrices(productIDs, at)
	if err != nil {
		return err
	}
	if len(resolved) == 0 {
		return nil
	}
	if err := s.storePrices(ctx, resolved); err != nil {
		return err
	}
	logger.Infow("price_precompute_done", "products", len(resolved))
	return nil
}

// storePrices merges resolved prices into the cache hash and refreshes
// its TTL.
func (s *PrecomputeService) storePrices(ctx context.Context, resolved []AppliedPrice) error {
	fields := make(map[string]interface{}, len(resolved))
	for i := range resolved {
		fields[priceField(resolved[i].ProductID)] = resolved[i]
	}
	if err := s.store.HSetJSON(ctx, constants.CacheKeyPrices, fields); err != nil {
		return err
	}
	return s.store.Expire(ctx, constants.CacheKeyPrices, s.ttl)
}

// computePrices resolves prices for the given products. A product that
// fails to resolve is logged and skipped so one bad row cannot starve
// the rest of the catalog.
func (s *PrecomputeService) computePrices(productIDs []uint, at time.Time) ([]AppliedPrice, error) {
	products, err := s.productRepo.ListByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	set, err := s.pricing.LoadActiveRules()
	if err != nil {
		return nil, err
	}

	resolved := make([]AppliedPrice, 0, len(products))
	for i := range products {
		product := &products[i]
		outcome := s.pricing.ResolvePrice(set, product, at)
		if outcome == nil {
			logger.Warnw("price_resolve_skipped", "product_id", product.ID)
			continue
		}
		resolved = append(resolved, *outcome)
	}
	return resolved, nil
}

// GetAppliedPrice serves one product's resolved price from the cache,
// computing and back-filling on a miss.
func (s *PrecomputeService) GetAppliedPrice(ctx context.Context, productID uint, at time.Time) (*AppliedPrice, error) {
	var cached AppliedPrice
	hit, err := s.store.HGetJSON(ctx, constants.CacheKeyPrices, priceField(productID), &cached)
	if err != nil {
		logger.Warnw("price_cache_read_failed", "product_id", productID, "error", err)
	}
	if hit {
		return &cached, nil
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	resolved, err := s.computePrices([]uint{productID}, at)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, ErrProductNotFound
	}
	if err := s.storePrices(ctx, resolved); err != nil {
		logger.Warnw("price_cache_backfill_failed", "product_id", productID, "error", err)
	}
	return &resolved[0], nil
}

// GetAppliedPrices serves resolved prices for many products from the
// cache, recomputing only the missing ones.
func (s *PrecomputeService) GetAppliedPrices(ctx context.Context, productIDs []uint, at time.Time) ([]AppliedPrice, error) {
	results := make([]AppliedPrice, 0, len(productIDs))
	var misses []uint
	for _, id := range productIDs {
		var cached AppliedPrice
		hit, err := s.store.HGetJSON(ctx, constants.CacheKeyPrices, priceField(id), &cached)
		if err != nil {
			logger.Warnw("price_cache_read_failed", "product_id", id, "error", err)
			hit = false
		}
		if hit {
			results = append(results, cached)
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) > 0 {
		computed, err := s.computePrices(misses, at)
		if err != nil {
			return nil, err
		}
		if err := s.storePrices(ctx, computed); err != nil {
			logger.Warnw("price_cache_backfill_failed", "error", err)
		}
		results = append(results, computed...)
	}
	return results, nil
}

// RunAvailability recomputes the availability grid for the given
// products and range and caches it with its coverage metadata.
func (s *PrecomputeService) RunAvailability(ctx context.Context, productIDs []uint, start, end time.Time) ([]ComputedAvailability, error) {
	entries, err := s.availability.ComputeRange(productIDs, start, end)
	if err != nil {
		return nil, err
	}
	entry := availabilityCacheEntry{
		ProductIDs: productIDs,
		StartDate:  truncateToDay(start).Format(constants.DayFormat),
		EndDate:    truncateToDay(end).Format(constants.DayFormat),
		Entries:    entries,
		ComputedAt: time.Now(),
	}
	if err := s.store.SetJSON(ctx, constants.CacheKeyAvailability, entry, s.ttl); err != nil {
		return nil, err
	}
	logger.Infow("availability_precompute_done", "products", len(productIDs), "entries", len(entries))
	return entries, nil
}

// GetAvailability serves the availability grid from the cache when the
// cached coverage spans the request. Any coverage gap is a full miss and
// triggers a fresh compute for the requested slice.
func (s *PrecomputeService) GetAvailability(ctx context.Context, productIDs []uint, start, end time.Time) ([]ComputedAvailability, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return nil, ErrDateRangeInvalid
	}

	var cached availabilityCacheEntry
	hit, err := s.store.GetJSON(ctx, constants.CacheKeyAvailability, &cached)
	if err != nil {
		logger.Warnw("availability_cache_read_failed", "error", err)
		hit = false
	}
	if hit && coversRequest(cached, productIDs, start, end) {
		return filterAvailability(cached.Entries, productIDs, start, end), nil
	}
	return s.RunAvailability(ctx, productIDs, start, end)
}

// coversRequest reports whether the cached entry's product set and date
// range both contain the request.
func coversRequest(cached availabilityCacheEntry, productIDs []uint, start, end time.Time) bool {
	cachedStart, err := time.Parse(constants.DayFormat, cached.StartDate)
	if err != nil {
		return false
	}
	cachedEnd, err := time.Parse(constants.DayFormat, cached.EndDate)
	if err != nil {
		return false
	}
	if truncateToDay(start).Before(cachedStart) || truncateToDay(end).After(cachedEnd) {
		return false
	}
	known := make(map[uint]struct{}, len(cached.ProductIDs))
	for _, id := range cached.ProductIDs {
		known[id] = struct{}{}
	}
	for _, id := range productIDs {
		if _, ok := known[id]; !ok {
			return false
		}
	}
	return true
}

func filterAvailability(entries []ComputedAvailability, productIDs []uint, start, end time.Time) []ComputedAvailability {
	wanted := make(map[uint]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}
	startKey := start.Format(constants.DayFormat)
	endKey := end.Format(constants.DayFormat)

	filtered := make([]ComputedAvailability, 0, len(entries))
	for _, entry := range entries {
		if _, ok := wanted[entry.ProductID]; !ok {
			continue
		}
		if entry.Day < startKey || entry.Day > endKey {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}
