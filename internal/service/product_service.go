package service

import (
	"context"
	"strings"

	"github.com/eskept/pricing-engine/internal/cache"
	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/logger"
	"github.com/eskept/pricing-engine/internal/models"
	"github.com/eskept/pricing-engine/internal/queue"
	"github.com/eskept/pricing-engine/internal/repository"
)

// ProductInput carries the mutable fields of a product. Nil pointers on
// update mean "leave unchanged".
type ProductInput struct {
	Name         *string       `json:"name"`
	CodeName     *string       `json:"code_name"`
	Status       *string       `json:"status"`
	ServiceType  *string       `json:"service_type"`
	Unit         *string       `json:"unit"`
	MaxQuantity  *int          `json:"max_quantity"`
	BasePriceVND *models.Money `json:"base_price_vnd"`
	BasePriceUSD *models.Money `json:"base_price_usd"`
	Description  *string       `json:"description"`
	ImageURL     *string       `json:"image_url"`
}

// ProductService manages the catalog. Base-price or capacity changes
// only affect the product itself, so mutations enqueue a per-product
// recompute instead of a full one.
type ProductService struct {
	productRepo repository.ProductRepository
	store       cache.Store
	queueClient *queue.Client
}

// NewProductService creates a product service.
func NewProductService(productRepo repository.ProductRepository, store cache.Store, queueClient *queue.Client) *ProductService {
	return &ProductService{productRepo: productRepo, store: store, queueClient: queueClient}
}

// Create validates and persists a new product.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	product := &models.Product{
		Status:      constants.ProductStatusActive,
		Unit:        constants.ProductUnitPerson,
		MaxQuantity: 1,
	}
	applyProductInput(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, product.ID)
	return product, nil
}

// Update applies a partial update to an existing product.
func (s *ProductService) Update(ctx context.Context, id uint, input ProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	previousMax := product.MaxQuantity
	applyProductInput(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	// A changed capacity ceiling moves every percentage_quantity rule
	// on the product, so the cached grid cannot be trusted.
	if product.MaxQuantity != previousMax && s.store != nil {
		if err := s.store.Del(ctx, constants.CacheKeyAvailability); err != nil {
			logger.Warnw("availability_cache_invalidate_failed", "product_id", id, "error", err)
		}
	}
	s.afterMutation(ctx, id)
	return product, nil
}

// Delete soft-deletes a product and drops its cached price.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if err := s.productRepo.Delete(id); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.HDel(ctx, constants.CacheKeyPrices, priceField(id)); err != nil {
			logger.Warnw("price_cache_evict_failed", "product_id", id, "error", err)
		}
	}
	return nil
}

// Get fetches one product.
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// List fetches products with filtering and pagination.
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

func applyProductInput(product *models.Product, input ProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.CodeName != nil {
		product.CodeName = strings.TrimSpace(*input.CodeName)
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	if input.ServiceType != nil {
		product.ServiceType = *input.ServiceType
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.MaxQuantity != nil {
		product.MaxQuantity = *input.MaxQuantity
	}
	if input.BasePriceVND != nil {
		product.BasePriceVND = *input.BasePriceVND
	}
	if input.BasePriceUSD != nil {
		product.BasePriceUSD = *input.BasePriceUSD
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
}

func validateProduct(product *models.Product) error {
	if product.Name == "" || product.CodeName == "" {
		return ErrProductInvalid
	}
	switch product.Status {
	case constants.ProductStatusActive, constants.ProductStatusInactive:
	default:
		return ErrProductInvalid
	}
	switch product.ServiceType {
	case constants.ServiceTypeAirportTransfer, constants.ServiceTypeFastTrack, constants.ServiceTypeEVisa:
	default:
		return ErrProductInvalid
	}
	switch product.Unit {
	case constants.ProductUnitRound, constants.ProductUnitPerson:
	default:
		return ErrProductInvalid
	}
	if product.MaxQuantity <= 0 {
		return ErrProductInvalid
	}
	if product.BasePriceVND.IsNegative() || product.BasePriceUSD.IsNegative() {
		return ErrProductInvalid
	}
	return nil
}

// afterMutation enqueues a per-product price recompute. Availability is
// invalidated separately by Update when the capacity ceiling changes.
func (s *ProductService) afterMutation(_ context.Context, productID uint) {
	if s.queueClient == nil {
		return
	}
	err := s.queueClient.EnqueuePrecomputeProductPrice(queue.PrecomputeProductPricePayload{
		ProductIDs: []uint{productID},
	})
	if err != nil {
		logger.Warnw("product_recompute_enqueue_failed", "product_id", productID, "error", err)
	}
}
