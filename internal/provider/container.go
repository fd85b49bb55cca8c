package provider

import (
	"time"

	"github.com/eskept/pricing-engine/internal/cache"
	"github.com/eskept/pricing-engine/internal/config"
	"github.com/eskept/pricing-engine/internal/logger"
	"github.com/eskept/pricing-engine/internal/models"
	"github.com/eskept/pricing-engine/internal/queue"
	"github.com/eskept/pricing-engine/internal/repository"
	"github.com/eskept/pricing-engine/internal/service"
)

// Container wires repositories, the cache store and services together.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Store       cache.Store

	// Repositories
	ProductRepo          repository.ProductRepository
	PriceRuleRepo        repository.PriceRuleRepository
	AvailabilityRuleRepo repository.AvailabilityRuleRepository

	// Services
	PricingService        *service.PricingService
	AvailabilityService   *service.AvailabilityService
	PrecomputeService     *service.PrecomputeService
	PriceRuleAdminService *service.PriceRuleAdminService
	ProductService        *service.ProductService
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	var store cache.Store
	if redisStore := cache.NewRedisStore(&cfg.Redis); redisStore != nil {
		store = redisStore
	} else {
		logger.Warnw("provider_redis_disabled_using_memory_store")
		store = cache.NewMemoryStore()
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Store:       store,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ProductRepo = repository.NewProductRepository(db)
	c.PriceRuleRepo = repository.NewPriceRuleRepository(db)
	c.AvailabilityRuleRepo = repository.NewAvailabilityRuleRepository(db)
}

func (c *Container) initServices() {
	ttl := time.Duration(c.Config.Pricing.CacheTTLHours) * time.Hour

	c.PricingService = service.NewPricingService(c.ProductRepo, c.PriceRuleRepo)
	c.AvailabilityService = service.NewAvailabilityService(c.ProductRepo, c.AvailabilityRuleRepo, c.Store, c.QueueClient)
	c.PrecomputeService = service.NewPrecomputeService(c.PricingService, c.AvailabilityService, c.ProductRepo, c.Store, ttl)
	c.PriceRuleAdminService = service.NewPriceRuleAdminService(c.PriceRuleRepo, c.ProductRepo, c.PricingService, c.Store, c.QueueClient)
	c.ProductService = service.NewProductService(c.ProductRepo, c.Store, c.QueueClient)
}
