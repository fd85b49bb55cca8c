package router

import (
	"github.com/eskept/pricing-engine/internal/config"
	adminhandlers "github.com/eskept/pricing-engine/internal/http/handlers/admin"
	publichandlers "github.com/eskept/pricing-engine/internal/http/handlers/public"
	"github.com/eskept/pricing-engine/internal/logger"
	"github.com/eskept/pricing-engine/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with all routes mounted.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/products/:id/price", publicHandler.GetPrice)
			public.GET("/prices", publicHandler.GetPrices)
			public.GET("/availability", publicHandler.GetAvailability)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/products", adminHandler.CreateProduct)
			admin.GET("/products", adminHandler.GetProducts)
			admin.GET("/products/:id", adminHandler.GetProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)

			admin.POST("/price-rules", adminHandler.CreatePriceRule)
			admin.GET("/price-rules", adminHandler.GetPriceRules)
			admin.GET("/price-rules/:id", adminHandler.GetPriceRule)
			admin.PUT("/price-rules/:id", adminHandler.UpdatePriceRule)
			admin.PUT("/price-rules/:id/active", adminHandler.SetPriceRuleActive)
			admin.DELETE("/price-rules/:id", adminHandler.DeletePriceRule)
			admin.GET("/price-rules/preview", adminHandler.PreviewPrice)
			admin.POST("/price-rules/preview", adminHandler.PreviewRule)

			admin.GET("/availability-rules", adminHandler.GetAvailabilityRules)
			admin.POST("/availability/block", adminHandler.BlockAvailability)
			admin.POST("/availability/unblock", adminHandler.UnblockAvailability)
			admin.POST("/availability/set", adminHandler.SetAvailability)

			admin.POST("/precompute/prices", adminHandler.PrecomputePrices)
			admin.POST("/precompute/availability", adminHandler.PrecomputeAvailability)
		}
	}

	return r
}
