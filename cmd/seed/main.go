package main

import (
	"time"

	"github.com/eskept/pricing-engine/internal/config"
	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/logger"
	"github.com/eskept/pricing-engine/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("failed to migrate database: %v", err)
	}

	products := []models.Product{
		{
			Name:         "Noi Bai Airport Transfer (Sedan)",
			CodeName:     "noi-bai-transfer-sedan",
			Status:       constants.ProductStatusActive,
			ServiceType:  constants.ServiceTypeAirportTransfer,
			Unit:         constants.ProductUnitRound,
			MaxQuantity:  20,
			BasePriceVND: models.NewMoneyFromFloat(500000),
			BasePriceUSD: models.NewMoneyFromFloat(20),
			Description:  "Private sedan transfer between Noi Bai airport and Hanoi city center.",
		},
		{
			Name:         "Tan Son Nhat Fast Track (Arrival)",
			CodeName:     "sgn-fast-track-arrival",
			Status:       constants.ProductStatusActive,
			ServiceType:  constants.ServiceTypeFastTrack,
			Unit:         constants.ProductUnitPerson,
			MaxQuantity:  100,
			BasePriceVND: models.NewMoneyFromFloat(750000),
			BasePriceUSD: models.NewMoneyFromFloat(30),
			Description:  "Escorted immigration fast track on arrival at Tan Son Nhat.",
		},
		{
			Name:         "Vietnam E-Visa (Single Entry)",
			CodeName:     "vn-evisa-single",
			Status:       constants.ProductStatusActive,
			ServiceType:  constants.ServiceTypeEVisa,
			Unit:         constants.ProductUnitPerson,
			MaxQuantity:  500,
			BasePriceVND: models.NewMoneyFromFloat(1250000),
			BasePriceUSD: models.NewMoneyFromFloat(50),
			Description:  "Single entry e-visa processing, 30 days validity.",
		},
	}
	for i := range products {
		if err := models.DB.Where("code_name = ?", products[i].CodeName).
			FirstOrCreate(&products[i]).Error; err != nil {
			stdLog.Fatalf("failed to seed product %s: %v", products[i].CodeName, err)
		}
	}

	weekendPct := decimal.NewFromInt(15)
	weekendRule := models.PriceRule{
		Code:           constants.PriceRuleCodePrefix + time.Now().Format("060102") + "0001",
		Name:           "Weekend surcharge",
		Description:    "15% surcharge on Saturday and Sunday.",
		AdjustmentType: constants.AdjustmentTypePercentage,
		AdjustmentValue: models.AdjustmentValue{
			Percentage: &weekendPct,
		},
		TimeRangeType: constants.TimeRangeTypeRecurringWeekday,
		TimeRangeValue: models.TimeRangeValue{
			Weekdays: []string{"saturday", "sunday"},
		},
		IsActive: true,
	}
	if err := models.DB.Where("name = ?", weekendRule.Name).
		FirstOrCreate(&weekendRule).Error; err != nil {
		stdLog.Fatalf("failed to seed price rule: %v", err)
	}

	stdLog.Printf("seed complete: %d products, 1 price rule", len(products))
}
