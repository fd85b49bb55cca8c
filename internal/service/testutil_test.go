package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.PriceRule{}, &models.AvailabilityRule{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, codeName string, vnd, usd int64, maxQuantity int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:         codeName,
		CodeName:     codeName,
		Status:       constants.ProductStatusActive,
		ServiceType:  constants.ServiceTypeAirportTransfer,
		Unit:         constants.ProductUnitPerson,
		MaxQuantity:  maxQuantity,
		BasePriceVND: models.NewMoneyFromDecimal(decimal.NewFromInt(vnd)),
		BasePriceUSD: models.NewMoneyFromDecimal(decimal.NewFromInt(usd)),
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product %s failed: %v", codeName, err)
	}
	return product
}

func fixedVNDPtr(amount int64) *models.Money {
	m := models.NewMoneyFromDecimal(decimal.NewFromInt(amount))
	return &m
}

func pctPtr(amount int64) *decimal.Decimal {
	d := decimal.NewFromInt(amount)
	return &d
}
