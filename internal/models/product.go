package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a bookable travel service. The pricing engine only reads
// base prices, max quantity and the deletion/status flags; the rest of
// the catalog belongs to collaborator subsystems.
type Product struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                      // primary key
	Name         string         `gorm:"not null" json:"name"`                                      // display name
	CodeName     string         `gorm:"uniqueIndex;not null" json:"code_name"`                     // unique slug
	Status       string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"`  // active / inactive
	ServiceType  string         `gorm:"type:varchar(32);not null" json:"service_type"`             // airport_transfer / fast_track / e_visa
	Unit         string         `gorm:"type:varchar(20);not null;default:'person'" json:"unit"`    // round / person
	MaxQuantity  int            `gorm:"not null;default:1" json:"max_quantity"`                    // capacity ceiling per day
	BasePriceVND Money          `gorm:"type:decimal(20,2);not null;default:0" json:"base_price_vnd"` // base price in VND
	BasePriceUSD Money          `gorm:"type:decimal(20,2);not null;default:0" json:"base_price_usd"` // base price in USD
	Rating       Money          `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`        // average review rating
	ReviewCount  int            `gorm:"not null;default:0" json:"review_count"`                    // review count
	Description  string         `gorm:"type:text" json:"description"`                              // long description
	ImageURL     string         `gorm:"type:varchar(500)" json:"image_url"`                        // cover image
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}

// IsActive reports whether the product is sellable.
func (p *Product) IsActive() bool {
	return p != nil && p.Status == "active"
}
