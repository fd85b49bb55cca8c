package models

import (
	"fmt"
	"time"

	"github.com/eskept/pricing-engine/internal/constants"

	"gorm.io/gorm"
)

// NoLimitMaxCapacity is the sentinel capacity for unconstrained days.
// It doubles as the initial "best so far" value when selecting the most
// restrictive rule, so comparisons need no special-case branch.
const NoLimitMaxCapacity int64 = 9_999_999_999

// AvailabilityRule constrains a single product on a single day. Bulk
// operations materialize one row per (product, day) and always replace
// the affected span wholesale (delete then recreate).
type AvailabilityRule struct {
	ID        uint           `gorm:"primarykey" json:"id"`                              // primary key
	Code      string         `gorm:"uniqueIndex;not null" json:"code"`                  // immutable code (AC + YYMMDD + sequence)
	ProductID uint           `gorm:"index:idx_availability_product_day;not null" json:"product_id"` // bound product
	Day       time.Time      `gorm:"index:idx_availability_product_day;type:date;not null" json:"day"` // effective calendar day
	Type      string         `gorm:"type:varchar(32);not null" json:"type"`             // block / no_limit / fixed_quantity / percentage_quantity
	Value     int            `gorm:"not null;default:0" json:"value"`                   // quantity or percentage, per type
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (AvailabilityRule) TableName() string {
	return "availability_rules"
}

// ValidateAvailabilityValue checks the value bounds for a rule type.
// Block and no-limit rules ignore the value entirely.
func ValidateAvailabilityValue(ruleType string, value int) error {
	switch ruleType {
	case constants.AvailabilityTypeBlock, constants.AvailabilityTypeNoLimit:
		return nil
	case constants.AvailabilityTypeFixedQuantity:
		if value <= 0 {
			return fmt.Errorf("%w: fixed quantity must be greater than 0", ErrRuleConfigInvalid)
		}
		return nil
	case constants.AvailabilityTypePercentageQuantity:
		if value < 0 || value > 100 {
			return fmt.Errorf("%w: percentage quantity must be between 0 and 100", ErrRuleConfigInvalid)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown availability type %q", ErrRuleConfigInvalid, ruleType)
	}
}

// Validate checks the rule before persist.
func (r *AvailabilityRule) Validate() error {
	if r == nil || r.ProductID == 0 {
		return ErrRuleConfigInvalid
	}
	return ValidateAvailabilityValue(r.Type, r.Value)
}

// DayKey renders the effective day as a calendar-date string.
func (r *AvailabilityRule) DayKey() string {
	return r.Day.Format(constants.DayFormat)
}
