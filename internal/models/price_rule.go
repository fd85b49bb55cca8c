package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eskept/pricing-engine/internal/constants"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrRuleConfigInvalid marks a rule payload whose shape or bounds do not
// match the declared type. Mutation entry points surface it to the caller;
// the evaluator treats it as a contract violation.
var ErrRuleConfigInvalid = errors.New("rule configuration invalid")

// AdjustmentValue is the typed payload behind a price rule's adjustment.
// For fixed rules at least one of FixedVND/FixedUSD is set; negative
// amounts express discounts. For percentage rules Percentage is set and
// lies in [0,100].
type AdjustmentValue struct {
	FixedVND   *Money           `json:"fixed_vnd,omitempty"`
	FixedUSD   *Money           `json:"fixed_usd,omitempty"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// Value implements driver.Valuer.
func (v AdjustmentValue) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner.
func (v *AdjustmentValue) Scan(value interface{}) error {
	if value == nil {
		*v = AdjustmentValue{}
		return nil
	}
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return fmt.Errorf("unsupported adjustment value source: %T", value)
	}
}

// ValidateFor checks the payload against the declared adjustment type.
func (v AdjustmentValue) ValidateFor(adjustmentType string) error {
	switch adjustmentType {
	case constants.AdjustmentTypeFixed:
		if v.FixedVND == nil && v.FixedUSD == nil {
			return fmt.Errorf("%w: fixed adjustment requires fixed_vnd or fixed_usd", ErrRuleConfigInvalid)
		}
		if v.Percentage != nil {
			return fmt.Errorf("%w: fixed adjustment must not carry a percentage", ErrRuleConfigInvalid)
		}
		return nil
	case constants.AdjustmentTypePercentage:
		if v.Percentage == nil {
			return fmt.Errorf("%w: percentage adjustment requires a percentage", ErrRuleConfigInvalid)
		}
		if v.Percentage.IsNegative() || v.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: percentage must be between 0 and 100", ErrRuleConfigInvalid)
		}
		if v.FixedVND != nil || v.FixedUSD != nil {
			return fmt.Errorf("%w: percentage adjustment must not carry fixed amounts", ErrRuleConfigInvalid)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown adjustment type %q", ErrRuleConfigInvalid, adjustmentType)
	}
}

var weekdayTokens = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// TimeRangeValue is the typed payload behind a price rule's time window.
// Period rules use the optional bounds; recurring rules use the weekday
// tokens or the day-of-month list.
type TimeRangeValue struct {
	StartAt   *time.Time `json:"start_datetime,omitempty"`
	EndAt     *time.Time `json:"end_datetime,omitempty"`
	Weekdays  []string   `json:"weekdays,omitempty"`
	MonthDays []int      `json:"month_days,omitempty"`
}

// Value implements driver.Valuer.
func (v TimeRangeValue) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner.
func (v *TimeRangeValue) Scan(value interface{}) error {
	if value == nil {
		*v = TimeRangeValue{}
		return nil
	}
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return fmt.Errorf("unsupported time range value source: %T", value)
	}
}

// ValidateFor checks the payload against the declared time range type.
func (v TimeRangeValue) ValidateFor(timeRangeType string) error {
	switch timeRangeType {
	case constants.TimeRangeTypePeriod:
		if v.StartAt != nil && v.EndAt != nil && v.EndAt.Before(*v.StartAt) {
			return fmt.Errorf("%w: period end before start", ErrRuleConfigInvalid)
		}
		if len(v.Weekdays) > 0 || len(v.MonthDays) > 0 {
			return fmt.Errorf("%w: period rule must not carry recurring values", ErrRuleConfigInvalid)
		}
		return nil
	case constants.TimeRangeTypeRecurringWeekday:
		if len(v.Weekdays) == 0 {
			return fmt.Errorf("%w: recurring weekday rule requires weekdays", ErrRuleConfigInvalid)
		}
		for _, token := range v.Weekdays {
			if _, ok := weekdayTokens[token]; !ok {
				return fmt.Errorf("%w: unknown weekday token %q", ErrRuleConfigInvalid, token)
			}
		}
		return nil
	case constants.TimeRangeTypeRecurringDayOfMonth:
		if len(v.MonthDays) == 0 {
			return fmt.Errorf("%w: recurring day-of-month rule requires month_days", ErrRuleConfigInvalid)
		}
		for _, day := range v.MonthDays {
			if day < 1 || day > 31 {
				return fmt.Errorf("%w: day of month %d out of range", ErrRuleConfigInvalid, day)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown time range type %q", ErrRuleConfigInvalid, timeRangeType)
	}
}

// MatchesWeekday reports whether the given weekday is listed.
func (v TimeRangeValue) MatchesWeekday(day time.Weekday) bool {
	for _, token := range v.Weekdays {
		if wd, ok := weekdayTokens[token]; ok && wd == day {
			return true
		}
	}
	return false
}

// MatchesMonthDay reports whether the given day of month is listed.
func (v TimeRangeValue) MatchesMonthDay(day int) bool {
	for _, d := range v.MonthDays {
		if d == day {
			return true
		}
	}
	return false
}

// PriceRule is a time-boxed or recurring price adjustment. An empty
// product scope means the rule applies to every product.
type PriceRule struct {
	ID              uint            `gorm:"primarykey" json:"id"`                             // primary key
	Code            string          `gorm:"uniqueIndex;not null" json:"code"`                 // immutable code (PC + YYMMDD + sequence)
	Name            string          `gorm:"not null" json:"name"`                             // display name
	Description     string          `gorm:"type:text" json:"description"`                     // optional description
	AdjustmentType  string          `gorm:"type:varchar(32);not null" json:"adjustment_type"` // fixed / percentage
	AdjustmentValue AdjustmentValue `gorm:"type:json" json:"adjustment_value"`                // typed adjustment payload
	TimeRangeType   string          `gorm:"type:varchar(32);not null" json:"time_range_type"` // period / recurring_weekday / recurring_day_of_month
	TimeRangeValue  TimeRangeValue  `gorm:"type:json" json:"time_range_value"`                // typed window payload
	IsActive        bool            `gorm:"not null;default:true" json:"is_active"`           // soft on/off toggle
	Products        []Product       `gorm:"many2many:price_rule_products" json:"products,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (PriceRule) TableName() string {
	return "price_rules"
}

// Validate checks both typed payloads. It runs before every persist.
func (r *PriceRule) Validate() error {
	if r == nil {
		return ErrRuleConfigInvalid
	}
	if err := r.AdjustmentValue.ValidateFor(r.AdjustmentType); err != nil {
		return err
	}
	return r.TimeRangeValue.ValidateFor(r.TimeRangeType)
}

// AppliesTo reports whether the rule scope covers the product.
func (r *PriceRule) AppliesTo(productID uint) bool {
	if r == nil {
		return false
	}
	if len(r.Products) == 0 {
		return true
	}
	for _, p := range r.Products {
		if p.ID == productID {
			return true
		}
	}
	return false
}
