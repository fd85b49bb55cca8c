package constants

// Product status constants
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product service type constants
const (
	ServiceTypeAirportTransfer = "airport_transfer"
	ServiceTypeFastTrack       = "fast_track"
	ServiceTypeEVisa           = "e_visa"
)

// Product unit constants
const (
	ProductUnitRound  = "round"
	ProductUnitPerson = "person"
)

// Price adjustment type constants
const (
	AdjustmentTypeFixed      = "fixed"
	AdjustmentTypePercentage = "percentage"
)

// Price rule time range type constants
const (
	TimeRangeTypePeriod              = "period"
	TimeRangeTypeRecurringWeekday    = "recurring_weekday"
	TimeRangeTypeRecurringDayOfMonth = "recurring_day_of_month"
)

// Availability rule type constants
const (
	AvailabilityTypeBlock              = "block"
	AvailabilityTypeNoLimit            = "no_limit"
	AvailabilityTypeFixedQuantity      = "fixed_quantity"
	AvailabilityTypePercentageQuantity = "percentage_quantity"
)

// Rule code prefixes (code = prefix + YYMMDD + 4-digit sequence)
const (
	PriceRuleCodePrefix        = "PC"
	AvailabilityRuleCodePrefix = "AC"
)

// Cache keys for precomputed results
const (
	CacheKeyPrices       = "pricing:prices"
	CacheKeyAvailability = "pricing:availability"
)

// Async task type constants
const (
	TaskPrecomputeAllPrices    = "pricing:precompute_all"
	TaskPrecomputeProductPrice = "pricing:precompute_product"
	TaskPrecomputeAvailability = "pricing:precompute_availability"
)

// Queue name constants
const (
	QueueDefault = "default"
)

// DayFormat is the calendar-date layout used for availability day keys.
const DayFormat = "2006-01-02"
