package service

import "errors"

// Sentinel errors surfaced to the HTTP layer. Handlers map them onto
// response codes with errors.Is.
var (
	ErrProductNotFound          = errors.New("product not found")
	ErrProductInvalid           = errors.New("product invalid")
	ErrPriceRuleNotFound        = errors.New("price rule not found")
	ErrPriceRuleInvalid         = errors.New("price rule invalid")
	ErrRuleNotInEffect          = errors.New("rule not in effect")
	ErrAvailabilityRuleNotFound = errors.New("availability rule not found")
	ErrAvailabilityRuleInvalid  = errors.New("availability rule invalid")
	ErrDateRangeInvalid         = errors.New("date range invalid")
)
