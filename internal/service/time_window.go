package service

import (
	"time"

	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/models"
)

// RuleInEffect reports whether a time window covers the given instant.
// Period windows treat a missing bound as unbounded on that side, with
// both present bounds inclusive. Recurring windows match the instant's
// weekday or day of month in its own location.
func RuleInEffect(timeRangeType string, window models.TimeRangeValue, at time.Time) (bool, error) {
	switch timeRangeType {
	case constants.TimeRangeTypePeriod:
		if window.StartAt != nil && at.Before(*window.StartAt) {
			return false, nil
		}
		if window.EndAt != nil && at.After(*window.EndAt) {
			return false, nil
		}
		return true, nil
	case constants.TimeRangeTypeRecurringWeekday:
		return window.MatchesWeekday(at.Weekday()), nil
	case constants.TimeRangeTypeRecurringDayOfMonth:
		return window.MatchesMonthDay(at.Day()), nil
	default:
		return false, models.ErrRuleConfigInvalid
	}
}
