package queue

import (
	"encoding/json"

	"github.com/eskept/pricing-engine/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPrecomputeAllPrices recomputes prices for the whole catalog.
	TaskPrecomputeAllPrices = constants.TaskPrecomputeAllPrices
	// TaskPrecomputeProductPrice recomputes prices for selected products.
	TaskPrecomputeProductPrice = constants.TaskPrecomputeProductPrice
	// TaskPrecomputeAvailability recomputes availability for a date range.
	TaskPrecomputeAvailability = constants.TaskPrecomputeAvailability
)

// PrecomputeAllPricesPayload carries no parameters; the worker reads the
// catalog itself so stale ids never leak through the queue.
type PrecomputeAllPricesPayload struct{}

// PrecomputeProductPricePayload identifies the products to recompute.
type PrecomputeProductPricePayload struct {
	ProductIDs []uint `json:"product_ids"`
}

// PrecomputeAvailabilityPayload identifies the products and day range to
// recompute. Dates are formatted as YYYY-MM-DD.
type PrecomputeAvailabilityPayload struct {
	ProductIDs []uint `json:"product_ids"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// NewPrecomputeAllPricesTask creates a full price recompute task.
func NewPrecomputeAllPricesTask(payload PrecomputeAllPricesPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPrecomputeAllPrices, body), nil
}

// NewPrecomputeProductPriceTask creates a per-product price recompute task.
func NewPrecomputeProductPriceTask(payload PrecomputeProductPricePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPrecomputeProductPrice, body), nil
}

// NewPrecomputeAvailabilityTask creates an availability recompute task.
func NewPrecomputeAvailabilityTask(payload PrecomputeAvailabilityPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPrecomputeAvailability, body), nil
}
