package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/logger"
	"github.com/eskept/pricing-engine/internal/provider"
	"github.com/eskept/pricing-engine/internal/queue"
	"github.com/eskept/pricing-engine/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles the async precompute tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register registers the task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPrecomputeAllPrices, c.handlePrecomputeAllPrices)
	mux.HandleFunc(queue.TaskPrecomputeProductPrice, c.handlePrecomputeProductPrice)
	mux.HandleFunc(queue.TaskPrecomputeAvailability, c.handlePrecomputeAvailability)
}

func (c *Consumer) handlePrecomputeAllPrices(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	if err := c.PrecomputeService.RunFull(ctx, time.Now()); err != nil {
		logger.Warnw("worker_precompute_all_failed", "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handlePrecomputeProductPrice(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.PrecomputeProductPricePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_precompute_product_unmarshal_failed", "error", err)
		return err
	}
	if len(payload.ProductIDs) == 0 {
		logger.Debugw("worker_precompute_product_skip_empty_payload")
		return nil
	}
	if err := c.PrecomputeService.RunForProducts(ctx, payload.ProductIDs, time.Now()); err != nil {
		logger.Warnw("worker_precompute_product_failed", "product_ids", payload.ProductIDs, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handlePrecomputeAvailability(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.PrecomputeAvailabilityPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_precompute_availability_unmarshal_failed", "error", err)
		return err
	}
	start, err := time.Parse(constants.DayFormat, payload.StartDate)
	if err != nil {
		logger.Warnw("worker_precompute_availability_bad_start", "start_date", payload.StartDate, "error", err)
		return nil
	}
	end, err := time.Parse(constants.DayFormat, payload.EndDate)
	if err != nil {
		logger.Warnw("worker_precompute_availability_bad_end", "end_date", payload.EndDate, "error", err)
		return nil
	}
	if _, err := c.PrecomputeService.RunAvailability(ctx, payload.ProductIDs, start, end); err != nil {
		if errors.Is(err, service.ErrDateRangeInvalid) {
			logger.Warnw("worker_precompute_availability_skip_bad_range", "start_date", payload.StartDate, "end_date", payload.EndDate)
			return nil
		}
		logger.Warnw("worker_precompute_availability_failed", "error", err)
		return err
	}
	return nil
}
