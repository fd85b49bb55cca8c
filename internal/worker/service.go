package worker

import (
	"context"
	"errors"
	"time"

	"github.com/eskept/pricing-engine/internal/config"
	"github.com/eskept/pricing-engine/internal/logger"
	"github.com/eskept/pricing-engine/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultRefreshInterval = 30 * time.Minute

// Service is the async queue worker plus the periodic price refresher.
type Service struct {
	name            string
	server          *asynq.Server
	mux             *asynq.ServeMux
	consumer        *Consumer
	refreshInterval time.Duration
}

// NewService creates the worker service.
func NewService(cfg *config.QueueConfig, pricingCfg *config.PricingConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	refreshInterval := defaultRefreshInterval
	if pricingCfg != nil && pricingCfg.RefreshIntervalMinutes > 0 {
		refreshInterval = time.Duration(pricingCfg.RefreshIntervalMinutes) * time.Minute
	}
	return &Service{
		name:            "worker",
		server:          server,
		mux:             mux,
		consumer:        consumer,
		refreshInterval: refreshInterval,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the asynq server and the periodic refresh loop.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.PrecomputeService != nil {
		go s.runPriceRefreshLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop shuts the worker down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runPriceRefreshLoop recomputes the full price cache on a fixed cadence
// so entries are rebuilt well before the cache TTL expires.
func (s *Service) runPriceRefreshLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.PrecomputeService == nil {
		return
	}
	runOnce := func() {
		if err := s.consumer.PrecomputeService.RunFull(ctx, time.Now()); err != nil {
			logger.Warnw("worker_price_refresh_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
