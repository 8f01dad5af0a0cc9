package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultEURRate is the fallback conversion rate used until the first
// successful fetch.
const DefaultEURRate = 0.92

const ratesKey = "rates"

// RateFetcher fetches the current exchange rates keyed by currency code.
// *api.Client implements this.
type RateFetcher interface {
	GetCurrencyRates(ctx context.Context) (map[string]float64, error)
}

// RateSource caches exchange rates and refreshes them periodically.
// Refresh is last-writer-wins; readers may see a slightly stale rate.
type RateSource struct {
	fetcher  RateFetcher
	interval time.Duration
	logger   *slog.Logger

	// Rates live in the cache without expiry: a failed refresh must fall
	// back to the last known value, never to nothing.
	rates *cache.Cache

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRateSource creates a RateSource seeded with the default rates.
func NewRateSource(fetcher RateFetcher, interval time.Duration, logger *slog.Logger) *RateSource {
	if logger == nil {
		logger = slog.Default()
	}

	c := cache.New(cache.NoExpiration, 0)
	c.Set(ratesKey, map[string]float64{"EUR": DefaultEURRate}, cache.NoExpiration)

	return &RateSource{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger,
		rates:    c,
	}
}

// Start begins the refresh loop. The first refresh happens immediately.
func (s *RateSource) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("rate source started", "interval", s.interval)
	return nil
}

// Stop gracefully shuts down the refresh loop.
func (s *RateSource) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("rate source stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EUR returns the current USD→EUR rate.
func (s *RateSource) EUR() float64 {
	if v, ok := s.rates.Get(ratesKey); ok {
		if rates, ok := v.(map[string]float64); ok {
			if rate, ok := rates["EUR"]; ok {
				return rate
			}
		}
	}
	return DefaultEURRate
}

// Refresh fetches rates once, keeping the previous rates on failure.
func (s *RateSource) Refresh(ctx context.Context) error {
	rates, err := s.fetcher.GetCurrencyRates(ctx)
	if err != nil {
		s.logger.Warn("rate refresh failed, keeping last known rates", "error", err)
		return err
	}
	if _, ok := rates["EUR"]; !ok {
		s.logger.Warn("rate refresh response missing EUR, keeping last known rates")
		return nil
	}

	s.rates.Set(ratesKey, rates, cache.NoExpiration)
	s.logger.Debug("exchange rates refreshed", "eur", rates["EUR"], "currencies", len(rates))
	return nil
}

// run is the refresh loop.
func (s *RateSource) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Refresh immediately on start.
	s.Refresh(s.ctx)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(s.ctx)
		}
	}
}
