package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCacheUnavailable is returned while the breaker is open.
var ErrCacheUnavailable = errors.New("cache unavailable")

// BreakerConfig controls when a BreakerCache stops calling the backend.
type BreakerConfig struct {
	MaxRequests         uint32        // Probes allowed while half-open
	Interval            time.Duration // Window after which closed-state counts reset
	Timeout             time.Duration // Time spent open before probing again
	ConsecutiveFailures uint32        // Consecutive failures that open the breaker
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerCache guards a Cache with a circuit breaker so a failing Redis is
// skipped quickly instead of costing a network timeout per call.
type BreakerCache struct {
	next    Cache
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerCache(name string, next Cache, cfg BreakerConfig, log *zap.Logger) *BreakerCache {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("cache_breaker")
	return &BreakerCache{
		next: next,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("cache breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

func (c *BreakerCache) Set(ctx context.Context, key string, value interface{}) error {
	return c.run(func() error { return c.next.Set(ctx, key, value) })
}

func (c *BreakerCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.run(func() error { return c.next.SetWithTTL(ctx, key, value, ttl) })
}

func (c *BreakerCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	found, err := c.breaker.Execute(func() (interface{}, error) {
		return c.next.Get(ctx, key, dest)
	})
	if err != nil {
		return false, c.translate(err)
	}
	return found.(bool), nil
}

func (c *BreakerCache) Delete(ctx context.Context, keys ...string) error {
	return c.run(func() error { return c.next.Delete(ctx, keys...) })
}

// State reports the breaker state: "closed", "half-open" or "open".
func (c *BreakerCache) State() string {
	return c.breaker.State().String()
}

func (c *BreakerCache) run(fn func() error) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return c.translate(err)
}

func (c *BreakerCache) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s breaker is %s", ErrCacheUnavailable, c.breaker.Name(), c.breaker.State())
	}
	return err
}
