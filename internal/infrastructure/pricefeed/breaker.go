package pricefeed

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"github.com/vitos/eth_take_profit/internal/domain"
)

type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// BreakerSource stops calling a provider that keeps failing and fails fast
// until the breaker half-opens again.
type BreakerSource struct {
	source domain.PriceSource
	cb     *gobreaker.CircuitBreaker
}

func NewBreakerSource(source domain.PriceSource, settings BreakerSettings) *BreakerSource {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 3
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 60 * time.Second
	}

	st := gobreaker.Settings{Name: source.Name()}
	st.Interval = 60 * time.Second
	st.Timeout = settings.OpenTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
	}
	return &BreakerSource{source: source, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerSource) Name() string { return b.source.Name() }

func (b *BreakerSource) State() string { return b.cb.State().String() }

func (b *BreakerSource) GetCurrentPrice(ctx context.Context, asset string) (float64, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.source.GetCurrentPrice(ctx, asset)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, fetchError(b.Name(), asset, err)
		}
		return 0, err
	}
	return v.(float64), nil
}
