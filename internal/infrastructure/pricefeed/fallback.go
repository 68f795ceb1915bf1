package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vitos/eth_take_profit/internal/domain"
	"go.uber.org/zap"
)

// FallbackSource asks each source in turn and returns the first price.
type FallbackSource struct {
	sources []domain.PriceSource
	metrics *Metrics
	logger  *zap.Logger
}

func NewFallbackSource(logger *zap.Logger, metrics *Metrics, sources ...domain.PriceSource) *FallbackSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackSource{sources: sources, metrics: metrics, logger: logger}
}

func (f *FallbackSource) Name() string {
	names := make([]string, 0, len(f.sources))
	for _, s := range f.sources {
		names = append(names, s.Name())
	}
	return strings.Join(names, ">")
}

// GetQuote returns the price together with the name of the source that served it.
func (f *FallbackSource) GetQuote(ctx context.Context, asset string) (float64, string, error) {
	if len(f.sources) == 0 {
		return 0, "", fetchError(f.Name(), asset, errors.New("no price source configured"))
	}

	var errs []error
	for _, s := range f.sources {
		price, err := s.GetCurrentPrice(ctx, asset)
		f.metrics.fetch(s.Name(), err)
		if err == nil {
			return price, s.Name(), nil
		}
		f.logger.Warn("Price source failed", zap.String("source", s.Name()), zap.String("asset", asset), zap.Error(err))
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return 0, "", fetchError(f.Name(), asset, fmt.Errorf("all sources failed: %w", errors.Join(errs...)))
}

func (f *FallbackSource) GetCurrentPrice(ctx context.Context, asset string) (float64, error) {
	price, _, err := f.GetQuote(ctx, asset)
	return price, err
}
