package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/eth_take_profit/internal/domain"
	"go.uber.org/zap"
)

// StatusRequest is one evaluation request. CurrentPrice, when set, skips the
// price source entirely.
type StatusRequest struct {
	domain.Holding
	Ladder       string
	Mode         domain.TriggerMode
	Inventory    domain.InventoryMode
	CurrentPrice *float64
}

// QuoteSource is implemented by price sources that can tell where a price came from.
type QuoteSource interface {
	Quote(ctx context.Context, asset string) (domain.PriceQuote, error)
}

// TakeProfitService builds a ladder, gets a price and evaluates the ladder
// against it. It holds no per-request state.
type TakeProfitService struct {
	prices    domain.PriceSource
	evaluator *StatusEvaluator
	logger    *zap.Logger
	timeNow   func() time.Time
}

func NewTakeProfitService(prices domain.PriceSource, logger *zap.Logger) *TakeProfitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TakeProfitService{
		prices:    prices,
		evaluator: NewStatusEvaluator(),
		logger:    logger,
		timeNow:   time.Now,
	}
}

// CurrentPrice fetches a quote for asset. Any failure is reported as
// ErrPriceUnavailable; there is no fallback to zero or a remembered price.
func (s *TakeProfitService) CurrentPrice(ctx context.Context, asset string) (domain.PriceQuote, error) {
	if asset == "" {
		asset = domain.DefaultAsset
	}
	if s.prices == nil {
		return domain.PriceQuote{}, fmt.Errorf("%w: no price source configured", domain.ErrPriceUnavailable)
	}

	if qs, ok := s.prices.(QuoteSource); ok {
		q, err := qs.Quote(ctx, asset)
		if err != nil {
			return domain.PriceQuote{}, fmt.Errorf("%w: %w", domain.ErrPriceUnavailable, err)
		}
		return q, nil
	}

	price, err := s.prices.GetCurrentPrice(ctx, asset)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("%w: %w", domain.ErrPriceUnavailable, err)
	}
	if !(price > 0) {
		return domain.PriceQuote{}, fmt.Errorf("%w: source %s returned %v", domain.ErrPriceUnavailable, s.prices.Name(), price)
	}
	return domain.PriceQuote{Asset: asset, Price: price, Source: s.prices.Name(), FetchedAt: s.timeNow()}, nil
}

// Status runs one evaluation. The ladder is built before any price is
// fetched so that input errors never cost a provider call.
func (s *TakeProfitService) Status(ctx context.Context, req StatusRequest) (*domain.StatusReport, error) {
	requestID := uuid.NewString()
	log := s.logger.With(zap.String("request_id", requestID))

	if req.Asset == "" {
		req.Asset = domain.DefaultAsset
	}

	levels, err := NewLadderBuilder(req.Mode).Build(req.ReferencePrice, req.Ladder)
	if err != nil {
		log.Warn("Rejected ladder", zap.String("ladder", req.Ladder), zap.Float64("pru", req.ReferencePrice), zap.Error(err))
		return nil, err
	}

	var quote domain.PriceQuote
	if req.CurrentPrice != nil {
		quote = domain.PriceQuote{Asset: req.Asset, Price: *req.CurrentPrice, Source: "manual", FetchedAt: s.timeNow()}
	} else {
		quote, err = s.CurrentPrice(ctx, req.Asset)
		if err != nil {
			log.Error("Price unavailable", zap.String("asset", req.Asset), zap.Error(err))
			return nil, err
		}
	}

	report, err := s.evaluator.WithInventory(req.Inventory).Evaluate(quote.Price, req.ReferencePrice, levels, req.Quantity)
	if err != nil {
		log.Warn("Evaluation rejected", zap.Float64("price", quote.Price), zap.Error(err))
		return nil, err
	}

	report.RequestID = requestID
	report.Asset = req.Asset
	report.PriceSource = quote.Source
	if !quote.FetchedAt.IsZero() {
		report.PriceFetchedAt = quote.FetchedAt.UTC().Format(time.RFC3339)
	}

	log.Info("Evaluated take-profit ladder",
		zap.String("asset", report.Asset),
		zap.Float64("price", report.CurrentPrice),
		zap.String("price_source", report.PriceSource),
		zap.Int("levels", len(report.Levels)),
		zap.Int("reached", report.ReachedCount()),
		zap.Float64("realized_value", report.RealizedValue),
	)
	return report, nil
}

// IsInputError reports whether err was caused by the caller's input rather
// than by the price source.
func IsInputError(err error) bool {
	return errors.Is(err, domain.ErrMalformedSpec) || errors.Is(err, domain.ErrInvalidInput)
}
