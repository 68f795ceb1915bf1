package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/eth_take_profit/internal/domain"
	"github.com/vitos/eth_take_profit/internal/usecase"
)

type MockPriceSource struct {
	Price float64
	Err   error
	Calls int
}

func (m *MockPriceSource) Name() string { return "mock" }

func (m *MockPriceSource) GetCurrentPrice(ctx context.Context, asset string) (float64, error) {
	m.Calls++
	if m.Err != nil {
		return 0, &domain.FetchError{Source: "mock", Asset: asset, Err: m.Err}
	}
	return m.Price, nil
}

type MockQuoteSource struct {
	MockPriceSource
	FetchedAt time.Time
}

func (m *MockQuoteSource) Quote(ctx context.Context, asset string) (domain.PriceQuote, error) {
	p, err := m.GetCurrentPrice(ctx, asset)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	return domain.PriceQuote{Asset: asset, Price: p, Source: "cache", FetchedAt: m.FetchedAt}, nil
}

func statusRequest() usecase.StatusRequest {
	return usecase.StatusRequest{
		Holding: domain.Holding{ReferencePrice: 1500, Quantity: 1},
		Ladder:  "100:25,150:50,200:25",
		Mode:    domain.TriggerPercentGain,
	}
}

func TestTakeProfitService_Status(t *testing.T) {
	src := &MockPriceSource{Price: 4000}
	svc := usecase.NewTakeProfitService(src, nil)

	report, err := svc.Status(context.Background(), statusRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, src.Calls)
	assert.Equal(t, "ethereum", report.Asset)
	assert.Equal(t, "mock", report.PriceSource)
	assert.NotEmpty(t, report.RequestID)
	assert.NotEmpty(t, report.PriceFetchedAt)
	assert.Equal(t, 4000.0, report.CurrentPrice)
	assert.Equal(t, 0.75, report.RealizedQuantity)
	assert.Equal(t, 2625.0, report.RealizedValue)
	assert.Equal(t, domain.InventoryOriginal, report.Inventory)
}

func TestTakeProfitService_QuoteSourceProvenance(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := usecase.NewTakeProfitService(&MockQuoteSource{MockPriceSource: MockPriceSource{Price: 3000}, FetchedAt: at}, nil)

	report, err := svc.Status(context.Background(), statusRequest())
	require.NoError(t, err)
	assert.Equal(t, "cache", report.PriceSource)
	assert.Equal(t, "2025-03-01T10:00:00Z", report.PriceFetchedAt)
	assert.Equal(t, 1, report.ReachedCount())
}

func TestTakeProfitService_MalformedLadderSkipsFetch(t *testing.T) {
	src := &MockPriceSource{Price: 4000}
	svc := usecase.NewTakeProfitService(src, nil)

	req := statusRequest()
	req.Ladder = "100:25,bad:50"
	report, err := svc.Status(context.Background(), req)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrMalformedSpec)
	assert.True(t, usecase.IsInputError(err))
	assert.Equal(t, 0, src.Calls)
}

func TestTakeProfitService_FetchFailure(t *testing.T) {
	svc := usecase.NewTakeProfitService(&MockPriceSource{Err: errors.New("dial tcp: timeout")}, nil)

	report, err := svc.Status(context.Background(), statusRequest())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.False(t, usecase.IsInputError(err))
}

func TestTakeProfitService_ZeroPriceIsUnavailable(t *testing.T) {
	svc := usecase.NewTakeProfitService(&MockPriceSource{Price: 0}, nil)
	_, err := svc.Status(context.Background(), statusRequest())
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)

	svc = usecase.NewTakeProfitService(nil, nil)
	_, err = svc.Status(context.Background(), statusRequest())
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}

func TestTakeProfitService_ManualPrice(t *testing.T) {
	src := &MockPriceSource{Price: 1}
	svc := usecase.NewTakeProfitService(src, nil)

	req := statusRequest()
	price := 4500.0
	req.CurrentPrice = &price
	req.Inventory = domain.InventoryRemaining

	report, err := svc.Status(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, src.Calls)
	assert.Equal(t, "manual", report.PriceSource)
	assert.Equal(t, 3, report.ReachedCount())
	assert.Equal(t, domain.InventoryRemaining, report.Inventory)

	zero := 0.0
	req.CurrentPrice = &zero
	_, err = svc.Status(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
