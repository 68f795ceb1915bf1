package usecase

import (
	"fmt"
	"math"

	"github.com/vitos/eth_take_profit/internal/domain"
)

type StatusEvaluator struct {
	inventory domain.InventoryMode
}

func NewStatusEvaluator() *StatusEvaluator {
	return &StatusEvaluator{inventory: domain.InventoryOriginal}
}

// WithInventory returns an evaluator applying sell percentages per mode.
func (e *StatusEvaluator) WithInventory(mode domain.InventoryMode) *StatusEvaluator {
	if mode == "" {
		mode = domain.InventoryOriginal
	}
	return &StatusEvaluator{inventory: mode}
}

// IsReached reports whether price has met or exceeded the level target.
func IsReached(currentPrice float64, level domain.TakeProfitLevel) bool {
	return currentPrice >= level.TargetPrice
}

// Evaluate compares currentPrice with every level and aggregates proceeds of
// the reached ones, valued at each level's own target price. Levels are
// independent of each other; a later level can be reached while an earlier one is not.
func (e *StatusEvaluator) Evaluate(currentPrice, referencePrice float64, levels []domain.TakeProfitLevel, heldQuantity float64) (*domain.StatusReport, error) {
	if err := validatePrices(currentPrice, referencePrice); err != nil {
		return nil, err
	}
	if heldQuantity < 0 || math.IsNaN(heldQuantity) || math.IsInf(heldQuantity, 0) {
		return nil, fmt.Errorf("%w: held quantity must be non-negative, got %v", domain.ErrInvalidInput, heldQuantity)
	}

	report := &domain.StatusReport{
		CurrentPrice:   currentPrice,
		ReferencePrice: referencePrice,
		HeldQuantity:   heldQuantity,
		Inventory:      e.inventory,
		Levels:         make([]domain.LevelStatus, 0, len(levels)),
	}

	remaining := heldQuantity
	var totalQty, totalValue float64
	for _, level := range levels {
		status := domain.LevelStatus{
			TakeProfitLevel: level,
			Reached:         IsReached(currentPrice, level),
			DistancePct:     (level.TargetPrice - currentPrice) / currentPrice * 100,
		}
		if status.Reached {
			qty := e.quantityFor(heldQuantity, remaining, level.SellPct)
			remaining -= qty
			status.QuantitySold = qty
			status.ValueRealized = qty * level.TargetPrice
			totalQty += status.QuantitySold
			totalValue += status.ValueRealized
		}
		if !finite(status.DistancePct) {
			return nil, fmt.Errorf("%w: distance to level %d is out of range", domain.ErrInvalidInput, level.Index)
		}
		report.Levels = append(report.Levels, status)
	}

	if !finite(totalQty) || !finite(totalValue) {
		return nil, fmt.Errorf("%w: realized totals are out of range", domain.ErrInvalidInput)
	}
	report.RealizedQuantity = roundQty(totalQty)
	report.RealizedValue = roundPrice(totalValue)
	return report, nil
}

func (e *StatusEvaluator) quantityFor(held, remaining, sellPct float64) float64 {
	if e.inventory != domain.InventoryRemaining {
		return held * sellPct / 100
	}
	// Remaining bag never goes below zero, whatever the percentages add up to.
	qty := remaining * sellPct / 100
	if qty > remaining {
		qty = remaining
	}
	if qty < 0 {
		qty = 0
	}
	return qty
}

func validatePrices(currentPrice, referencePrice float64) error {
	if !(referencePrice > 0) || math.IsInf(referencePrice, 0) {
		return fmt.Errorf("%w: reference price must be positive, got %v", domain.ErrInvalidInput, referencePrice)
	}
	// A zero price means no price, not a free asset.
	if !(currentPrice > 0) || math.IsInf(currentPrice, 0) {
		return fmt.Errorf("%w: current price must be positive, got %v", domain.ErrInvalidInput, currentPrice)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
