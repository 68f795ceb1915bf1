package domain

import (
	"fmt"
	"strings"
)

// TriggerMode tells how the trigger side of a ladder pair is expressed.
type TriggerMode string

const (
	TriggerPercentGain TriggerMode = "percent"    // "100" means +100% over PRU
	TriggerMultiplier  TriggerMode = "multiplier" // "2.5" means 2.5x PRU
)

// ParseTriggerMode maps user input onto a TriggerMode. Empty input means percent gain.
func ParseTriggerMode(s string) (TriggerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "percent", "pct", "gain", "%":
		return TriggerPercentGain, nil
	case "multiplier", "mult", "x":
		return TriggerMultiplier, nil
	}
	return "", fmt.Errorf("%w: unknown trigger mode %q", ErrInvalidInput, s)
}

// InventoryMode selects what sell percentages are applied to.
type InventoryMode string

const (
	// InventoryOriginal applies every sell percentage to the full held quantity.
	InventoryOriginal InventoryMode = "original"
	// InventoryRemaining applies each reached level to what is left after the
	// reached levels before it (ladder order).
	InventoryRemaining InventoryMode = "remaining"
)

func ParseInventoryMode(s string) (InventoryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "original":
		return InventoryOriginal, nil
	case "remaining":
		return InventoryRemaining, nil
	}
	return "", fmt.Errorf("%w: unknown inventory mode %q", ErrInvalidInput, s)
}

// TakeProfitPair is one raw "trigger:sell" entry of a ladder.
type TakeProfitPair struct {
	Trigger float64
	SellPct float64
}

// TakeProfitLevel is a built ladder rung. It is not modified after construction.
type TakeProfitLevel struct {
	Index       int     `json:"index"`
	GainPct     float64 `json:"gain_pct"`
	SellPct     float64 `json:"sell_pct"`
	TargetPrice float64 `json:"target_price"`
}

func (l TakeProfitLevel) Name() string {
	return fmt.Sprintf("TP%d", l.Index)
}

type LevelStatus struct {
	TakeProfitLevel
	Reached       bool    `json:"reached"`
	QuantitySold  float64 `json:"quantity_sold"`
	ValueRealized float64 `json:"value_realized"`
	DistancePct   float64 `json:"distance_pct"` // (target - current) / current * 100, <= 0 once reached
}

// StatusReport is recomputed on every evaluation and never stored.
type StatusReport struct {
	RequestID        string        `json:"request_id,omitempty"`
	Asset            string        `json:"asset,omitempty"`
	CurrentPrice     float64       `json:"current_price"`
	ReferencePrice   float64       `json:"reference_price"`
	HeldQuantity     float64       `json:"held_quantity"`
	Inventory        InventoryMode `json:"inventory"`
	Levels           []LevelStatus `json:"levels"`
	RealizedQuantity float64       `json:"realized_quantity"`
	RealizedValue    float64       `json:"realized_value"`
	PriceSource      string        `json:"price_source,omitempty"`
	PriceFetchedAt   string        `json:"price_fetched_at,omitempty"`
}

// ReachedCount returns how many levels are at or below the current price.
func (r *StatusReport) ReachedCount() int {
	n := 0
	for _, l := range r.Levels {
		if l.Reached {
			n++
		}
	}
	return n
}
