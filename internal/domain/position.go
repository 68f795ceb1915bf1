package domain

// DefaultAsset is the only asset the tracker knows about.
const DefaultAsset = "ethereum"

// DefaultHeldQuantity is used when the caller does not give a quantity.
const DefaultHeldQuantity = 1.0

// Holding represents the tracked position: what was bought and at which PRU.
type Holding struct {
	Asset          string
	ReferencePrice float64
	Quantity       float64
}
