package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vitos/eth_take_profit/internal/domain"
)

const (
	entrySeparator = ","
	pairSeparator  = ":"
)

// ParseLadderSpec turns "100:25,150:50,200:25" into pairs. It is all or nothing:
// the first bad entry fails the whole spec and no pairs are returned.
func ParseLadderSpec(text string) ([]domain.TakeProfitPair, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.MalformedSpecError{Reason: "empty ladder"}
	}

	entries := strings.Split(text, entrySeparator)
	pairs := make([]domain.TakeProfitPair, 0, len(entries))
	for i, raw := range entries {
		token := strings.TrimSpace(raw)
		parts := strings.Split(token, pairSeparator)
		if len(parts) != 2 {
			return nil, &domain.MalformedSpecError{
				Index:  i + 1,
				Token:  token,
				Reason: fmt.Sprintf("expected trigger%ssell, got %d field(s)", pairSeparator, len(parts)),
			}
		}

		trigger, err := parseNumber(parts[0])
		if err != nil {
			return nil, &domain.MalformedSpecError{Index: i + 1, Token: token, Reason: "trigger " + err.Error()}
		}
		sell, err := parseNumber(parts[1])
		if err != nil {
			return nil, &domain.MalformedSpecError{Index: i + 1, Token: token, Reason: "sell " + err.Error()}
		}
		pairs = append(pairs, domain.TakeProfitPair{Trigger: trigger, SellPct: sell})
	}
	return pairs, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// BuildLadder materializes pairs into levels priced off referencePrice.
// Input order is kept as-is, gains are not sorted. Sell percentages are passed
// through without range checks.
func BuildLadder(referencePrice float64, pairs []domain.TakeProfitPair, mode domain.TriggerMode) ([]domain.TakeProfitLevel, error) {
	if !(referencePrice > 0) || math.IsInf(referencePrice, 0) {
		return nil, fmt.Errorf("%w: reference price must be positive, got %v", domain.ErrInvalidInput, referencePrice)
	}
	if len(pairs) == 0 {
		return nil, &domain.MalformedSpecError{Reason: "empty ladder"}
	}

	levels := make([]domain.TakeProfitLevel, 0, len(pairs))
	for i, p := range pairs {
		gain, err := gainPct(p.Trigger, mode)
		if err != nil {
			return nil, err
		}
		raw := referencePrice * (1 + gain/100)
		if math.IsInf(raw, 0) || math.IsNaN(raw) {
			return nil, fmt.Errorf("%w: target price of level %d is out of range", domain.ErrInvalidInput, i+1)
		}
		levels = append(levels, domain.TakeProfitLevel{
			Index:       i + 1,
			GainPct:     gain,
			SellPct:     p.SellPct,
			TargetPrice: roundPrice(raw),
		})
	}
	return levels, nil
}

// TargetPrice is referencePrice * (1 + gainPct/100), rounded to cents.
func TargetPrice(referencePrice, gainPct float64) float64 {
	return roundPrice(referencePrice * (1 + gainPct/100))
}

func gainPct(trigger float64, mode domain.TriggerMode) (float64, error) {
	switch mode {
	case domain.TriggerPercentGain, "":
		return trigger, nil
	case domain.TriggerMultiplier:
		return (trigger - 1) * 100, nil
	}
	return 0, fmt.Errorf("%w: unknown trigger mode %q", domain.ErrInvalidInput, mode)
}

// LadderBuilder parses and builds in one step.
type LadderBuilder struct {
	Mode domain.TriggerMode
}

func NewLadderBuilder(mode domain.TriggerMode) *LadderBuilder {
	return &LadderBuilder{Mode: mode}
}

func (b *LadderBuilder) Build(referencePrice float64, spec string) ([]domain.TakeProfitLevel, error) {
	pairs, err := ParseLadderSpec(spec)
	if err != nil {
		return nil, err
	}
	return BuildLadder(referencePrice, pairs, b.Mode)
}
