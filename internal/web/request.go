package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/vitos/eth_take_profit/internal/domain"
	"github.com/vitos/eth_take_profit/internal/usecase"
)

// statusRequestFromQuery reads pru, tp, qty, mode, inventory and price,
// falling back to the server defaults for missing keys.
func (s *Server) statusRequestFromQuery(q url.Values) (usecase.StatusRequest, error) {
	req := usecase.StatusRequest{
		Holding: domain.Holding{
			Asset:          s.defaults.Asset,
			ReferencePrice: s.defaults.PRU,
			Quantity:       s.defaults.HeldQuantity,
		},
		Ladder:    s.defaults.Ladder,
		Mode:      s.defaults.Mode,
		Inventory: s.defaults.Inventory,
	}

	var err error
	if v := q.Get("pru"); v != "" {
		if req.ReferencePrice, err = parseFloatParam("pru", v); err != nil {
			return req, err
		}
	}
	if v := q.Get("qty"); v != "" {
		if req.Quantity, err = parseFloatParam("qty", v); err != nil {
			return req, err
		}
	}
	if v := q.Get("price"); v != "" {
		price, err := parseFloatParam("price", v)
		if err != nil {
			return req, err
		}
		req.CurrentPrice = &price
	}
	if v := q.Get("tp"); v != "" {
		req.Ladder = v
	}
	if v := q.Get("mode"); v != "" {
		if req.Mode, err = domain.ParseTriggerMode(v); err != nil {
			return req, err
		}
	}
	if v := q.Get("inventory"); v != "" {
		if req.Inventory, err = domain.ParseInventoryMode(v); err != nil {
			return req, err
		}
	}
	return req, nil
}

func parseFloatParam(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", domain.ErrInvalidInput, name, v)
	}
	return f, nil
}
