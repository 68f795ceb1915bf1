package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const CoinCapBaseURL = "https://api.coincap.io/v2"

// CoinCapSource reads /assets/{id}. CoinCap quotes priceUsd as a string with
// many decimals; the price is cut to cents like the rest of the report.
type CoinCapSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCoinCapSource(baseURL, apiKey string, timeout time.Duration) *CoinCapSource {
	if baseURL == "" {
		baseURL = CoinCapBaseURL
	}
	return &CoinCapSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  newHTTPClient(timeout),
	}
}

func (c *CoinCapSource) Name() string { return "coincap" }

func (c *CoinCapSource) GetCurrentPrice(ctx context.Context, asset string) (float64, error) {
	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + c.apiKey}
	}

	var result struct {
		Data struct {
			ID       string `json:"id"`
			PriceUsd string `json:"priceUsd"`
		} `json:"data"`
	}
	if err := getJSON(ctx, c.client, c.baseURL+"/assets/"+strings.ToLower(asset), headers, &result); err != nil {
		return 0, fetchError(c.Name(), asset, err)
	}

	d, err := decimal.NewFromString(result.Data.PriceUsd)
	if err != nil {
		return 0, fetchError(c.Name(), asset, fmt.Errorf("malformed payload: priceUsd %q", result.Data.PriceUsd))
	}
	price, _ := d.Round(2).Float64()
	if err := validPrice(price); err != nil {
		return 0, fetchError(c.Name(), asset, err)
	}
	return price, nil
}
