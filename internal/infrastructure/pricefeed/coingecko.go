package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoSource reads /simple/price. The free tier allows a few calls per
// minute, so requests wait on a token bucket before going out.
type CoinGeckoSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

func NewCoinGeckoSource(baseURL, apiKey string, timeout time.Duration, perMinute int) *CoinGeckoSource {
	if baseURL == "" {
		baseURL = CoinGeckoBaseURL
	}
	if perMinute <= 0 {
		perMinute = 30
	}
	return &CoinGeckoSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  newHTTPClient(timeout),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (c *CoinGeckoSource) Name() string { return "coingecko" }

func (c *CoinGeckoSource) GetCurrentPrice(ctx context.Context, asset string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fetchError(c.Name(), asset, fmt.Errorf("rate limiter: %w", err))
	}

	id := strings.ToLower(asset)
	params := url.Values{}
	params.Set("ids", id)
	params.Set("vs_currencies", "usd")

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"x-cg-demo-api-key": c.apiKey}
	}

	var result map[string]map[string]float64
	if err := getJSON(ctx, c.client, c.baseURL+"/simple/price?"+params.Encode(), headers, &result); err != nil {
		return 0, fetchError(c.Name(), asset, err)
	}

	quote, ok := result[id]
	if !ok {
		return 0, fetchError(c.Name(), asset, fmt.Errorf("malformed payload: no entry for %q", id))
	}
	price, ok := quote["usd"]
	if !ok {
		return 0, fetchError(c.Name(), asset, fmt.Errorf("malformed payload: no usd price"))
	}
	if err := validPrice(price); err != nil {
		return 0, fetchError(c.Name(), asset, err)
	}
	return price, nil
}
