package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	BybitBaseURL = "https://api.bybit.com"
	BybitWSURL   = "wss://stream.bybit.com/v5/public/spot"
)

func bybitSymbol(asset string) (string, error) {
	s, err := symbolFor(asset)
	if err != nil {
		return "", err
	}
	return s + "USDT", nil
}

func parseDecimalString(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed payload: price %q", s)
	}
	return v, nil
}

// BybitSource reads the spot ticker over REST (/v5/market/tickers).
type BybitSource struct {
	baseURL string
	client  *http.Client
}

func NewBybitSource(baseURL string, timeout time.Duration) *BybitSource {
	if baseURL == "" {
		baseURL = BybitBaseURL
	}
	return &BybitSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

func (b *BybitSource) Name() string { return "bybit" }

func (b *BybitSource) GetCurrentPrice(ctx context.Context, asset string) (float64, error) {
	symbol, err := bybitSymbol(asset)
	if err != nil {
		return 0, fetchError(b.Name(), asset, err)
	}

	var result struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List []struct {
				Symbol    string `json:"symbol"`
				LastPrice string `json:"lastPrice"`
			} `json:"list"`
		} `json:"result"`
	}
	path := "/v5/market/tickers?category=spot&symbol=" + symbol
	if err := getJSON(ctx, b.client, b.baseURL+path, nil, &result); err != nil {
		return 0, fetchError(b.Name(), asset, err)
	}
	if result.RetCode != 0 {
		return 0, fetchError(b.Name(), asset, fmt.Errorf("bybit error %d: %s", result.RetCode, result.RetMsg))
	}
	if len(result.Result.List) == 0 {
		return 0, fetchError(b.Name(), asset, fmt.Errorf("symbol %s not found", symbol))
	}

	price, err := parseDecimalString(result.Result.List[0].LastPrice)
	if err == nil {
		err = validPrice(price)
	}
	if err != nil {
		return 0, fetchError(b.Name(), asset, err)
	}
	return price, nil
}

// BybitTickerSource takes a single ticker snapshot from the public websocket:
// dial, subscribe, read until the first ticker frame, close. It does not keep
// a stream open between calls.
type BybitTickerSource struct {
	wsURL   string
	timeout time.Duration
	dialer  *websocket.Dialer
}

func NewBybitTickerSource(wsURL string, timeout time.Duration) *BybitTickerSource {
	if wsURL == "" {
		wsURL = BybitWSURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &BybitTickerSource{
		wsURL:   wsURL,
		timeout: timeout,
		dialer:  &websocket.Dialer{HandshakeTimeout: timeout},
	}
}

func (b *BybitTickerSource) Name() string { return "bybit-ws" }

type bybitTickerFrame struct {
	Op      string `json:"op"`
	Success *bool  `json:"success"`
	RetMsg  string `json:"ret_msg"`
	Topic   string `json:"topic"`
	Data    struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
	} `json:"data"`
}

func (b *BybitTickerSource) GetCurrentPrice(ctx context.Context, asset string) (float64, error) {
	symbol, err := bybitSymbol(asset)
	if err != nil {
		return 0, fetchError(b.Name(), asset, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	conn, _, err := b.dialer.DialContext(ctx, b.wsURL, nil)
	if err != nil {
		return 0, fetchError(b.Name(), asset, fmt.Errorf("dial: %w", err))
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	_ = conn.SetReadDeadline(deadline)

	topic := "tickers." + symbol
	sub := map[string]interface{}{
		"op":   "subscribe",
		"args": []string{topic},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return 0, fetchError(b.Name(), asset, fmt.Errorf("subscribe: %w", err))
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return 0, fetchError(b.Name(), asset, fmt.Errorf("read: %w", err))
		}

		var frame bybitTickerFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			return 0, fetchError(b.Name(), asset, fmt.Errorf("malformed payload: %w", err))
		}
		if frame.Op == "subscribe" && frame.Success != nil && !*frame.Success {
			return 0, fetchError(b.Name(), asset, fmt.Errorf("subscribe rejected: %s", frame.RetMsg))
		}
		if frame.Topic != topic {
			continue
		}

		price, err := parseDecimalString(frame.Data.LastPrice)
		if err == nil {
			err = validPrice(price)
		}
		if err != nil {
			return 0, fetchError(b.Name(), asset, err)
		}

		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return price, nil
	}
}
