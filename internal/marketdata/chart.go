// Package marketdata implements the price-history and live-price
// providers: a chart REST client, an HTML quote scraper fallback, and
// a websocket trade stream feeding an in-memory price cache.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/httputil"
	"github.com/quantterm/backend/pkg/logger"
)

// ChartClient fetches daily OHLCV history from the chart endpoint.
// Implements contracts.PriceHistoryProvider.
type ChartClient struct {
	http    *httputil.Client
	baseURL string
	log     *logger.Logger
}

// NewChartClient creates a chart client, rate-limited per config.
func NewChartClient(cfg *config.Config, log *logger.Logger) *ChartClient {
	return &ChartClient{
		http:    httputil.New(cfg.MarketData.RequestsPerSec, log),
		baseURL: cfg.MarketData.ChartBaseURL,
		log:     log.WithComponent("chart"),
	}
}

// chartResponse mirrors the chart API's JSON envelope.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns daily candles for one ticker. A zero start requests
// the full available range.
func (c *ChartClient) Fetch(ctx context.Context, ticker string, start, end contracts.Day) (contracts.PriceHistory, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	if start.IsZero() {
		params.Set("range", "max")
	} else {
		params.Set("period1", fmt.Sprintf("%d", start.Unix()))
		params.Set("period2", fmt.Sprintf("%d", end.AddDays(1).Unix()))
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())
	body, err := c.http.GetBody(ctx, reqURL)
	if err != nil {
		return contracts.PriceHistory{}, fmt.Errorf("chart request for %s: %w", ticker, err)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return contracts.PriceHistory{}, fmt.Errorf("chart response for %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return contracts.PriceHistory{}, fmt.Errorf("chart API error for %s: %s", ticker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		// unknown ticker: empty result, not an error
		return contracts.PriceHistory{Ticker: ticker}, nil
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]contracts.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		candle := contracts.Candle{
			Date:  contracts.DayOf(time.Unix(ts, 0)),
			Close: quote.Close[i],
		}
		if i < len(quote.Open) {
			candle.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			candle.High = quote.High[i]
		}
		if i < len(quote.Low) {
			candle.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			candle.Volume = quote.Volume[i]
		}
		if i < len(adj) {
			candle.AdjClose = adj[i]
		} else {
			candle.AdjClose = candle.Close
		}
		candles = append(candles, candle)
	}

	return contracts.PriceHistory{Ticker: ticker, Candles: candles}, nil
}

// FetchBatch fetches several tickers sequentially through the rate
// limiter. Tickers that fail are logged and omitted; err is non-nil
// only when every ticker failed.
func (c *ChartClient) FetchBatch(ctx context.Context, tickers []string, start, end contracts.Day) (map[string]contracts.PriceHistory, error) {
	out := make(map[string]contracts.PriceHistory, len(tickers))
	var lastErr error
	for _, ticker := range tickers {
		hist, err := c.Fetch(ctx, ticker, start, end)
		if err != nil {
			c.log.Warnf("batch fetch failed for %s: %v", ticker, err)
			lastErr = err
			continue
		}
		if len(hist.Candles) > 0 {
			out[ticker] = hist
		}
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("batch fetch failed for all %d tickers: %w", len(tickers), lastErr)
	}
	return out, nil
}

var _ contracts.PriceHistoryProvider = (*ChartClient)(nil)
