package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
)

func day(t *testing.T, s string) contracts.Day {
	t.Helper()
	d, err := contracts.ParseDay(s)
	require.NoError(t, err)
	return d
}

func testConfig(chartURL, quoteURL string) *config.Config {
	return &config.Config{
		MarketData: config.MarketDataConfig{
			ChartBaseURL:   chartURL,
			QuoteBaseURL:   quoteURL,
			RequestsPerSec: 100,
		},
	}
}

func TestChartClientFetch(t *testing.T) {
	// two daily bars, unix timestamps for 2024-01-02 and 2024-01-03 UTC
	payload := `{
		"chart": {
			"result": [{
				"timestamp": [1704153600, 1704240000],
				"indicators": {
					"quote": [{
						"open": [99.5, 100.5],
						"high": [101, 103],
						"low": [99, 100],
						"close": [100, 102],
						"volume": [1000, 1100]
					}],
					"adjclose": [{"adjclose": [100, 102]}]
				}
			}],
			"error": null
		}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "AAPL")
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	client := NewChartClient(testConfig(srv.URL, ""), logger.Nop())
	hist, err := client.Fetch(context.Background(), "AAPL", day(t, "2024-01-01"), day(t, "2024-01-05"))
	require.NoError(t, err)
	require.Len(t, hist.Candles, 2)
	assert.Equal(t, "2024-01-02", hist.Candles[0].Date.String())
	assert.Equal(t, 100.0, hist.Candles[0].Close)
	assert.Equal(t, 102.0, hist.Candles[1].Close)
	assert.Equal(t, int64(1100), hist.Candles[1].Volume)
}

func TestChartClientUnknownTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": [], "error": null}}`)
	}))
	defer srv.Close()

	client := NewChartClient(testConfig(srv.URL, ""), logger.Nop())
	hist, err := client.Fetch(context.Background(), "NOPE", day(t, "2024-01-01"), day(t, "2024-01-05"))
	require.NoError(t, err, "unknown ticker is empty, not an error")
	assert.Empty(t, hist.Candles)
}

func TestChartClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": [], "error": {"code": "Not Found", "description": "no data"}}}`)
	}))
	defer srv.Close()

	client := NewChartClient(testConfig(srv.URL, ""), logger.Nop())
	_, err := client.Fetch(context.Background(), "BAD", day(t, "2024-01-01"), day(t, "2024-01-05"))
	assert.ErrorContains(t, err, "no data")
}

func TestChartClientFetchBatchPartialFailure(t *testing.T) {
	good := `{
		"chart": {
			"result": [{
				"timestamp": [1704153600, 1704240000],
				"indicators": {"quote": [{"open": [1,1], "high": [1,1], "low": [1,1], "close": [100, 101], "volume": [1,1]}]}
			}],
			"error": null
		}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/GOOD" {
			fmt.Fprint(w, good)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewChartClient(testConfig(srv.URL, ""), logger.Nop())
	out, err := client.FetchBatch(context.Background(), []string{"GOOD", "BAD"}, day(t, "2024-01-01"), day(t, "2024-01-05"))
	require.NoError(t, err, "partial failure should not error")
	assert.Contains(t, out, "GOOD")
	assert.NotContains(t, out, "BAD")
}

func TestPriceCacheFreshness(t *testing.T) {
	cache := NewPriceCache(50 * time.Millisecond)
	cache.Set("AAPL", 150.0)

	price, ok := cache.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, 150.0, price)

	time.Sleep(80 * time.Millisecond)
	_, ok = cache.Get("AAPL")
	assert.False(t, ok, "stale price should be absent")
}

func TestPriceCacheRejectsNonPositive(t *testing.T) {
	cache := NewPriceCache(time.Minute)
	cache.Set("AAPL", 0)
	cache.Set("MSFT", -1)
	_, ok := cache.Get("AAPL")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestQuoteScraperParse(t *testing.T) {
	html := `<html><body>
		<fin-streamer data-field="regularMarketPrice" data-symbol="AAPL" data-value="189.84">189.84</fin-streamer>
		<fin-streamer data-field="regularMarketChange" data-symbol="AAPL" data-value="1.23">1.23</fin-streamer>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, html)
	}))
	defer srv.Close()

	scraper := NewQuoteScraper(testConfig("", srv.URL), logger.Nop())
	price, err := scraper.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 189.84, price)
}

func TestQuoteScraperNoPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>nothing here</body></html>`)
	}))
	defer srv.Close()

	scraper := NewQuoteScraper(testConfig("", srv.URL), logger.Nop())
	_, err := scraper.CurrentPrice(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "no price found")
}

func TestLiveProviderCacheThenScraper(t *testing.T) {
	html := `<fin-streamer data-field="regularMarketPrice" data-symbol="MSFT" data-value="410.5"></fin-streamer>`
	scrapes := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		scrapes++
		fmt.Fprint(w, html)
	}))
	defer srv.Close()

	cache := NewPriceCache(time.Minute)
	cache.Set("AAPL", 190.0)
	scraper := NewQuoteScraper(testConfig("", srv.URL), logger.Nop())
	provider := NewLiveProvider(cache, scraper, nil, logger.Nop())

	prices, err := provider.CurrentPrices(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, 190.0, prices["AAPL"])
	assert.Equal(t, 410.5, prices["MSFT"])
	assert.Equal(t, 1, scrapes, "cached ticker must not hit the scraper")

	// second call: MSFT now cached from the scrape
	_, err = provider.CurrentPrices(context.Background(), []string{"MSFT"})
	require.NoError(t, err)
	assert.Equal(t, 1, scrapes)
}

type stubPrices struct {
	hist contracts.PriceHistory
	err  error
}

func (s stubPrices) Fetch(context.Context, string, contracts.Day, contracts.Day) (contracts.PriceHistory, error) {
	return s.hist, s.err
}

func (s stubPrices) FetchBatch(context.Context, []string, contracts.Day, contracts.Day) (map[string]contracts.PriceHistory, error) {
	return nil, s.err
}

func TestRiskFreeSourceFromYieldIndex(t *testing.T) {
	// ^IRX quotes the annualized yield in percent
	payload := `{
		"chart": {
			"result": [{
				"timestamp": [1704153600, 1704240000],
				"indicators": {"quote": [{"open": [5.1, 5.2], "high": [5.1, 5.2], "low": [5.1, 5.2], "close": [5.1, 5.2], "volume": [0, 0]}]}
			}],
			"error": null
		}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "IRX")
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	client := NewChartClient(testConfig(srv.URL, ""), logger.Nop())
	source := NewRiskFreeSource(client, "^IRX", 0.05, logger.Nop())
	assert.InDelta(t, 0.052, source.Rate(context.Background()), 1e-9)
}

func TestRiskFreeSourceFallback(t *testing.T) {
	source := NewRiskFreeSource(stubPrices{err: fmt.Errorf("provider down")}, "^IRX", 0.05, logger.Nop())
	assert.Equal(t, 0.05, source.Rate(context.Background()))

	empty := NewRiskFreeSource(stubPrices{}, "^IRX", 0.04, logger.Nop())
	assert.Equal(t, 0.04, empty.Rate(context.Background()))
}

func TestRiskFreeSourceCachesFetch(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches++
		fmt.Fprint(w, `{
			"chart": {
				"result": [{
					"timestamp": [1704153600],
					"indicators": {"quote": [{"open": [5.0], "high": [5.0], "low": [5.0], "close": [5.0], "volume": [0]}]}
				}],
				"error": null
			}
		}`)
	}))
	defer srv.Close()

	client := NewChartClient(testConfig(srv.URL, ""), logger.Nop())
	source := NewRiskFreeSource(client, "^IRX", 0.05, logger.Nop())
	source.Rate(context.Background())
	source.Rate(context.Background())
	assert.Equal(t, 1, fetches, "rate should be held between calls")
}
