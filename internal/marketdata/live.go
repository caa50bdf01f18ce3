package marketdata

import (
	"context"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/logger"
)

// LiveProvider resolves current prices: websocket cache first, HTML
// scraper fallback. Implements contracts.LivePriceProvider.
type LiveProvider struct {
	cache   *PriceCache
	scraper *QuoteScraper
	stream  *Stream
	log     *logger.Logger
}

// NewLiveProvider wires the cache, stream, and scraper together.
// stream may be nil when the websocket feed is not running.
func NewLiveProvider(cache *PriceCache, scraper *QuoteScraper, stream *Stream, log *logger.Logger) *LiveProvider {
	return &LiveProvider{
		cache:   cache,
		scraper: scraper,
		stream:  stream,
		log:     log.WithComponent("live"),
	}
}

// CurrentPrices returns the latest price per ticker. Tickers that
// cannot be priced are absent from the result. Requested tickers are
// also subscribed on the stream so later lookups hit the cache.
func (p *LiveProvider) CurrentPrices(ctx context.Context, tickers []string) (map[string]float64, error) {
	if p.stream != nil {
		p.stream.Subscribe(tickers...)
	}

	out := make(map[string]float64, len(tickers))
	for _, ticker := range tickers {
		if price, ok := p.cache.Get(ticker); ok {
			out[ticker] = price
			continue
		}
		price, err := p.scraper.CurrentPrice(ctx, ticker)
		if err != nil {
			p.log.Debugf("live price unavailable for %s: %v", ticker, err)
			continue
		}
		p.cache.Set(ticker, price)
		out[ticker] = price
	}
	return out, nil
}

var _ contracts.LivePriceProvider = (*LiveProvider)(nil)
