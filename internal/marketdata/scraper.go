package marketdata

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/httputil"
	"github.com/quantterm/backend/pkg/logger"
)

// QuoteScraper pulls the current price off the HTML quote page. Used
// as the fallback when the websocket cache has no fresh tick for a
// ticker.
type QuoteScraper struct {
	http    *httputil.Client
	baseURL string
	log     *logger.Logger
}

// NewQuoteScraper creates a scraper sharing the configured rate limit.
func NewQuoteScraper(cfg *config.Config, log *logger.Logger) *QuoteScraper {
	return &QuoteScraper{
		http:    httputil.New(cfg.MarketData.RequestsPerSec, log),
		baseURL: cfg.MarketData.QuoteBaseURL,
		log:     log.WithComponent("scraper"),
	}
}

// CurrentPrice scrapes the regular-market price for one ticker.
func (s *QuoteScraper) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	reqURL := fmt.Sprintf("%s/%s", s.baseURL, url.PathEscape(ticker))
	body, err := s.http.GetBody(ctx, reqURL)
	if err != nil {
		return 0, fmt.Errorf("quote page for %s: %w", ticker, err)
	}
	return s.parse(body, ticker)
}

// parse extracts the price from the quote page markup. The page tags
// the live figure with a fin-streamer element keyed by field and
// symbol.
func (s *QuoteScraper) parse(body []byte, ticker string) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("parse quote page for %s: %w", ticker, err)
	}

	selector := fmt.Sprintf(`fin-streamer[data-field="regularMarketPrice"][data-symbol=%q]`, ticker)
	var price float64
	var found bool

	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw, ok := sel.Attr("data-value")
		if !ok {
			raw = sel.Text()
		}
		raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			price = v
			found = true
			return false
		}
		return true
	})

	if !found {
		return 0, fmt.Errorf("no price found on quote page for %s", ticker)
	}
	return price, nil
}
