package returns

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantterm/backend/internal/calendar"
	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/internal/positions"
)

// hasToday reports whether the series already ends on today's date.
func hasToday(series contracts.ReturnSeries, today contracts.Day) bool {
	last, ok := series.Last()
	return ok && last.Date == today
}

// tickerLiveEligible: crypto trades around the clock; equities only
// stream during NYSE extended hours.
func (c *Computer) tickerLiveEligible(ticker string) bool {
	if contracts.IsCrypto(ticker) {
		return true
	}
	return calendar.IsOpenExtended(c.clock.Now())
}

// yesterdayCloses fetches recent history and resolves the last close
// strictly before today for each ticker.
func (c *Computer) yesterdayCloses(ctx context.Context, tickers []string, today contracts.Day) (map[string]float64, error) {
	histories, err := c.prices.FetchBatch(ctx, tickers, today.AddDays(-10), today)
	if err != nil {
		return nil, err
	}
	closes := make(map[string]float64, len(histories))
	for ticker, hist := range histories {
		// drop any bar dated today so the reference is yesterday's close
		if price, ok := hist.CloseOn(today.AddDays(-1)); ok {
			closes[ticker] = price
		}
	}
	return closes, nil
}

// AppendLiveTickerReturn appends a synthetic "today" observation,
// live_price / yesterday_close − 1, when today is absent from the
// series and the ticker is currently tradeable. Otherwise the series
// is returned unchanged.
func (c *Computer) AppendLiveTickerReturn(ctx context.Context, series contracts.ReturnSeries, ticker string) (contracts.ReturnSeries, error) {
	if c.live == nil {
		return nil, fmt.Errorf("live price provider not configured")
	}

	today := calendar.TodayET(c.clock.Now())
	if hasToday(series, today) || !c.tickerLiveEligible(ticker) {
		return series, nil
	}

	prices, err := c.live.CurrentPrices(ctx, []string{ticker})
	if err != nil {
		return nil, fmt.Errorf("live price for %s: %w", ticker, err)
	}
	livePrice, ok := prices[ticker]
	if !ok || livePrice <= 0 {
		return series, nil
	}

	closes, err := c.yesterdayCloses(ctx, []string{ticker}, today)
	if err != nil {
		return nil, err
	}
	yest, ok := closes[ticker]
	if !ok || yest == 0 {
		return series, nil
	}

	return append(series, contracts.ReturnPoint{Date: today, Value: livePrice/yest - 1}), nil
}

// AppendLivePortfolioReturn appends today's weighted live return over
// the portfolio's current non-cash holdings. Holdings that cannot be
// priced right now are skipped without renormalizing the remaining
// weights, so the appended value understates the move in proportion to
// the unpriced weight.
func (c *Computer) AppendLivePortfolioReturn(ctx context.Context, series contracts.ReturnSeries, portfolio string) (contracts.ReturnSeries, error) {
	if c.live == nil {
		return nil, fmt.Errorf("live price provider not configured")
	}

	today := calendar.TodayET(c.clock.Now())
	if hasToday(series, today) {
		return series, nil
	}

	txs, err := c.ledger.Transactions(ctx, portfolio)
	if err != nil {
		return nil, fmt.Errorf("load transactions for %s: %w", portfolio, err)
	}
	posTable, err := c.recon.Reconstruct(txs, positions.Options{IncludeCash: true})
	if err != nil {
		return nil, err
	}
	days := posTable.Days()
	if len(days) == 0 {
		return series, nil
	}
	current := posTable[days[len(days)-1]]

	held := make([]string, 0, len(current))
	for ticker, qty := range current {
		if qty != 0 && !strings.EqualFold(ticker, contracts.CashTicker) {
			held = append(held, ticker)
		}
	}
	if len(held) == 0 {
		return series, nil
	}

	// latest-day weights, cash included so equity weights stay honest
	batch, err := c.prices.FetchBatch(ctx, held, contracts.Day{}, today)
	if err != nil {
		return nil, err
	}
	latest := contracts.PositionTable{days[len(days)-1]: current}
	weightRow := c.wcalc.Compute(latest, batch)[days[len(days)-1]]

	eligible := make([]string, 0, len(held))
	for _, ticker := range held {
		if c.tickerLiveEligible(ticker) {
			eligible = append(eligible, ticker)
		}
	}
	if len(eligible) == 0 {
		return series, nil
	}

	livePrices, err := c.live.CurrentPrices(ctx, eligible)
	if err != nil {
		return nil, fmt.Errorf("live prices for %s: %w", portfolio, err)
	}
	closes, err := c.yesterdayCloses(ctx, eligible, today)
	if err != nil {
		return nil, err
	}

	sum := 0.0
	priced := 0
	for _, ticker := range eligible {
		live, okLive := livePrices[ticker]
		yest, okClose := closes[ticker]
		if !okLive || !okClose || live <= 0 || yest == 0 {
			c.log.Debugf("skipping unpriceable holding %s in live append", ticker)
			continue
		}
		sum += weightRow[ticker] * (live/yest - 1)
		priced++
	}
	if priced == 0 {
		return series, nil
	}

	return append(series, contracts.ReturnPoint{Date: today, Value: sum}), nil
}
