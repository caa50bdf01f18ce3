package returns

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/logger"
	redispkg "github.com/quantterm/backend/pkg/redis"
)

// cacheTTL bounds the shared Redis tier; local tiers rely on ledger
// mtime comparison instead.
const cacheTTL = 24 * time.Hour

// Cache is the two-tier (memory + disk) store of per-ticker daily
// return tables, keyed by portfolio name. An optional Redis tier sits
// between memory and disk for multi-process deployments.
//
// ⭐ SSOT: 포트폴리오별 수익률 테이블 캐시는 여기서만 관리
//
// Validity rule: an entry is valid iff its timestamp is strictly newer
// than the ledger's last-modified time. No ledger mtime means invalid
// (recompute rather than trust a stale entry).
type Cache struct {
	mu  sync.Mutex
	mem map[string]memEntry

	dir    string
	ledger contracts.TransactionLedger
	prices contracts.PriceHistoryProvider
	shared *redispkg.Cache // nil or disabled = skipped
	clock  contracts.Clock
	log    *logger.Logger
}

type memEntry struct {
	table     contracts.ReturnTable
	createdAt time.Time
}

// diskEntry is the on-disk / Redis serialization.
type diskEntry struct {
	CreatedAt time.Time             `json:"created_at"`
	Returns   contracts.ReturnTable `json:"returns"`
}

// NewCache creates a returns cache rooted at dir. shared may be nil.
func NewCache(
	dir string,
	ledger contracts.TransactionLedger,
	prices contracts.PriceHistoryProvider,
	shared *redispkg.Cache,
	clock contracts.Clock,
	log *logger.Logger,
) *Cache {
	if clock == nil {
		clock = contracts.SystemClock{}
	}
	return &Cache{
		mem:    make(map[string]memEntry),
		dir:    dir,
		ledger: ledger,
		prices: prices,
		shared: shared,
		clock:  clock,
		log:    log.WithComponent("returns_cache"),
	}
}

// sanitizeName makes a portfolio name filesystem-safe.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func (c *Cache) cachePath(portfolio string) string {
	return filepath.Join(c.dir, sanitizeName(portfolio)+"_returns.json")
}

// ledgerModified returns the portfolio's last-modified time. ok is
// false when the ledger cannot report one, which forces a recompute.
func (c *Cache) ledgerModified(ctx context.Context, portfolio string) (time.Time, bool) {
	mtime, err := c.ledger.LastModified(ctx, portfolio)
	if err != nil || mtime.IsZero() {
		return time.Time{}, false
	}
	return mtime, true
}

// Get returns the portfolio's per-ticker daily return table, computing
// and write-through caching on miss. Lookup order: memory → shared
// (Redis) → disk → fresh computation via the price provider.
func (c *Cache) Get(ctx context.Context, portfolio string) (contracts.ReturnTable, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mtime, mtimeOK := c.ledgerModified(ctx, portfolio)

	// Tier 1: memory
	if entry, ok := c.mem[portfolio]; ok && mtimeOK && entry.createdAt.After(mtime) {
		return entry.table, nil
	}

	// Tier 2: shared (optional)
	if c.shared != nil {
		var de diskEntry
		err := c.shared.Get(ctx, sanitizeName(portfolio), &de)
		if err == nil && mtimeOK && de.CreatedAt.After(mtime) {
			c.mem[portfolio] = memEntry{table: de.Returns, createdAt: de.CreatedAt}
			return de.Returns, nil
		}
	}

	// Tier 3: disk, validated by file mtime
	if mtimeOK {
		if table, fileMtime, ok := c.readDisk(portfolio, mtime); ok {
			// Stamp with the file's mtime, not the current clock: a
			// reloaded table is as old as the computation that wrote it,
			// and DropOutdated relies on that age.
			c.mem[portfolio] = memEntry{table: table, createdAt: fileMtime}
			return table, nil
		}
	}

	// Miss: compute fresh and write through.
	table, err := c.compute(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	now := c.clock.Now()
	c.mem[portfolio] = memEntry{table: table, createdAt: now}
	c.writeDisk(portfolio, diskEntry{CreatedAt: now, Returns: table})
	if c.shared != nil {
		if err := c.shared.Set(ctx, sanitizeName(portfolio), diskEntry{CreatedAt: now, Returns: table}, cacheTTL); err != nil {
			c.log.Warnf("shared cache write failed for %s: %v", portfolio, err)
		}
	}
	return table, nil
}

// readDisk loads the disk tier, returning the table and the cache
// file's mtime. Corruption or a stale mtime is a miss.
func (c *Cache) readDisk(portfolio string, ledgerMtime time.Time) (contracts.ReturnTable, time.Time, bool) {
	path := c.cachePath(portfolio)
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, false
	}
	if !info.ModTime().After(ledgerMtime) {
		return nil, time.Time{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.log.Warnf("cache file unreadable for %s, treating as miss: %v", portfolio, err)
		return nil, time.Time{}, false
	}
	var de diskEntry
	if err := json.Unmarshal(data, &de); err != nil {
		c.log.Warnf("cache file corrupted for %s, treating as miss: %v", portfolio, err)
		return nil, time.Time{}, false
	}
	return de.Returns, info.ModTime(), true
}

// writeDisk persists the entry. Failures are logged, never fatal: the
// caller still gets the in-memory result.
func (c *Cache) writeDisk(portfolio string, de diskEntry) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.log.Warnf("cache dir create failed, skipping disk write: %v", err)
		return
	}
	data, err := json.Marshal(de)
	if err != nil {
		c.log.Warnf("cache marshal failed for %s: %v", portfolio, err)
		return
	}
	path := c.cachePath(portfolio)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		c.log.Warnf("cache write failed for %s: %v", portfolio, err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		c.log.Warnf("cache rename failed for %s: %v", portfolio, err)
		_ = os.Remove(tmp)
	}
}

// compute fetches price history for every non-cash ticker in the
// ledger (one batch call) and converts closes to daily returns.
func (c *Cache) compute(ctx context.Context, portfolio string) (contracts.ReturnTable, error) {
	txs, err := c.ledger.Transactions(ctx, portfolio)
	if err != nil {
		return nil, fmt.Errorf("load transactions for %s: %w", portfolio, err)
	}

	seen := make(map[string]struct{})
	tickers := make([]string, 0)
	for _, tx := range txs {
		if strings.EqualFold(tx.Ticker, contracts.CashTicker) {
			continue
		}
		if _, ok := seen[tx.Ticker]; !ok {
			seen[tx.Ticker] = struct{}{}
			tickers = append(tickers, tx.Ticker)
		}
	}
	if len(tickers) == 0 {
		return contracts.ReturnTable{}, nil
	}

	end := contracts.DayOf(c.clock.Now())
	histories, err := c.prices.FetchBatch(ctx, tickers, contracts.Day{}, end)
	if err != nil {
		return nil, fmt.Errorf("fetch price batch for %s: %w", portfolio, err)
	}

	table := make(contracts.ReturnTable, len(histories))
	for ticker, hist := range histories {
		series := DailyFromCloses(hist)
		if len(series) > 0 {
			table[ticker] = series
		}
	}
	return table, nil
}

// Invalidate drops one portfolio from every tier.
func (c *Cache) Invalidate(ctx context.Context, portfolio string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.mem, portfolio)
	if err := os.Remove(c.cachePath(portfolio)); err != nil && !os.IsNotExist(err) {
		c.log.Warnf("cache file remove failed for %s: %v", portfolio, err)
	}
	if c.shared != nil {
		if err := c.shared.Delete(ctx, sanitizeName(portfolio)); err != nil {
			c.log.Warnf("shared cache delete failed for %s: %v", portfolio, err)
		}
	}
}

// InvalidateAll clears the memory tier and removes every cache file.
func (c *Cache) InvalidateAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem = make(map[string]memEntry)

	matches, err := filepath.Glob(filepath.Join(c.dir, "*_returns.json"))
	if err != nil {
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			c.log.Warnf("cache file remove failed at %s: %v", path, err)
		}
	}
}

// DropOutdated removes cached tables that predate the most recent
// expected market close, so post-close requests recompute with the new
// candle. current reports whether a table created on the given day is
// still usable.
func (c *Cache) DropOutdated(ctx context.Context, current func(contracts.Day) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for portfolio, entry := range c.mem {
		if current(contracts.DayOf(entry.createdAt)) {
			continue
		}
		delete(c.mem, portfolio)
		if err := os.Remove(c.cachePath(portfolio)); err != nil && !os.IsNotExist(err) {
			c.log.Warnf("cache file remove failed for %s: %v", portfolio, err)
		}
		if c.shared != nil {
			if err := c.shared.Delete(ctx, sanitizeName(portfolio)); err != nil {
				c.log.Warnf("shared cache delete failed for %s: %v", portfolio, err)
			}
		}
		dropped++
	}
	return dropped
}

// DailyFromCloses converts a price history to daily simple returns:
// close[t]/close[t−1] − 1. The first bar produces no return.
func DailyFromCloses(hist contracts.PriceHistory) contracts.ReturnSeries {
	if len(hist.Candles) < 2 {
		return contracts.ReturnSeries{}
	}
	series := make(contracts.ReturnSeries, 0, len(hist.Candles)-1)
	for i := 1; i < len(hist.Candles); i++ {
		prev := hist.Candles[i-1].Close
		if prev == 0 {
			continue
		}
		series = append(series, contracts.ReturnPoint{
			Date:  hist.Candles[i].Date,
			Value: hist.Candles[i].Close/prev - 1,
		})
	}
	return series
}
