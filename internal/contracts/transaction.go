package contracts

import (
	"fmt"
	"strings"
)

// CashTicker is the reserved ticker for uninvested cash. Its price is
// defined as 1.0 on every day and it is excluded from return math.
const CashTicker = "FREE CASH"

// TradingDaysPerYear is the annualization factor for daily statistics.
const TradingDaysPerYear = 252

// TxType distinguishes buys from sells.
type TxType string

const (
	TxBuy  TxType = "buy"
	TxSell TxType = "sell"
)

// ParseTxType normalizes a transaction type string.
func ParseTxType(s string) (TxType, error) {
	switch TxType(strings.ToLower(strings.TrimSpace(s))) {
	case TxBuy:
		return TxBuy, nil
	case TxSell:
		return TxSell, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Transaction is a single ledger entry.
// Sequence orders same-day transactions; entries without an explicit
// sequence keep their ledger file order.
type Transaction struct {
	Ticker   string  `json:"ticker"`
	Type     TxType  `json:"type"`
	Shares   float64 `json:"shares"`
	Price    float64 `json:"price"`
	Date     Day     `json:"date"`
	Sequence int     `json:"sequence,omitempty"`
}

// Validate checks structural invariants of a single entry.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Ticker) == "" {
		return fmt.Errorf("transaction: ticker is required")
	}
	if t.Type != TxBuy && t.Type != TxSell {
		return fmt.Errorf("transaction %s: invalid type %q", t.Ticker, t.Type)
	}
	if t.Shares <= 0 {
		return fmt.Errorf("transaction %s: shares must be positive, got %v", t.Ticker, t.Shares)
	}
	if t.Price < 0 {
		return fmt.Errorf("transaction %s: price must be non-negative, got %v", t.Ticker, t.Price)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction %s: date is required", t.Ticker)
	}
	return nil
}

// SignedShares returns shares with sign: positive for buys, negative for
// sells.
func (t Transaction) SignedShares() float64 {
	if t.Type == TxSell {
		return -t.Shares
	}
	return t.Shares
}

// IsCrypto reports whether the ticker looks like a crypto pair
// (trades 24/7, so market-hours logic does not apply).
func IsCrypto(ticker string) bool {
	upper := strings.ToUpper(ticker)
	return strings.HasSuffix(upper, "-USD") || strings.HasSuffix(upper, "-USDT")
}
