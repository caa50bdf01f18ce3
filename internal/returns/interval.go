package returns

import (
	"fmt"
	"strings"

	"github.com/quantterm/backend/internal/contracts"
)

// Interval is a resampling frequency for return series.
type Interval string

const (
	Daily   Interval = "daily"
	Weekly  Interval = "weekly"
	Monthly Interval = "monthly"
	Yearly  Interval = "yearly"
)

// ParseInterval normalizes an interval string.
func ParseInterval(s string) (Interval, error) {
	switch Interval(strings.ToLower(strings.TrimSpace(s))) {
	case Daily, "":
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", fmt.Errorf("unknown interval: %q", s)
	}
}

// bucketKey assigns a day to its resampling bucket. Weekly buckets end
// on Sunday (ISO week shifted so weekend days group with the preceding
// trading week).
func bucketKey(d contracts.Day, interval Interval) string {
	switch interval {
	case Weekly:
		// key by the Sunday that ends the week
		offset := (7 - int(d.Weekday())) % 7
		return d.AddDays(offset).String()
	case Monthly:
		return d.String()[:7] // YYYY-MM
	case Yearly:
		return d.String()[:4] // YYYY
	default:
		return d.String()
	}
}

// Resample compounds daily returns into weekly/monthly/yearly buckets
// using geometric linking: ∏(1+r) − 1 per bucket. Daily is a no-op.
// Each resampled point carries the date of the bucket's last
// observation.
func Resample(series contracts.ReturnSeries, interval Interval) contracts.ReturnSeries {
	if interval == Daily || interval == "" || len(series) == 0 {
		return series
	}

	out := make(contracts.ReturnSeries, 0)
	currentKey := ""
	growth := 1.0
	var lastDate contracts.Day

	flush := func() {
		if currentKey != "" {
			out = append(out, contracts.ReturnPoint{Date: lastDate, Value: growth - 1})
		}
	}

	for _, p := range series {
		key := bucketKey(p.Date, interval)
		if key != currentKey {
			flush()
			currentKey = key
			growth = 1.0
		}
		growth *= 1 + p.Value
		lastDate = p.Date
	}
	flush()

	return out
}
