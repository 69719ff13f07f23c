package market

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a single OHLC candle. Prices stay decimal at the data boundary;
// the backtest pipeline extracts float64 series once per run.
type Bar struct {
	Time  time.Time
	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// ValidateSeries rejects empty, unordered or duplicated bar sequences.
// Gaps between timestamps are tolerated, the engine never fills them.
func ValidateSeries(bars []Bar) error {
	if len(bars) == 0 {
		return errors.New("empty bar series")
	}

	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return fmt.Errorf("bar series is not strictly increasing at index %d: %s followed by %s",
				i, bars[i-1].Time.Format(time.DateTime), bars[i].Time.Format(time.DateTime))
		}
	}

	return nil
}

func Opens(bars []Bar) []float64 { return extract(bars, func(b Bar) decimal.Decimal { return b.Open }) }
func Highs(bars []Bar) []float64 { return extract(bars, func(b Bar) decimal.Decimal { return b.High }) }
func Lows(bars []Bar) []float64  { return extract(bars, func(b Bar) decimal.Decimal { return b.Low }) }
func Closes(bars []Bar) []float64 {
	return extract(bars, func(b Bar) decimal.Decimal { return b.Close })
}

func extract(bars []Bar, get func(Bar) decimal.Decimal) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i], _ = get(b).Float64()
	}

	return out
}
