package backtest

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/gamma-omg/backtester/internal/market"
	"github.com/gamma-omg/backtester/internal/strategy"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSession(t *testing.T) strategy.Session {
	t.Helper()

	parse := func(s string) strategy.TimeOfDay {
		tod, err := strategy.ParseTimeOfDay(s)
		require.NoError(t, err)
		return tod
	}

	return strategy.Session{
		MarketOpen:  parse("09:15"),
		MarketEntry: parse("09:30"),
		ForceExit:   parse("15:15"),
		MarketClose: parse("15:30"),
	}
}

func testRun(t *testing.T) Run {
	t.Helper()

	return Run{
		EmaFast:        2,
		EmaSlow:        3,
		Mode:           strategy.ModeSwing,
		Session:        testSession(t),
		InitialCapital: 25000,
		PositionSize:   1,
	}
}

func makeBars(t0 time.Time, ohlc [][4]float64) []market.Bar {
	bars := make([]market.Bar, len(ohlc))
	for i, v := range ohlc {
		bars[i] = market.Bar{
			Time:  t0.Add(time.Duration(i) * time.Minute),
			Open:  decimal.NewFromFloat(v[0]),
			High:  decimal.NewFromFloat(v[1]),
			Low:   decimal.NewFromFloat(v[2]),
			Close: decimal.NewFromFloat(v[3]),
		}
	}

	return bars
}

// syntheticBars builds a deterministic multi-day minute series with enough
// movement to trigger entries, stops and reversals.
func syntheticBars(days int) []market.Bar {
	var bars []market.Bar

	prev := 100.0
	for d := 0; d < days; d++ {
		day := time.Date(2024, 1, 2+d, 0, 0, 0, 0, time.UTC)
		for m := 9*60 + 15; m <= 15*60+30; m++ {
			i := len(bars)
			c := 100 +
				6*math.Sin(float64(i)/17) +
				3*math.Sin(float64(i)/53) +
				1.5*math.Sin(float64(i)*0.7)
			o := prev
			h := max(o, c) + 0.3
			l := min(o, c) - 0.3

			bars = append(bars, market.Bar{
				Time:  day.Add(time.Duration(m) * time.Minute),
				Open:  decimal.NewFromFloat(o),
				High:  decimal.NewFromFloat(h),
				Low:   decimal.NewFromFloat(l),
				Close: decimal.NewFromFloat(c),
			})
			prev = c
		}
	}

	return bars
}
