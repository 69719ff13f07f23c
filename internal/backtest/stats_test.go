package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tradeAt(t *testing.T, exit string, pnl float64) Trade {
	t.Helper()
	ts, err := time.Parse(time.DateTime, exit)
	require.NoError(t, err)

	reason := ExitSignal
	if pnl <= 0 {
		reason = ExitStopLoss
	}

	return Trade{
		Direction: Long,
		EntryTime: ts.Add(-30 * time.Minute),
		ExitTime:  ts,
		Reason:    reason,
		PnL:       pnl,
	}
}

func TestSummarizeNoTrades(t *testing.T) {
	run := testRun(t)
	s := Summarize(run, nil)

	assert.Equal(t, 0, s.TotalTrades)
	assert.Equal(t, 0.0, s.WinRate, "win rate is 0 without trades, never NaN")
	assert.Equal(t, 0.0, s.ProfitFactor)
	assert.Equal(t, 0.0, s.SharpeRatio)
	assert.Equal(t, 25000.0, s.FinalCapital)
	assert.Equal(t, 0.0, s.MaxDrawdownPct)
	assert.Empty(t, s.Monthly)
	assert.Empty(t, s.ExitReasons)
}

func TestSummarizeOnlyWinningTrades(t *testing.T) {
	run := testRun(t)
	trades := []Trade{
		tradeAt(t, "2024-01-02 10:30:00", 100),
		tradeAt(t, "2024-01-02 11:30:00", 50),
	}

	s := Summarize(run, trades)
	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, 1.0, s.WinRate)
	assert.True(t, math.IsInf(s.ProfitFactor, 1), "zero gross loss yields the +Inf sentinel")
	assert.Equal(t, 25150.0, s.FinalCapital)
}

func TestSummarizeWinRateAndProfitFactor(t *testing.T) {
	run := testRun(t)
	trades := []Trade{
		tradeAt(t, "2024-01-02 10:30:00", 300),
		tradeAt(t, "2024-01-02 11:30:00", -100),
		tradeAt(t, "2024-01-02 12:30:00", -50),
		tradeAt(t, "2024-01-02 13:30:00", 150),
	}

	s := Summarize(run, trades)
	assert.Equal(t, 2, s.WinningTrades)
	assert.InDelta(t, 0.5, s.WinRate, 1e-9)
	assert.InDelta(t, 3, s.ProfitFactor, 1e-9)
	assert.Equal(t, map[string]int{"signal_reversal": 2, "stop_loss": 2}, s.ExitReasons)
}

func TestSummarizeMaxDrawdown(t *testing.T) {
	run := testRun(t)
	run.InitialCapital = 1000
	trades := []Trade{
		tradeAt(t, "2024-01-02 10:30:00", 100),
		tradeAt(t, "2024-01-02 11:30:00", -200),
		tradeAt(t, "2024-01-02 12:30:00", 50),
	}

	s := Summarize(run, trades)

	// Peak 1100, trough 900.
	assert.InDelta(t, 200.0/1100*100, s.MaxDrawdownPct, 1e-9)
	assert.Equal(t, 950.0, s.FinalCapital)
}

func TestSummarizeMonthlyBreakdown(t *testing.T) {
	run := testRun(t)
	run.InitialCapital = 1000
	trades := []Trade{
		tradeAt(t, "2024-01-10 10:30:00", 60),
		tradeAt(t, "2024-01-20 10:30:00", 40),
		tradeAt(t, "2024-02-10 10:30:00", -55),
	}

	s := Summarize(run, trades)
	require.Len(t, s.Monthly, 2)

	jan := s.Monthly["2024-01"]
	assert.Equal(t, 2, jan.Trades)
	assert.InDelta(t, 100, jan.PnL, 1e-9)
	assert.InDelta(t, 10, jan.ReturnPct, 1e-9)

	feb := s.Monthly["2024-02"]
	assert.Equal(t, 1, feb.Trades)
	assert.InDelta(t, -5, feb.ReturnPct, 1e-9)

	assert.Equal(t, 1, s.ProfitableMonths)
	assert.InDelta(t, 10, s.BestMonthPct, 1e-9)
	assert.InDelta(t, -5, s.WorstMonthPct, 1e-9)
	assert.InDelta(t, 2.5, s.MonthlyAvgPct, 1e-9)
	assert.InDelta(t, 7.5, s.MonthlyStdPct, 1e-9)

	// mean/std of monthly returns, annualized.
	assert.InDelta(t, 2.5/7.5*math.Sqrt(12), s.SharpeRatio, 1e-9)
}

func TestSummarizeZeroVarianceSharpe(t *testing.T) {
	run := testRun(t)
	trades := []Trade{tradeAt(t, "2024-01-10 10:30:00", 100)}

	s := Summarize(run, trades)
	assert.Equal(t, 0.0, s.SharpeRatio, "single month has zero deviation")
}
