package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/gamma-omg/backtester/internal/market"
)

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

// bullishCrossBars has a single confirmed bullish EMA(2,3) crossover on the
// third bar. The bearish cross on the second bar is rejected by its bullish
// Heikin-Ashi candle.
func bullishCrossBars(t0 time.Time) []market.Bar {
	return makeBars(t0, [][4]float64{
		{100, 101, 99, 100},
		{100, 104, 99, 99},
		{99, 104, 99, 103},
		{103, 104, 102.5, 103.5},
		{103.5, 104.5, 103, 104},
	})
}

// bearishCrossBars mirrors it: a single confirmed bearish crossover on the
// third bar, with the earlier bullish cross rejected by a bearish candle.
func bearishCrossBars(t0 time.Time) []market.Bar {
	return makeBars(t0, [][4]float64{
		{100, 101, 99, 100},
		{100, 101, 96, 101},
		{101, 101, 96, 97},
		{97, 97.5, 96, 96.5},
		{96.5, 97, 95.5, 96},
	})
}

func TestGeneratorBullishEntry(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	g := Generator{FastPeriod: 2, SlowPeriod: 3, Mode: ModeSwing, Session: testSession(t)}

	labels := g.Labels(bullishCrossBars(t0))
	require.Equal(t, []Label{None, None, EnterLong, None, None}, labels)
}

func TestGeneratorBearishEntry(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	g := Generator{FastPeriod: 2, SlowPeriod: 3, Mode: ModeSwing, Session: testSession(t)}

	labels := g.Labels(bearishCrossBars(t0))
	require.Equal(t, []Label{None, None, EnterShort, None, None}, labels)
}

func TestGeneratorModeGateEmitsExit(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	// SELL mode cannot open a long, but the confirmed bullish crossover
	// still closes an opposite position.
	g := Generator{FastPeriod: 2, SlowPeriod: 3, Mode: ModeSell, Session: testSession(t)}
	labels := g.Labels(bullishCrossBars(t0))
	require.Equal(t, []Label{None, None, ExitAny, None, None}, labels)

	g.Mode = ModeBuy
	labels = g.Labels(bearishCrossBars(t0))
	require.Equal(t, []Label{None, None, ExitAny, None, None}, labels)
}

func TestGeneratorSessionWindowSuppressesEntries(t *testing.T) {
	g := Generator{FastPeriod: 2, SlowPeriod: 3, Mode: ModeSwing, Session: testSession(t)}

	// Before market_entry.
	early := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	labels := g.Labels(bullishCrossBars(early))
	require.Equal(t, []Label{None, None, ExitAny, None, None}, labels)

	// At and after force_exit.
	late := time.Date(2024, 1, 2, 15, 15, 0, 0, time.UTC)
	labels = g.Labels(bullishCrossBars(late))
	require.Equal(t, []Label{None, None, ExitAny, None, None}, labels)
}

func TestGeneratorPatternConfirmation(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	// The bearish HA run at the crossover bar is only 2 candles deep, so a
	// 3-candle confirmation rejects the signal entirely.
	g := Generator{FastPeriod: 2, SlowPeriod: 3, Mode: ModeSwing, Pattern: 3, Session: testSession(t)}
	labels := g.Labels(bearishCrossBars(t0))
	require.Equal(t, []Label{None, None, None, None, None}, labels)

	g.Pattern = 2
	labels = g.Labels(bearishCrossBars(t0))
	require.Equal(t, []Label{None, None, EnterShort, None, None}, labels)
}

func TestGeneratorEmptySeries(t *testing.T) {
	g := Generator{FastPeriod: 2, SlowPeriod: 3, Mode: ModeSwing, Session: testSession(t)}
	require.Empty(t, g.Labels(nil))
}
