package strategy

import (
	"fmt"

	"github.com/gamma-omg/backtester/internal/indicator"
	"github.com/gamma-omg/backtester/internal/market"
)

// Label is the per-bar signal emitted by the generator.
type Label int

const (
	None Label = iota
	EnterLong
	EnterShort
	// ExitAny closes whatever position is open without opening a new one.
	// It is emitted for a confirmed crossover whose entry is suppressed by
	// the trading mode or the session window.
	ExitAny
)

func (l Label) String() string {
	switch l {
	case None:
		return "none"
	case EnterLong:
		return "enter_long"
	case EnterShort:
		return "enter_short"
	case ExitAny:
		return "exit_any"
	default:
		return fmt.Sprintf("LABEL_%d", l)
	}
}

// Generator combines EMA crossovers, Heikin-Ashi bias and optional
// consecutive-candle confirmation into per-bar labels. It is a pure
// function of the bar series and safe to run concurrently.
type Generator struct {
	FastPeriod int
	SlowPeriod int
	Mode       Mode
	Pattern    int // consecutive HA candles required, 0 disables
	Session    Session
}

// Labels computes one label per bar, aligned by index.
func (g Generator) Labels(bars []market.Bar) []Label {
	labels := make([]Label, len(bars))
	if len(bars) == 0 {
		return labels
	}

	closes := market.Closes(bars)
	fast := indicator.EMA(closes, g.FastPeriod)
	slow := indicator.EMA(closes, g.SlowPeriod)
	candles := indicator.HeikinAshi(bars)
	bullOK := indicator.PatternFilter(candles, indicator.Bullish, g.Pattern)
	bearOK := indicator.PatternFilter(candles, indicator.Bearish, g.Pattern)

	for i := 1; i < len(bars); i++ {
		switch {
		case indicator.CrossesAbove(fast, slow, i):
			if candles[i].Bias() != indicator.Bullish || !bullOK[i] {
				continue
			}
			if g.Mode.AllowsLong() && g.Session.CanEnter(bars[i].Time) {
				labels[i] = EnterLong
			} else {
				labels[i] = ExitAny
			}
		case indicator.CrossesBelow(fast, slow, i):
			if candles[i].Bias() != indicator.Bearish || !bearOK[i] {
				continue
			}
			if g.Mode.AllowsShort() && g.Session.CanEnter(bars[i].Time) {
				labels[i] = EnterShort
			} else {
				labels[i] = ExitAny
			}
		}
	}

	return labels
}
