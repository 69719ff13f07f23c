package indicator

import (
	"github.com/gamma-omg/backtester/internal/market"
)

// Bias is the directional reading of a Heikin-Ashi candle.
type Bias int

const (
	Bearish Bias = -1
	Bullish Bias = 1
)

func (b Bias) String() string {
	switch b {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "unknown"
	}
}

// HACandle is a smoothed candle derived from a raw bar and the previous
// HA candle. Candles are never mutated after the transform.
type HACandle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Bias is bullish when the candle closes at or above its open.
func (c HACandle) Bias() Bias {
	if c.Close >= c.Open {
		return Bullish
	}

	return Bearish
}

// HeikinAshi computes the HA transform for the whole series:
//
//	ha_close = (open + high + low + close) / 4
//	ha_open  = (prev_ha_open + prev_ha_close) / 2, seeded with (open0 + close0) / 2
//	ha_high  = max(high, ha_open, ha_close)
//	ha_low   = min(low, ha_open, ha_close)
func HeikinAshi(bars []market.Bar) []HACandle {
	if len(bars) == 0 {
		return nil
	}

	opens := market.Opens(bars)
	highs := market.Highs(bars)
	lows := market.Lows(bars)
	closes := market.Closes(bars)

	candles := make([]HACandle, len(bars))
	for i := range bars {
		haClose := (opens[i] + highs[i] + lows[i] + closes[i]) / 4

		var haOpen float64
		if i == 0 {
			haOpen = (opens[0] + closes[0]) / 2
		} else {
			haOpen = (candles[i-1].Open + candles[i-1].Close) / 2
		}

		candles[i] = HACandle{
			Open:  haOpen,
			High:  max(highs[i], haOpen, haClose),
			Low:   min(lows[i], haOpen, haClose),
			Close: haClose,
		}
	}

	return candles
}
