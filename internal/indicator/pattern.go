package indicator

// ConsecutiveCandles reports, for each index, whether the preceding length
// candles (including the current one) all share bias b. Indices with fewer
// than length candles behind them read false, never an error.
func ConsecutiveCandles(candles []HACandle, b Bias, length int) []bool {
	out := make([]bool, len(candles))
	if length <= 0 {
		return out
	}

	run := 0
	for i, c := range candles {
		if c.Bias() == b {
			run++
		} else {
			run = 0
		}
		out[i] = run >= length
	}

	return out
}

// PatternFilter is ConsecutiveCandles with a disabled mode: length 0 keeps
// the call shape uniform and confirms every bar.
func PatternFilter(candles []HACandle, b Bias, length int) []bool {
	if length == 0 {
		out := make([]bool, len(candles))
		for i := range out {
			out[i] = true
		}

		return out
	}

	return ConsecutiveCandles(candles, b, length)
}
