package indicator

// EMA computes the exponential moving average of data with the standard
// smoothing recurrence: the first value seeds the series, then
// a = 2/(period+1). The period must be positive, callers validate it
// before any run starts.
func EMA(data []float64, period int) []float64 {
	if period <= 0 {
		panic("ema period must be positive")
	}

	if len(data) == 0 {
		return nil
	}

	ema := make([]float64, len(data))
	ema[0] = data[0]

	a := 2.0 / (float64(period) + 1)
	for i, val := range data[1:] {
		ema[i+1] = val*a + ema[i]*(1-a)
	}

	return ema
}

// CrossesAbove reports a bullish crossover between consecutive values of
// two aligned series: fast moves from below-or-equal to above slow.
func CrossesAbove(fast, slow []float64, i int) bool {
	if i < 1 {
		return false
	}

	return fast[i] > slow[i] && fast[i-1] <= slow[i-1]
}

// CrossesBelow reports a bearish crossover at index i.
func CrossesBelow(fast, slow []float64, i int) bool {
	if i < 1 {
		return false
	}

	return fast[i] < slow[i] && fast[i-1] >= slow[i-1]
}
