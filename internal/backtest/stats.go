package backtest

import (
	"math"
)

// MonthStat is the month-keyed breakdown entry of a summary.
type MonthStat struct {
	Trades    int
	PnL       float64
	ReturnPct float64 // return on equity at the start of the month
}

// Summary aggregates one run's trade sequence. Numeric edge cases follow
// sentinel semantics: a run without trades has win rate 0, profit factor is
// +Inf when gross loss is zero and gross profit is not, and the Sharpe
// ratio is 0 when the return deviation is zero.
type Summary struct {
	EmaFast          int
	EmaSlow          int
	Mode             string
	Pattern          int
	TotalTrades      int
	WinningTrades    int
	WinRate          float64
	ProfitFactor     float64
	TotalProfit      float64
	FinalCapital     float64
	ReturnPct        float64
	MaxDrawdownPct   float64
	SharpeRatio      float64
	MonthlyAvgPct    float64
	MonthlyStdPct    float64
	ProfitableMonths int
	BestMonthPct     float64
	WorstMonthPct    float64
	Monthly          map[string]MonthStat
	ExitReasons      map[string]int
}

// Summarize computes the performance summary from an ordered trade
// sequence. Equity compounds across trades from the run's initial capital.
func Summarize(run Run, trades []Trade) Summary {
	s := Summary{
		EmaFast:      run.EmaFast,
		EmaSlow:      run.EmaSlow,
		Mode:         run.Mode.String(),
		Pattern:      run.Pattern,
		TotalTrades:  len(trades),
		FinalCapital: run.InitialCapital,
		Monthly:      make(map[string]MonthStat),
		ExitReasons:  make(map[string]int),
	}

	equity := run.InitialCapital
	runningMax := equity
	var grossProfit, grossLoss float64

	// Month keys in chronological order; trades are ordered by exit time.
	var months []string
	currentMonth := ""
	monthStart := equity

	closeMonth := func() {
		if currentMonth == "" {
			return
		}
		ms := s.Monthly[currentMonth]
		ms.ReturnPct = (equity - monthStart) / monthStart * 100
		s.Monthly[currentMonth] = ms
	}

	for _, t := range trades {
		key := t.ExitTime.Format("2006-01")
		if key != currentMonth {
			closeMonth()
			currentMonth = key
			months = append(months, key)
			monthStart = equity
		}

		equity += t.PnL
		ms := s.Monthly[key]
		ms.Trades++
		ms.PnL += t.PnL
		s.Monthly[key] = ms

		if t.PnL > 0 {
			s.WinningTrades++
			grossProfit += t.PnL
		} else {
			grossLoss += -t.PnL
		}
		s.ExitReasons[t.Reason.String()]++

		runningMax = max(runningMax, equity)
		dd := (runningMax - equity) / runningMax * 100
		s.MaxDrawdownPct = max(s.MaxDrawdownPct, dd)
	}
	closeMonth()

	s.FinalCapital = equity
	s.TotalProfit = equity - run.InitialCapital
	s.ReturnPct = s.TotalProfit / run.InitialCapital * 100

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	}

	switch {
	case grossLoss > 0:
		s.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		s.ProfitFactor = math.Inf(1)
	default:
		s.ProfitFactor = 0
	}

	if len(months) > 0 {
		returns := make([]float64, len(months))
		for i, m := range months {
			returns[i] = s.Monthly[m].ReturnPct
			if returns[i] > 0 {
				s.ProfitableMonths++
			}
		}

		s.MonthlyAvgPct = mean(returns)
		s.MonthlyStdPct = std(returns, s.MonthlyAvgPct)
		s.BestMonthPct = slicesMax(returns)
		s.WorstMonthPct = slicesMin(returns)

		// Monthly returns annualized, 0 when the deviation is zero.
		if s.MonthlyStdPct > 0 {
			s.SharpeRatio = s.MonthlyAvgPct / s.MonthlyStdPct * math.Sqrt(12)
		}
	}

	return s
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}

	return sum / float64(len(vals))
}

func std(vals []float64, mean float64) float64 {
	if len(vals) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(vals)))
}

func slicesMax(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		m = max(m, v)
	}

	return m
}

func slicesMin(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		m = min(m, v)
	}

	return m
}
