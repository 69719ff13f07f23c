package report

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gamma-omg/backtester/internal/backtest"
)

// JsonReportBuilder collects run results and serializes them in submission
// order. Safe for concurrent Submit calls.
type JsonReportBuilder struct {
	log     *slog.Logger
	results []backtest.Result
	mu      sync.Mutex
}

type JsonReport struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Seed        int64       `json:"seed"`
	Mode        string      `json:"execution_mode"`
	Results     []JsonEntry `json:"results"`
}

type JsonEntry struct {
	Run     string       `json:"run"`
	Error   string       `json:"error,omitempty"`
	Summary *JsonSummary `json:"summary,omitempty"`
	Trades  []JsonTrade  `json:"trades,omitempty"`
}

type JsonSummary struct {
	EmaFast          int                           `json:"ema_fast"`
	EmaSlow          int                           `json:"ema_slow"`
	Mode             string                        `json:"trading_mode"`
	Pattern          int                           `json:"pattern_length,omitempty"`
	TotalTrades      int                           `json:"total_trades"`
	WinningTrades    int                           `json:"winning_trades"`
	WinRate          float64                       `json:"win_rate"`
	ProfitFactor     string                        `json:"profit_factor"`
	TotalProfit      float64                       `json:"total_profit"`
	FinalCapital     float64                       `json:"final_capital"`
	ReturnPct        float64                       `json:"return_pct"`
	MaxDrawdownPct   float64                       `json:"max_drawdown_pct"`
	SharpeRatio      float64                       `json:"sharpe_ratio"`
	MonthlyAvgPct    float64                       `json:"monthly_returns_avg"`
	MonthlyStdPct    float64                       `json:"monthly_returns_std"`
	ProfitableMonths int                           `json:"profitable_months"`
	BestMonthPct     float64                       `json:"max_monthly_profit"`
	WorstMonthPct    float64                       `json:"max_monthly_loss"`
	Monthly          map[string]backtest.MonthStat `json:"monthly,omitempty"`
	ExitReasons      map[string]int                `json:"exit_reasons,omitempty"`
}

type JsonTrade struct {
	Direction  string  `json:"direction"`
	EntryTime  string  `json:"entry_time"`
	EntryPrice float64 `json:"entry_price"`
	ExitTime   string  `json:"exit_time"`
	ExitPrice  float64 `json:"exit_price"`
	ExitReason string  `json:"exit_reason"`
	PnL        float64 `json:"pnl"`
	PnLPct     float64 `json:"pnl_pct"`
	Duration   float64 `json:"duration"`
}

func NewJsonReportBuilder(log *slog.Logger) *JsonReportBuilder {
	return &JsonReportBuilder{log: log}
}

func (r *JsonReportBuilder) Submit(res backtest.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, res)
}

func (r *JsonReportBuilder) SubmitAll(results []backtest.Result) {
	for _, res := range results {
		r.Submit(res)
	}
}

func (r *JsonReportBuilder) Write(w io.Writer, mode string, seed int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := JsonReport{
		GeneratedAt: time.Now().UTC(),
		Seed:        seed,
		Mode:        mode,
	}

	for _, res := range r.results {
		entry := JsonEntry{Run: res.Run.Name()}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		} else {
			entry.Summary = newJsonSummary(res.Summary)
			entry.Trades = newJsonTrades(res.Trades)
		}

		doc.Results = append(doc.Results, entry)
	}

	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(doc); err != nil {
		return fmt.Errorf("failed to write backtest report: %w", err)
	}

	return nil
}

func (r *JsonReportBuilder) WriteToFile(path string, mode string, seed int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := r.Write(f, mode, seed); err != nil {
		return err
	}

	r.log.Info("report written", slog.String("path", path))
	return nil
}

func newJsonSummary(s backtest.Summary) *JsonSummary {
	return &JsonSummary{
		EmaFast:          s.EmaFast,
		EmaSlow:          s.EmaSlow,
		Mode:             s.Mode,
		Pattern:          s.Pattern,
		TotalTrades:      s.TotalTrades,
		WinningTrades:    s.WinningTrades,
		WinRate:          s.WinRate,
		ProfitFactor:     strconv.FormatFloat(s.ProfitFactor, 'g', -1, 64),
		TotalProfit:      s.TotalProfit,
		FinalCapital:     s.FinalCapital,
		ReturnPct:        s.ReturnPct,
		MaxDrawdownPct:   s.MaxDrawdownPct,
		SharpeRatio:      s.SharpeRatio,
		MonthlyAvgPct:    s.MonthlyAvgPct,
		MonthlyStdPct:    s.MonthlyStdPct,
		ProfitableMonths: s.ProfitableMonths,
		BestMonthPct:     s.BestMonthPct,
		WorstMonthPct:    s.WorstMonthPct,
		Monthly:          s.Monthly,
		ExitReasons:      s.ExitReasons,
	}
}

func newJsonTrades(trades []backtest.Trade) []JsonTrade {
	out := make([]JsonTrade, len(trades))
	for i, t := range trades {
		out[i] = JsonTrade{
			Direction:  t.Direction.String(),
			EntryTime:  t.EntryTime.Format(time.DateTime),
			EntryPrice: t.EntryPrice,
			ExitTime:   t.ExitTime.Format(time.DateTime),
			ExitPrice:  t.ExitPrice,
			ExitReason: t.Reason.String(),
			PnL:        t.PnL,
			PnLPct:     t.PnLPct,
			Duration:   t.Duration,
		}
	}

	return out
}
