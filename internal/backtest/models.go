package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/gamma-omg/backtester/internal/strategy"
)

// ErrInvariant marks internal defects such as two simultaneously open
// positions. It indicates a logic bug, not bad input, and is reported
// distinctly from data and configuration errors.
var ErrInvariant = errors.New("internal invariant violation")

type Direction int

const (
	Long  Direction = 1
	Short Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return fmt.Sprintf("DIR_%d", d)
	}
}

type ExitReason int

const (
	ExitSignal ExitReason = iota
	ExitStopLoss
	ExitTrailingStop
	ExitForced
	ExitEndOfData
)

func (r ExitReason) String() string {
	switch r {
	case ExitSignal:
		return "signal_reversal"
	case ExitStopLoss:
		return "stop_loss"
	case ExitTrailingStop:
		return "trailing_stop"
	case ExitForced:
		return "forced_exit"
	case ExitEndOfData:
		return "end_of_data"
	default:
		return fmt.Sprintf("EXIT_%d", r)
	}
}

// Trade is an immutable record created when a position closes.
type Trade struct {
	Direction  Direction
	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  float64
	Reason     ExitReason
	PnL        float64
	PnLPct     float64
	Duration   float64 // minutes
}

// Risk holds the per-position protection rules. MaxTradesPerDay and
// MaxRiskPerTrade are reserved fields: accepted and validated, with no
// enforced behavior yet.
type Risk struct {
	UseStopLoss     bool
	StopLossPct     float64
	UseTrailingStop bool
	TrailingStopPct float64
	MaxTradesPerDay int
	MaxRiskPerTrade float64
}

// Run is one immutable backtest configuration. Each run produces exactly
// one trade sequence and one summary, independent of every other run.
type Run struct {
	EmaFast        int
	EmaSlow        int
	Mode           strategy.Mode
	Pattern        int // 0 disables candle confirmation
	Risk           Risk
	Session        strategy.Session
	InitialCapital float64
	PositionSize   float64 // fraction of current capital committed per trade
	CommissionPct  float64
	SlippagePct    float64
}

func (r Run) Validate() error {
	if r.EmaFast <= 0 || r.EmaSlow <= 0 {
		return fmt.Errorf("ema periods must be positive, got %d/%d", r.EmaFast, r.EmaSlow)
	}
	if r.EmaFast >= r.EmaSlow {
		return fmt.Errorf("fast ema period %d must be less than slow %d", r.EmaFast, r.EmaSlow)
	}
	if r.Pattern != 0 && r.Pattern != 2 && r.Pattern != 3 {
		return fmt.Errorf("invalid candle pattern length %d, must be 2, 3 or 0", r.Pattern)
	}
	if r.Risk.StopLossPct < 0 || r.Risk.StopLossPct > 100 {
		return fmt.Errorf("stop_loss_pct out of range: %v", r.Risk.StopLossPct)
	}
	if r.Risk.TrailingStopPct < 0 || r.Risk.TrailingStopPct > 100 {
		return fmt.Errorf("trailing_stop_pct out of range: %v", r.Risk.TrailingStopPct)
	}
	if r.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive: %v", r.InitialCapital)
	}
	if r.PositionSize <= 0 || r.PositionSize > 1 {
		return fmt.Errorf("position size must be in (0, 1]: %v", r.PositionSize)
	}
	if r.CommissionPct < 0 || r.SlippagePct < 0 {
		return fmt.Errorf("commission and slippage cannot be negative: %v/%v", r.CommissionPct, r.SlippagePct)
	}
	if err := r.Session.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	return nil
}

// Name is a short human-readable identity used in logs and reports.
func (r Run) Name() string {
	pattern := "none"
	if r.Pattern != 0 {
		pattern = fmt.Sprintf("%d-candle", r.Pattern)
	}

	return fmt.Sprintf("EMA %d/%d %s %s", r.EmaFast, r.EmaSlow, r.Mode, pattern)
}
