package backtest

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gamma-omg/backtester/internal/market"
	"github.com/gamma-omg/backtester/internal/strategy"
)

// Engine executes one run configuration over a bar series. It owns all
// per-run state, so independent engines never share anything mutable.
type Engine struct {
	run Run
	log *slog.Logger

	// rng seeds any randomized tie-breaking or sampling step. The default
	// strategy never draws from it, but the seeding contract has to survive
	// future additions.
	rng *rand.Rand
}

func NewEngine(run Run, seed int64, log *slog.Logger) *Engine {
	return &Engine{
		run: run,
		log: log,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Backtest runs the full pipeline: signal generation, trade execution and
// performance aggregation. It is pure with respect to its inputs; an error
// wrapping ErrInvariant means a logic defect, not bad data.
func (e *Engine) Backtest(bars []market.Bar) (Summary, []Trade, error) {
	gen := strategy.Generator{
		FastPeriod: e.run.EmaFast,
		SlowPeriod: e.run.EmaSlow,
		Mode:       e.run.Mode,
		Pattern:    e.run.Pattern,
		Session:    e.run.Session,
	}
	labels := gen.Labels(bars)

	trades, err := e.execute(bars, labels)
	if err != nil {
		return Summary{}, nil, err
	}

	return Summarize(e.run, trades), trades, nil
}

type position struct {
	dir        Direction
	entryPrice float64
	entryTime  time.Time
	qty        float64
	notional   float64
	highest    float64
	lowest     float64
}

// execute drives the FLAT/LONG/SHORT state machine bar by bar. Overlays are
// checked in priority order: stop-loss, trailing stop, forced session exit,
// then signal exits. Stops win over a same-bar reversal signal.
func (e *Engine) execute(bars []market.Bar, labels []strategy.Label) ([]Trade, error) {
	highs := market.Highs(bars)
	lows := market.Lows(bars)
	closes := market.Closes(bars)

	capital := e.run.InitialCapital
	friction := (e.run.CommissionPct + e.run.SlippagePct) / 100

	var pos *position
	var trades []Trade

	closePosition := func(i int, price float64, reason ExitReason) {
		gross := (price - pos.entryPrice) * pos.qty * float64(pos.dir)
		pnl := gross - (pos.notional+pos.qty*price)*friction

		t := Trade{
			Direction:  pos.dir,
			EntryTime:  pos.entryTime,
			EntryPrice: pos.entryPrice,
			ExitTime:   bars[i].Time,
			ExitPrice:  price,
			Reason:     reason,
			PnL:        pnl,
			PnLPct:     pnl / pos.notional * 100,
			Duration:   bars[i].Time.Sub(pos.entryTime).Minutes(),
		}
		trades = append(trades, t)

		e.log.Debug("position closed",
			slog.String("run", e.run.Name()),
			slog.String("direction", pos.dir.String()),
			slog.String("reason", reason.String()),
			slog.Float64("pnl", pnl))

		capital += pnl
		pos = nil
	}

	openPosition := func(i int, dir Direction) error {
		if pos != nil {
			return fmt.Errorf("%w: opening a %s position at %s while a %s position is open",
				ErrInvariant, dir, bars[i].Time.Format(time.DateTime), pos.dir)
		}

		price := closes[i]
		qty := capital * e.run.PositionSize / price
		pos = &position{
			dir:        dir,
			entryPrice: price,
			entryTime:  bars[i].Time,
			qty:        qty,
			notional:   qty * price,
			highest:    price,
			lowest:     price,
		}

		return nil
	}

	lastIdx := -1
	for i, bar := range bars {
		if !e.run.Session.InTradingHours(bar.Time) {
			continue
		}
		lastIdx = i

		if pos != nil {
			pos.highest = max(pos.highest, highs[i])
			pos.lowest = min(pos.lowest, lows[i])

			if e.run.Risk.UseStopLoss {
				if pos.dir == Long {
					stop := pos.entryPrice * (1 - e.run.Risk.StopLossPct/100)
					if lows[i] <= stop {
						closePosition(i, stop, ExitStopLoss)
						continue
					}
				} else {
					stop := pos.entryPrice * (1 + e.run.Risk.StopLossPct/100)
					if highs[i] >= stop {
						closePosition(i, stop, ExitStopLoss)
						continue
					}
				}
			}

			if e.run.Risk.UseTrailingStop {
				// Arms only once the tracked extreme has improved past entry.
				if pos.dir == Long {
					trail := pos.highest * (1 - e.run.Risk.TrailingStopPct/100)
					if closes[i] <= trail && pos.highest > pos.entryPrice {
						closePosition(i, trail, ExitTrailingStop)
						continue
					}
				} else {
					trail := pos.lowest * (1 + e.run.Risk.TrailingStopPct/100)
					if closes[i] >= trail && pos.lowest < pos.entryPrice {
						closePosition(i, trail, ExitTrailingStop)
						continue
					}
				}
			}

			if e.run.Session.PastForceExit(bar.Time) {
				closePosition(i, closes[i], ExitForced)
				continue
			}

			// Signal exits fall through to the entry check: a reversal in
			// SWING mode closes first and reopens on the same bar, never
			// the other way around.
			switch labels[i] {
			case strategy.ExitAny:
				closePosition(i, closes[i], ExitSignal)
			case strategy.EnterLong:
				if pos.dir == Short {
					closePosition(i, closes[i], ExitSignal)
				}
			case strategy.EnterShort:
				if pos.dir == Long {
					closePosition(i, closes[i], ExitSignal)
				}
			}
		}

		if pos == nil {
			switch labels[i] {
			case strategy.EnterLong:
				if err := openPosition(i, Long); err != nil {
					return nil, err
				}
			case strategy.EnterShort:
				if err := openPosition(i, Short); err != nil {
					return nil, err
				}
			}
		}
	}

	if pos != nil && lastIdx >= 0 {
		closePosition(lastIdx, closes[lastIdx], ExitEndOfData)
	}

	return trades, nil
}
