package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gamma-omg/backtester/internal/market"
)

type ExecMode int

const (
	ExecSequential ExecMode = iota
	ExecParallel
)

func (m ExecMode) String() string {
	switch m {
	case ExecSequential:
		return "sequential"
	case ExecParallel:
		return "parallel"
	default:
		return fmt.Sprintf("EXEC_%d", m)
	}
}

func ParseExecMode(s string) (ExecMode, error) {
	switch s {
	case "sequential":
		return ExecSequential, nil
	case "parallel":
		return ExecParallel, nil
	default:
		return 0, fmt.Errorf("invalid execution mode: %q, must be sequential or parallel", s)
	}
}

// Result couples a run configuration with its outcome. Err carries a
// per-configuration failure without affecting sibling configurations.
type Result struct {
	Run     Run
	Summary Summary
	Trades  []Trade
	Err     error
}

// Harness executes many independent run configurations over a shared
// read-only bar series.
type Harness struct {
	log     *slog.Logger
	workers int
}

func NewHarness(log *slog.Logger, workers int) *Harness {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Harness{log: log, workers: workers}
}

// Run executes the configurations and returns results in submission order
// regardless of execution mode or worker completion order. The bar series
// is validated once, before any configuration runs. Each run draws its seed
// deterministically from the base seed and its submission index, so both
// execution modes produce identical output for the same inputs.
func (h *Harness) Run(ctx context.Context, bars []market.Bar, runs []Run, mode ExecMode, seed int64) ([]Result, error) {
	if err := market.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("rejecting bar series: %w", err)
	}

	h.log.Info("starting backtest batch",
		slog.Int("runs", len(runs)),
		slog.String("mode", mode.String()),
		slog.Int64("seed", seed))

	results := make([]Result, len(runs))

	switch mode {
	case ExecSequential:
		for i, run := range runs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = h.runOne(bars, run, seed+int64(i))
		}
	case ExecParallel:
		var g errgroup.Group
		g.SetLimit(h.workers)
		for i, run := range runs {
			g.Go(func() error {
				// A configuration either runs to completion or is not
				// started at all.
				if err := ctx.Err(); err != nil {
					results[i] = Result{Run: run, Err: err}
					return nil
				}
				results[i] = h.runOne(bars, run, seed+int64(i))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown execution mode: %d", mode)
	}

	return results, nil
}

func (h *Harness) runOne(bars []market.Bar, run Run, seed int64) Result {
	res := Result{Run: run}

	if err := run.Validate(); err != nil {
		res.Err = fmt.Errorf("rejecting configuration %s: %w", run.Name(), err)
		return res
	}

	summary, trades, err := NewEngine(run, seed, h.log).Backtest(bars)
	if err != nil {
		res.Err = err
		return res
	}

	res.Summary = summary
	res.Trades = trades
	h.log.Info("run completed",
		slog.String("run", run.Name()),
		slog.Int("trades", summary.TotalTrades),
		slog.Float64("return_pct", summary.ReturnPct))

	return res
}

// CrossValidate runs the same configurations sequentially and in parallel
// under one seed and verifies both passes produce identical results.
func (h *Harness) CrossValidate(ctx context.Context, bars []market.Bar, runs []Run, seed int64) ([]Result, error) {
	seq, err := h.Run(ctx, bars, runs, ExecSequential, seed)
	if err != nil {
		return nil, fmt.Errorf("sequential pass failed: %w", err)
	}

	par, err := h.Run(ctx, bars, runs, ExecParallel, seed)
	if err != nil {
		return nil, fmt.Errorf("parallel pass failed: %w", err)
	}

	if err := CompareResults(seq, par); err != nil {
		return nil, fmt.Errorf("cross-validation failed: %w", err)
	}

	h.log.Info("cross-validation passed", slog.Int("runs", len(runs)))
	return seq, nil
}

// CompareResults checks field-for-field equality of two result lists,
// ordering included.
func CompareResults(a, b []Result) error {
	if len(a) != len(b) {
		return fmt.Errorf("result counts differ: %d vs %d", len(a), len(b))
	}

	for i := range a {
		name := a[i].Run.Name()
		if a[i].Run != b[i].Run {
			return fmt.Errorf("run %d configuration mismatch: %s vs %s", i, name, b[i].Run.Name())
		}
		if !errorsMatch(a[i].Err, b[i].Err) {
			return fmt.Errorf("run %s: errors differ: %v vs %v", name, a[i].Err, b[i].Err)
		}
		if !reflect.DeepEqual(a[i].Summary, b[i].Summary) {
			return fmt.Errorf("run %s: summaries differ", name)
		}
		if !reflect.DeepEqual(a[i].Trades, b[i].Trades) {
			return fmt.Errorf("run %s: trade sequences differ", name)
		}
	}

	return nil
}

func errorsMatch(a, b error) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Error() == b.Error()
}
