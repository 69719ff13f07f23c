package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gamma-omg/backtester/internal/backtest"
	"github.com/gamma-omg/backtester/internal/config"
	"github.com/gamma-omg/backtester/internal/market"
	"github.com/gamma-omg/backtester/internal/report"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG"), "path to the yaml configuration")
	crossValidate := flag.Bool("cross-validate", false, "run sequential and parallel passes and verify identical results")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	cfg, err := config.ReadFromFile(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	bars, err := market.LoadCSV(cfg.Data.Path)
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("market data loaded", slog.String("path", cfg.Data.Path), slog.Int("bars", len(bars)))

	runs, err := cfg.Runs()
	if err != nil {
		log.Fatal(err)
	}

	mode, err := cfg.ExecMode()
	if err != nil {
		log.Fatal(err)
	}

	h := backtest.NewHarness(logger, cfg.Execution.Workers)

	var results []backtest.Result
	if *crossValidate {
		results, err = h.CrossValidate(ctx, bars, runs, cfg.Execution.Seed)
	} else {
		results, err = h.Run(ctx, bars, runs, mode, cfg.Execution.Seed)
	}
	if err != nil {
		log.Fatal(err)
	}

	for _, res := range results {
		if res.Err != nil {
			logger.Error("run failed", slog.String("run", res.Run.Name()), slog.String("error", res.Err.Error()))
		}
	}

	if cfg.Report.Results != "" {
		b := report.NewJsonReportBuilder(logger)
		b.SubmitAll(results)
		if err := b.WriteToFile(cfg.Report.Results, mode.String(), cfg.Execution.Seed); err != nil {
			log.Fatal(err)
		}
	}

	if cfg.Report.EquityPlot != "" {
		if best, ok := bestResult(results); ok {
			ep, err := report.NewEquityPlot(best)
			if err != nil {
				log.Fatal(err)
			}
			if err := ep.Save(cfg.Report.EquityPlot); err != nil {
				log.Fatal(err)
			}
			logger.Info("equity plot written",
				slog.String("path", cfg.Report.EquityPlot),
				slog.String("run", best.Run.Name()))
		}
	}
}

// bestResult picks the highest-return successful run for plotting.
func bestResult(results []backtest.Result) (backtest.Result, bool) {
	var best backtest.Result
	found := false
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if !found || res.Summary.ReturnPct > best.Summary.ReturnPct {
			best = res
			found = true
		}
	}

	return best, found
}
