package config

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gamma-omg/backtester/internal/backtest"
	"github.com/gamma-omg/backtester/internal/strategy"
)

// Config is the full backtester configuration. Field constraints live in
// validate tags, cross-field rules (ema ordering, session ordering) are
// checked explicitly in Validate.
type Config struct {
	Strategy  Strategy  `yaml:"strategy"`
	Risk      Risk      `yaml:"risk_management"`
	Backtest  Backtest  `yaml:"backtest"`
	Execution Execution `yaml:"execution"`
	Data      Data      `yaml:"data"`
	Report    Report    `yaml:"report"`
}

type Strategy struct {
	EmaPairs       [][]int  `yaml:"ema_pairs" validate:"required,min=1,dive,len=2"`
	TradingModes   []string `yaml:"trading_modes" validate:"required,min=1,dive,oneof=SWING BUY SELL"`
	CandlePatterns []string `yaml:"candle_patterns" validate:"required,min=1,dive,oneof=2 3 none"`
	Session        Session  `yaml:"trading_session"`
}

type Session struct {
	MarketOpen  string `yaml:"market_open" validate:"required"`
	MarketEntry string `yaml:"market_entry" validate:"required"`
	ForceExit   string `yaml:"force_exit" validate:"required"`
	MarketClose string `yaml:"market_close" validate:"required"`
}

type Risk struct {
	UseStopLoss     bool    `yaml:"use_stop_loss"`
	StopLossPct     float64 `yaml:"stop_loss_pct" validate:"gte=0,lte=100"`
	UseTrailingStop bool    `yaml:"use_trailing_stop"`
	TrailingStopPct float64 `yaml:"trailing_stop_pct" validate:"gte=0,lte=100"`

	// Reserved: accepted and validated, not enforced yet.
	MaxTradesPerDay int     `yaml:"max_trades_per_day" validate:"gte=0"`
	MaxRiskPerTrade float64 `yaml:"max_risk_per_trade" validate:"gte=0,lte=100"`
}

type Backtest struct {
	InitialCapital float64 `yaml:"initial_capital" validate:"gt=0"`
	PositionSize   float64 `yaml:"position_size" validate:"gt=0,lte=1"`
	CommissionPct  float64 `yaml:"commission_pct" validate:"gte=0"`
	SlippagePct    float64 `yaml:"slippage_pct" validate:"gte=0"`
}

type Execution struct {
	Mode    string `yaml:"mode" validate:"oneof=sequential parallel"`
	Workers int    `yaml:"workers" validate:"gte=0"`
	Seed    int64  `yaml:"seed"`
}

type Data struct {
	Path string `yaml:"path" validate:"required"`
}

type Report struct {
	Results    string `yaml:"results"`
	EquityPlot string `yaml:"equity_plot"`
}

func Read(r io.Reader) (*Config, error) {
	cfg := defaults()

	d := yaml.NewDecoder(r)
	if err := d.Decode(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

func defaults() *Config {
	return &Config{
		Strategy: Strategy{
			EmaPairs:       [][]int{{9, 21}, {13, 34}, {21, 55}},
			TradingModes:   []string{"SWING", "BUY", "SELL"},
			CandlePatterns: []string{"2", "3", "none"},
			Session: Session{
				MarketOpen:  "09:15",
				MarketEntry: "09:30",
				ForceExit:   "15:15",
				MarketClose: "15:30",
			},
		},
		Risk: Risk{
			UseStopLoss:     true,
			StopLossPct:     1.0,
			UseTrailingStop: true,
			TrailingStopPct: 0.5,
			MaxTradesPerDay: 5,
			MaxRiskPerTrade: 2.0,
		},
		Backtest: Backtest{
			InitialCapital: 25000,
			PositionSize:   1.0,
			CommissionPct:  0.05,
			SlippagePct:    0.02,
		},
		Execution: Execution{
			Mode: "sequential",
			Seed: 42,
		},
	}
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return err
	}

	for _, pair := range c.Strategy.EmaPairs {
		if pair[0] <= 0 || pair[1] <= 0 {
			return fmt.Errorf("ema periods must be positive: %v", pair)
		}
		if pair[0] >= pair[1] {
			return fmt.Errorf("fast ema period %d must be less than slow %d", pair[0], pair[1])
		}
	}

	session, err := c.session()
	if err != nil {
		return err
	}
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid trading session: %w", err)
	}

	return nil
}

func (c *Config) session() (strategy.Session, error) {
	var s strategy.Session
	var err error

	if s.MarketOpen, err = strategy.ParseTimeOfDay(c.Strategy.Session.MarketOpen); err != nil {
		return s, fmt.Errorf("invalid market_open: %w", err)
	}
	if s.MarketEntry, err = strategy.ParseTimeOfDay(c.Strategy.Session.MarketEntry); err != nil {
		return s, fmt.Errorf("invalid market_entry: %w", err)
	}
	if s.ForceExit, err = strategy.ParseTimeOfDay(c.Strategy.Session.ForceExit); err != nil {
		return s, fmt.Errorf("invalid force_exit: %w", err)
	}
	if s.MarketClose, err = strategy.ParseTimeOfDay(c.Strategy.Session.MarketClose); err != nil {
		return s, fmt.Errorf("invalid market_close: %w", err)
	}

	return s, nil
}

// Runs expands the trading_modes x candle_patterns x ema_pairs grid into
// run configurations, in that nesting order. The expansion is stable: the
// same config always yields the same ordered list.
func (c *Config) Runs() ([]backtest.Run, error) {
	session, err := c.session()
	if err != nil {
		return nil, err
	}

	var runs []backtest.Run
	for _, modeName := range c.Strategy.TradingModes {
		mode, err := strategy.ParseMode(modeName)
		if err != nil {
			return nil, err
		}

		for _, patternName := range c.Strategy.CandlePatterns {
			pattern := 0
			if patternName != "none" {
				if _, err := fmt.Sscanf(patternName, "%d", &pattern); err != nil {
					return nil, fmt.Errorf("invalid candle pattern %q: %w", patternName, err)
				}
			}

			for _, pair := range c.Strategy.EmaPairs {
				runs = append(runs, backtest.Run{
					EmaFast: pair[0],
					EmaSlow: pair[1],
					Mode:    mode,
					Pattern: pattern,
					Risk: backtest.Risk{
						UseStopLoss:     c.Risk.UseStopLoss,
						StopLossPct:     c.Risk.StopLossPct,
						UseTrailingStop: c.Risk.UseTrailingStop,
						TrailingStopPct: c.Risk.TrailingStopPct,
						MaxTradesPerDay: c.Risk.MaxTradesPerDay,
						MaxRiskPerTrade: c.Risk.MaxRiskPerTrade,
					},
					Session:        session,
					InitialCapital: c.Backtest.InitialCapital,
					PositionSize:   c.Backtest.PositionSize,
					CommissionPct:  c.Backtest.CommissionPct,
					SlippagePct:    c.Backtest.SlippagePct,
				})
			}
		}
	}

	return runs, nil
}

// ExecMode returns the parsed execution mode.
func (c *Config) ExecMode() (backtest.ExecMode, error) {
	return backtest.ParseExecMode(c.Execution.Mode)
}
