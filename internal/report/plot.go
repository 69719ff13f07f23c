package report

import (
	"errors"
	"fmt"
	"os"

	"github.com/pplcc/plotext"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/gamma-omg/backtester/internal/backtest"
)

// EquityPlot renders a run's equity curve stacked above its drawdown curve.
type EquityPlot struct {
	plots   []*plot.Plot
	heights []float64
	w       int
	h       int
}

func NewEquityPlot(res backtest.Result) (*EquityPlot, error) {
	if res.Err != nil {
		return nil, fmt.Errorf("cannot plot a failed run: %w", res.Err)
	}

	equity, drawdown := equitySeries(res.Run.InitialCapital, res.Trades)

	ep := &EquityPlot{w: 1200, h: 600}

	pEq := plot.New()
	pEq.Title.Text = res.Run.Name()
	pEq.Y.Label.Text = "equity"
	lineEq, err := plotter.NewLine(equity)
	if err != nil {
		return nil, fmt.Errorf("failed to build equity line: %w", err)
	}
	pEq.Add(lineEq)
	ep.add(pEq, 0.7)

	pDd := plot.New()
	pDd.Y.Label.Text = "drawdown %"
	lineDd, err := plotter.NewLine(drawdown)
	if err != nil {
		return nil, fmt.Errorf("failed to build drawdown line: %w", err)
	}
	pDd.Add(lineDd)
	ep.add(pDd, 0.3)

	return ep, nil
}

func (ep *EquityPlot) add(p *plot.Plot, height float64) {
	ep.plots = append(ep.plots, p)
	ep.heights = append(ep.heights, height)
}

func (ep *EquityPlot) Save(path string) (err error) {
	var axis []*plot.Axis
	for _, p := range ep.plots {
		axis = append(axis, &p.X)
	}
	plotext.UniteAxisRanges(axis)

	tbl := plotext.Table{
		RowHeights: ep.heights,
		ColWidths:  []float64{1},
	}

	var plots2d [][]*plot.Plot
	for _, p := range ep.plots {
		plots2d = append(plots2d, []*plot.Plot{p})
	}

	h := 0.0
	for _, v := range ep.heights {
		h += v * float64(ep.h)
	}

	img := vgimg.New(vg.Points(float64(ep.w)), vg.Points(h))
	dc := draw.New(img)

	canvases := tbl.Align(plots2d, dc)
	for i, p := range ep.plots {
		p.Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close plot file: %w", cerr))
		}
	}()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write plot to file: %w", err)
	}

	return nil
}

// equitySeries turns a trade sequence into per-trade equity and drawdown
// points, starting from the initial capital.
func equitySeries(initial float64, trades []backtest.Trade) (equity, drawdown plotter.XYs) {
	equity = make(plotter.XYs, len(trades)+1)
	drawdown = make(plotter.XYs, len(trades)+1)

	value := initial
	peak := initial
	equity[0] = plotter.XY{X: 0, Y: value}
	drawdown[0] = plotter.XY{X: 0, Y: 0}

	for i, t := range trades {
		value += t.PnL
		peak = max(peak, value)

		equity[i+1] = plotter.XY{X: float64(i + 1), Y: value}
		drawdown[i+1] = plotter.XY{X: float64(i + 1), Y: (peak - value) / peak * 100}
	}

	return equity, drawdown
}
