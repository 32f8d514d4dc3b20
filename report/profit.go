package report

import (
	"image/color"

	"github.com/bcdannyboy/qfin/positions"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ProfitPlot draws the strategy's profit at expiry over [from, to], the zero line, dotted
// strike markers and dashed breakeven markers.
func ProfitPlot(s positions.Strategy, from, to, step float64) (*plot.Plot, error) {
	rows, err := positions.ProfitTable(s, from, to, step)
	if err != nil {
		return nil, err
	}
	breakevens, err := positions.Breakevens(s)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = s.Name
	p.X.Label.Text = "Price at expiry"
	p.Y.Label.Text = "Profit"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(rows))
	lo, hi := 0.0, 0.0
	for i, row := range rows {
		pts[i] = plotter.XY{X: row.Price, Y: row.Total}
		if row.Total < lo {
			lo = row.Total
		}
		if row.Total > hi {
			hi = row.Total
		}
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	zero, err := plotter.NewLine(plotter.XYs{{X: from, Y: 0}, {X: to, Y: 0}})
	if err != nil {
		return nil, err
	}
	zero.Color = color.Black
	p.Add(zero)

	vertical := func(x float64, c color.Color, dashes []vg.Length) error {
		if x < from || x > to {
			return nil
		}
		l, err := plotter.NewLine(plotter.XYs{{X: x, Y: lo}, {X: x, Y: hi}})
		if err != nil {
			return err
		}
		l.Color = c
		l.Dashes = dashes
		p.Add(l)
		return nil
	}

	for _, leg := range s.Legs {
		if err := vertical(leg.Strike, color.Gray{Y: 128}, []vg.Length{vg.Points(1), vg.Points(3)}); err != nil {
			return nil, err
		}
	}
	for _, be := range breakevens {
		if err := vertical(be, color.RGBA{R: 255, G: 165, A: 255}, []vg.Length{vg.Points(5), vg.Points(3)}); err != nil {
			return nil, err
		}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{G: 128, A: 255}
	line.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add("profit", line)

	return p, nil
}

func SaveProfit(s positions.Strategy, from, to, step float64, path string) error {
	p, err := ProfitPlot(s, from, to, step)
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
