package report

import (
	"strconv"

	"github.com/bcdannyboy/qfin/cashflow"
	"github.com/bcdannyboy/qfin/models"
	"github.com/bcdannyboy/qfin/positions"
	"github.com/bcdannyboy/qfin/sweep"
	"github.com/bcdannyboy/qfin/volatility"
)

// NodeTable lists every lattice node, one row per (step, down-count).
func NodeTable(r *models.LatticeResult, places int32) Table {
	t := Table{
		Title:   r.Style.String() + " lattice",
		Headers: []string{"step", "node", "underlying", "value", "exercise"},
	}
	for i := range r.Prices {
		for j := range r.Prices[i] {
			ex := ""
			if r.Exercise[i][j] {
				ex = "yes"
			}
			t.Append(strconv.Itoa(i), strconv.Itoa(j), Fixed(r.Prices[i][j], places), Fixed(r.Values[i][j], places), ex)
		}
	}
	return t
}

// SummaryTable shows the derived lattice parameters and the root value.
func SummaryTable(r *models.LatticeResult, places int32) Table {
	t := Table{Headers: []string{"", r.Style.String()}}
	t.Append("steps", strconv.Itoa(r.Steps()))
	t.Append("dt", Fixed(r.Dt, 6))
	t.Append("u", Fixed(r.Up, 6))
	t.Append("d", Fixed(r.Down, 6))
	t.Append("p", Fixed(r.Probability, 6))
	t.Append("discount", Fixed(r.Discount, 6))
	t.Append("value", Fixed(r.Value, places))
	t.Append("early exercise", strconv.FormatBool(r.EarlyExercise))
	return t
}

func ComparisonTable(c *models.StyleComparison, places int32) Table {
	t := Table{Headers: []string{"style", "value", "early exercise"}}
	t.Append("european", Fixed(c.European.Value, places), strconv.FormatBool(c.European.EarlyExercise))
	t.Append("american", Fixed(c.American.Value, places), strconv.FormatBool(c.American.EarlyExercise))
	t.Append("premium", Fixed(c.Premium, places), "")
	return t
}

func GreeksTable(g models.BSMResult, places int32) Table {
	t := Table{Headers: []string{"measure", "value"}}
	t.Append("price", Fixed(g.Price, places))
	t.Append("delta", Fixed(g.Delta, places))
	t.Append("gamma", Fixed(g.Gamma, places))
	t.Append("theta", Fixed(g.Theta, places))
	t.Append("vega", Fixed(g.Vega, places))
	t.Append("rho", Fixed(g.Rho, places))
	return t
}

func LatticeGreeksTable(g models.LatticeGreeks, places int32) Table {
	t := Table{Headers: []string{"measure", "value"}}
	t.Append("delta", Fixed(g.Delta, places))
	t.Append("gamma", Fixed(g.Gamma, places))
	t.Append("theta", Fixed(g.Theta, places))
	return t
}

// StrategyTable lists the legs with their premiums and the position's net cost.
func StrategyTable(s positions.Strategy, places int32) Table {
	t := Table{Title: s.Name, Headers: []string{"side", "qty", "type", "strike", "premium"}}
	for _, leg := range s.Legs {
		qty := leg.Quantity
		if qty == 0 {
			qty = 1
		}
		t.Append(string(leg.Side), strconv.Itoa(qty), string(leg.Type), Fixed(leg.Strike, places), Fixed(leg.Premium, places))
	}
	t.Append("net", "", "", "", Fixed(s.Cost(), places))
	return t
}

func ProfitTable(s positions.Strategy, rows []positions.ProfitRow, places int32) Table {
	headers := []string{"price"}
	for _, leg := range s.Legs {
		headers = append(headers, string(leg.Side)+" "+string(leg.Type)+" "+Fixed(leg.Strike, 2))
	}
	t := Table{Title: s.Name + " profit at expiry", Headers: append(headers, "total")}
	for _, row := range rows {
		cells := []string{Fixed(row.Price, places)}
		for _, v := range row.Legs {
			cells = append(cells, Fixed(v, places))
		}
		t.Append(append(cells, Fixed(row.Total, places))...)
	}
	return t
}

func ScheduleTable(s cashflow.Schedule, places int32) Table {
	t := Table{Headers: []string{"time", "amount", "factor", "present value"}}
	for _, f := range s.Flows {
		t.Append(Fixed(f.Time, 4), Fixed(f.Amount, places), Fixed(f.Factor, 6), Fixed(f.PresentValue, places))
	}
	t.Append("total", "", "", Fixed(s.Total, places))
	return t
}

func SweepTable(points []sweep.Point, places int32) Table {
	t := Table{Headers: []string{"steps", "european", "american", "premium", "reference", "error"}}
	for _, pt := range points {
		t.Append(strconv.Itoa(pt.Steps), Fixed(pt.European, places), Fixed(pt.American, places),
			Fixed(pt.Premium, places), Fixed(pt.Reference, places), Fixed(pt.Error, 8))
	}
	return t
}

// KeyValues renders label/value pairs in order.
func KeyValues(pairs ...string) Table {
	t := Table{Headers: []string{"", "value"}}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Append(pairs[i], pairs[i+1])
	}
	return t
}

// VolatilityTable lists each window with all five estimators and their mean.
func VolatilityTable(ests []volatility.Estimate) Table {
	t := Table{Headers: []string{"window", "days", "close-close", "parkinson", "garman-klass", "rogers-satchell", "yang-zhang", "mean"}}
	for _, e := range ests {
		t.Append(e.Window, strconv.Itoa(e.Days), Fixed(e.CloseToClose, 4), Fixed(e.Parkinson, 4),
			Fixed(e.GarmanKlass, 4), Fixed(e.RogersSatchell, 4), Fixed(e.YangZhang, 4), Fixed(e.Mean(), 4))
	}
	return t
}
