package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bcdannyboy/qfin/cashflow"
	"github.com/bcdannyboy/qfin/models"
	"github.com/bcdannyboy/qfin/positions"
	"github.com/stretchr/testify/require"
	"github.com/xhhuango/json"
)

func twoStepPut(t *testing.T) *models.LatticeResult {
	t.Helper()
	r, err := models.PriceBinomial(models.LatticeParams{
		Spot: 50, Strike: 52, Rate: 0.05, Volatility: 0.30, Maturity: 2, Steps: 2, Type: models.Put,
	}, models.American)
	require.NoError(t, err)
	return r
}

func TestFixed(t *testing.T) {
	require.Equal(t, "7.4284", Fixed(7.428401902704835, 4))
	require.Equal(t, "0.13", Fixed(0.125, 2))
	require.Equal(t, "-0.13", Fixed(-0.125, 2))
	require.Equal(t, "3", Fixed(2.5, 0))
	require.Equal(t, "NaN", Fixed(math.NaN(), 2))
	require.Equal(t, "+Inf", Fixed(math.Inf(1), 2))
	require.Equal(t, "-Inf", Fixed(math.Inf(-1), 2))
}

func TestNodeTable(t *testing.T) {
	r := twoStepPut(t)
	tbl := NodeTable(r, 4)
	require.Len(t, tbl.Rows, 6)
	require.Equal(t, []string{"0", "0", "50.0000", "7.4284", ""}, tbl.Rows[0])

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "american lattice\n"))
	require.Contains(t, out, "exercise")
	require.Equal(t, 8, strings.Count(out, "\n"))
	// the down node is exercised early
	require.Equal(t, "yes", tbl.Rows[2][4])
}

func TestSummaryAndStrategyTables(t *testing.T) {
	r := twoStepPut(t)
	var buf bytes.Buffer
	require.NoError(t, SummaryTable(r, 4).Render(&buf))
	require.Contains(t, buf.String(), "7.4284")
	require.Contains(t, buf.String(), "early exercise")

	s := positions.Strangle(40, 45, 4, 3)
	tbl := StrategyTable(s, 2)
	require.Equal(t, []string{"net", "", "", "", "7.00"}, tbl.Rows[len(tbl.Rows)-1])

	rows, err := positions.ProfitTable(s, 30, 55, 5)
	require.NoError(t, err)
	pt := ProfitTable(s, rows, 2)
	require.Len(t, pt.Headers, 4)
	require.Equal(t, "-7.00", pt.Rows[2][3])

	sched, err := cashflow.PresentValueContinuous(cashflow.Annual(100, 100), 0.05)
	require.NoError(t, err)
	st := ScheduleTable(sched, 2)
	require.Equal(t, "total", st.Rows[2][0])

	kv := KeyValues("a", "1", "b", "2", "dangling")
	require.Len(t, kv.Rows, 2)
}

func TestWriteJSON(t *testing.T) {
	r := twoStepPut(t)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "american", decoded["style"])
	require.InDelta(t, 7.428401902704835, decoded["value"], 1e-12)
	require.Len(t, decoded["prices"], 3)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, Nodes(r)))
	var nodes []Node
	require.NoError(t, json.Unmarshal(buf.Bytes(), &nodes))
	require.Len(t, nodes, 6)
	require.Equal(t, Root, nodes[0].Class)
	require.Equal(t, UpMost, nodes[1].Class)
	require.Equal(t, DownMost, nodes[2].Class)
	require.Equal(t, Terminal, nodes[5].Class)
}

func TestClassify(t *testing.T) {
	require.Equal(t, Root, Classify(0, 0, 4))
	require.Equal(t, UpMost, Classify(2, 0, 4))
	require.Equal(t, DownMost, Classify(2, 2, 4))
	require.Equal(t, Interior, Classify(3, 1, 4))
	require.Equal(t, Terminal, Classify(4, 0, 4))
}

func TestSaveTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.png")
	require.NoError(t, SaveTree(twoStepPut(t), "put", path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NotZero(t, info.Size())

	big, err := models.PriceBinomial(models.LatticeParams{
		Spot: 50, Strike: 52, Rate: 0.05, Volatility: 0.30, Maturity: 2, Steps: MaxPlotSteps + 1, Type: models.Put,
	}, models.European)
	require.NoError(t, err)
	_, err = TreePlot(big, "too big")
	require.ErrorIs(t, err, ErrTooManySteps)
}

func TestSaveProfit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strangle.png")
	require.NoError(t, SaveProfit(positions.Strangle(40, 45, 4, 3), 20, 65, 0.5, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NotZero(t, info.Size())

	_, err = ProfitPlot(positions.Strategy{}, 0, 10, 1)
	require.ErrorIs(t, err, positions.ErrInvalidStrategy)
}
