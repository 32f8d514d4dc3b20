package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xhhuango/json"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(args, &out, &errOut)
	return out.String(), err
}

func TestPriceJSON(t *testing.T) {
	out, err := runCLI(t, "--json", "price", "--type", "put", "--spot", "50", "--strike", "52",
		"--rate", "0.05", "--vol", "0.3", "--maturity", "2", "--steps", "2")
	require.NoError(t, err)

	var res struct {
		Value         float64 `json:"value"`
		EarlyExercise bool    `json:"early_exercise"`
		Style         string  `json:"style"`
		Steps         int     `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.InDelta(t, 7.428401902704835, res.Value, 1e-12)
	require.True(t, res.EarlyExercise)
	require.Equal(t, "american", res.Style)
	require.Equal(t, 2, res.Steps)
}

func TestTreeAndCompare(t *testing.T) {
	png := filepath.Join(t.TempDir(), "tree.png")
	out, err := runCLI(t, "tree", "--type", "put", "--spot", "50", "--strike", "52",
		"--rate", "0.05", "--vol", "0.3", "--maturity", "2", "--steps", "2", "--png", png)
	require.NoError(t, err)
	require.Contains(t, out, "american lattice")
	require.Contains(t, out, "7.4284")
	require.FileExists(t, png)

	out, err = runCLI(t, "compare", "--type", "put", "--spot", "50", "--strike", "52",
		"--rate", "0.05", "--vol", "0.3", "--maturity", "2", "--steps", "2")
	require.NoError(t, err)
	require.Contains(t, out, "6.2457")
	require.Contains(t, out, "1.1827")
}

func TestParityAndImpliedVol(t *testing.T) {
	out, err := runCLI(t, "--json", "parity", "--type", "put", "--spot", "484", "--strike", "480",
		"--rate", "0.10", "--yield", "0.03", "--vol", "0.25", "--maturity", "0.1666666666666667", "--steps", "4")
	require.NoError(t, err)
	var check struct {
		Holds bool `json:"holds"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &check))
	require.True(t, check.Holds)

	out, err = runCLI(t, "--json", "iv", "--type", "call", "--spot", "100", "--strike", "100",
		"--rate", "0.05", "--maturity", "1", "--price", "10.450583572185565")
	require.NoError(t, err)
	var iv struct {
		ImpliedVolatility float64 `json:"implied_volatility"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &iv))
	require.InDelta(t, 0.2, iv.ImpliedVolatility, 1e-6)
}

func TestStrategyCommand(t *testing.T) {
	out, err := runCLI(t, "strategy", "--kind", "strangle", "--strikes", "40,45", "--premiums", "4,3",
		"--spot", "42", "--vol", "0.3", "--maturity", "0.5", "--from", "30", "--to", "55", "--step", "5")
	require.NoError(t, err)
	require.Contains(t, out, "Strangle")
	require.Contains(t, out, "33.0000, 52.0000")
	require.Contains(t, out, "unlimited")

	_, err = runCLI(t, "strategy", "--kind", "strangle", "--strikes", "40,45", "--premiums", "4")
	require.Error(t, err)
}

func TestRiskCommand(t *testing.T) {
	out, err := runCLI(t, "--json", "risk", "--kind", "long-call", "--strikes", "100", "--premiums", "0",
		"--spot", "100", "--rate", "0.05", "--yield", "0.02", "--vol", "0.2", "--maturity", "1",
		"--paths", "50000", "--seed", "3")
	require.NoError(t, err)
	var res struct {
		ProbabilityOfProfit float64 `json:"probability_of_profit"`
		Paths               int     `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 50000, res.Paths)
	// with q = 0.02 the call finishes in the money with probability N(d2) = N(0.05)
	require.InDelta(t, 0.5199, res.ProbabilityOfProfit, 0.01)
}

func TestCashflowBondForward(t *testing.T) {
	out, err := runCLI(t, "cashflow", "--amounts", "460,235,640,370,330,250", "--rate", "0.045", "--freq", "4")
	require.NoError(t, err)
	require.Contains(t, out, "1978.6860")

	out, err = runCLI(t, "bond", "--face", "100", "--coupon", "0.08", "--maturity", "5", "--yield", "0.11", "--shift", "-0.002")
	require.NoError(t, err)
	require.Contains(t, out, "86.8011")
	require.Contains(t, out, "4.2560")
	require.Contains(t, out, "0.7388")

	out, err = runCLI(t, "forward", "--spot", "45", "--rate", "0.1", "--maturity", "0.5", "--delivery", "44.20683672302591")
	require.NoError(t, err)
	require.Contains(t, out, "47.3072")
	require.Contains(t, out, "2.9492")
}

func TestSweepCommand(t *testing.T) {
	out, err := runCLI(t, "--json", "sweep", "--type", "put", "--spot", "50", "--strike", "52",
		"--vol", "0.3", "--maturity", "2", "--from", "10", "--to", "50", "--by", "20", "--workers", "2")
	require.NoError(t, err)
	var points []struct {
		Steps int `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	require.Len(t, points, 3)
	require.Equal(t, 50, points[2].Steps)
}

func TestUsageAndErrors(t *testing.T) {
	out, err := runCLI(t)
	require.NoError(t, err)
	require.Contains(t, out, "Available Commands")
	for _, name := range []string{"price", "tree", "sweep", "vol", "slack"} {
		require.Contains(t, out, name)
	}

	out, err = runCLI(t, "price", "--help")
	require.NoError(t, err)
	require.Contains(t, out, "--steps")

	_, err = runCLI(t, "nope")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "unknown command"))

	_, err = runCLI(t, "price", "--type", "straddle")
	require.Error(t, err)

	_, err = runCLI(t, "price", "--steps", "0")
	require.Error(t, err)

	_, err = runCLI(t, "price", "extra")
	require.Error(t, err)
}

func TestConfigDefaultsAndOverrides(t *testing.T) {
	t.Setenv("QFIN_STEPS", "2")
	t.Setenv("QFIN_RATE", "0.05")
	args := []string{"--json", "price", "--type", "put", "--spot", "50", "--strike", "52", "--vol", "0.3", "--maturity", "2"}

	var res struct {
		Value float64 `json:"value"`
		Steps int     `json:"steps"`
	}
	out, err := runCLI(t, args...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 2, res.Steps)
	require.InDelta(t, 7.428401902704835, res.Value, 1e-12)

	out, err = runCLI(t, append(args, "--steps", "3")...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 3, res.Steps)
}

func TestVolatilityCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	var b strings.Builder
	b.WriteString("date,open,high,low,close\n")
	for i := 0; i < 30; i++ {
		b.WriteString("2024-01-02,100,101,99,100\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	out, err := runCLI(t, "vol", "--csv", path)
	require.NoError(t, err)
	require.Contains(t, out, "yang-zhang")
	require.Contains(t, out, "1m")

	_, err = runCLI(t, "vol")
	require.Error(t, err)
	_, err = runCLI(t, "vol", "--csv", path, "--symbol", "SPY")
	require.Error(t, err)
}

func TestVolatilityCommand_Tradier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/markets/history":
			var b strings.Builder
			b.WriteString(`{"history":{"day":[`)
			for i := 0; i < 10; i++ {
				if i > 0 {
					b.WriteString(",")
				}
				b.WriteString(`{"date":"2024-03-01","open":100,"high":102,"low":98,"close":101}`)
			}
			b.WriteString(`]}}`)
			_, _ = w.Write([]byte(b.String()))
		case "/markets/quotes":
			_, _ = w.Write([]byte(`{"quotes":{"quote":{"symbol":"SPY","last":512.25}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	t.Setenv("TRADIER_KEY", "secret")
	t.Setenv("TRADIER_BASE_URL", srv.URL)

	out, err := runCLI(t, "--json", "vol", "--symbol", "SPY")
	require.NoError(t, err)

	var res struct {
		Symbol    string  `json:"symbol"`
		Last      float64 `json:"last"`
		Estimates []struct {
			Window string `json:"window"`
		} `json:"estimates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, "SPY", res.Symbol)
	require.Equal(t, 512.25, res.Last)
	require.Len(t, res.Estimates, 1)
	require.Equal(t, "1w", res.Estimates[0].Window)
}
