package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/bcdannyboy/qfin/models"
	"github.com/bcdannyboy/qfin/report"
	"github.com/bcdannyboy/qfin/sweep"
	"github.com/spf13/cobra"
)

type contractFlags struct {
	optType    string
	style      string
	underlying string
	spot       float64
	strike     float64
	rate       float64
	yield      float64
	vol        float64
	maturity   float64
	steps      int
	parallel   int
}

// bindContract registers the flags shared by every lattice command.
func bindContract(cmd *cobra.Command) *contractFlags {
	c := &contractFlags{}
	fs := cmd.Flags()
	fs.StringVar(&c.optType, "type", "call", "call or put")
	fs.StringVar(&c.style, "style", "american", "european or american")
	fs.StringVar(&c.underlying, "underlying", "stock", "stock or futures")
	fs.Float64Var(&c.spot, "spot", 100, "spot price, or futures price for futures")
	fs.Float64Var(&c.strike, "strike", 100, "strike price")
	fs.Float64Var(&c.rate, "rate", 0.05, "continuously compounded risk-free rate (default from config)")
	fs.Float64Var(&c.yield, "yield", 0, "continuous dividend yield (stock only)")
	fs.Float64Var(&c.vol, "vol", 0.2, "annualised volatility")
	fs.Float64Var(&c.maturity, "maturity", 1, "years to expiry")
	fs.IntVar(&c.steps, "steps", 100, "lattice steps (default from config)")
	fs.IntVar(&c.parallel, "parallel", 1, "goroutines per lattice row (default from config)")
	return c
}

func (c *contractFlags) params(e *env, cmd *cobra.Command) (models.LatticeParams, models.ExerciseStyle, error) {
	configDefault(cmd, "rate", &c.rate, e.cfg.Pricing.Rate)
	configDefault(cmd, "steps", &c.steps, e.cfg.Pricing.Steps)
	configDefault(cmd, "parallel", &c.parallel, e.cfg.Pricing.Parallelism)

	optType, err := models.ParseOptionType(c.optType)
	if err != nil {
		return models.LatticeParams{}, 0, err
	}
	style, err := models.ParseExerciseStyle(c.style)
	if err != nil {
		return models.LatticeParams{}, 0, err
	}
	underlying, err := models.ParseUnderlying(c.underlying)
	if err != nil {
		return models.LatticeParams{}, 0, err
	}
	return models.LatticeParams{
		Spot:        c.spot,
		Strike:      c.strike,
		Rate:        c.rate,
		Yield:       c.yield,
		Volatility:  c.vol,
		Maturity:    c.maturity,
		Steps:       c.steps,
		Type:        optType,
		Underlying:  underlying,
		Parallelism: c.parallel,
	}, style, nil
}

func (e *env) places() int32 {
	return e.cfg.Report.Decimals
}

func (e *env) emit(v interface{}, tables ...report.Table) error {
	if e.json {
		return report.WriteJSON(e.stdout, v)
	}
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(e.stdout)
		}
		if err := t.Render(e.stdout); err != nil {
			return err
		}
	}
	return nil
}

func newPriceCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "price one contract on the binomial lattice",
		Args:  cobra.NoArgs,
	}
	c := bindContract(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		params, style, err := c.params(e, cmd)
		if err != nil {
			return err
		}
		res, err := models.PriceBinomial(params, style)
		if err != nil {
			return err
		}
		e.logger.Info("priced contract", "type", params.Type, "style", style, "steps", params.Steps, "value", res.Value)
		if e.json {
			return report.WriteJSON(e.stdout, struct {
				Value         float64 `json:"value"`
				EarlyExercise bool    `json:"early_exercise"`
				Style         string  `json:"style"`
				Steps         int     `json:"steps"`
				Up            float64 `json:"up"`
				Down          float64 `json:"down"`
				Probability   float64 `json:"probability"`
			}{res.Value, res.EarlyExercise, style.String(), res.Steps(), res.Up, res.Down, res.Probability})
		}
		return report.SummaryTable(res, e.places()).Render(e.stdout)
	}
	return cmd
}

func newTreeCmd(e *env) *cobra.Command {
	var png string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "print every lattice node, optionally drawing the tree",
		Args:  cobra.NoArgs,
	}
	c := bindContract(cmd)
	cmd.Flags().StringVar(&png, "png", "", "write the tree diagram to this file")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		params, style, err := c.params(e, cmd)
		if err != nil {
			return err
		}
		res, err := models.PriceBinomial(params, style)
		if err != nil {
			return err
		}
		if png != "" {
			title := fmt.Sprintf("%s %s, %d steps", style, params.Type, params.Steps)
			if err := report.SaveTree(res, title, png); err != nil {
				return err
			}
			e.logger.Info("wrote tree diagram", "path", png)
		}
		return e.emit(report.Nodes(res), report.SummaryTable(res, e.places()), report.NodeTable(res, e.places()))
	}
	return cmd
}

func newCompareCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "compare European and American values on one lattice",
		Args:  cobra.NoArgs,
	}
	c := bindContract(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		params, _, err := c.params(e, cmd)
		if err != nil {
			return err
		}
		cmp, err := models.CompareStyles(params)
		if err != nil {
			return err
		}
		if e.json {
			return report.WriteJSON(e.stdout, map[string]interface{}{
				"european":               cmp.European.Value,
				"american":               cmp.American.Value,
				"early_exercise":         cmp.American.EarlyExercise,
				"early_exercise_premium": cmp.Premium,
			})
		}
		return report.ComparisonTable(cmp, e.places()).Render(e.stdout)
	}
	return cmd
}

func closedForm(p models.LatticeParams) (models.BSMResult, error) {
	if p.Underlying == models.Futures {
		return models.Black76(p.Spot, p.Strike, p.Maturity, p.Rate, p.Volatility, p.Type)
	}
	return models.BlackScholesMerton(p.Spot, p.Strike, p.Maturity, p.Rate, p.Yield, p.Volatility, p.Type)
}

// carry is the yield that turns S·e^(−qT) into the discounted forward: q for stock, r for futures.
func carry(p models.LatticeParams) float64 {
	if p.Underlying == models.Futures {
		return p.Rate
	}
	return p.Yield
}

func newGreeksCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greeks",
		Short: "lattice and closed-form sensitivities",
		Args:  cobra.NoArgs,
	}
	c := bindContract(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		params, style, err := c.params(e, cmd)
		if err != nil {
			return err
		}
		res, err := models.PriceBinomial(params, style)
		if err != nil {
			return err
		}
		lg, err := res.Greeks()
		if err != nil {
			return err
		}
		cf, err := closedForm(params)
		if err != nil {
			return err
		}
		lt := report.LatticeGreeksTable(lg, e.places())
		lt.Title = style.String() + " lattice"
		ct := report.GreeksTable(cf, e.places())
		ct.Title = "closed form (European)"
		return e.emit(map[string]interface{}{"lattice": lg, "closed_form": cf}, lt, ct)
	}
	return cmd
}

func newImpliedVolCmd(e *env) *cobra.Command {
	var target float64
	var method string
	cmd := &cobra.Command{
		Use:   "iv",
		Short: "implied volatility from a market price",
		Args:  cobra.NoArgs,
	}
	c := bindContract(cmd)
	cmd.Flags().Float64Var(&target, "price", 0, "observed option price")
	cmd.Flags().StringVar(&method, "method", "bs", "bs for closed form, lattice for the binomial model")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		params, style, err := c.params(e, cmd)
		if err != nil {
			return err
		}

		var iv float64
		switch method {
		case "bs":
			iv, err = models.ImpliedVolatility(target, params.Spot, params.Strike, params.Maturity, params.Rate, carry(params), params.Type)
		case "lattice":
			iv, err = models.LatticeImpliedVolatility(target, params, style)
		default:
			return fmt.Errorf("unknown method %q", method)
		}
		if err != nil {
			return err
		}
		return e.emit(map[string]interface{}{"implied_volatility": iv, "method": method},
			report.KeyValues("method", method, "implied volatility", report.Fixed(iv, 6)))
	}
	return cmd
}

func newBlackScholesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bs",
		Short: "Black-Scholes-Merton or Black-76 price and greeks",
		Args:  cobra.NoArgs,
	}
	c := bindContract(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		params, _, err := c.params(e, cmd)
		if err != nil {
			return err
		}
		res, err := closedForm(params)
		if err != nil {
			return err
		}
		return e.emit(res, report.GreeksTable(res, e.places()))
	}
	return cmd
}

func newParityCmd(e *env) *cobra.Command {
	var call, put, tol float64
	cmd := &cobra.Command{
		Use:   "parity",
		Short: "check put-call parity",
		Args:  cobra.NoArgs,
	}
	c := bindContract(cmd)
	cmd.Flags().Float64Var(&call, "call", -1, "observed call price; with --put checks market parity")
	cmd.Flags().Float64Var(&put, "put", -1, "observed put price")
	cmd.Flags().Float64Var(&tol, "tol", 1e-9, "tolerance")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		params, _, err := c.params(e, cmd)
		if err != nil {
			return err
		}

		q := carry(params)
		var check models.ParityCheck
		switch {
		case call >= 0 && put >= 0:
			check, err = models.CheckParity(call, put, params.Spot, params.Strike, params.Maturity, params.Rate, q, tol)
		case call >= 0:
			implied := models.PutFromCall(call, params.Spot, params.Strike, params.Maturity, params.Rate, q)
			return e.emit(map[string]float64{"put": implied}, report.KeyValues("implied put", report.Fixed(implied, e.places())))
		case put >= 0:
			implied := models.CallFromPut(put, params.Spot, params.Strike, params.Maturity, params.Rate, q)
			return e.emit(map[string]float64{"call": implied}, report.KeyValues("implied call", report.Fixed(implied, e.places())))
		default:
			check, err = models.LatticeParity(params, tol)
		}
		if err != nil {
			return err
		}
		return e.emit(check, report.KeyValues(
			"C + K·e^(-rT)", report.Fixed(check.Left, e.places()),
			"P + S·e^(-qT)", report.Fixed(check.Right, e.places()),
			"gap", report.Fixed(check.Gap, 12),
			"holds", fmt.Sprint(check.Holds),
		))
	}
	return cmd
}

func newSweepCmd(e *env) *cobra.Command {
	var from, to, by, workers int
	var progress bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "convergence of the lattice across step counts",
		Args:  cobra.NoArgs,
	}
	c := bindContract(cmd)
	fs := cmd.Flags()
	fs.IntVar(&from, "from", 10, "first step count")
	fs.IntVar(&to, "to", 500, "last step count")
	fs.IntVar(&by, "by", 10, "step count increment")
	fs.IntVar(&workers, "workers", 0, "worker goroutines, 0 for one per CPU (default from config)")
	fs.BoolVar(&progress, "progress", true, "show a progress bar on stderr (default from config)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		params, _, err := c.params(e, cmd)
		if err != nil {
			return err
		}
		configDefault(cmd, "workers", &workers, e.cfg.Sweep.Workers)
		configDefault(cmd, "progress", &progress, e.cfg.Sweep.Progress)

		steps, err := sweep.Range(from, to, by)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		opts := sweep.Options{Workers: workers}
		if progress && !e.json {
			opts.Progress = e.stderr
		}
		points, err := sweep.Run(ctx, params, steps, opts)
		if err != nil {
			return err
		}
		e.logger.Info("sweep finished", "points", len(points), "max_abs_error", sweep.MaxAbsError(points))
		return e.emit(points, report.SweepTable(points, e.places()))
	}
	return cmd
}
