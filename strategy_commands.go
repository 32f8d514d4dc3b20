package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/bcdannyboy/qfin/cashflow"
	"github.com/bcdannyboy/qfin/models"
	"github.com/bcdannyboy/qfin/positions"
	"github.com/bcdannyboy/qfin/probability"
	"github.com/bcdannyboy/qfin/report"
	qfinslack "github.com/bcdannyboy/qfin/slack"
	"github.com/spf13/cobra"
)

type strategyFlags struct {
	kind     string
	strikes  string
	premiums string
	pricer   string
	market   positions.Market
}

func bindStrategy(cmd *cobra.Command) *strategyFlags {
	s := &strategyFlags{}
	fs := cmd.Flags()
	fs.StringVar(&s.kind, "kind", "straddle", "one of "+strings.Join(positions.Kinds(), ", "))
	fs.StringVar(&s.strikes, "strikes", "100", "comma separated strikes, ascending")
	fs.StringVar(&s.premiums, "premiums", "", "comma separated premiums in leg order; priced from the market when empty")
	fs.StringVar(&s.pricer, "pricer", "bs", "bs, european or american (lattice)")
	fs.Float64Var(&s.market.Spot, "spot", 100, "spot price")
	fs.Float64Var(&s.market.Rate, "rate", 0.05, "risk-free rate (default from config)")
	fs.Float64Var(&s.market.Yield, "yield", 0, "dividend yield")
	fs.Float64Var(&s.market.Volatility, "vol", 0.2, "volatility")
	fs.Float64Var(&s.market.Maturity, "maturity", 1, "years to expiry")
	return s
}

func (s *strategyFlags) build(e *env, cmd *cobra.Command) (positions.Strategy, error) {
	configDefault(cmd, "rate", &s.market.Rate, e.cfg.Pricing.Rate)

	strikes, err := parseList(s.strikes)
	if err != nil {
		return positions.Strategy{}, err
	}
	st, err := positions.Build(s.kind, strikes...)
	if err != nil {
		return positions.Strategy{}, err
	}

	premiums, err := parseList(s.premiums)
	if err != nil {
		return positions.Strategy{}, err
	}
	if premiums != nil {
		if len(premiums) != len(st.Legs) {
			return positions.Strategy{}, fmt.Errorf("%w: %s has %d legs, got %d premiums", positions.ErrInvalidStrategy, s.kind, len(st.Legs), len(premiums))
		}
		for i := range st.Legs {
			st.Legs[i].Premium = premiums[i]
		}
		return st, st.Validate()
	}

	var pricer positions.LegPricer
	switch s.pricer {
	case "bs":
		pricer = positions.BlackScholesPricer(s.market)
	case "european":
		pricer = positions.LatticePricer(s.market, e.cfg.Pricing.Steps, models.European, models.Stock)
	case "american":
		pricer = positions.LatticePricer(s.market, e.cfg.Pricing.Steps, models.American, models.Stock)
	default:
		return positions.Strategy{}, fmt.Errorf("unknown pricer %q", s.pricer)
	}
	return positions.PriceStrategy(st, pricer)
}

func newStrategyCmd(e *env) *cobra.Command {
	var from, to, step float64
	var png string
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "price a multi-leg strategy and tabulate its profit",
		Args:  cobra.NoArgs,
	}
	sf := bindStrategy(cmd)
	fs := cmd.Flags()
	fs.Float64Var(&from, "from", 0, "first price in the profit table (default half the lowest strike)")
	fs.Float64Var(&to, "to", 0, "last price in the profit table (default 1.5x the highest strike)")
	fs.Float64Var(&step, "step", 0, "price increment (default a twentieth of the range)")
	fs.StringVar(&png, "png", "", "write the profit diagram to this file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		s, err := sf.build(e, cmd)
		if err != nil {
			return err
		}
		lo, hi := s.Legs[0].Strike, s.Legs[0].Strike
		for _, leg := range s.Legs {
			lo, hi = min(lo, leg.Strike), max(hi, leg.Strike)
		}
		if from == 0 && to == 0 {
			from, to = lo/2, hi*1.5
		}
		if step == 0 {
			step = (to - from) / 20
		}

		rows, err := positions.ProfitTable(s, from, to, step)
		if err != nil {
			return err
		}
		breakevens, err := positions.Breakevens(s)
		if err != nil {
			return err
		}
		ext, err := positions.StrategyExtremes(s)
		if err != nil {
			return err
		}
		greeks, err := positions.StrategyGreeks(s, sf.market)
		if err != nil {
			return err
		}
		if png != "" {
			if err := report.SaveProfit(s, from, to, step, png); err != nil {
				return err
			}
			e.logger.Info("wrote profit diagram", "path", png)
		}

		be := make([]string, len(breakevens))
		for i, b := range breakevens {
			be[i] = report.Fixed(b, e.places())
		}
		summary := report.KeyValues(
			"breakevens", strings.Join(be, ", "),
			"max profit", extremeText(ext.MaxProfit, ext.UnlimitedProfit, e.places()),
			"max loss", extremeText(ext.MaxLoss, ext.UnlimitedLoss, e.places()),
		)
		gt := report.GreeksTable(greeks, e.places())
		gt.Title = "position greeks (Black-Scholes)"

		return e.emit(map[string]interface{}{
			"strategy":   s,
			"cost":       s.Cost(),
			"breakevens": breakevens,
			"extremes":   ext,
			"greeks":     greeks,
			"profit":     rows,
		}, report.StrategyTable(s, e.places()), summary, gt, report.ProfitTable(s, rows, e.places()))
	}
	return cmd
}

func extremeText(v float64, unlimited bool, places int32) string {
	if unlimited {
		return "unlimited"
	}
	return report.Fixed(v, places)
}

func newRiskCmd(e *env) *cobra.Command {
	var paths int
	var seed uint64
	var confidence float64
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Monte Carlo profit probability, VaR and expected shortfall",
		Args:  cobra.NoArgs,
	}
	sf := bindStrategy(cmd)
	fs := cmd.Flags()
	fs.IntVar(&paths, "paths", 100000, "simulated paths (default from config)")
	fs.Uint64Var(&seed, "seed", 0, "random seed, 0 for a fresh one (default from config)")
	fs.Float64Var(&confidence, "confidence", 0.95, "VaR confidence level (default from config)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		configDefault(cmd, "paths", &paths, e.cfg.Simulation.Paths)
		configDefault(cmd, "seed", &seed, e.cfg.Simulation.Seed)
		configDefault(cmd, "confidence", &confidence, e.cfg.Simulation.Confidence)

		s, err := sf.build(e, cmd)
		if err != nil {
			return err
		}
		res, err := probability.Analyze(s, probability.SimulationParams{
			Spot:       sf.market.Spot,
			Rate:       sf.market.Rate,
			Yield:      sf.market.Yield,
			Volatility: sf.market.Volatility,
			Maturity:   sf.market.Maturity,
			Paths:      paths,
			Workers:    e.cfg.Simulation.Workers,
			Seed:       seed,
		}, confidence)
		if err != nil {
			return err
		}
		e.logger.Info("simulated strategy", "strategy", s.Name, "paths", res.Paths, "pop", res.ProbabilityOfProfit)

		p := e.places()
		return e.emit(res, report.StrategyTable(s, p), report.KeyValues(
			"paths", fmt.Sprint(res.Paths),
			"probability of profit", report.Fixed(res.ProbabilityOfProfit, 4),
			"expected profit", report.Fixed(res.ExpectedProfit, p),
			fmt.Sprintf("VaR %s%%", report.Fixed(res.Confidence*100, 1)), report.Fixed(res.VaR, p),
			"expected shortfall", report.Fixed(res.ExpectedShortfall, p),
		))
	}
	return cmd
}

func newCashflowCmd(e *env) *cobra.Command {
	var amounts, times string
	var rate, initial float64
	var freq int
	cmd := &cobra.Command{
		Use:   "cashflow",
		Short: "present value of a cash flow schedule",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.StringVar(&amounts, "amounts", "", "comma separated amounts")
	fs.StringVar(&times, "times", "", "comma separated times in years (default 1, 2, ...)")
	fs.Float64Var(&rate, "rate", 0.05, "discount rate (default from config)")
	fs.IntVar(&freq, "freq", 0, "compounding periods per year, 0 for continuous")
	fs.Float64Var(&initial, "initial", 0, "initial outlay subtracted for NPV")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		configDefault(cmd, "rate", &rate, e.cfg.Pricing.Rate)

		amts, err := parseList(amounts)
		if err != nil {
			return err
		}
		flows := cashflow.Annual(amts...)
		if times != "" {
			ts, err := parseList(times)
			if err != nil {
				return err
			}
			if len(ts) != len(amts) {
				return fmt.Errorf("%w: %d times for %d amounts", cashflow.ErrInvalidCashflow, len(ts), len(amts))
			}
			for i := range flows {
				flows[i].Time = ts[i]
			}
		}

		var sched cashflow.Schedule
		if freq == 0 {
			sched, err = cashflow.PresentValueContinuous(flows, rate)
		} else {
			sched, err = cashflow.PresentValueDiscrete(flows, rate, freq)
		}
		if err != nil {
			return err
		}
		npv := sched.Total - initial
		return e.emit(map[string]interface{}{"schedule": sched, "npv": npv},
			report.ScheduleTable(sched, e.places()),
			report.KeyValues("npv", report.Fixed(npv, e.places())))
	}
	return cmd
}

func newBondCmd(e *env) *cobra.Command {
	var b cashflow.Bond
	var yield, shift float64
	cmd := &cobra.Command{
		Use:   "bond",
		Short: "bond price, duration and yield shift estimate",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.Float64Var(&b.Face, "face", 100, "face value")
	fs.Float64Var(&b.CouponRate, "coupon", 0.05, "annual coupon rate")
	fs.Float64Var(&b.Maturity, "maturity", 5, "years to maturity")
	fs.IntVar(&b.Frequency, "freq", 1, "coupons per year")
	fs.Float64Var(&yield, "yield", 0.05, "continuously compounded yield")
	fs.Float64Var(&shift, "shift", 0, "yield change to estimate, e.g. -0.002")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		price, err := cashflow.BondPrice(b, yield)
		if err != nil {
			return err
		}
		duration, err := cashflow.BondDuration(b, yield)
		if err != nil {
			return err
		}
		out := map[string]float64{"price": price, "duration": duration}
		pairs := []string{"price", report.Fixed(price, e.places()), "duration", report.Fixed(duration, e.places())}
		if shift != 0 {
			est := cashflow.DurationPriceChange(price, duration, shift)
			repriced, err := cashflow.BondPrice(b, yield+shift)
			if err != nil {
				return err
			}
			out["estimated_change"], out["actual_change"] = est, repriced-price
			pairs = append(pairs,
				"estimated change", report.Fixed(est, e.places()),
				"actual change", report.Fixed(repriced-price, e.places()))
		}
		return e.emit(out, report.KeyValues(pairs...))
	}
	return cmd
}

func newForwardCmd(e *env) *cobra.Command {
	var spot, rate, yield, maturity, delivery float64
	cmd := &cobra.Command{
		Use:   "forward",
		Short: "forward price and value of an existing forward",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.Float64Var(&spot, "spot", 100, "current spot price")
	fs.Float64Var(&rate, "rate", 0.05, "risk-free rate (default from config)")
	fs.Float64Var(&yield, "yield", 0, "continuous yield")
	fs.Float64Var(&maturity, "maturity", 1, "years to delivery")
	fs.Float64Var(&delivery, "delivery", 0, "delivery price of an existing contract, to value it")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		configDefault(cmd, "rate", &rate, e.cfg.Pricing.Rate)

		fwd, err := cashflow.ForwardPrice(spot, rate, yield, maturity)
		if err != nil {
			return err
		}
		out := map[string]float64{"forward_price": fwd}
		pairs := []string{"forward price", report.Fixed(fwd, e.places())}
		if delivery > 0 {
			v, err := cashflow.ForwardValue(spot, delivery, rate, maturity)
			if err != nil {
				return err
			}
			out["contract_value"] = v
			pairs = append(pairs, "contract value", report.Fixed(v, e.places()))
		}
		return e.emit(out, report.KeyValues(pairs...))
	}
	return cmd
}

func newSlackCmd(e *env) *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "slack",
		Short: "serve slash commands over Slack socket mode",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "log socket mode traffic")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if e.cfg.Slack.AppToken == "" || e.cfg.Slack.BotToken == "" {
			return fmt.Errorf("SLACK_APP_TOKEN and SLACK_BOT_TOKEN must be set")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		bot := qfinslack.NewSlackBot(e.cfg.Slack.AppToken, e.cfg.Slack.BotToken, qfinslack.Defaults{
			Steps:       e.cfg.Pricing.Steps,
			Parallelism: e.cfg.Pricing.Parallelism,
			Decimals:    e.cfg.Report.Decimals,
		}, e.logger, debug)
		e.logger.Info("starting slack bot")
		return bot.Start(ctx)
	}
	return cmd
}
