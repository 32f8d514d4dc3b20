package qfinslack

import (
	"fmt"
	"strings"

	"github.com/bcdannyboy/qfin/positions"
	"github.com/bcdannyboy/qfin/report"
)

type StrategyHandler struct {
	defaults Defaults
}

func NewStrategyHandler(defaults Defaults) *StrategyHandler {
	return &StrategyHandler{defaults: defaults}
}

func (h *StrategyHandler) Usage() string {
	return "/strategy <" + strings.Join(positions.Kinds(), "|") + "> <spot> <rate> <vol> <years> <strike...> - Black-Scholes cost, breakevens and extremes"
}

func (h *StrategyHandler) Reply(args []string) (string, error) {
	if len(args) < 6 {
		return "", fmt.Errorf("%w: expected at least 6 arguments, got %d", errUsage, len(args))
	}
	nums, err := parseFloats(args[1:])
	if err != nil {
		return "", err
	}
	m := positions.Market{Spot: nums[0], Rate: nums[1], Volatility: nums[2], Maturity: nums[3]}

	s, err := positions.Build(args[0], nums[4:]...)
	if err != nil {
		return "", err
	}
	s, err = positions.PriceStrategy(s, positions.BlackScholesPricer(m))
	if err != nil {
		return "", err
	}
	breakevens, err := positions.Breakevens(s)
	if err != nil {
		return "", err
	}
	ext, err := positions.StrategyExtremes(s)
	if err != nil {
		return "", err
	}

	places := h.defaults.Decimals
	be := make([]string, len(breakevens))
	for i, b := range breakevens {
		be[i] = report.Fixed(b, places)
	}
	maxProfit, maxLoss := report.Fixed(ext.MaxProfit, places), report.Fixed(ext.MaxLoss, places)
	if ext.UnlimitedProfit {
		maxProfit = "unlimited"
	}
	if ext.UnlimitedLoss {
		maxLoss = "unlimited"
	}

	return codeBlock(
		report.StrategyTable(s, places),
		report.KeyValues(
			"breakevens", strings.Join(be, ", "),
			"max profit", maxProfit,
			"max loss", maxLoss,
		),
	)
}
