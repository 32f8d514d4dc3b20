package qfinslack

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bcdannyboy/qfin/models"
	"github.com/bcdannyboy/qfin/report"
)

var errUsage = errors.New("invalid arguments")

// Defaults fills the optional arguments of the slash commands.
type Defaults struct {
	Steps       int
	Parallelism int
	Decimals    int32
}

type PriceHandler struct {
	defaults Defaults
}

func NewPriceHandler(defaults Defaults) *PriceHandler {
	return &PriceHandler{defaults: defaults}
}

func (h *PriceHandler) Usage() string {
	return "/price <call|put> <spot> <strike> <rate> <vol> <years> [steps] [stock|futures] [yield] - European and American lattice values"
}

func (h *PriceHandler) Reply(args []string) (string, error) {
	if len(args) < 6 || len(args) > 9 {
		return "", fmt.Errorf("%w: expected 6 to 9 arguments, got %d", errUsage, len(args))
	}
	optType, err := models.ParseOptionType(args[0])
	if err != nil {
		return "", err
	}
	nums, err := parseFloats(args[1:6])
	if err != nil {
		return "", err
	}

	params := models.LatticeParams{
		Spot:        nums[0],
		Strike:      nums[1],
		Rate:        nums[2],
		Volatility:  nums[3],
		Maturity:    nums[4],
		Steps:       h.defaults.Steps,
		Type:        optType,
		Parallelism: h.defaults.Parallelism,
	}
	if len(args) > 6 {
		if params.Steps, err = strconv.Atoi(args[6]); err != nil {
			return "", fmt.Errorf("%w: steps %q", errUsage, args[6])
		}
	}
	if len(args) > 7 {
		if params.Underlying, err = models.ParseUnderlying(args[7]); err != nil {
			return "", err
		}
	}
	if len(args) > 8 {
		if params.Yield, err = strconv.ParseFloat(args[8], 64); err != nil {
			return "", fmt.Errorf("%w: yield %q", errUsage, args[8])
		}
	}

	cmp, err := models.CompareStyles(params)
	if err != nil {
		return "", err
	}
	summary := report.SummaryTable(cmp.American, h.defaults.Decimals)
	return codeBlock(report.ComparisonTable(cmp, h.defaults.Decimals), summary)
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errUsage, a)
		}
		out[i] = v
	}
	return out, nil
}

func fieldsOf(text string) []string {
	return strings.Fields(text)
}
