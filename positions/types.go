package positions

import (
	"errors"

	"github.com/bcdannyboy/qfin/models"
)

var ErrInvalidStrategy = errors.New("invalid strategy")

type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// Leg is one option position held to expiry. Premium is per contract and always positive;
// Side decides whether it is paid or received.
type Leg struct {
	Type     models.OptionType `json:"type"`
	Side     Side              `json:"side"`
	Strike   float64           `json:"strike"`
	Premium  float64           `json:"premium"`
	Quantity int               `json:"quantity,omitempty"` // 0 is treated as 1
}

type Strategy struct {
	Name string `json:"name"`
	Legs []Leg  `json:"legs"`
}

type ProfitRow struct {
	Price float64   `json:"price"`
	Legs  []float64 `json:"legs"`
	Total float64   `json:"total"`
}

// Extremes describes the best and worst outcome at expiry. When a side is unlimited the
// matching value holds the best/worst seen over the strikes only.
type Extremes struct {
	MaxProfit       float64 `json:"max_profit"`
	MaxLoss         float64 `json:"max_loss"`
	UnlimitedProfit bool    `json:"unlimited_profit"`
	UnlimitedLoss   bool    `json:"unlimited_loss"`
}

// Market holds the inputs used to price strategy legs.
type Market struct {
	Spot       float64
	Rate       float64
	Yield      float64
	Volatility float64
	Maturity   float64
}
