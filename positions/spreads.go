package positions

import (
	"fmt"

	"github.com/bcdannyboy/qfin/models"
)

func single(name string, t models.OptionType, side Side, strike, premium float64) Strategy {
	return Strategy{
		Name: name,
		Legs: []Leg{{Type: t, Side: side, Strike: strike, Premium: premium}},
	}
}

func LongCall(strike, premium float64) Strategy {
	return single("Long Call", models.Call, Long, strike, premium)
}

func ShortCall(strike, premium float64) Strategy {
	return single("Short Call", models.Call, Short, strike, premium)
}

func LongPut(strike, premium float64) Strategy {
	return single("Long Put", models.Put, Long, strike, premium)
}

func ShortPut(strike, premium float64) Strategy {
	return single("Short Put", models.Put, Short, strike, premium)
}

// BullCallSpread is long the lower strike call, short the higher strike call.
func BullCallSpread(lowStrike, highStrike, lowPremium, highPremium float64) Strategy {
	return Strategy{
		Name: "Bull Call Spread",
		Legs: []Leg{
			{Type: models.Call, Side: Long, Strike: lowStrike, Premium: lowPremium},
			{Type: models.Call, Side: Short, Strike: highStrike, Premium: highPremium},
		},
	}
}

// BearPutSpread is long the higher strike put, short the lower strike put.
func BearPutSpread(lowStrike, highStrike, lowPremium, highPremium float64) Strategy {
	return Strategy{
		Name: "Bear Put Spread",
		Legs: []Leg{
			{Type: models.Put, Side: Long, Strike: highStrike, Premium: highPremium},
			{Type: models.Put, Side: Short, Strike: lowStrike, Premium: lowPremium},
		},
	}
}

// BullPutSpread is the credit version: short the higher put, long the lower put.
func BullPutSpread(lowStrike, highStrike, lowPremium, highPremium float64) Strategy {
	return Strategy{
		Name: "Bull Put Spread",
		Legs: []Leg{
			{Type: models.Put, Side: Short, Strike: highStrike, Premium: highPremium},
			{Type: models.Put, Side: Long, Strike: lowStrike, Premium: lowPremium},
		},
	}
}

// BearCallSpread is the credit version: short the lower call, long the higher call.
func BearCallSpread(lowStrike, highStrike, lowPremium, highPremium float64) Strategy {
	return Strategy{
		Name: "Bear Call Spread",
		Legs: []Leg{
			{Type: models.Call, Side: Short, Strike: lowStrike, Premium: lowPremium},
			{Type: models.Call, Side: Long, Strike: highStrike, Premium: highPremium},
		},
	}
}

func butterfly(name string, t models.OptionType, k1, k2, k3, p1, p2, p3 float64) Strategy {
	return Strategy{
		Name: name,
		Legs: []Leg{
			{Type: t, Side: Long, Strike: k1, Premium: p1},
			{Type: t, Side: Short, Strike: k2, Premium: p2, Quantity: 2},
			{Type: t, Side: Long, Strike: k3, Premium: p3},
		},
	}
}

func CallButterfly(k1, k2, k3, p1, p2, p3 float64) Strategy {
	return butterfly("Call Butterfly", models.Call, k1, k2, k3, p1, p2, p3)
}

func PutButterfly(k1, k2, k3, p1, p2, p3 float64) Strategy {
	return butterfly("Put Butterfly", models.Put, k1, k2, k3, p1, p2, p3)
}

func Straddle(strike, callPremium, putPremium float64) Strategy {
	return Strategy{
		Name: "Straddle",
		Legs: []Leg{
			{Type: models.Call, Side: Long, Strike: strike, Premium: callPremium},
			{Type: models.Put, Side: Long, Strike: strike, Premium: putPremium},
		},
	}
}

// Strangle is long an out-of-the-money put and call.
func Strangle(putStrike, callStrike, putPremium, callPremium float64) Strategy {
	return Strategy{
		Name: "Strangle",
		Legs: []Leg{
			{Type: models.Put, Side: Long, Strike: putStrike, Premium: putPremium},
			{Type: models.Call, Side: Long, Strike: callStrike, Premium: callPremium},
		},
	}
}

// Build constructs a named strategy from strikes, leaving premiums at zero for a pricer to fill.
func Build(kind string, strikes ...float64) (Strategy, error) {
	need := map[string]int{
		"long-call": 1, "short-call": 1, "long-put": 1, "short-put": 1,
		"bull-call": 2, "bear-put": 2, "bull-put": 2, "bear-call": 2,
		"call-butterfly": 3, "put-butterfly": 3,
		"straddle": 1, "strangle": 2,
	}
	n, ok := need[kind]
	if !ok {
		return Strategy{}, errorf("unknown strategy %q", kind)
	}
	if len(strikes) != n {
		return Strategy{}, errorf("%s needs %d strikes, got %d", kind, n, len(strikes))
	}
	for i := 1; i < len(strikes); i++ {
		if strikes[i] <= strikes[i-1] {
			return Strategy{}, errorf("%s strikes must be strictly increasing", kind)
		}
	}

	var s Strategy
	switch kind {
	case "long-call":
		s = LongCall(strikes[0], 0)
	case "short-call":
		s = ShortCall(strikes[0], 0)
	case "long-put":
		s = LongPut(strikes[0], 0)
	case "short-put":
		s = ShortPut(strikes[0], 0)
	case "bull-call":
		s = BullCallSpread(strikes[0], strikes[1], 0, 0)
	case "bear-put":
		s = BearPutSpread(strikes[0], strikes[1], 0, 0)
	case "bull-put":
		s = BullPutSpread(strikes[0], strikes[1], 0, 0)
	case "bear-call":
		s = BearCallSpread(strikes[0], strikes[1], 0, 0)
	case "call-butterfly":
		s = CallButterfly(strikes[0], strikes[1], strikes[2], 0, 0, 0)
	case "put-butterfly":
		s = PutButterfly(strikes[0], strikes[1], strikes[2], 0, 0, 0)
	case "straddle":
		s = Straddle(strikes[0], 0, 0)
	case "strangle":
		s = Strangle(strikes[0], strikes[1], 0, 0)
	}
	return s, s.Validate()
}

// Kinds lists the names accepted by Build.
func Kinds() []string {
	return []string{
		"long-call", "short-call", "long-put", "short-put",
		"bull-call", "bear-put", "bull-put", "bear-call",
		"call-butterfly", "put-butterfly", "straddle", "strangle",
	}
}

func errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidStrategy}, args...)...)
}
