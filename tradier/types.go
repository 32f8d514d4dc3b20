package tradier

// QuoteHistory is the body of the markets/history endpoint.
type QuoteHistory struct {
	History struct {
		Day []Day `json:"day"`
	} `json:"history"`
}

type Day struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int     `json:"volume"`
}

// Quotes is the body of the markets/quotes endpoint.
type Quotes struct {
	Quotes struct {
		Quote Quote `json:"quote"`
	} `json:"quotes"`
}

type Quote struct {
	Symbol string  `json:"symbol"`
	Last   float64 `json:"last"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}
