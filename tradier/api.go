// Package tradier fetches daily price history and quotes from the Tradier brokerage API.
package tradier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bcdannyboy/qfin/volatility"
	"github.com/xhhuango/json"
)

const DefaultBaseURL = "https://api.tradier.com/v1"

var ErrNoData = errors.New("no market data")

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.BaseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	req.Header.Add("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response data: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}

// History returns daily bars for symbol between start and end inclusive, oldest first.
func (c *Client) History(ctx context.Context, symbol string, start, end time.Time) ([]volatility.Bar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "daily")
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))
	q.Set("session_filter", "all")

	var history QuoteHistory
	if err := c.get(ctx, "/markets/history", q, &history); err != nil {
		return nil, err
	}
	if len(history.History.Day) == 0 {
		return nil, fmt.Errorf("%w: %s history %s to %s", ErrNoData, symbol, q.Get("start"), q.Get("end"))
	}

	bars := make([]volatility.Bar, len(history.History.Day))
	for i, d := range history.History.Day {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse history date: %w", err)
		}
		bars[i] = volatility.Bar{Date: date, Open: d.Open, High: d.High, Low: d.Low, Close: d.Close}
	}
	return bars, nil
}

// Last returns the last traded price of symbol.
func (c *Client) Last(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("symbols", symbol)

	var quotes Quotes
	if err := c.get(ctx, "/markets/quotes", q, &quotes); err != nil {
		return 0, err
	}
	if quotes.Quotes.Quote.Last <= 0 {
		return 0, fmt.Errorf("%w: no last price for %s", ErrNoData, symbol)
	}
	return quotes.Quotes.Quote.Last, nil
}
