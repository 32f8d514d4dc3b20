package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bcdannyboy/qfin/report"
	"github.com/bcdannyboy/qfin/tradier"
	"github.com/bcdannyboy/qfin/volatility"
	"github.com/spf13/cobra"
)

func newVolatilityCmd(e *env) *cobra.Command {
	var csvPath, symbol string
	var lookback int
	cmd := &cobra.Command{
		Use:   "vol",
		Short: "historical volatility from OHLC bars (CSV file or Tradier)",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.StringVar(&csvPath, "csv", "", "CSV file of date,open,high,low,close rows")
	fs.StringVar(&symbol, "symbol", "", "fetch daily bars for this symbol from Tradier instead")
	fs.IntVar(&lookback, "days", 400, "calendar days of history to fetch")
	cmd.MarkFlagsMutuallyExclusive("csv", "symbol")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var bars []volatility.Bar
		var last float64
		switch {
		case csvPath != "":
			f, err := os.Open(csvPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if bars, err = volatility.ReadCSV(f); err != nil {
				return fmt.Errorf("%s: %w", csvPath, err)
			}
		case symbol != "":
			if e.cfg.MarketData.TradierToken == "" {
				return fmt.Errorf("TRADIER_KEY must be set to fetch %s", symbol)
			}
			client := tradier.NewClient(e.cfg.MarketData.TradierToken)
			client.BaseURL = e.cfg.MarketData.TradierBaseURL

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			end := time.Now()
			var err error
			if bars, err = client.History(ctx, symbol, end.AddDate(0, 0, -lookback), end); err != nil {
				return err
			}
			if last, err = client.Last(ctx, symbol); err != nil {
				return err
			}
			e.logger.Info("fetched history", "symbol", symbol, "bars", len(bars), "last", last)
		default:
			return fmt.Errorf("one of --csv or --symbol is required")
		}

		ests, err := volatility.Estimates(bars, volatility.DefaultWindows)
		if err != nil {
			return err
		}
		if last == 0 {
			return e.emit(ests, report.VolatilityTable(ests))
		}
		return e.emit(map[string]interface{}{"symbol": symbol, "last": last, "estimates": ests},
			report.KeyValues("symbol", symbol, "last", report.Fixed(last, e.places())),
			report.VolatilityTable(ests))
	}
	return cmd
}
