package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/bcdannyboy/qfin/config"
	"github.com/bcdannyboy/qfin/logging"
	"github.com/spf13/cobra"
)

type env struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
	stdout io.Writer
	stderr io.Writer

	configPath string
	json       bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run builds the command tree, executes args against it and releases the logger.
func run(args []string, stdout, stderr io.Writer) error {
	e := &env{stdout: stdout, stderr: stderr}
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	if e.closer != nil {
		defer e.closer.Close()
	}
	if err != nil && e.logger != nil {
		e.logger.Error("command failed", "command", cmd.Name(), "error", err)
	}
	return err
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "qfin",
		Short:         "binomial lattice pricing and option analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return c.Help()
		},
	}
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVar(&e.json, "json", false, "write JSON instead of tables")

	root.AddCommand(
		newPriceCmd(e),
		newTreeCmd(e),
		newCompareCmd(e),
		newGreeksCmd(e),
		newImpliedVolCmd(e),
		newBlackScholesCmd(e),
		newParityCmd(e),
		newSweepCmd(e),
		newStrategyCmd(e),
		newRiskCmd(e),
		newCashflowCmd(e),
		newBondCmd(e),
		newForwardCmd(e),
		newVolatilityCmd(e),
		newSlackCmd(e),
	)
	return root
}

// load reads configuration and opens the logger before any subcommand runs.
func (e *env) load(cmd *cobra.Command) error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger, e.closer = logging.New(cfg.Logging, "qfin")
	e.logger.Debug("running command", "command", cmd.Name())
	return nil
}

// configDefault takes v from configuration unless the flag was given on the command line.
func configDefault[T any](cmd *cobra.Command, name string, dst *T, v T) {
	if !cmd.Flags().Changed(name) {
		*dst = v
	}
}

func parseList(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q in list", p)
		}
		out[i] = v
	}
	return out, nil
}
