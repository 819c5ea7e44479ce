// Command valuate runs one portfolio valuation and prints it as a table.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/logging"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/validation"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/version"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/yahoo"
)

type options struct {
	ledger       string
	showHoldings bool
	workers      int
	timeout      time.Duration
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:           "valuate [USD|EUR]",
		Version:       version.Version,
		Short:         "Value the portfolio ledger in a base currency",
		Long:          `Loads the ledger, replays its transactions and prints every holding with its value and profit/loss, followed by a portfolio summary.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) > 0 {
				raw = args[0]
			}
			base, err := validation.ValidateBaseCurrency(raw)
			if err != nil {
				return err
			}

			provider, err := market.NewCachedProvider(
				market.NewYahooProvider(yahoo.NewFinanceClient()),
				cfg.Market.CacheSize,
				market.WithLatestTTL(cfg.Market.LatestPriceTTL),
			)
			if err != nil {
				return err
			}

			currency := service.NewCurrencyService(provider, cfg.Valuation.FXTimeout)
			valuation := service.NewValuationService(
				service.FileLedgerSource{Path: opts.ledger},
				provider,
				currency,
				service.ValuationOptions{Workers: opts.workers, PriceTimeout: opts.timeout},
			)

			v, err := valuation.Compute(cmd.Context(), base)
			if err != nil {
				return err
			}
			render(cmd.OutOrStdout(), v, opts.showHoldings)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ledger, "ledger", cfg.Ledger.Path, "Path to the ledger XML document")
	cmd.Flags().BoolVar(&opts.showHoldings, "holdings", true, "Print the holdings table before the summary")
	cmd.Flags().IntVar(&opts.workers, "workers", cfg.Valuation.PriceWorkers, "Maximum concurrent price fetches")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", cfg.Valuation.PriceTimeout, "Timeout for a single price fetch")

	return cmd
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, true)

	if err := newRootCmd(cfg).Execute(); err != nil {
		if errors.Is(err, apperrors.ErrInvalidCurrency) {
			fmt.Fprintln(os.Stderr, "Error: Base currency must be either USD or EUR")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
