// Package cli provides the Cobra-based CLI for stockledger.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stockledger/config"
	"stockledger/domain"
	"stockledger/engine"
	"stockledger/metrics"
	"stockledger/report"
	"stockledger/store"
)

var (
	rootCmd = &cobra.Command{
		Use:           "stockledger",
		Short:         "Consignment inventory and distribution ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// shell re-enters Execute with everything wired
			if txEngine != nil {
				return nil
			}

			cfg, err := config.Load(nil)
			if err != nil {
				return err
			}
			appConfig = cfg

			// tests inject a store
			if ledgerStore == nil {
				lvl, _ := config.ParseLevel(cfg.LogLevel)
				slog.SetDefault(slog.New(
					slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}),
				))

				st, err := store.NewStore(cfg.Store, cfg.StoreFile)
				if err != nil {
					return err
				}
				if err := seed(cmd.Context(), st, cfg.Seed); err != nil {
					return err
				}
				ledgerStore = st
			}

			appMetrics = metrics.New("stockledger")
			txEngine = engine.New(ledgerStore,
				engine.WithLogger(slog.Default()),
				engine.WithMetrics(appMetrics),
			)
			reporter = report.New(ledgerStore, report.WithTaxRate(cfg.Tax()))
			return nil
		},
	}

	ledgerStore domain.Store
	txEngine    *engine.Engine
	reporter    *report.Reporter
	appMetrics  *metrics.Metrics
	appConfig   config.Config
)

func init() {
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(os.Stdin)
			for {
				fmt.Print("stockledger> ")
				line, err := r.ReadString('\n')
				if err != nil {
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				rootCmd.SetArgs(strings.Fields(line))
				if err := rootCmd.Execute(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
				rootCmd.SetArgs(nil)
			}
		},
	}
	rootCmd.AddCommand(shellCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("store", "memory", "store backend: memory|file")
	flags.String("store-file", "data/stockledger.json", "file store path")
	flags.String("config", "", "config file")
	flags.String("log-level", "info", "log level")
	flags.Bool("seed", false, "reset the store to the demo data set")
	flags.Float64("tax-rate", 0.05, "statement tax rate on goods")
	flags.String("analysis-url", "", "analysis service endpoint")
	flags.Duration("analysis-timeout", 30*time.Second, "analysis request timeout")

	for _, name := range []string{"store", "store-file", "config", "log-level", "seed", "tax-rate", "analysis-url", "analysis-timeout"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
}

// seed loads the demo data into an empty store, or replaces the current
// state with it when force is set.
func seed(ctx context.Context, st domain.Store, force bool) error {
	empty, err := isEmpty(ctx, st)
	if err != nil {
		return err
	}
	if !empty && !force {
		return nil
	}
	if err := st.Update(ctx, func(s *domain.State) error {
		*s = *domain.NewState()
		return store.Seed(s)
	}); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	slog.Info("demo data loaded")
	return nil
}

func isEmpty(ctx context.Context, st domain.Store) (bool, error) {
	if e, ok := st.(interface{ Empty() bool }); ok {
		return e.Empty(), nil
	}
	var n int
	err := st.View(ctx, func(s *domain.State) error {
		n = len(s.Products) + len(s.Warehouses) + len(s.History)
		return nil
	})
	return n == 0, err
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// decimalValue lets money flags parse straight into decimal.Decimal.
type decimalValue struct{ d *decimal.Decimal }

func (v decimalValue) String() string {
	if v.d == nil {
		return "0"
	}
	return v.d.String()
}

func (v decimalValue) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q", s)
	}
	*v.d = d
	return nil
}

func (decimalValue) Type() string { return "decimal" }

func Execute() error {
	return rootCmd.Execute()
}
