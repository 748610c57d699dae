package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stockledger/analysis"
	"stockledger/domain"
	"stockledger/report"
)

func init() {
	reportCmd := &cobra.Command{Use: "report", Short: "Statements, exports and dashboards"}
	rootCmd.AddCommand(reportCmd)

	// statement
	var (
		stDealer, stStart, stEnd string
		stFormat, stOut          string
	)
	statementCmd := &cobra.Command{
		Use:   "statement",
		Short: "Billing statement for a dealer over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := period(stStart, stEnd)
			if err != nil {
				return err
			}
			stmt, err := reporter.Statement(cmd.Context(), stDealer, start, end)
			if err != nil {
				return err
			}
			return writeReport(stFormat, stOut, stmt, func(w io.Writer) error {
				return report.WriteStatementCSV(w, stmt, reporter.TaxRate())
			}, func(w io.Writer) error {
				return report.WriteStatementXLSX(w, stmt, reporter.TaxRate())
			})
		},
	}
	reportFlags(statementCmd, &stDealer, &stStart, &stEnd, &stFormat, &stOut)
	reportCmd.AddCommand(statementCmd)

	// settlement
	var (
		seDealer, seStart, seEnd string
		seFormat, seOut          string
	)
	settlementCmd := &cobra.Command{
		Use:   "settlement",
		Short: "Settled item lines and product summary for a dealer",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := period(seStart, seEnd)
			if err != nil {
				return err
			}
			exp, err := reporter.SettlementExport(cmd.Context(), seDealer, start, end)
			if err != nil {
				return err
			}
			return writeReport(seFormat, seOut, exp, func(w io.Writer) error {
				return report.WriteSettlementCSV(w, exp)
			}, func(w io.Writer) error {
				return report.WriteSettlementXLSX(w, exp)
			})
		},
	}
	reportFlags(settlementCmd, &seDealer, &seStart, &seEnd, &seFormat, &seOut)
	reportCmd.AddCommand(settlementCmd)

	reportCmd.AddCommand(&cobra.Command{
		Use:   "consignment <dealerId>",
		Short: "Stock currently held at a dealer's consignment warehouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := reporter.ConsignmentStock(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cs)
		},
	})

	reportCmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Stock health dashboard figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := reporter.StockHealth(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			return printJSON(h)
		},
	})

	var shFormat, shOut string
	shipmentCmd := &cobra.Command{
		Use:   "shipment <txId>",
		Short: "Packing slip for one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := reporter.Shipment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeReport(shFormat, shOut, s, func(w io.Writer) error {
				return report.WriteShipmentCSV(w, s)
			}, nil)
		},
	}
	shipmentCmd.Flags().StringVar(&shFormat, "format", "json", "json|csv")
	shipmentCmd.Flags().StringVar(&shOut, "out", "", "output file (default stdout)")
	reportCmd.AddCommand(shipmentCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "analyze",
		Short: "Ask the analysis service for restock and risk advice",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := analysis.TakeSnapshot(ctx, ledgerStore)
			if err != nil {
				return err
			}
			client := analysis.NewClient(analysisConfig(), slog.Default(), appMetrics)
			fmt.Println(client.Analyze(ctx, snap))
			return nil
		},
	})
}

func reportFlags(cmd *cobra.Command, dealer, start, end, format, out *string) {
	f := cmd.Flags()
	f.StringVar(dealer, "dealer", "", "dealer id")
	f.StringVar(start, "start", "", "period start (YYYY-MM-DD)")
	f.StringVar(end, "end", "", "period end (YYYY-MM-DD)")
	f.StringVar(format, "format", "json", "json|csv|xlsx")
	f.StringVar(out, "out", "", "output file (default stdout)")
}

func period(start, end string) (domain.Date, domain.Date, error) {
	s, err := domain.ParseDate(start)
	if err != nil {
		return domain.Date{}, domain.Date{}, fmt.Errorf("--start: %w", err)
	}
	e, err := domain.ParseDate(end)
	if err != nil {
		return domain.Date{}, domain.Date{}, fmt.Errorf("--end: %w", err)
	}
	if e.Before(s.Time) {
		return domain.Date{}, domain.Date{}, errors.New("--end is before --start")
	}
	return s, e, nil
}

// writeReport renders v as JSON, or through the csv/xlsx writer, to out or
// stdout. xlsx is nil for reports without a spreadsheet form.
func writeReport(format, out string, v interface{}, csv, xlsx func(io.Writer) error) error {
	var render func(io.Writer) error
	switch format {
	case "", "json":
		if out == "" {
			return printJSON(v)
		}
		render = func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		}
	case "csv":
		render = csv
	case "xlsx":
		if xlsx == nil {
			return fmt.Errorf("format %q not supported for this report", format)
		}
		if out == "" {
			return errors.New("--out required for xlsx")
		}
		render = xlsx
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if out == "" {
		return render(os.Stdout)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("report written", "path", out, "format", format)
	return nil
}

func analysisConfig() analysis.Config {
	cfg := analysis.DefaultConfig(appConfig.AnalysisURL)
	if appConfig.AnalysisTimeout > 0 {
		cfg.Timeout = appConfig.AnalysisTimeout
	}
	return cfg
}
