package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"stockledger/domain"
)

func init() {
	txCmd := &cobra.Command{Use: "tx", Short: "Record and inspect transactions"}
	rootCmd.AddCommand(txCmd)

	// submit
	var (
		sFile, sDealer, sType, sMethod, sDate, sNote string
		sShipping                                    decimal.Decimal
		sItems                                       []string
	)
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a transaction from a JSON file or flags",
		Long: "Submit a transaction. Either pass --file with a JSON draft (\"-\" reads stdin)\n" +
			"or describe it with flags; --item is productId:warehouseId:qty[:price] and repeats.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var draft domain.TransactionDraft
			if sFile != "" {
				d, err := readDraft(sFile)
				if err != nil {
					return err
				}
				draft = d
			} else {
				d, err := draftFromFlags(sDealer, sType, sMethod, sDate, sNote, sShipping, sItems)
				if err != nil {
					return err
				}
				draft = d
			}
			tx, err := txEngine.Submit(cmd.Context(), draft)
			if err != nil {
				return err
			}
			return printJSON(tx)
		},
	}
	f := submitCmd.Flags()
	f.StringVar(&sFile, "file", "", "JSON draft file")
	f.StringVar(&sDealer, "dealer", "", "dealer id")
	f.StringVar(&sType, "type", "", "Buyout|ConsignmentTransfer|ConsignmentSettlement")
	f.StringVar(&sMethod, "shipping-method", "", "Truck|Courier|Postal|Pickup|None")
	f.Var(decimalValue{&sShipping}, "shipping-cost", "shipping cost")
	f.StringVar(&sDate, "date", "", "transaction date (YYYY-MM-DD, default today)")
	f.StringVar(&sNote, "note", "", "note")
	f.StringArrayVar(&sItems, "item", nil, "productId:warehouseId:qty[:price]")
	txCmd.AddCommand(submitCmd)

	// list
	var lOutput string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := reporter.History(cmd.Context())
			if err != nil {
				return err
			}
			if lOutput == "json" {
				return printJSON(out)
			}
			for _, tx := range out {
				fmt.Printf("%s | %s | %s | %s | %s\n",
					tx.Date, tx.ID, tx.DealerName, tx.SaleType, tx.TotalValue)
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&lOutput, "output", "", "output format")
	txCmd.AddCommand(listCmd)

	txCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := txEngine.Transaction(cmd.Context(), args[0])
			if err != nil {
				if domain.IsNotFoundError(err) {
					fmt.Fprintln(os.Stderr, err)
					return nil
				}
				return err
			}
			return printJSON(tx)
		},
	})

	txCmd.AddCommand(&cobra.Command{
		Use:   "note <id> <note...>",
		Short: "Replace the note on a recorded transaction",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := txEngine.UpdateNote(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			tx, err := txEngine.Transaction(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(tx)
		},
	})

	// scan resolves a barcode or SKU into a draft line
	var scanType, scanDealer string
	scanCmd := &cobra.Command{
		Use:   "scan <code>",
		Short: "Resolve a scanned barcode or SKU into a one-unit draft line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := domain.ParseSaleType(scanType)
			if err != nil {
				return err
			}
			item, err := txEngine.ItemFromCode(cmd.Context(), args[0], st, scanDealer)
			if err != nil {
				return err
			}
			return printJSON(item)
		},
	}
	scanCmd.Flags().StringVar(&scanType, "type", string(domain.SaleBuyout), "sale type")
	scanCmd.Flags().StringVar(&scanDealer, "dealer", "", "dealer id")
	txCmd.AddCommand(scanCmd)
}

func readDraft(path string) (domain.TransactionDraft, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return domain.TransactionDraft{}, err
		}
		defer f.Close()
		r = f
	}
	var d domain.TransactionDraft
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return domain.TransactionDraft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

func draftFromFlags(dealer, saleType, method, date, note string, shipping decimal.Decimal, items []string) (domain.TransactionDraft, error) {
	if len(items) == 0 {
		return domain.TransactionDraft{}, errors.New("--item or --file required")
	}
	st, err := domain.ParseSaleType(saleType)
	if err != nil {
		return domain.TransactionDraft{}, err
	}
	d := domain.TransactionDraft{
		DealerID:       dealer,
		SaleType:       st,
		ShippingMethod: domain.ShippingMethod(method),
		ShippingCost:   shipping,
		Note:           note,
	}
	if date != "" {
		if d.Date, err = domain.ParseDate(date); err != nil {
			return domain.TransactionDraft{}, err
		}
	}
	for _, raw := range items {
		it, err := parseItem(raw)
		if err != nil {
			return domain.TransactionDraft{}, err
		}
		d.Items = append(d.Items, it)
	}
	return d, nil
}

// parseItem reads productId:warehouseId:qty[:price].
func parseItem(s string) (domain.DraftItem, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return domain.DraftItem{}, fmt.Errorf("invalid --item %q: want productId:warehouseId:qty[:price]", s)
	}
	q, err := strconv.Atoi(parts[2])
	if err != nil {
		return domain.DraftItem{}, fmt.Errorf("invalid --item %q: bad quantity", s)
	}
	it := domain.DraftItem{ProductID: parts[0], WarehouseID: parts[1], Quantity: q}
	if len(parts) == 4 {
		price, err := decimal.NewFromString(parts[3])
		if err != nil {
			return domain.DraftItem{}, fmt.Errorf("invalid --item %q: bad price", s)
		}
		it.PriceAtSale = &price
	}
	return it, nil
}
