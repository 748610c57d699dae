package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"stockledger/engine"
)

func init() {
	stockCmd := &cobra.Command{Use: "stock", Short: "Inspect and correct the inventory ledger"}
	rootCmd.AddCommand(stockCmd)

	stockCmd.AddCommand(&cobra.Command{
		Use:   "get <productId> [warehouseId]",
		Short: "Show quantity in one warehouse, or the total across all",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var q int
			var err error
			if len(args) == 2 {
				q, err = txEngine.Quantity(cmd.Context(), args[0], args[1])
			} else {
				q, err = txEngine.TotalQuantity(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			fmt.Println(q)
			return nil
		},
	})

	var lWarehouse, lOutput string
	stockListCmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger records",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := txEngine.Inventory(cmd.Context(), lWarehouse)
			if err != nil {
				return err
			}
			if lOutput == "json" {
				return printJSON(out)
			}
			for _, r := range out {
				fmt.Printf("%s | %s | %d\n", r.ProductID, r.WarehouseID, r.Quantity)
			}
			return nil
		},
	}
	stockListCmd.Flags().StringVar(&lWarehouse, "warehouse", "", "limit to one warehouse")
	stockListCmd.Flags().StringVar(&lOutput, "output", "", "output format")
	stockCmd.AddCommand(stockListCmd)

	stockCmd.AddCommand(&cobra.Command{
		Use:   "set <productId> <warehouseId> <qty>",
		Short: "Overwrite one ledger cell (stock count correction)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
			if err := txEngine.CorrectInventory(cmd.Context(), args[0], args[1], q); err != nil {
				return err
			}
			fmt.Println(q)
			return nil
		},
	})

	// import: tab-separated SKU, Name, Qty, Retail, MOQ1, MOQ2, WarehouseID
	var importFile, importWarehouse string
	importCmd := &cobra.Command{
		Use:   "import --file <file>",
		Short: "Bulk update catalog and stock from a tab-separated sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if importFile == "" {
				return errors.New("--file required")
			}
			f, err := os.Open(importFile)
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := engine.ParseImportRows(f, importWarehouse)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return errors.New("no rows to import")
			}
			res, err := txEngine.BatchImport(cmd.Context(), rows)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	importCmd.Flags().StringVar(&importFile, "file", "", "input file")
	importCmd.Flags().StringVar(&importWarehouse, "warehouse", "", "warehouse for rows without one")
	stockCmd.AddCommand(importCmd)
}
