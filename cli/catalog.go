package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockledger/domain"
)

func init() {
	productCmd := &cobra.Command{Use: "product", Short: "Manage the product catalog"}
	rootCmd.AddCommand(productCmd)

	// product list
	var lOutput string
	productListCmd := &cobra.Command{
		Use:   "list",
		Short: "List products with their total stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out, err := txEngine.Products(ctx)
			if err != nil {
				return err
			}
			if lOutput == "json" {
				return printJSON(out)
			}
			for _, p := range out {
				total, err := txEngine.TotalQuantity(ctx, p.ID)
				if err != nil {
					return err
				}
				fmt.Printf("%s | %s | %s | %s | %d\n", p.ID, p.SKU, p.Name, p.PriceRetail, total)
			}
			return nil
		},
	}
	productListCmd.Flags().StringVar(&lOutput, "output", "", "output format")
	productCmd.AddCommand(productListCmd)

	// product add
	var p domain.Product
	productAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := txEngine.AddProduct(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printJSON(created)
		},
	}
	productFlags(productAddCmd, &p)
	productAddCmd.Flags().StringVar(&p.ID, "id", "", "product id (generated when empty)")
	productCmd.AddCommand(productAddCmd)

	// product update
	var u domain.Product
	productUpdateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cur, err := txEngine.Product(ctx, args[0])
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("sku") {
				cur.SKU = u.SKU
			}
			if f.Changed("barcode") {
				cur.Barcode = u.Barcode
			}
			if f.Changed("name") {
				cur.Name = u.Name
			}
			if f.Changed("category") {
				cur.Category = u.Category
			}
			if f.Changed("retail") {
				cur.PriceRetail = u.PriceRetail
			}
			if f.Changed("moq1") {
				cur.PriceMOQ1 = u.PriceMOQ1
			}
			if f.Changed("moq2") {
				cur.PriceMOQ2 = u.PriceMOQ2
			}
			if f.Changed("min-stock") {
				cur.MinStock = u.MinStock
			}
			if err := txEngine.UpdateProduct(ctx, cur); err != nil {
				return err
			}
			return printJSON(cur)
		},
	}
	productFlags(productUpdateCmd, &u)
	productCmd.AddCommand(productUpdateCmd)

	dealerCmd := &cobra.Command{Use: "dealer", Short: "Manage dealers"}
	rootCmd.AddCommand(dealerCmd)

	dealerCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List dealers",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := txEngine.Dealers(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range out {
				fmt.Printf("%s | %s | %s | %s\n", d.ID, d.Name, d.ContactPerson, d.Email)
			}
			return nil
		},
	})

	var d domain.Dealer
	dealerAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a dealer and its consignment warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := txEngine.AddDealer(cmd.Context(), d)
			if err != nil {
				return err
			}
			return printJSON(created)
		},
	}
	dealerFlags(dealerAddCmd, &d)
	dealerAddCmd.Flags().StringVar(&d.ID, "id", "", "dealer id (generated when empty)")
	dealerCmd.AddCommand(dealerAddCmd)

	var du domain.Dealer
	dealerUpdateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a dealer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dealers, err := txEngine.Dealers(ctx)
			if err != nil {
				return err
			}
			cur, ok := findDealer(dealers, args[0])
			if !ok {
				return domain.NewNotFoundError("dealer", args[0])
			}
			f := cmd.Flags()
			if f.Changed("name") {
				cur.Name = du.Name
			}
			if f.Changed("contact") {
				cur.ContactPerson = du.ContactPerson
			}
			if f.Changed("tax-id") {
				cur.TaxID = du.TaxID
			}
			if f.Changed("email") {
				cur.Email = du.Email
			}
			if err := txEngine.UpdateDealer(ctx, cur); err != nil {
				return err
			}
			return printJSON(cur)
		},
	}
	dealerFlags(dealerUpdateCmd, &du)
	dealerCmd.AddCommand(dealerUpdateCmd)

	dealerCmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a dealer; its warehouse and history stay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := txEngine.RemoveDealer(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("removed")
			return nil
		},
	})

	warehouseCmd := &cobra.Command{Use: "warehouse", Short: "Manage warehouses"}
	rootCmd.AddCommand(warehouseCmd)

	warehouseCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List warehouses",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := txEngine.Warehouses(cmd.Context())
			if err != nil {
				return err
			}
			for _, w := range out {
				fmt.Printf("%s | %s | %s | %s\n", w.ID, w.Name, w.Type, w.Location)
			}
			return nil
		},
	})

	var w domain.Warehouse
	var whType string
	warehouseAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			w.Type = domain.WarehouseType(whType)
			created, err := txEngine.AddWarehouse(cmd.Context(), w)
			if err != nil {
				return err
			}
			return printJSON(created)
		},
	}
	warehouseAddCmd.Flags().StringVar(&w.ID, "id", "", "warehouse id (generated when empty)")
	warehouseAddCmd.Flags().StringVar(&w.Name, "name", "", "name")
	warehouseAddCmd.Flags().StringVar(&w.Location, "location", "", "location")
	warehouseAddCmd.Flags().StringVar(&whType, "type", string(domain.WarehouseInternal), "Internal|External")
	warehouseCmd.AddCommand(warehouseAddCmd)
}

func productFlags(cmd *cobra.Command, p *domain.Product) {
	f := cmd.Flags()
	f.StringVar(&p.SKU, "sku", "", "sku")
	f.StringVar(&p.Barcode, "barcode", "", "barcode")
	f.StringVar(&p.Name, "name", "", "name")
	f.StringVar(&p.Category, "category", "", "category")
	f.Var(decimalValue{&p.PriceRetail}, "retail", "retail price")
	f.Var(decimalValue{&p.PriceMOQ1}, "moq1", "MOQ tier 1 price")
	f.Var(decimalValue{&p.PriceMOQ2}, "moq2", "MOQ tier 2 price")
	f.IntVar(&p.MinStock, "min-stock", 0, "low-stock threshold")
}

func dealerFlags(cmd *cobra.Command, d *domain.Dealer) {
	f := cmd.Flags()
	f.StringVar(&d.Name, "name", "", "name")
	f.StringVar(&d.ContactPerson, "contact", "", "contact person")
	f.StringVar(&d.TaxID, "tax-id", "", "tax id")
	f.StringVar(&d.Email, "email", "", "email")
}

func findDealer(dealers []domain.Dealer, id string) (domain.Dealer, bool) {
	for _, d := range dealers {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Dealer{}, false
}
