// Package cmd - sqlgen command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pricesync/adapters/sqlgen"
)

var sqlOutputFlag string

// sqlgenCmd represents the sqlgen command
var sqlgenCmd = &cobra.Command{
	Use:   "sqlgen <price-list>",
	Short: "Generate a SQL price-update script instead of calling the API",
	Long: `Compute sale prices exactly as update does, but write a SQL script
for direct database import instead of calling the webservice.

Examples:
  pricesync sqlgen prices.csv
  pricesync sqlgen --margin 15 -o update_prices.sql prices.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runSQLGen,
}

func init() {
	sqlgenCmd.Flags().Float64VarP(&marginFlag, "margin", "m", 0, "margin percent (default from config)")
	sqlgenCmd.Flags().StringSliceVarP(&groupsFlag, "groups", "g", nil, "product groups to include (default all)")
	sqlgenCmd.Flags().StringArrayVar(&setPriceFlag, "set-price", nil, "manual sale price override, SKU=PRICE (repeatable)")
	sqlgenCmd.Flags().StringVarP(&sqlOutputFlag, "output", "o", "", "write the script to a file instead of stdout")
}

func runSQLGen(cmd *cobra.Command, args []string) error {
	margin := marginDecimal(cmd)

	items, err := loadPricedItems(args[0], margin)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no items to process after filtering")
	}

	if sqlOutputFlag != "" {
		return writeSQL(items, margin, sqlOutputFlag)
	}

	script, err := sqlgen.Generate(items, sqlgen.Options{
		SupplierID:    cfg.Shop.SupplierID,
		MarginPercent: margin,
	})
	if err != nil {
		return err
	}
	fmt.Print(script)
	return nil
}
