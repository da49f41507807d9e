// Package cmd - update command
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pricesync/adapters/ingest"
	"pricesync/adapters/prestashop"
	"pricesync/adapters/sqlgen"
	"pricesync/core/item"
	"pricesync/core/output"
	"pricesync/core/pricing"
	"pricesync/core/reconcile"
	"pricesync/internal/logging"
)

var (
	marginFlag   float64
	groupsFlag   []string
	setPriceFlag []string
	parallelFlag int
	dryRunFlag   bool
	formatFlag   string
	sqlOutFlag   string
	logDirFlag   string
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <price-list>",
	Short: "Push marked-up supplier prices to the remote catalog",
	Long: `Load a supplier price list, apply the margin, and update matching
products through the shop webservice.

Manual price overrides are applied with --set-price and survive margin
application.

Examples:
  pricesync update supplier_prices.xlsx
  pricesync update --margin 15 --groups "Cables" prices.csv
  pricesync update --set-price REF001=19.90 --dry-run prices.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().Float64VarP(&marginFlag, "margin", "m", 0, "margin percent (default from config)")
	updateCmd.Flags().StringSliceVarP(&groupsFlag, "groups", "g", nil, "product groups to include (default all)")
	updateCmd.Flags().StringArrayVar(&setPriceFlag, "set-price", nil, "manual sale price override, SKU=PRICE (repeatable)")
	updateCmd.Flags().IntVarP(&parallelFlag, "parallel", "p", 0, "concurrent updates (default from config)")
	updateCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "compute prices without contacting the webservice")
	updateCmd.Flags().StringVarP(&formatFlag, "format", "f", "text", "report format (text, json)")
	updateCmd.Flags().StringVar(&sqlOutFlag, "sql-out", "", "also write a SQL fallback script to this path")
	updateCmd.Flags().StringVar(&logDirFlag, "log-dir", "", "directory for the run log file (default from config)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	margin := marginDecimal(cmd)

	items, err := loadPricedItems(args[0], margin)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no items to process after filtering")
	}

	if dryRunFlag {
		printPreview(items)
		return nil
	}

	if err := cfg.ValidateShop(); err != nil {
		return err
	}

	formatter, err := output.New(output.Format(formatFlag))
	if err != nil {
		return err
	}

	logDir := cfg.LogDir
	if logDirFlag != "" {
		logDir = logDirFlag
	}
	runLog, logPath, err := logging.NewRunLogger(cfg.Logging, logDir)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer runLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := prestashop.New(prestashop.Config{
		ShopURL:        cfg.Shop.URL,
		APIKey:         cfg.Shop.APIKey,
		SupplierID:     cfg.Shop.SupplierID,
		UserAgent:      cfg.Shop.UserAgent,
		MaxRetries:     cfg.HTTP.MaxRetries,
		Timeout:        cfg.HTTP.Timeout(),
		MethodOverride: cfg.HTTP.MethodOverride,
	}, runLog)

	// Unreachable host or bad credentials abort before any item is touched
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("webservice preflight failed: %w", err)
	}

	parallelism := cfg.HTTP.Parallelism
	if cmd.Flags().Changed("parallel") {
		parallelism = parallelFlag
	}

	orch := reconcile.New(client, reconcile.Options{
		MarginPercent:   margin,
		Parallelism:     parallelism,
		SkipNonPositive: cfg.Pricing.SkipNonPositive,
	}, runLog)

	report := orch.Run(ctx, items)

	if err := formatter.Render(os.Stdout, report); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "run log: %s\n", logPath)

	if sqlOutFlag != "" {
		if err := writeSQL(items, margin, sqlOutFlag); err != nil {
			return err
		}
	}
	return nil
}

// marginDecimal resolves the margin from the flag or the configured default
func marginDecimal(cmd *cobra.Command) decimal.Decimal {
	if cmd.Flags().Changed("margin") {
		return decimal.NewFromFloat(marginFlag)
	}
	return decimal.NewFromFloat(cfg.Pricing.DefaultMarginPercent)
}

// loadPricedItems runs the ingestion pipeline: load, dedupe, filter,
// apply manual overrides, then apply the margin.
func loadPricedItems(path string, margin decimal.Decimal) ([]item.LineItem, error) {
	items, warnings, err := ingest.Load(path, ingest.Columns{
		SKU:          cfg.Columns.SKU,
		Article:      cfg.Columns.Article,
		Price:        cfg.Columns.Price,
		Manufacturer: cfg.Columns.Manufacturer,
		Availability: cfg.Columns.Availability,
		Group:        cfg.Columns.Group,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logging.Warn("price list row dropped", zap.String("reason", w))
	}

	items, dupes := item.Normalize(items)
	for _, w := range dupes {
		logging.Warn("duplicate row", zap.String("reason", w))
	}

	items = item.FilterGroups(items, groupsFlag)

	if err := applyOverrides(items, setPriceFlag); err != nil {
		return nil, err
	}

	return pricing.ApplyMargin(items, margin, cfg.Pricing.PriceDecimals), nil
}

// applyOverrides parses SKU=PRICE pairs and marks those items as manually
// priced so margin application leaves them alone.
func applyOverrides(items []item.LineItem, overrides []string) error {
	for _, o := range overrides {
		sku, raw, ok := strings.Cut(o, "=")
		if !ok {
			return fmt.Errorf("invalid --set-price %q, want SKU=PRICE", o)
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
		if err != nil {
			return fmt.Errorf("invalid --set-price %q: %w", o, err)
		}

		found := false
		for i := range items {
			if items[i].SupplierSKU == sku {
				items[i].SetManualPrice(price)
				found = true
			}
		}
		if !found {
			logging.Warn("override SKU not in price list", zap.String("sku", sku))
		}
	}
	return nil
}

func printPreview(items []item.LineItem) {
	fmt.Printf("%-20s %12s %12s  %s\n", "SKU", "PURCHASE", "SALE", "STATE")
	for _, it := range items {
		fmt.Printf("%-20s %12s %12s  %s\n",
			it.SupplierSKU, it.PurchasePrice.StringFixed(2), it.SalePrice.StringFixed(2), it.PriceState)
	}
	fmt.Printf("\n%d items (dry run, nothing sent)\n", len(items))
}

func writeSQL(items []item.LineItem, margin decimal.Decimal, path string) error {
	script, err := sqlgen.Generate(items, sqlgen.Options{
		SupplierID:    cfg.Shop.SupplierID,
		MarginPercent: margin,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(script), 0644)
}
