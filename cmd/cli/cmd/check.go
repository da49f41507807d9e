// Package cmd - check command
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pricesync/adapters/prestashop"
	"pricesync/internal/logging"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify webservice connectivity and credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateShop(); err != nil {
			return err
		}

		client := prestashop.New(prestashop.Config{
			ShopURL:        cfg.Shop.URL,
			APIKey:         cfg.Shop.APIKey,
			SupplierID:     cfg.Shop.SupplierID,
			UserAgent:      cfg.Shop.UserAgent,
			MaxRetries:     0,
			Timeout:        cfg.HTTP.Timeout(),
			MethodOverride: cfg.HTTP.MethodOverride,
		}, logging.Logger)

		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.HTTP.Timeout())
		defer cancel()

		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("webservice check failed: %w", err)
		}
		fmt.Printf("OK: %s is reachable and credentials are accepted\n", cfg.Shop.URL)
		return nil
	},
}
