// Package cmd provides the CLI commands for pricesync.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pricesync/internal/config"
	"pricesync/internal/logging"
)

var (
	cfgFile string
	verbose bool

	// cfg is the loaded configuration, available to all commands
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pricesync",
	Short: "Reconcile supplier price lists against a remote shop catalog",
	Long: `pricesync reads a supplier price list, applies a configurable margin,
and pushes the resulting sale prices to a PrestaShop-style webservice.

Hosts that block the PUT verb are handled transparently with a POST-based
method override.

Examples:
  pricesync update supplier_prices.xlsx
  pricesync update --margin 15 --groups "Cables,Adapters" prices.csv
  pricesync sqlgen --margin 15 prices.csv > update_prices.sql
  pricesync check`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pricesync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(sqlgenCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// Credentials are commonly kept in a .env next to the price lists
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("pricesync version 0.1.0")
	},
}
