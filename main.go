package main

import (
	"fmt"
	"os"

	"shop-demo/pkg/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shop-demo",
	Short: "Demo shop: JSON API plus single-page client",
	Long: `shop-demo serves a tiny storefront API (message, products, mock login,
mock orders) together with the single-page client that uses it.

Run "shop-demo serve" to start the API, or "shop-demo shop" to walk through
the login-then-order flow against a running server from the terminal.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shopCmd)
}

// initLogger builds the process logger; --verbose wins over the configured level.
func initLogger(level string) error {
	if verbose {
		level = "debug"
	}
	var err error
	logger, err = logging.New(level)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
