package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"shop-demo/pkg/storefront"
	"shop-demo/pkg/views"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	shopAddr     string
	shopUsername string
	shopPassword string
	shopOrder    bool
	shopTimeout  time.Duration
	shopHTML     bool
)

// shopCmd drives the storefront flow from the terminal
var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Log in against a running server and list (or order) the products",
	Long: `Runs the same flow as the browser client: fetch the greeting and the
products, submit the credentials and, with --order, order every product.

Example:
  shop-demo shop --username user --password pass --order
  shop-demo shop -u user -p pass --html > shop.html`,
	RunE: runShop,
}

func init() {
	shopCmd.Flags().StringVar(&shopAddr, "addr", "http://localhost:3000", "Shop API base URL")
	shopCmd.Flags().StringVarP(&shopUsername, "username", "u", "", "Username")
	shopCmd.Flags().StringVarP(&shopPassword, "password", "p", "", "Password")
	shopCmd.Flags().BoolVar(&shopOrder, "order", false, "Place an order for every product after logging in")
	shopCmd.Flags().DurationVar(&shopTimeout, "timeout", 10*time.Second, "Overall timeout")
	shopCmd.Flags().BoolVar(&shopHTML, "html", false, "Print the final state as an HTML page instead of text")
}

func runShop(cmd *cobra.Command, args []string) error {
	if err := initLogger("warn"); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), shopTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	client := storefront.NewClient(&storefront.Config{
		Address:    shopAddr,
		HTTPClient: &http.Client{},
	})
	view := storefront.NewView(client, func(msg string) {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}, logger)

	view.Mount(ctx)
	view.SetUsername(shopUsername)
	view.SetPassword(shopPassword)
	view.Submit(ctx)

	if shopOrder {
		view.PlaceOrder(ctx)
	}

	if shopHTML {
		if err := views.Document(view.Snapshot()).Render(ctx, out); err != nil {
			return fmt.Errorf("failed to render page: %w", err)
		}
	} else {
		printState(out, view.Snapshot())
	}
	logger.Debug("Shop flow finished", zap.Bool("logged_in", view.Snapshot().LoggedIn))
	return nil
}

func printState(w io.Writer, s storefront.State) {
	fmt.Fprintf(w, "Backend says: %s\n", s.Message)
	if !s.LoggedIn {
		fmt.Fprintln(w, "Not logged in.")
		return
	}

	fmt.Fprintln(w, "Welcome, User!")
	fmt.Fprintln(w, "Products:")
	for _, p := range s.Products {
		fmt.Fprintf(w, "  %s\n", p.Label())
	}
	if s.OrderStatus != "" {
		fmt.Fprintln(w, s.OrderStatus)
	}
}
