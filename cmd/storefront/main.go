// Command storefront runs the flower delivery storefront API and its
// maintenance commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Flower delivery storefront backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importProductsCmd())
	rootCmd.AddCommand(reconcilePaymentsCmd())
	rootCmd.AddCommand(expireOrdersCmd())
	rootCmd.AddCommand(previewEmailCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
