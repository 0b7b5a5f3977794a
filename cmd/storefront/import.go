package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/deppfellow/storefront/internal/lib/utils"
	"github.com/spf13/cobra"
)

func importProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-products [file.json]",
		Short: "Upsert products from a JSON array in chunks",
		Long: `Upsert products by slug from a JSON array of products.

Products are written in chunks of STOREFRONT_JOBS.IMPORT_CHUNK_SIZE with
STOREFRONT_JOBS.IMPORT_DELAY between chunks. Interrupting the command stops
before the next chunk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, func(ctx context.Context, a *app) error {
				res, err := a.services.Import.ImportFile(ctx, args[0])
				if res != nil {
					utils.PrintJSON(res)
				}
				return err
			})
		},
	}
}
