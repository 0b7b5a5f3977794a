package main

import (
	"context"

	"github.com/deppfellow/storefront/internal/lib/utils"
	"github.com/spf13/cobra"
)

// withApp runs fn against a wired app and releases it afterwards.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.loggerService.Shutdown()
	defer func() {
		if err := a.server.Shutdown(context.Background()); err != nil {
			a.log.Warn().Err(err).Msg("failed to release resources")
		}
	}()

	return fn(ctx, a)
}

func reconcilePaymentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile-payments",
		Short: "Poll the gateway for orders still awaiting payment and apply the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				res, err := a.services.Payments.ReconcilePending(ctx)
				if res != nil {
					utils.PrintJSON(res)
				}
				return err
			})
		},
	}
}

func expireOrdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire-orders",
		Short: "Cancel unpaid pending orders older than the configured window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				n, err := a.services.Orders.ExpireStale(ctx)
				if err != nil {
					return err
				}
				utils.PrintJSON(map[string]int{"cancelled": n})
				return nil
			})
		},
	}
}
