package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shouldcost/config"
	"shouldcost/handlers"
	"shouldcost/logger"
	"shouldcost/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	client := services.NewPricingClient(cfg.PricingAPIURL, cfg.HTTPRequestTimeout)
	registry := services.NewSessionRegistry(client, cfg.SessionTTL, cfg.ProgressTick, cfg.ProgressRevealDelay).
		WithRateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	app := pocketbase.New()
	app.RootCmd.AddCommand(newHealthcheckCmd(client))

	janitorCtx, stopJanitor := context.WithCancel(context.Background())

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		logger.Log.Info("Starting estimator",
			zap.String("env", cfg.Env),
			zap.String("pricing_api", client.BaseURL()),
			zap.Duration("session_ttl", cfg.SessionTTL))
		go registry.RunJanitor(janitorCtx, cfg.SessionTTL/4)
		return se.Next()
	})

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		stopJanitor()
		return e.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS(cfg.StaticDir), false))

		se.Router.BindFunc(logger.RequestLogger())
		se.Router.BindFunc(handlers.SessionMiddleware(registry))

		se.Router.GET("/healthz", handlers.HandleHealth(client, registry))

		// ── Single shipment ─────────────────────────────────────
		se.Router.GET("/{$}", handlers.HandleCalculatorPage())
		se.Router.POST("/estimate", handlers.HandleEstimate(client)).BindFunc(handlers.RateLimit())
		se.Router.GET("/estimate/pdf", handlers.HandleEstimatePDF())

		// ── Rate settings (shared by both pages) ────────────────
		se.Router.POST("/settings/reset", handlers.HandleSettingsReset())
		se.Router.POST("/settings/field/{field}", handlers.HandleSettingsField())

		// ── Bulk upload ─────────────────────────────────────────
		se.Router.GET("/bulk", handlers.HandleBulkPage(cfg.ProgressTick))
		se.Router.POST("/bulk/select", handlers.HandleBulkSelect(cfg.ProgressTick)).BindFunc(handlers.RateLimit())
		se.Router.POST("/bulk/clear", handlers.HandleBulkClear(cfg.ProgressTick))
		se.Router.POST("/bulk/process", handlers.HandleBulkProcess(cfg.ProgressTick)).BindFunc(handlers.RateLimit())
		se.Router.GET("/bulk/progress", handlers.HandleBulkProgress(cfg.ProgressTick))
		se.Router.GET("/bulk/rows/{row}", handlers.HandleBulkRow())
		se.Router.DELETE("/bulk/modal", handlers.HandleBulkModalClose())
		se.Router.GET("/bulk/template", handlers.HandleBulkTemplate(client))
		se.Router.GET("/bulk/download/excel", handlers.HandleBulkDownloadExcel(client))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		logger.Log.Fatal("Server stopped", zap.Error(err))
	}
}

// newHealthcheckCmd probes the pricing API and exits non-zero when it is
// unreachable, for use as a container health check.
func newHealthcheckCmd(checker handlers.HealthChecker) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check that the pricing API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := checker.Health(ctx); err != nil {
				return fmt.Errorf("pricing API unhealthy: %s", services.DisplayMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pricing API healthy")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "maximum time to wait for the pricing API")
	return cmd
}
