package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/server"
)

var configPath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agent",
		Short:         "Stock analysis agent: technical indicators, news sentiment and an overall outlook",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	root.AddCommand(serveCmd(), analyzeCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap(ctx, configPath)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			srv := server.NewServer(
				server.NewAnalysisHandler(app.Analyzer, app.Capabilities),
				server.WithHost(app.Config.Server.Host),
				server.WithPort(app.Config.Server.Port),
				server.WithTimeouts(app.Config.Server.ReadTimeout, app.Config.Server.WriteTimeout, app.Config.Server.ShutdownTimeout),
				server.WithCORSOrigins(app.Config.Server.CORSOrigins),
				server.WithMetrics(app.Metrics, nil),
			)

			errCh := srv.Start(ctx)
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info(ctx, "Shutting down...")
			return srv.Stop(context.Background())
		},
	}
}

func analyzeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Analyze one ticker and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := bootstrap(ctx, configPath)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			resp, err := app.Analyzer.Analyze(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			_, err = fmt.Fprint(out, render(resp))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")
	return cmd
}
