// Command ai-concierge-ingest loads the hotel corpus outside the HTTP server.
package main

import (
	"ai-concierge/config"
	"ai-concierge/internal/app"
	ingestsvc "ai-concierge/internal/services/ingest"
	"ai-concierge/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ai-concierge-ingest",
	Short: "Hotel corpus ingestion tool",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return err
		}
		return logger.Configure(string(config.Cfg.LogLevel), config.Cfg.LogJSON)
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Embed and store the corpus unless it is already ingested",
	Long: `Runs the same bootstrap as the API server:

1. Counts rows in hotel_store; a non-empty catalog skips the run
2. Reads the configured source (ingest.source) line by line
3. Splits, embeds and stores every line, pacing submissions by ingest.pause_ms`,
	RunE: runIngest,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the latest recorded ingestion run",
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.AddCommand(runCmd, statusCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	deps, err := app.Build(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	res, err := deps.Ingest.Bootstrap(ctx)
	printJSON(cmd, res)
	return err
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc := ingestsvc.NewService(ingestsvc.NewRepository(), nil, nil, ingestsvc.SettingsFromConfig())
	res, err := svc.Status(ctx)
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	printJSON(cmd, res)
	return nil
}

func printJSON(cmd *cobra.Command, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
