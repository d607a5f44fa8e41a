// Package main provides the CLI tool for the weather-query-service.
// Uses Cobra for command parsing — the standard Go CLI framework
// (used by kubectl, docker, hugo, and many others).
//
// Run with: go run ./cmd/cli ask "What's the weather in Chicago tomorrow?"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleveque/weather-query-service/internal/config"
	"github.com/fleveque/weather-query-service/internal/server"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "weather-cli",
		Short: "Weather query service CLI tools",
	}

	root.AddCommand(askCmd())
	return root
}

func askCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Run one weather question through the pipeline",
		Args:  cobra.ExactArgs(1),
		// RunE returns an error (vs Run which doesn't). Cobra prints the
		// error automatically.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(args[0], csvPath)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the tabular export to this file")
	return cmd
}

func runAsk(question, csvPath string) error {
	cfg, err := config.Load(os.Getenv("WEATHER_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	deps, cleanup, err := server.BuildDeps(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// Ctrl+C cancels the in-flight pipeline via context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := deps.QueryService.Process(ctx, question)
	if err != nil {
		return err
	}

	fmt.Println(result.Summary)

	if csvPath != "" {
		data, err := deps.ExportStore.Get(result.ExportID)
		if err != nil {
			return fmt.Errorf("reading export: %w", err)
		}
		if err := os.WriteFile(csvPath, data, 0644); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		fmt.Printf("wrote %s\n", csvPath)
	}

	return nil
}
