// Command sentinel is the operator CLI: run one-off analyses against the
// upstream APIs without a running server or database.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"sentinel/internal/adapters/esi"
	"sentinel/internal/adapters/zkill"
	"sentinel/internal/config"
	"sentinel/internal/services/analyzer"
	"sentinel/internal/services/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "sentinel",
		Short:         "Recruitment risk analysis for EVE Online characters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "sentinel.toml", "path to config file")

	root.AddCommand(newAnalyzeCmd(&configPath))
	root.AddCommand(newBatchCmd(&configPath))
	return root
}

func newAnalyzeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <characterID>",
		Short: "Analyze one character and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			characterID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid character id %q", args[0])
			}
			pipe, err := buildPipeline(*configPath)
			if err != nil {
				return err
			}
			report, err := pipe.Analyze(cmd.Context(), characterID, "cli")
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
}

func newBatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <characterID>...",
		Short: "Analyze several characters and print the reports as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid character id %q", arg)
				}
				ids = append(ids, id)
			}
			pipe, err := buildPipeline(*configPath)
			if err != nil {
				return err
			}
			reports, err := pipe.AnalyzeBatch(cmd.Context(), ids, "cli")
			if err != nil {
				return err
			}
			return printJSON(reports)
		},
	}
}

func buildPipeline(configPath string) (*pipeline.Service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	engine := analyzer.NewEngine(cfg, logger)
	svc := analyzer.NewService(engine, cfg.BatchConcurrency, logger)
	return pipeline.New(
		esi.New(cfg.ESIBaseURL),
		zkill.New(cfg.ZKillBaseURL),
		nil, svc, nil, cfg.BatchConcurrency, logger,
	), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
