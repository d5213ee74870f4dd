package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/7Spidy/foodinsight-ai/internal/config"
	"github.com/7Spidy/foodinsight-ai/internal/notion"
)

// --- run ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one batch of pending meal records",
	Long: `Process one batch of pending meal records.

Queries the Notion database for records with Status "pending", analyzes
each meal photo, renders the report, and publishes the results back.
Intended as the scheduler entry point: exits 0 on a clean pass
(including an empty one), non-zero when the database cannot be queried.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}

		sum, err := a.runner.Run(ctx)
		if err != nil {
			return err
		}
		reportSummary(sum)
		return nil
	},
}

// --- watch ---

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run batches continuously at a fixed interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		if flagInterval, _ := cmd.Flags().GetDuration("interval"); flagInterval > 0 {
			cfg.Watch.Interval = flagInterval
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}

		printStep("Watching for pending records every %s", cfg.Watch.Interval)
		return watchLoop(ctx, a, nil, cfg.Watch.Interval)
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "polling interval (default from config)")
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running serve instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return showStatus(cmd.Context(), newAPIClient(cfg.Server.Port))
	},
}

// --- doctor ---

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, Notion access, and the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor(cmd.Context())
	},
}

func runDoctor(ctx context.Context) error {
	printStep("Checking configuration...")
	cfg, err := config.Load()
	if err != nil {
		printError("%v", err)
		return err
	}
	printSuccess("Configuration loaded")
	printStatus("Model", "%s", cfg.OpenAI.Model)
	printStatus("Batch size", "%d", cfg.Ingest.MaxEntries)
	printStatus("Artifacts dir", "%s", cfg.Artifacts.Dir)

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	printStep("Checking Notion access...")
	client, err := notion.NewClient(cfg.Notion.APIToken, cfg.Notion.DatabaseID)
	if err != nil {
		printError("%v", err)
		return err
	}
	info, err := client.CheckAccess(ctx)
	if err != nil {
		printError("cannot reach the meal database: %v", err)
		return err
	}
	printSuccess("Connected to database %q", info.Title)

	printStep("Checking database schema...")
	missing := 0
	for _, name := range notion.RequiredProperties() {
		if _, ok := info.Properties[name]; !ok {
			printError("missing property %q", name)
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("database is missing %d required properties", missing)
	}
	printSuccess("All %d required properties present", len(notion.RequiredProperties()))

	printStep("Checking artifacts directory...")
	if _, err := os.Stat(cfg.Artifacts.Dir); err != nil {
		printWarning("artifacts dir %s does not exist yet; it is created on first run", cfg.Artifacts.Dir)
	} else {
		printSuccess("Artifacts directory is ready")
	}

	if cfg.Features.UploadReports {
		printStatus("Report upload", "enabled, bucket %s", cfg.Upload.Bucket)
	} else {
		printStatus("Report upload", "disabled")
	}
	return nil
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
