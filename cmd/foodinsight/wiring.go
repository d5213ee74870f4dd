package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/7Spidy/foodinsight-ai/internal/artifact"
	"github.com/7Spidy/foodinsight-ai/internal/config"
	"github.com/7Spidy/foodinsight-ai/internal/notion"
	"github.com/7Spidy/foodinsight-ai/internal/nutrition"
	"github.com/7Spidy/foodinsight-ai/internal/pipeline"
	"github.com/7Spidy/foodinsight-ai/internal/report"
	"github.com/7Spidy/foodinsight-ai/internal/vision"
)

// app bundles the wired pipeline and the collaborators commands need
// directly.
type app struct {
	cfg    config.Config
	notion *notion.Client
	store  *artifact.Store
	runner *pipeline.Runner
}

func setupLogging(cfg config.Config) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// buildApp wires every pipeline component from config.
func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	src, err := notion.NewClient(cfg.Notion.APIToken, cfg.Notion.DatabaseID)
	if err != nil {
		return nil, fmt.Errorf("creating Notion client: %w", err)
	}
	src.SetDownloadTimeout(cfg.Ingest.DownloadTimeout)

	visionClient := vision.NewClient(cfg.OpenAI.APIKey,
		vision.WithModel(cfg.OpenAI.Model),
		vision.WithMaxTokens(cfg.OpenAI.MaxTokens),
		vision.WithTemperature(cfg.OpenAI.Temperature),
		vision.WithTimeout(cfg.OpenAI.Timeout),
	)
	targets := nutrition.Targets{
		DailyKcal:     cfg.Targets.DailyKcal,
		DailyProteinG: cfg.Targets.DailyProteinG,
		DailyCarbsG:   cfg.Targets.DailyCarbsG,
		DailyFatG:     cfg.Targets.DailyFatG,
	}
	extractor := vision.NewExtractor(visionClient, targets, vision.Profile{
		Age:      cfg.Profile.Age,
		Location: cfg.Profile.Location,
	})

	store, err := artifact.NewStore(cfg.Artifacts.Dir)
	if err != nil {
		return nil, err
	}

	var uploader pipeline.Uploader
	if cfg.Features.UploadReports {
		up, err := artifact.NewUploader(ctx, artifact.UploadConfig{
			Bucket:        cfg.Upload.Bucket,
			Endpoint:      cfg.Upload.Endpoint,
			Region:        cfg.Upload.Region,
			PublicBaseURL: cfg.Upload.PublicBaseURL,
			AccessKey:     cfg.Upload.AccessKey,
			SecretKey:     cfg.Upload.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating report uploader: %w", err)
		}
		uploader = up
	}

	runner := pipeline.NewRunner(pipeline.Deps{
		Source:    src,
		Analyzer:  extractor,
		Renderer:  report.NewRenderer(),
		Reports:   store,
		Uploader:  uploader,
		Publisher: src,
	}, pipeline.Options{
		Targets:    targets,
		MaxEntries: cfg.Ingest.MaxEntries,
		RenderPDF:  cfg.Features.PDFGeneration,
		SavePhotos: cfg.Features.SaveImages,
	})

	return &app{cfg: cfg, notion: src, store: store, runner: runner}, nil
}

func reportSummary(sum pipeline.RunSummary) {
	if sum.Total == 0 {
		printSuccess("No pending records")
		return
	}

	for _, res := range sum.Results {
		switch res.Outcome {
		case pipeline.OutcomeProcessed:
			printSuccess("%s — %s", res.FoodName, res.PageID)
		case pipeline.OutcomeDeferred:
			printWarning("%s deferred (%s): %s", res.PageID, res.ErrorKind, res.ErrorMsg)
		case pipeline.OutcomeFailed:
			printError("%s failed (%s): %s", res.PageID, res.ErrorKind, res.ErrorMsg)
		}
	}
	printStatus("Processed", "%d of %d", sum.Processed, sum.Total)
	if sum.Deferred > 0 {
		printStatus("Deferred", "%d", sum.Deferred)
	}
	if sum.Failed > 0 {
		printStatus("Failed", "%d", sum.Failed)
	}
}
