package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/7Spidy/foodinsight-ai/internal/notion"
	"github.com/7Spidy/foodinsight-ai/internal/nutrition"
	"github.com/7Spidy/foodinsight-ai/internal/report"
	"github.com/7Spidy/foodinsight-ai/internal/vision"
)

// Source lists pending meal records and fetches their photos.
type Source interface {
	QueryPending(ctx context.Context, limit int) ([]notion.MealRecord, error)
	GetRecord(ctx context.Context, pageID string) (notion.MealRecord, error)
	DownloadPhoto(ctx context.Context, rec notion.MealRecord) (notion.Photo, error)
}

// Analyzer estimates nutrition facts from a meal photo.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, contentType string) (nutrition.Estimate, error)
}

// Renderer produces the report document for one analyzed meal.
type Renderer interface {
	Render(in report.Input) ([]byte, error)
}

// ReportStore persists rendered reports and source photos locally.
type ReportStore interface {
	SaveReport(pageID string, at time.Time, data []byte) (string, error)
	SavePhoto(pageID string, at time.Time, data []byte, contentType string) (string, error)
}

// Uploader pushes a report to remote storage and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// Publisher writes results (or failures) back to the meal database.
type Publisher interface {
	Publish(ctx context.Context, pageID string, in notion.PublishInput) error
	MarkError(ctx context.Context, pageID, msg string) error
}

// Deps are the collaborators a Runner orchestrates. Uploader may be
// nil when report upload is disabled.
type Deps struct {
	Source    Source
	Analyzer  Analyzer
	Renderer  Renderer
	Reports   ReportStore
	Uploader  Uploader
	Publisher Publisher
}

// Options tune a Runner's behavior per run.
type Options struct {
	Targets    nutrition.Targets
	MaxEntries int
	RenderPDF  bool
	SavePhotos bool
	Logger     *slog.Logger
}

// Runner processes pending meal records one at a time: download photo,
// analyze, render, publish. Failures are isolated per record; a bad
// record never stops the batch.
type Runner struct {
	deps       Deps
	targets    nutrition.Targets
	maxEntries int
	renderPDF  bool
	savePhotos bool
	logger     *slog.Logger
}

const defaultMaxEntries = 10

// NewRunner creates a Runner.
func NewRunner(deps Deps, opts Options) *Runner {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Targets == (nutrition.Targets{}) {
		opts.Targets = nutrition.DefaultTargets()
	}
	return &Runner{
		deps:       deps,
		targets:    opts.Targets,
		maxEntries: opts.MaxEntries,
		renderPDF:  opts.RenderPDF,
		savePhotos: opts.SavePhotos,
		logger:     opts.Logger,
	}
}

// Run processes one batch of pending records. A query failure aborts
// the run; per-record failures are reported in the summary instead.
func (r *Runner) Run(ctx context.Context) (RunSummary, error) {
	sum := RunSummary{ID: uuid.New().String(), StartedAt: time.Now().UTC()}

	records, err := r.deps.Source.QueryPending(ctx, r.maxEntries)
	if err != nil {
		return sum, &Error{Kind: KindIngest, Err: err}
	}
	sum.Total = len(records)
	r.logger.Info("run started", "run_id", sum.ID, "pending", len(records))

	for _, rec := range records {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		res := r.processRecord(ctx, rec)
		sum.add(res)
		r.logger.Info("record finished",
			"run_id", sum.ID,
			"page_id", res.PageID,
			"outcome", res.Outcome,
			"error", res.ErrorMsg,
		)
	}

	sum.FinishedAt = time.Now().UTC()
	r.logger.Info("run finished",
		"run_id", sum.ID,
		"processed", sum.Processed,
		"failed", sum.Failed,
		"deferred", sum.Deferred,
	)
	return sum, nil
}

// RunOne processes a single record by page ID regardless of batch
// limits. The record must still be pending.
func (r *Runner) RunOne(ctx context.Context, pageID string) (RecordResult, error) {
	rec, err := r.deps.Source.GetRecord(ctx, pageID)
	if err != nil {
		return RecordResult{}, &Error{Kind: KindIngest, Err: err}
	}
	if rec.Status != notion.StatusPending {
		return RecordResult{}, fmt.Errorf("record %s is %q, not pending", pageID, rec.Status)
	}
	return r.processRecord(ctx, rec), nil
}

func (r *Runner) processRecord(ctx context.Context, rec notion.MealRecord) RecordResult {
	res := RecordResult{PageID: rec.ID, FoodName: rec.Title}

	photo, err := r.deps.Source.DownloadPhoto(ctx, rec)
	if err != nil {
		// Signed photo URLs expire; treat download failures as
		// transient and pick the record up again next run.
		return r.deferRecord(res, KindAnalysis, fmt.Errorf("downloading photo: %w", err))
	}

	est, err := r.deps.Analyzer.Analyze(ctx, photo.Data, photo.ContentType)
	if err != nil {
		if vision.IsTransient(err) {
			return r.deferRecord(res, KindAnalysis, err)
		}
		return r.fail(ctx, res, KindAnalysis, err)
	}
	res.FoodName = est.FoodName
	now := time.Now().UTC()

	if r.savePhotos {
		if _, err := r.deps.Reports.SavePhoto(rec.ID, now, photo.Data, photo.ContentType); err != nil {
			r.logger.Warn("saving photo failed", "page_id", rec.ID, "error", err)
		}
	}

	var reportURL string
	if r.renderPDF {
		doc, err := r.deps.Renderer.Render(report.Input{
			Estimate:   est,
			Macros:     nutrition.Percents(est, r.targets),
			Photo:      photo.Data,
			AnalyzedAt: now,
		})
		if err != nil {
			return r.fail(ctx, res, KindRender, err)
		}

		name, err := r.deps.Reports.SaveReport(rec.ID, now, doc)
		if err != nil {
			return r.fail(ctx, res, KindRender, err)
		}
		res.ReportName = name

		if r.deps.Uploader != nil {
			url, err := r.deps.Uploader.Upload(ctx, name, doc)
			if err != nil {
				// Publish without a document reference rather
				// than losing the analysis.
				r.logger.Warn("report upload failed", "page_id", rec.ID, "error", err)
			} else {
				reportURL = url
			}
		}
	}
	res.ReportURL = reportURL

	err = r.deps.Publisher.Publish(ctx, rec.ID, notion.PublishInput{
		Estimate:    est,
		ProcessedAt: now,
		ReportURL:   reportURL,
		ReportName:  res.ReportName,
	})
	if err != nil {
		// Status stays pending so the analysis is retried whole;
		// writing an error status here could itself fail the same way.
		res.Outcome = OutcomeFailed
		res.ErrorKind = KindPublish
		res.ErrorMsg = err.Error()
		res.FinishedAt = time.Now().UTC()
		return res
	}

	res.Outcome = OutcomeProcessed
	res.FinishedAt = time.Now().UTC()
	return res
}

// deferRecord leaves the record pending for a later run.
func (r *Runner) deferRecord(res RecordResult, kind Kind, err error) RecordResult {
	res.Outcome = OutcomeDeferred
	res.ErrorKind = kind
	res.ErrorMsg = err.Error()
	res.FinishedAt = time.Now().UTC()
	return res
}

// fail moves the record to the error status with the failure message.
func (r *Runner) fail(ctx context.Context, res RecordResult, kind Kind, err error) RecordResult {
	res.Outcome = OutcomeFailed
	res.ErrorKind = kind
	res.ErrorMsg = err.Error()
	res.FinishedAt = time.Now().UTC()

	if markErr := r.deps.Publisher.MarkError(ctx, res.PageID, err.Error()); markErr != nil {
		r.logger.Warn("marking record as error failed", "page_id", res.PageID, "error", markErr)
	}
	return res
}
