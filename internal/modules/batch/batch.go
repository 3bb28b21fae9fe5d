package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	appcfg "github.com/runreview/core/internal/config"
	"github.com/runreview/core/internal/models"
	"github.com/runreview/core/internal/modules/curation"
	"github.com/runreview/core/internal/modules/synthesis"
	"github.com/runreview/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// TaskTypeGenerateReviews is the task queue type for batch runs.
	TaskTypeGenerateReviews = "generate_reviews"

	// batchRefreshResults bounds the per-item source refresh during a batch
	// run. Batch runs favor throughput over coverage.
	batchRefreshResults = 5
)

// runDedupKey keeps at most one batch run per review type pending or running
// at a time, across schedulers sharing the same Redis.
func runDedupKey(reviewType models.ReviewType) string {
	return "synthesis:" + string(reviewType)
}

// RunOptions tunes one batch run. Zero values fall back to config defaults.
type RunOptions struct {
	MaxItems  int `json:"max_items"`
	SourceCap int `json:"source_cap"`
}

// Detail reports the outcome for one shoe in a batch run.
type Detail struct {
	Shoe   string `json:"shoe"`
	Status string `json:"status"` // success, skipped or failed
	Error  string `json:"error,omitempty"`
}

// Result summarizes a batch run.
type Result struct {
	Processed int      `json:"processed"`
	Succeeded int      `json:"success"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Details   []Detail `json:"details"`
}

// ErrAlreadyRunning is returned when a run is enqueued while another one is
// still pending or running.
var ErrAlreadyRunning = errors.New("a batch run is already in progress")

// Synthesizer produces a structured review from curated source material.
type Synthesizer interface {
	Synthesize(ctx context.Context, brand, model string, sources []synthesis.SourceInput) (*synthesis.Result, error)
}

// Orchestrator walks shoes that have no AI summary yet and generates one per
// shoe, with provider-friendly pacing between items.
type Orchestrator struct {
	db       *gorm.DB
	curation *curation.Service
	engine   Synthesizer
	tasks    *taskqueue.Service
	cfg      appcfg.CurationConfig
	log      *zap.Logger
}

func NewOrchestrator(db *gorm.DB, cur *curation.Service, engine Synthesizer, tasks *taskqueue.Service, cfg appcfg.CurationConfig, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		db:       db,
		curation: cur,
		engine:   engine,
		tasks:    tasks,
		cfg:      cfg,
		log:      log.Named("batch"),
	}
}

// EnqueueRun registers a batch run in the task queue and starts it in the
// background. Returns ErrAlreadyRunning when a previous run has not finished.
func (o *Orchestrator) EnqueueRun(ctx context.Context, opts RunOptions) (*taskqueue.Task, error) {
	marker := uuid.New().String()
	task, err := o.tasks.Enqueue(ctx, TaskTypeGenerateReviews, map[string]interface{}{
		"request_id":   marker,
		"requested_at": time.Now().UTC(),
		"max_items":    opts.MaxItems,
		"source_cap":   opts.SourceCap,
	}, runDedupKey(models.ReviewAISummary), "")
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task queue returned no task")
	}

	// A dedup hit hands back the earlier task instead of ours.
	var payload struct {
		RequestID string `json:"request_id"`
	}
	_ = json.Unmarshal(task.Payload, &payload)
	if payload.RequestID != marker {
		return task, ErrAlreadyRunning
	}

	go o.runTask(task.ID, opts)
	return task, nil
}

// runTask executes one batch run detached from the request context.
func (o *Orchestrator) runTask(taskID string, opts RunOptions) {
	ctx, cancel := context.WithTimeout(context.Background(), o.runDeadline())
	defer cancel()

	if err := o.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, ""); err != nil {
		o.log.Error("failed to mark task running", zap.String("task", taskID), zap.Error(err))
	}

	result, err := o.Run(ctx, opts)
	if err != nil {
		o.log.Error("batch run failed", zap.String("task", taskID), zap.Error(err))
		_ = o.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, result, err.Error())
		return
	}
	_ = o.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, result, "")
}

// Run processes up to MaxBatchItems shoes that lack an AI summary. Failures
// are isolated per shoe; the run keeps going and reports them in the result.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	shoes, err := o.pendingShoes(o.maxItems(opts.MaxItems))
	if err != nil {
		return nil, fmt.Errorf("select pending shoes: %w", err)
	}

	result := &Result{Details: make([]Detail, 0, len(shoes))}
	o.log.Info("batch run starting", zap.Int("pending", len(shoes)))

	for i, shoe := range shoes {
		if err := ctx.Err(); err != nil {
			o.log.Warn("run deadline reached", zap.Int("processed", result.Processed))
			return result, err
		}

		label := shoe.Label()
		detail := Detail{Shoe: label, Status: "success"}
		err := o.processShoe(ctx, &shoe, opts.SourceCap)

		result.Processed++
		switch {
		case err == nil:
			result.Succeeded++
		case errors.Is(err, curation.ErrInsufficientSources):
			result.Skipped++
			detail.Status = "skipped"
			detail.Error = err.Error()
		default:
			result.Failed++
			detail.Status = "failed"
			detail.Error = err.Error()
		}
		result.Details = append(result.Details, detail)

		if err != nil {
			o.log.Warn("shoe not summarized", zap.String("shoe", label), zap.Error(err))
		} else {
			o.log.Info("shoe summarized", zap.String("shoe", label))
		}

		if i < len(shoes)-1 {
			delay := o.itemDelay()
			if err != nil {
				delay = o.failureDelay()
			}
			if !sleepCtx(ctx, delay) {
				return result, ctx.Err()
			}
		}
	}

	o.log.Info("batch run finished",
		zap.Int("processed", result.Processed),
		zap.Int("success", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

var (
	errAlreadySynthesized = errors.New("already synthesized")

	// errNoSourcesFound marks a shoe where every provider came back empty
	// and no stored sources exist either.
	errNoSourcesFound = errors.New("no sources found")
)

// pendingShoes returns the newest shoes without an AI summary review.
func (o *Orchestrator) pendingShoes(limit int) ([]models.ShoeModel, error) {
	reviewed := o.db.Model(&models.ReviewModel{}).
		Select("shoe_id").
		Where("type = ?", models.ReviewAISummary)

	var shoes []models.ShoeModel
	err := o.db.
		Where("id NOT IN (?)", reviewed).
		Order("created_at DESC").
		Limit(limit).
		Find(&shoes).Error
	return shoes, err
}

// processShoe refreshes, selects and synthesizes sources for one shoe and
// persists the resulting review with its provenance rows.
func (o *Orchestrator) processShoe(ctx context.Context, shoe *models.ShoeModel, sourceCap int) error {
	// Video lookups are slow and rarely change between runs; batch runs
	// refresh the cheap providers only.
	summary, err := o.curation.RefreshSources(ctx, shoe.ID, curation.CollectOptions{
		MaxResults: batchRefreshResults,
		SkipVideos: true,
	})
	collectionEmpty := errors.Is(err, curation.ErrNoSources)
	if err != nil && !collectionEmpty {
		o.log.Warn("source refresh failed, using stored sources",
			zap.String("shoe", shoe.Label()), zap.Error(err))
	}
	for _, w := range summary.Warnings {
		o.log.Warn("provider warning", zap.String("shoe", shoe.Label()), zap.String("warning", w))
	}

	sources, err := o.curation.GetSources(shoe.ID, "")
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	// No candidates from any provider and nothing stored from earlier runs
	// is a collection failure, not a below-threshold skip.
	if len(sources) == 0 && collectionEmpty {
		return errNoSourcesFound
	}
	if len(sources) < o.minSources() {
		return fmt.Errorf("%w: have %d, need %d", curation.ErrInsufficientSources, len(sources), o.minSources())
	}
	if limit := o.synthesisWindow(sourceCap); len(sources) > limit {
		sources = sources[:limit]
	}

	inputs := make([]synthesis.SourceInput, 0, len(sources))
	for _, src := range sources {
		inputs = append(inputs, synthesis.SourceInput{
			Type:        src.Type,
			Title:       src.Title,
			Content:     src.Excerpt,
			Author:      src.Author,
			URL:         src.URL,
			Reliability: src.Reliability,
		})
	}

	synthesized, err := o.engine.Synthesize(ctx, shoe.Brand, shoe.ModelName, inputs)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	return o.persistReview(shoe, sources, synthesized)
}

// persistReview writes the review and its source provenance in one
// transaction. The unique index on (shoe_id, type) rejects duplicates if a
// concurrent run slipped past the queue guard.
func (o *Orchestrator) persistReview(shoe *models.ShoeModel, sources []models.CuratedSourceModel, res *synthesis.Result) error {
	review := models.ReviewModel{
		ShoeID:         shoe.ID,
		Type:           models.ReviewAISummary,
		Title:          res.Title,
		Content:        res.Summary,
		OverallRating:  res.OverallRating,
		Pros:           models.StringSlice(res.Pros),
		Cons:           models.StringSlice(res.Cons),
		RecommendedFor: res.RecommendedFor,
		IsRunningShoe:  res.RunningShoe(),
		SourceCount:    len(sources),
		IsPublished:    true,
	}

	err := o.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		for _, src := range sources {
			provenance := models.AISourceModel{
				ReviewID:    review.ID,
				SourceType:  src.Type,
				SourceURL:   src.URL,
				SourceTitle: src.Title,
				Reliability: src.Reliability,
				CollectedAt: src.CreatedAt,
			}
			if src.Author != "" {
				provenance.SourceAuthor = src.Author
			}
			if err := tx.Create(&provenance).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && isDuplicateKey(err) {
		// A concurrent run got there first.
		return errAlreadySynthesized
	}
	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// The sqlite driver used in tests reports conflicts as plain strings.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ErrReviewNotFound is returned by Regenerate for unknown review ids.
var ErrReviewNotFound = errors.New("review not found")

// Regenerate re-synthesizes an existing AI review in place from its stored
// provenance sources. It is the only path that updates a synthesized review.
func (o *Orchestrator) Regenerate(ctx context.Context, reviewID string) (*models.ReviewModel, error) {
	var review models.ReviewModel
	err := o.db.Preload("Sources").First(&review, "id = ?", reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}

	sources, err := o.provenanceSources(&review)
	if err != nil {
		return nil, err
	}
	if len(sources) < o.minSources() {
		return nil, fmt.Errorf("%w: have %d, need %d", curation.ErrInsufficientSources, len(sources), o.minSources())
	}
	if len(sources) > synthesis.MaxSources {
		sources = sources[:synthesis.MaxSources]
	}

	shoe, err := o.curation.GetShoe(review.ShoeID)
	if err != nil {
		return nil, err
	}

	inputs := make([]synthesis.SourceInput, 0, len(sources))
	for _, src := range sources {
		inputs = append(inputs, synthesis.SourceInput{
			Type:        src.Type,
			Title:       src.Title,
			Content:     src.Excerpt,
			Author:      src.Author,
			URL:         src.URL,
			Reliability: src.Reliability,
		})
	}

	synthesized, err := o.engine.Synthesize(ctx, shoe.Brand, shoe.ModelName, inputs)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	updates := map[string]interface{}{
		"title":           synthesized.Title,
		"content":         synthesized.Summary,
		"overall_rating":  synthesized.OverallRating,
		"pros":            models.StringSlice(synthesized.Pros),
		"cons":            models.StringSlice(synthesized.Cons),
		"recommended_for": synthesized.RecommendedFor,
		"is_running_shoe": synthesized.RunningShoe(),
		"source_count":    len(sources),
	}
	if err := o.db.Model(&review).Updates(updates).Error; err != nil {
		return nil, err
	}

	err = o.db.Preload("Sources").First(&review, "id = ?", review.ID).Error
	return &review, err
}

// provenanceSources maps a review's provenance rows back to the curated
// sources they were synthesized from. Sources removed since then are skipped.
func (o *Orchestrator) provenanceSources(review *models.ReviewModel) ([]models.CuratedSourceModel, error) {
	if len(review.Sources) == 0 {
		return nil, nil
	}
	urls := make([]string, 0, len(review.Sources))
	for _, src := range review.Sources {
		urls = append(urls, src.SourceURL)
	}

	var sources []models.CuratedSourceModel
	err := o.db.
		Where("shoe_id = ? AND url IN ?", review.ShoeID, urls).
		Order("reliability DESC").
		Find(&sources).Error
	return sources, err
}

func (o *Orchestrator) maxItems(override int) int {
	if override > 0 {
		return override
	}
	if o.cfg.MaxBatchItems > 0 {
		return o.cfg.MaxBatchItems
	}
	return 10
}

// synthesisWindow bounds how many sources are handed to the engine and
// persisted as provenance. It never exceeds the engine's prompt window, so
// every provenance row names a source the model actually saw.
func (o *Orchestrator) synthesisWindow(override int) int {
	limit := o.cfg.MaxSourcesPerItem
	if override > 0 {
		limit = override
	}
	if limit < 1 || limit > synthesis.MaxSources {
		limit = synthesis.MaxSources
	}
	return limit
}

func (o *Orchestrator) minSources() int {
	if o.cfg.MinSources > 0 {
		return o.cfg.MinSources
	}
	return 1
}

func (o *Orchestrator) itemDelay() time.Duration {
	if o.cfg.ItemDelay > 0 {
		return o.cfg.ItemDelay
	}
	return 5 * time.Second
}

func (o *Orchestrator) failureDelay() time.Duration {
	if o.cfg.FailureDelay > 0 {
		return o.cfg.FailureDelay
	}
	return 2 * time.Second
}

func (o *Orchestrator) runDeadline() time.Duration {
	if o.cfg.RunDeadline > 0 {
		return o.cfg.RunDeadline
	}
	return 5 * time.Minute
}

// sleepCtx waits for d or until ctx is done. Returns false when interrupted.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
