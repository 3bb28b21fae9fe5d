package app

import (
	"context"
	"errors"
	"time"

	"github.com/runreview/core/internal/modules/batch"
	pkgcron "github.com/runreview/core/internal/pkg/cron"
	"github.com/runreview/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, orchestrator *batch.Orchestrator, taskSvc *taskqueue.Service, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        "generate_reviews",
		Description: "Synthesize AI summaries for shoes without one",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			task, err := orchestrator.EnqueueRun(ctx, batch.RunOptions{})
			if errors.Is(err, batch.ErrAlreadyRunning) {
				cronLogger.Info("batch run already in progress, skipping", zap.String("task", task.ID))
				return nil
			}
			if err != nil {
				cronLogger.Warn("failed to enqueue batch run", zap.Error(err))
				return err
			}
			cronLogger.Info("batch run enqueued", zap.String("task", task.ID))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "cleanup_tasks",
		Description: "Drop finished batch run records older than 3 days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -3).UnixMilli()
			if err := taskSvc.DeleteCompleted(ctx, cutoff); err != nil {
				cronLogger.Warn("task cleanup failed", zap.Error(err))
				return err
			}
			cronLogger.Info("task records cleaned up")
			return nil
		},
	})
}
