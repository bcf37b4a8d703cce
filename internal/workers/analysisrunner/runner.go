// Package analysisrunner processes queued analysis jobs in the background:
// a dispatcher polls the job table and fans claimed jobs out to workers.
package analysisrunner

import (
	"context"
	"log/slog"
	"time"

	"sentinel/internal/ports"
)

// Processor performs the analysis work for one claimed job and returns the
// resulting report ID.
type Processor interface {
	Process(ctx context.Context, job ports.AnalysisJob) (reportID string, err error)
}

// PipelineProcessor runs jobs through the analysis pipeline.
type PipelineProcessor struct {
	Pipeline ports.Pipeline
}

func (p PipelineProcessor) Process(ctx context.Context, job ports.AnalysisJob) (string, error) {
	report, err := p.Pipeline.Analyze(ctx, job.CharacterID, job.RequestedBy)
	if err != nil {
		return "", err
	}
	return report.ID, nil
}

// Run starts worker goroutines that claim jobs and process them. It
// returns immediately; workers stop when ctx is cancelled.
func Run(ctx context.Context, repo ports.JobRepository, processor Processor, concurrency int, pollInterval time.Duration, logger *slog.Logger) {
	if concurrency < 1 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	jobsCh := make(chan ports.AnalysisJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNext(ctx)
					if err != nil {
						logger.Warn("job claim error", "error", err)
						break
					}
					if !found {
						break
					}
					jobsCh <- job
				}
			}
		}
	}()

	// workers
	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for job := range jobsCh {
				reportID, err := processor.Process(ctx, job)
				if err != nil {
					_ = repo.MarkFailed(ctx, job.ID, err.Error())
					logger.Warn("job failed", "worker", idx, "job_id", job.ID, "error", err)
					continue
				}
				if err := repo.MarkCompleted(ctx, job.ID, reportID); err != nil {
					logger.Warn("job completion update failed", "worker", idx, "job_id", job.ID, "error", err)
				}
			}
		}(i)
	}
}
