package ports

import "context"

type AnalysisJob struct {
	ID          string
	CharacterID int64
	RequestedBy string
}

// JobRepository supports enqueueing and claiming background analysis jobs.
type JobRepository interface {
	Enqueue(ctx context.Context, characterID int64, requestedBy string) (jobID string, err error)
	ClaimNext(ctx context.Context) (job AnalysisJob, found bool, err error)
	MarkCompleted(ctx context.Context, jobID string, reportID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
}
