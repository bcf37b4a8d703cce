package analysisrunner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/domain"
	"sentinel/internal/ports"
)

type fakeQueue struct {
	mu        sync.Mutex
	pending   []ports.AnalysisJob
	completed map[string]string // job ID -> report ID
	failed    map[string]string // job ID -> reason
}

func newFakeQueue(jobs ...ports.AnalysisJob) *fakeQueue {
	return &fakeQueue{
		pending:   jobs,
		completed: map[string]string{},
		failed:    map[string]string{},
	}
}

func (q *fakeQueue) Enqueue(context.Context, int64, string) (string, error) {
	return "", errors.New("not used")
}

func (q *fakeQueue) ClaimNext(context.Context) (ports.AnalysisJob, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return ports.AnalysisJob{}, false, nil
	}
	job := q.pending[0]
	q.pending = q.pending[1:]
	return job, true, nil
}

func (q *fakeQueue) MarkCompleted(_ context.Context, jobID, reportID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completed[jobID] = reportID
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, jobID, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed[jobID] = reason
	return nil
}

func (q *fakeQueue) settled() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.completed) + len(q.failed)
}

type fakeProcessor struct {
	failCharacter int64
}

func (p fakeProcessor) Process(_ context.Context, job ports.AnalysisJob) (string, error) {
	if job.CharacterID == p.failCharacter {
		return "", errors.New("character vanished")
	}
	return "report-" + job.ID, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRunProcessesQueuedJobs(t *testing.T) {
	queue := newFakeQueue(
		ports.AnalysisJob{ID: "j1", CharacterID: 1001},
		ports.AnalysisJob{ID: "j2", CharacterID: 666},
		ports.AnalysisJob{ID: "j3", CharacterID: 1002},
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	Run(ctx, queue, fakeProcessor{failCharacter: 666}, 2, 5*time.Millisecond, slog.New(slog.DiscardHandler))

	waitFor(t, func() bool { return queue.settled() == 3 })

	queue.mu.Lock()
	defer queue.mu.Unlock()
	assert.Equal(t, "report-j1", queue.completed["j1"])
	assert.Equal(t, "report-j3", queue.completed["j3"])
	assert.Contains(t, queue.failed["j2"], "character vanished")
}

func TestRunZeroConcurrencyIsNoop(t *testing.T) {
	queue := newFakeQueue(ports.AnalysisJob{ID: "j1", CharacterID: 1001})
	Run(context.Background(), queue, fakeProcessor{}, 0, time.Millisecond, slog.New(slog.DiscardHandler))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, queue.settled())
}

func TestPipelineProcessorReturnsReportID(t *testing.T) {
	p := PipelineProcessor{Pipeline: stubPipeline{}}
	reportID, err := p.Process(context.Background(), ports.AnalysisJob{ID: "j1", CharacterID: 1001})
	require.NoError(t, err)
	assert.Equal(t, "r-1001", reportID)

	_, err = p.Process(context.Background(), ports.AnalysisJob{ID: "j2", CharacterID: 404})
	require.Error(t, err)
}

type stubPipeline struct{}

func (stubPipeline) Analyze(_ context.Context, characterID int64, _ string) (domain.RiskReport, error) {
	if characterID == 404 {
		return domain.RiskReport{}, domain.ErrNotFound
	}
	return domain.RiskReport{ID: "r-1001", CharacterID: characterID}, nil
}

func (stubPipeline) AnalyzeBatch(context.Context, []int64, string) ([]domain.RiskReport, error) {
	return nil, nil
}
