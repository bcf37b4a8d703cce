package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"sentinel/internal/domain"
)

// Service wraps the engine's deterministic assessment into full reports
// with identity and timing metadata, and provides order-preserving batch
// analysis with a bounded concurrency limit.
type Service struct {
	engine     *Engine
	batchLimit int
	logger     *slog.Logger
}

func NewService(engine *Engine, batchLimit int, logger *slog.Logger) *Service {
	if batchLimit < 1 {
		batchLimit = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{engine: engine, batchLimit: batchLimit, logger: logger}
}

// Analyze produces a complete report for one snapshot. The only failure
// modes are a missing profile and caller cancellation; rule evaluation
// itself cannot fail the request.
func (s *Service) Analyze(ctx context.Context, profile *domain.Applicant) (domain.RiskReport, error) {
	if profile == nil {
		return domain.RiskReport{}, errors.New("analyze: nil profile")
	}
	if err := ctx.Err(); err != nil {
		return domain.RiskReport{}, err
	}

	start := time.Now()
	assessment := s.engine.Evaluate(ctx, profile)

	report := domain.RiskReport{
		ID:            ulid.Make().String(),
		CharacterID:   profile.CharacterID,
		CharacterName: profile.CharacterName,
		Status:        domain.StatusCompleted,
		Assessment:    assessment,
		CreatedAt:     start.UTC(),
		CompletedAt:   time.Now().UTC(),
	}
	report.ProcessingTimeMS = report.CompletedAt.Sub(report.CreatedAt).Milliseconds()
	report.CountFlags()

	s.logger.Info("analysis completed",
		"character_id", report.CharacterID,
		"tier", report.Tier,
		"confidence", report.Confidence,
		"findings", len(report.Findings),
		"completeness", report.Completeness)
	return report, nil
}

// AnalyzeBatch analyzes every profile with at most batchLimit running
// concurrently. The result is ordered like the input; a nil profile yields
// a failed placeholder report in place instead of aborting the batch.
func (s *Service) AnalyzeBatch(ctx context.Context, profiles []*domain.Applicant) []domain.RiskReport {
	reports := make([]domain.RiskReport, len(profiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit)
	for i, profile := range profiles {
		g.Go(func() error {
			if profile == nil {
				reports[i] = domain.RiskReport{
					ID:        ulid.Make().String(),
					Status:    domain.StatusFailed,
					CreatedAt: time.Now().UTC(),
				}
				reports[i].Completeness = domain.CompletenessPartial
				return nil
			}
			report, err := s.Analyze(ctx, profile)
			if err != nil {
				report = domain.RiskReport{
					ID:          ulid.Make().String(),
					CharacterID: profile.CharacterID,
					Status:      domain.StatusFailed,
					CreatedAt:   time.Now().UTC(),
					DataErrors:  []string{err.Error()},
				}
				report.Completeness = domain.CompletenessPartial
			}
			reports[i] = report
			return nil
		})
	}
	_ = g.Wait()
	return reports
}
