// Package pipeline orchestrates a full analysis: assemble the applicant
// snapshot from the upstream connectors, run the aggregation engine, and
// persist the result. Upstream failures degrade the snapshot instead of
// failing the request; only a missing character identity is fatal.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"sentinel/internal/domain"
	"sentinel/internal/ports"
	"sentinel/internal/services/analyzer"
)

type Service struct {
	profiles  ports.ProfileSource
	killboard ports.KillboardSource
	auth      ports.AuthSource // optional
	analyzer  *analyzer.Service
	reports   ports.ReportRepository // optional
	batch     int
	logger    *slog.Logger
}

func New(profiles ports.ProfileSource, killboard ports.KillboardSource, auth ports.AuthSource,
	svc *analyzer.Service, reports ports.ReportRepository, batchConcurrency int, logger *slog.Logger) *Service {
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		profiles:  profiles,
		killboard: killboard,
		auth:      auth,
		analyzer:  svc,
		reports:   reports,
		batch:     batchConcurrency,
		logger:    logger,
	}
}

// Analyze fetches, analyzes and persists one character. ErrNotFound means
// the character does not exist; any other upstream failure yields a report
// marked data-incomplete rather than an error.
func (s *Service) Analyze(ctx context.Context, characterID int64, requestedBy string) (domain.RiskReport, error) {
	profile, dataErrors, err := s.assemble(ctx, characterID)
	if err != nil {
		return domain.RiskReport{}, err
	}

	report, err := s.analyzer.Analyze(ctx, profile)
	if err != nil {
		return domain.RiskReport{}, err
	}
	report.RequestedBy = requestedBy
	report.MarkDataIncomplete(dataErrors...)

	if s.reports != nil {
		if err := s.reports.Save(ctx, report); err != nil {
			// The analysis itself succeeded; losing the stored copy is
			// worth a warning, not a failed request.
			s.logger.Warn("report save failed", "report_id", report.ID, "error", err)
		}
	}
	return report, nil
}

// AnalyzeBatch analyzes every character with bounded concurrency. The
// result is ordered like the input; per-item failures become failed,
// data-incomplete reports in place.
func (s *Service) AnalyzeBatch(ctx context.Context, characterIDs []int64, requestedBy string) ([]domain.RiskReport, error) {
	reports := make([]domain.RiskReport, len(characterIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batch)
	for i, id := range characterIDs {
		g.Go(func() error {
			report, err := s.Analyze(gctx, id, requestedBy)
			if err != nil {
				s.logger.Warn("batch item failed", "character_id", id, "error", err)
				report = domain.RiskReport{
					CharacterID: id,
					Status:      domain.StatusFailed,
					CreatedAt:   time.Now().UTC(),
				}
				report.MarkDataIncomplete(fmt.Sprintf("profile: %v", err))
			}
			reports[i] = report
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return reports, err
	}
	return reports, nil
}

// assemble builds the snapshot. The base profile fetch is required; the
// killboard and auth enrichments are recorded as missing sources when they
// fail.
func (s *Service) assemble(ctx context.Context, characterID int64) (*domain.Applicant, []string, error) {
	profile, err := s.profiles.FetchApplicant(ctx, characterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("character %d: %w", characterID, domain.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("character %d: %w", characterID, domain.ErrUpstreamUnavailable)
	}
	if profile.FetchedAt.IsZero() {
		profile.FetchedAt = time.Now().UTC()
	}

	var dataErrors []string
	if s.killboard != nil {
		if err := s.killboard.EnrichKillboard(ctx, profile); err != nil {
			dataErrors = append(dataErrors, fmt.Sprintf("killboard: %v", err))
		} else {
			profile.DataSources = append(profile.DataSources, "zkill")
		}
	}
	if s.auth != nil {
		if err := s.auth.EnrichAuth(ctx, profile); err != nil {
			dataErrors = append(dataErrors, fmt.Sprintf("auth: %v", err))
		} else {
			profile.DataSources = append(profile.DataSources, "auth")
		}
	}
	return profile, dataErrors, nil
}
