package reports

import (
	"context"

	"sentinel/internal/domain"
	"sentinel/internal/ports"
)

// Service serves stored reports.
type Service struct {
	repo ports.ReportRepository
}

func New(repo ports.ReportRepository) *Service { return &Service{repo: repo} }

func (s *Service) Get(ctx context.Context, id string) (domain.RiskReport, error) {
	report, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.RiskReport{}, err
	}
	if !found {
		return domain.RiskReport{}, domain.ErrNotFound
	}
	return report, nil
}

func (s *Service) LatestForCharacter(ctx context.Context, characterID int64) (domain.RiskReport, error) {
	report, found, err := s.repo.LatestByCharacter(ctx, characterID)
	if err != nil {
		return domain.RiskReport{}, err
	}
	if !found {
		return domain.RiskReport{}, domain.ErrNotFound
	}
	return report, nil
}

func (s *Service) ListForCharacter(ctx context.Context, characterID int64, limit int) ([]domain.RiskReport, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByCharacter(ctx, characterID, limit)
}
