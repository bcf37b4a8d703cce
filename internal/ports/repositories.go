package ports

import (
	"context"

	"sentinel/internal/domain"
)

// ReportRepository persists finished reports and serves lookups.
type ReportRepository interface {
	Save(ctx context.Context, report domain.RiskReport) error
	GetByID(ctx context.Context, id string) (report domain.RiskReport, found bool, err error)
	LatestByCharacter(ctx context.Context, characterID int64) (report domain.RiskReport, found bool, err error)
	ListByCharacter(ctx context.Context, characterID int64, limit int) ([]domain.RiskReport, error)
}
