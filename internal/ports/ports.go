package ports

import (
	"context"

	"sentinel/internal/domain"
)

// Pipeline runs the full fetch-analyze-persist flow for a character.
type Pipeline interface {
	Analyze(ctx context.Context, characterID int64, requestedBy string) (domain.RiskReport, error)
	AnalyzeBatch(ctx context.Context, characterIDs []int64, requestedBy string) ([]domain.RiskReport, error)
}

// ProfileSource builds the base applicant snapshot: identity, affiliation
// and corporation history.
type ProfileSource interface {
	FetchApplicant(ctx context.Context, characterID int64) (*domain.Applicant, error)
}

// KillboardSource enriches a snapshot with kill/loss statistics.
type KillboardSource interface {
	EnrichKillboard(ctx context.Context, profile *domain.Applicant) error
}

// AuthSource enriches a snapshot with auth-bridge data: wallet journal,
// assets, login history and linked characters. Optional; recruitment
// analysis degrades gracefully without it.
type AuthSource interface {
	EnrichAuth(ctx context.Context, profile *domain.Applicant) error
}
