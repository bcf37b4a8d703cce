// Package analyzer runs the signal extractors over an applicant snapshot
// and aggregates their findings into a risk assessment.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"sentinel/internal/analyzers"
	"sentinel/internal/config"
	"sentinel/internal/domain"
	"sentinel/internal/flags"
)

// Engine is the aggregation core. It is stateless per call and safe for
// concurrent use; Evaluate is pure given a fixed snapshot.
type Engine struct {
	extractors []analyzers.Extractor
	social     config.SocialThresholds
	scoring    config.ScoringThresholds
	logger     *slog.Logger
}

// Option customizes an Engine at construction time.
type Option func(*Engine)

// WithExtractors replaces the default extractor set.
func WithExtractors(extractors ...analyzers.Extractor) Option {
	return func(e *Engine) { e.extractors = extractors }
}

func NewEngine(cfg config.Config, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		extractors: analyzers.All(cfg),
		social:     cfg.Thresholds.Social,
		scoring:    cfg.Thresholds.Scoring,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type extractorResult struct {
	name     string
	priority int
	findings []domain.Finding
	err      error
}

// Evaluate fans the extractors out concurrently, waits for all of them,
// and merges their findings. A failing or panicking extractor degrades the
// assessment (partial completeness, reduced confidence) but never aborts
// it.
func (e *Engine) Evaluate(ctx context.Context, profile *domain.Applicant) domain.Assessment {
	results := make([]extractorResult, len(e.extractors))

	g, _ := errgroup.WithContext(ctx)
	for i, ex := range e.extractors {
		g.Go(func() error {
			results[i] = e.runExtractor(ex, profile)
			return nil
		})
	}
	_ = g.Wait()

	priorities := map[string]int{}
	var merged []domain.Finding
	var ran, failed []string
	for _, res := range results {
		priorities[res.name] = res.priority
		if res.err != nil {
			failed = append(failed, res.name)
			e.logger.Warn("extractor failed", "extractor", res.name, "error", res.err)
			continue
		}
		ran = append(ran, res.name)
		for _, f := range res.findings {
			f.Source = res.name
			merged = append(merged, f)
		}
	}

	findings := e.stamp(merged)
	findings = dedupe(findings)
	sortFindings(findings, priorities)

	tier := e.overallTier(findings)
	confidence := e.overallConfidence(findings, len(ran), len(e.extractors))

	completeness := domain.CompletenessFull
	if len(failed) > 0 {
		completeness = domain.CompletenessPartial
	}

	suspected := analyzers.CorrelateAlts(profile, e.social)

	return domain.Assessment{
		Tier:            tier,
		Confidence:      confidence,
		Findings:        findings,
		Recommendations: recommendations(tier, findings, suspected),
		Playstyle:       ClassifyPlaystyle(profile.Killboard),
		SuspectedAlts:   suspected,
		ExtractorsRun:   ran,
		FailedSources:   failed,
		Completeness:    completeness,
	}
}

func (e *Engine) runExtractor(ex analyzers.Extractor, profile *domain.Applicant) (res extractorResult) {
	res.name = ex.Name()
	res.priority = ex.Priority()
	defer func() {
		if r := recover(); r != nil {
			res.findings = nil
			res.err = fmt.Errorf("extractor %s panicked: %v", res.name, r)
		}
	}()
	res.findings, res.err = ex.Evaluate(profile)
	return res
}

// stamp resolves each finding's code against the registry. A finding with
// an unregistered code is dropped and logged; the rest of the pipeline
// continues.
func (e *Engine) stamp(findings []domain.Finding) []domain.Finding {
	out := findings[:0]
	for _, f := range findings {
		def, err := flags.Lookup(f.Code)
		if err != nil {
			e.logger.Error("dropping finding with unregistered flag code",
				"code", f.Code, "source", f.Source)
			continue
		}
		f.Severity = def.Severity
		f.Category = def.Category
		out = append(out, f)
	}
	return out
}

// dedupe collapses findings sharing a flag code into the highest-confidence
// instance, merging evidence keys the survivor lacks.
func dedupe(findings []domain.Finding) []domain.Finding {
	byCode := map[string]int{}
	var out []domain.Finding
	for _, f := range findings {
		i, seen := byCode[f.Code]
		if !seen {
			byCode[f.Code] = len(out)
			out = append(out, f)
			continue
		}
		keep, drop := out[i], f
		if drop.Confidence > keep.Confidence {
			keep, drop = drop, keep
		}
		keep.Evidence = mergeEvidence(keep.Evidence, drop.Evidence)
		out[i] = keep
	}
	return out
}

func mergeEvidence(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}

// sortFindings orders RED before YELLOW before GREEN, ties broken by the
// producing extractor's priority. The sort is stable so repeated runs
// produce identical reports.
func sortFindings(findings []domain.Finding, priorities map[string]int) {
	sort.SliceStable(findings, func(i, j int) bool {
		if a, b := findings[i].Severity.Rank(), findings[j].Severity.Rank(); a != b {
			return a < b
		}
		return priorities[findings[i].Source] < priorities[findings[j].Source]
	})
}

// overallTier applies the precedence law: any sufficiently confident RED
// finding forces RED regardless of anything else, then YELLOW, else GREEN.
func (e *Engine) overallTier(findings []domain.Finding) domain.Severity {
	for _, f := range findings {
		if f.Severity == domain.SeverityRed && f.Confidence >= e.scoring.RedActivation {
			return domain.SeverityRed
		}
	}
	for _, f := range findings {
		if f.Severity == domain.SeverityYellow && f.Confidence >= e.scoring.YellowActivation {
			return domain.SeverityYellow
		}
	}
	return domain.SeverityGreen
}

// overallConfidence is the severity-weighted mean of finding confidences,
// scaled by the fraction of extractors that actually contributed so a
// degraded run never reports inflated certainty. A zero-finding run gets
// the fixed baseline: insufficient signal, not proven clean.
func (e *Engine) overallConfidence(findings []domain.Finding, ran, total int) float64 {
	fraction := 1.0
	if total > 0 {
		fraction = float64(ran) / float64(total)
	}
	if len(findings) == 0 {
		return clamp01(e.scoring.BaselineConfidence * fraction)
	}

	var weighted, weights float64
	for _, f := range findings {
		w := severityWeight(f.Severity)
		weighted += w * f.Confidence
		weights += w
	}
	if weights == 0 {
		return clamp01(e.scoring.BaselineConfidence * fraction)
	}
	return clamp01(weighted / weights * fraction)
}

func severityWeight(s domain.Severity) float64 {
	switch s {
	case domain.SeverityRed:
		return 3
	case domain.SeverityYellow:
		return 2
	case domain.SeverityGreen:
		return 1
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
