package analyzers

import (
	"fmt"
	"sort"
	"time"

	"sentinel/internal/config"
	"sentinel/internal/domain"
	"sentinel/internal/flags"
)

// Social correlates login activity across characters on the same auth
// identity and flags undisclosed alts.
type Social struct {
	thresholds config.SocialThresholds
}

func NewSocial(t config.SocialThresholds) *Social {
	return &Social{thresholds: t}
}

func (s *Social) Name() string  { return "social" }
func (s *Social) Priority() int { return 50 }

func (s *Social) Evaluate(profile *domain.Applicant) ([]domain.Finding, error) {
	suspected := CorrelateAlts(profile, s.thresholds)
	declared := len(profile.DeclaredAlts)

	var out []domain.Finding

	var hiddenNames []string
	maxConf := 0.0
	for _, alt := range suspected {
		if alt.Confidence >= s.thresholds.AltConfidence && !isDeclared(profile, alt) {
			hiddenNames = append(hiddenNames, alt.CharacterName)
			if alt.Confidence > maxConf {
				maxConf = alt.Confidence
			}
		}
	}
	if len(hiddenNames) > 0 {
		out = append(out, finding(flags.HiddenAlts,
			fmt.Sprintf("Undeclared correlated characters detected (%d)", len(hiddenNames)),
			maxConf, map[string]any{
				"alt_names": hiddenNames,
				"method":    "login_correlation",
			}))
	}

	if len(suspected) >= 2 && declared == 0 {
		out = append(out, finding(flags.UndeclaredAlts,
			fmt.Sprintf("Suspected alts detected but none declared (%d suspected)", len(suspected)),
			0.6, map[string]any{
				"suspected_count": len(suspected),
				"declared_count":  declared,
			}))
	}

	if declared >= 1 && len(suspected) <= declared+1 {
		out = append(out, finding(flags.TransparentAlts,
			fmt.Sprintf("Transparent about alt characters (%d declared)", declared),
			0.7, map[string]any{
				"declared_count":  declared,
				"suspected_count": len(suspected),
			}))
	}

	return out, nil
}

func isDeclared(profile *domain.Applicant, alt domain.SuspectedAlt) bool {
	if d, ok := alt.Evidence["declared"].(bool); ok && d {
		return true
	}
	for _, name := range profile.DeclaredAlts {
		if name == alt.CharacterName {
			return true
		}
	}
	return false
}

// CorrelateAlts scores every linked character against the applicant by
// login-timestamp overlap. Sessions are bucketed to the hour; the
// confidence for a candidate is the share of its buckets that also appear
// in the applicant's login history. Only candidates at or above the medium
// confidence threshold are returned, ordered by confidence then ID so the
// result is deterministic.
func CorrelateAlts(profile *domain.Applicant, t config.SocialThresholds) []domain.SuspectedAlt {
	if len(profile.Logins) == 0 || len(profile.LinkedCharacters) == 0 {
		return nil
	}

	own := hourBuckets(profile.Logins)

	var out []domain.SuspectedAlt
	for _, linked := range profile.LinkedCharacters {
		if linked.CharacterID == profile.CharacterID || len(linked.Logins) == 0 {
			continue
		}
		theirs := hourBuckets(linked.Logins)
		shared := 0
		for b := range theirs {
			if _, ok := own[b]; ok {
				shared++
			}
		}
		confidence := float64(shared) / float64(len(theirs))
		if confidence < t.MediumAltConfidence {
			continue
		}
		out = append(out, domain.SuspectedAlt{
			CharacterID:   linked.CharacterID,
			CharacterName: linked.CharacterName,
			Confidence:    confidence,
			Method:        "login_correlation",
			Evidence: map[string]any{
				"shared_hours":   shared,
				"sample_hours":   len(theirs),
				"corporation_id": linked.CorporationID,
				"alliance_id":    linked.AllianceID,
				"declared":       linked.Declared,
			},
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].CharacterID < out[j].CharacterID
	})
	return out
}

func hourBuckets(times []time.Time) map[int64]struct{} {
	buckets := make(map[int64]struct{}, len(times))
	for _, t := range times {
		buckets[t.UTC().Truncate(time.Hour).Unix()] = struct{}{}
	}
	return buckets
}
