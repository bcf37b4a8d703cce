package analyzers

import (
	"fmt"

	"sentinel/internal/config"
	"sentinel/internal/domain"
	"sentinel/internal/flags"
)

// CorpHistory inspects the corporation membership timeline: known hostile
// corps, rapid corp hopping, short current tenure, NPC corp stints, and the
// positive established/clean signals.
type CorpHistory struct {
	thresholds       config.CorpHistoryThresholds
	hostileCorps     map[int64]struct{}
	hostileAlliances map[int64]struct{}
}

func NewCorpHistory(t config.CorpHistoryThresholds, corps, alliances []int64) *CorpHistory {
	c := &CorpHistory{
		thresholds:       t,
		hostileCorps:     make(map[int64]struct{}, len(corps)),
		hostileAlliances: make(map[int64]struct{}, len(alliances)),
	}
	for _, id := range corps {
		c.hostileCorps[id] = struct{}{}
	}
	for _, id := range alliances {
		c.hostileAlliances[id] = struct{}{}
	}
	return c
}

func (c *CorpHistory) Name() string  { return "corp_history" }
func (c *CorpHistory) Priority() int { return 10 }

func (c *CorpHistory) Evaluate(profile *domain.Applicant) ([]domain.Finding, error) {
	history := profile.CorpHistory
	if len(history) == 0 {
		return nil, nil
	}
	now := profile.FetchedAt

	var out []domain.Finding
	hostileCount := 0
	for _, rec := range history {
		if !c.isHostile(rec) {
			continue
		}
		hostileCount++
		ev := map[string]any{
			"corp_id":       rec.CorporationID,
			"corp_name":     rec.CorporationName,
			"start":         rec.Start,
			"duration_days": rec.TenureDays(now),
		}
		if rec.End != nil {
			ev["end"] = *rec.End
		}
		out = append(out, finding(flags.KnownSpyCorp,
			fmt.Sprintf("Was member of hostile corp %q", rec.CorporationName),
			0.95, ev))
	}

	if _, hostile := c.hostileAlliances[profile.AllianceID]; hostile && profile.AllianceID != 0 {
		out = append(out, finding(flags.KnownSpyCorp,
			fmt.Sprintf("Current alliance %q is on the hostile list", profile.AllianceName),
			0.95, map[string]any{
				"alliance_id":   profile.AllianceID,
				"alliance_name": profile.AllianceName,
			}))
		hostileCount++
	}

	windowStart := now.AddDate(0, 0, -c.thresholds.RapidHopWindowDays)
	recent := 0
	for _, rec := range history {
		if !rec.Start.Before(windowStart) {
			recent++
		}
	}
	if recent >= c.thresholds.RapidHopCount {
		out = append(out, finding(flags.RapidCorpHop,
			fmt.Sprintf("%d corporations joined in %d days", recent, c.thresholds.RapidHopWindowDays),
			0.85, map[string]any{
				"corp_count":  recent,
				"window_days": c.thresholds.RapidHopWindowDays,
			}))
	}

	current := history[0]
	if tenure := current.TenureDays(now); current.End == nil && tenure < c.thresholds.ShortTenureDays {
		out = append(out, finding(flags.ShortTenure,
			fmt.Sprintf("Only %d days in current corp", tenure),
			0.75, map[string]any{
				"current_corp":  current.CorporationName,
				"duration_days": tenure,
				"threshold":     c.thresholds.ShortTenureDays,
			}))
	}

	longNPCStints := 0
	for _, rec := range history {
		if rec.IsNPC && rec.TenureDays(now) > c.thresholds.ShortTenureDays {
			longNPCStints++
		}
	}
	if longNPCStints >= 2 {
		out = append(out, finding(flags.NPCCorpPattern,
			fmt.Sprintf("Multiple extended NPC corp stints (%d)", longNPCStints),
			0.6, map[string]any{"npc_stints": longNPCStints}))
	}

	totalPlayerDays, longest := 0, 0
	for _, rec := range history {
		d := rec.TenureDays(now)
		if !rec.IsNPC {
			totalPlayerDays += d
		}
		if d > longest {
			longest = d
		}
	}
	if totalPlayerDays >= c.thresholds.EstablishedTotalDays && longest >= c.thresholds.EstablishedTenureDays {
		out = append(out, finding(flags.Established,
			"Established character with stable corp history",
			0.8, map[string]any{
				"total_player_corp_days": totalPlayerDays,
				"longest_tenure_days":    longest,
				"total_corps":            len(history),
			}))
	}

	if hostileCount == 0 && recent < 3 {
		out = append(out, finding(flags.CleanHistory,
			"No hostile affiliations, stable corp history",
			0.7, map[string]any{"recent_corp_count": recent}))
	}

	return out, nil
}

func (c *CorpHistory) isHostile(rec domain.CorpRecord) bool {
	if rec.IsHostile {
		return true
	}
	_, ok := c.hostileCorps[rec.CorporationID]
	return ok
}
