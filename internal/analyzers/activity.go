package analyzers

import (
	"fmt"
	"slices"
	"time"

	"sentinel/internal/config"
	"sentinel/internal/domain"
	"sentinel/internal/flags"
)

// Activity evaluates killboard engagement: recent kill volume, AWOX
// history, inactivity windows, and the peak-hour timezone bucket against
// the configured reference timezone. LOW_ACTIVITY and ACTIVE_PVPER are
// mutually exclusive by construction; the aggregator never has to arbitrate
// between them.
type Activity struct {
	thresholds  config.ActivityThresholds
	referenceTZ string
}

func NewActivity(t config.ActivityThresholds, referenceTZ string) *Activity {
	return &Activity{thresholds: t, referenceTZ: referenceTZ}
}

func (a *Activity) Name() string  { return "activity" }
func (a *Activity) Priority() int { return 20 }

func (a *Activity) Evaluate(profile *domain.Applicant) ([]domain.Finding, error) {
	kb := profile.Killboard

	var out []domain.Finding

	if kb.AwoxKills > 0 {
		conf := 0.7
		if kb.AwoxKills > 3 {
			conf = 0.9
		}
		out = append(out, finding(flags.AwoxHistory,
			fmt.Sprintf("Has %d kills on corp/alliance members", kb.AwoxKills),
			conf, map[string]any{"awox_kills": kb.AwoxKills}))
	}

	// One of ACTIVE_PVPER / LOW_ACTIVITY, never both.
	switch {
	case kb.Kills90d >= a.thresholds.ActivePvperKills90d:
		out = append(out, finding(flags.ActivePvper,
			fmt.Sprintf("Active PvPer with %d kills in 90 days", kb.Kills90d),
			0.85, map[string]any{
				"kills_90d":  kb.Kills90d,
				"kills_30d":  kb.Kills30d,
				"solo_kills": kb.SoloKills,
			}))
	case kb.Kills90d < a.thresholds.LowActivityKills90d && kb.KillsTotal > 0:
		out = append(out, finding(flags.LowActivity,
			fmt.Sprintf("Only %d kills in past 90 days", kb.Kills90d),
			0.8, map[string]any{
				"kills_90d":   kb.Kills90d,
				"kills_total": kb.KillsTotal,
				"threshold":   a.thresholds.LowActivityKills90d,
			}))
	}

	if f, ok := a.inactivity(profile); ok {
		out = append(out, f)
	}

	if a.referenceTZ != "" {
		if bucket := DominantTimezone(kb.KillTimes); bucket != "" && bucket != a.referenceTZ {
			out = append(out, finding(flags.TimezoneMismatch,
				fmt.Sprintf("Peak activity in %s, alliance reference is %s", bucket, a.referenceTZ),
				0.75, map[string]any{
					"detected_tz":  bucket,
					"reference_tz": a.referenceTZ,
				}))
		}
	}

	return out, nil
}

func (a *Activity) inactivity(profile *domain.Applicant) (domain.Finding, bool) {
	kb := profile.Killboard
	last := kb.LastKill
	if last == nil || (kb.LastLoss != nil && kb.LastLoss.After(*last)) {
		last = kb.LastLoss
	}
	if last == nil {
		return domain.Finding{}, false
	}
	days := int(profile.FetchedAt.Sub(*last).Hours() / 24)
	switch {
	case days >= a.thresholds.SeverelyInactiveDays:
		return finding(flags.InactivePeriod,
			fmt.Sprintf("No PvP activity in %d days", days),
			0.85, map[string]any{
				"days_inactive": days,
				"last_activity": *last,
				"threshold":     a.thresholds.SeverelyInactiveDays,
			}), true
	case days >= a.thresholds.InactiveDays:
		return finding(flags.InactivePeriod,
			fmt.Sprintf("Limited recent activity (%d days since last PvP)", days),
			0.7, map[string]any{
				"days_inactive": days,
				"last_activity": *last,
				"threshold":     a.thresholds.InactiveDays,
			}), true
	}
	return domain.Finding{}, false
}

// Timezone buckets by peak hour in EVE time (UTC): evening in Europe, the
// US and Australia respectively.
const (
	TimezoneEU = "EU-TZ"
	TimezoneUS = "US-TZ"
	TimezoneAU = "AU-TZ"
)

// DominantTimezone buckets timestamps by hour of day and maps the average
// of the top three hours to a timezone label. Returns "" when the sample is
// empty or the peak falls between buckets.
func DominantTimezone(times []time.Time) string {
	if len(times) == 0 {
		return ""
	}
	var counts [24]int
	for _, t := range times {
		counts[t.UTC().Hour()]++
	}
	top := topHours(counts, 3)
	sum := 0
	for _, h := range top {
		sum += h
	}
	avg := float64(sum) / float64(len(top))
	switch {
	case avg >= 17 && avg <= 23:
		return TimezoneEU
	case avg >= 0 && avg <= 6:
		return TimezoneUS
	case avg >= 8 && avg <= 14:
		return TimezoneAU
	}
	return ""
}

func topHours(counts [24]int, n int) []int {
	hours := make([]int, 0, n)
	for len(hours) < n {
		best, bestCount := -1, 0
		for h, c := range counts {
			if c > bestCount && !slices.Contains(hours, h) {
				best, bestCount = h, c
			}
		}
		if best < 0 {
			break
		}
		hours = append(hours, best)
	}
	return hours
}
