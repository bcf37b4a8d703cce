// Package zkill fetches kill and loss history from zKillboard and distills
// it into the killboard statistics the analyzers consume.
package zkill

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"sentinel/internal/domain"
)

const (
	killPageLimit = 200
	maxKillPages  = 3
	maxLossPages  = 1
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

type killmail struct {
	KillmailID   int64     `json:"killmail_id"`
	KillmailTime time.Time `json:"killmail_time"`
	Victim       struct {
		CharacterID   int64 `json:"character_id"`
		CorporationID int64 `json:"corporation_id"`
		AllianceID    int64 `json:"alliance_id"`
	} `json:"victim"`
	Attackers []struct {
		CharacterID int64 `json:"character_id"`
		ShipTypeID  int64 `json:"ship_type_id"`
	} `json:"attackers"`
	ZKB struct {
		TotalValue float64 `json:"totalValue"`
	} `json:"zkb"`
}

// EnrichKillboard fills profile.Killboard from zKillboard. All trailing
// windows use profile.FetchedAt as the reference time.
func (c *Client) EnrichKillboard(ctx context.Context, profile *domain.Applicant) error {
	kills, err := c.pages(ctx, fmt.Sprintf("/kills/characterID/%d", profile.CharacterID), maxKillPages)
	if err != nil {
		return err
	}
	losses, err := c.pages(ctx, fmt.Sprintf("/losses/characterID/%d", profile.CharacterID), maxLossPages)
	if err != nil {
		return err
	}

	profile.Killboard = buildStats(profile, kills, losses)
	return nil
}

func buildStats(profile *domain.Applicant, kills, losses []killmail) domain.KillboardStats {
	now := profile.FetchedAt
	cut30 := now.AddDate(0, 0, -30)
	cut90 := now.AddDate(0, 0, -90)

	stats := domain.KillboardStats{KillsTotal: len(kills), DeathsTotal: len(losses)}
	ships := map[string]int{}
	var fleetSizes int
	var lastKill, lastLoss time.Time

	for _, kill := range kills {
		t := kill.KillmailTime
		stats.KillTimes = append(stats.KillTimes, t)
		if t.After(lastKill) {
			lastKill = t
		}
		if t.After(cut30) {
			stats.Kills30d++
		}
		if t.After(cut90) {
			stats.Kills90d++
		}

		if awox(profile, kill) {
			stats.AwoxKills++
		}
		if len(kill.Attackers) == 1 {
			stats.SoloKills++
		}
		fleetSizes += len(kill.Attackers)
		for _, attacker := range kill.Attackers {
			if attacker.CharacterID == profile.CharacterID && attacker.ShipTypeID != 0 {
				ships[strconv.FormatInt(attacker.ShipTypeID, 10)]++
			}
		}
		stats.ISKDestroyed += kill.ZKB.TotalValue
	}

	for _, loss := range losses {
		t := loss.KillmailTime
		if t.After(lastLoss) {
			lastLoss = t
		}
		if t.After(cut30) {
			stats.Deaths30d++
		}
		stats.ISKLost += loss.ZKB.TotalValue
	}

	if len(kills) > 0 {
		stats.AvgFleetSize = float64(fleetSizes) / float64(len(kills))
		stats.TopShips = topKeys(ships, 10)
	}
	if !lastKill.IsZero() {
		stats.LastKill = &lastKill
	}
	if !lastLoss.IsZero() {
		stats.LastLoss = &lastLoss
	}
	return stats
}

// awox reports whether the victim was in the applicant's own corp or
// alliance at kill time.
func awox(profile *domain.Applicant, kill killmail) bool {
	if profile.CorporationID != 0 && kill.Victim.CorporationID == profile.CorporationID {
		return true
	}
	return profile.AllianceID != 0 && kill.Victim.AllianceID == profile.AllianceID
}

func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func (c *Client) pages(ctx context.Context, path string, maxPages int) ([]killmail, error) {
	var all []killmail
	for page := 1; page <= maxPages; page++ {
		var batch []killmail
		if err := c.get(ctx, fmt.Sprintf("%s/page/%d/", path, page), &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < killPageLimit {
			break
		}
	}
	return all, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("zkill %s: %w: %v", path, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zkill %s: status %d: %w", path, resp.StatusCode, domain.ErrUpstreamUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("zkill %s: decode: %w", path, err)
	}
	return nil
}
