// Package esi is a thin client for the EVE Swagger Interface, covering the
// public endpoints the pipeline needs: character sheet, affiliation names
// and corporation history.
package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sentinel/internal/domain"
)

// NPC corporations live in a reserved low ID range.
const maxNPCCorpID = 2_000_000

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type characterSheet struct {
	Name           string     `json:"name"`
	CorporationID  int64      `json:"corporation_id"`
	AllianceID     int64      `json:"alliance_id"`
	Birthday       *time.Time `json:"birthday"`
	SecurityStatus float64    `json:"security_status"`
}

type corporation struct {
	Name       string `json:"name"`
	AllianceID int64  `json:"alliance_id"`
}

type corpHistoryEntry struct {
	CorporationID int64     `json:"corporation_id"`
	RecordID      int64     `json:"record_id"`
	StartDate     time.Time `json:"start_date"`
}

// FetchApplicant builds the base snapshot for a character: identity plus
// the full corporation history, newest first, with name resolution.
func (c *Client) FetchApplicant(ctx context.Context, characterID int64) (*domain.Applicant, error) {
	var sheet characterSheet
	if err := c.get(ctx, fmt.Sprintf("/characters/%d/", characterID), &sheet); err != nil {
		return nil, err
	}

	var history []corpHistoryEntry
	if err := c.get(ctx, fmt.Sprintf("/characters/%d/corporationhistory/", characterID), &history); err != nil {
		return nil, err
	}

	profile := &domain.Applicant{
		CharacterID:    characterID,
		CharacterName:  sheet.Name,
		CorporationID:  sheet.CorporationID,
		AllianceID:     sheet.AllianceID,
		Birthday:       sheet.Birthday,
		SecurityStatus: sheet.SecurityStatus,
		FetchedAt:      time.Now().UTC(),
		DataSources:    []string{"esi"},
	}

	names := c.corpNames(ctx, history)
	profile.CorporationName = names[sheet.CorporationID]

	// ESI returns history newest first; each record ends where the
	// previous (newer) one starts.
	records := make([]domain.CorpRecord, 0, len(history))
	for i, entry := range history {
		rec := domain.CorpRecord{
			CorporationID:   entry.CorporationID,
			CorporationName: names[entry.CorporationID],
			Start:           entry.StartDate,
			IsNPC:           entry.CorporationID < maxNPCCorpID,
		}
		if i > 0 {
			end := history[i-1].StartDate
			rec.End = &end
		}
		records = append(records, rec)
	}
	profile.CorpHistory = records

	return profile, nil
}

func (c *Client) corpNames(ctx context.Context, history []corpHistoryEntry) map[int64]string {
	names := map[int64]string{}
	for _, entry := range history {
		if _, done := names[entry.CorporationID]; done {
			continue
		}
		var corp corporation
		if err := c.get(ctx, fmt.Sprintf("/corporations/%d/", entry.CorporationID), &corp); err != nil {
			// Name resolution is cosmetic; rule matching is by ID.
			continue
		}
		names[entry.CorporationID] = corp.Name
	}
	return names
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("esi %s: %w: %v", path, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("esi %s: %w", path, domain.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == 420:
		return fmt.Errorf("esi %s: rate limited: %w", path, domain.ErrUpstreamUnavailable)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("esi %s: status %d: %w", path, resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("esi %s: decode: %w", path, err)
	}
	return nil
}
