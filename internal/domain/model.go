package domain

import "time"

// Applicant is the immutable data bundle one analysis run operates on.
// Extractors treat it as read-only; every trailing window is computed
// relative to FetchedAt rather than the wall clock, so evaluating the same
// snapshot twice yields identical findings.

type Applicant struct {
	CharacterID     int64
	CharacterName   string
	CorporationID   int64
	CorporationName string
	AllianceID      int64
	AllianceName    string

	Birthday       *time.Time
	SecurityStatus float64

	CorpHistory   []CorpRecord // newest first
	Killboard     KillboardStats
	Logins        []time.Time
	Assets        *AssetSummary
	WalletJournal []WalletEntry

	// Characters registered under the same auth identity, used for alt
	// correlation. Declared entries were disclosed by the applicant.
	LinkedCharacters []LinkedCharacter
	DeclaredAlts     []string

	FetchedAt   time.Time
	DataSources []string
}

// CorpRecord is a single corporation membership interval.
type CorpRecord struct {
	CorporationID   int64
	CorporationName string
	Start           time.Time
	End             *time.Time // nil for the current corp
	IsHostile       bool       // marked hostile by the data source itself
	IsNPC           bool
}

// TenureDays returns the length of the membership in whole days, using now
// as the end for an open interval.
func (r CorpRecord) TenureDays(now time.Time) int {
	end := now
	if r.End != nil {
		end = *r.End
	}
	d := int(end.Sub(r.Start).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// KillboardStats summarizes killboard activity for one character.
type KillboardStats struct {
	KillsTotal   int
	Kills30d     int
	Kills90d     int
	DeathsTotal  int
	Deaths30d    int
	SoloKills    int
	AwoxKills    int // kills on corp or alliance mates
	ISKDestroyed float64
	ISKLost      float64
	TopShips     []string
	TopRegions   []string
	AvgFleetSize float64
	LastKill     *time.Time
	LastLoss     *time.Time

	// Raw kill timestamps, kept for timezone-bucket derivation.
	KillTimes []time.Time
}

// AssetSummary is the declared-asset view from the auth bridge.
type AssetSummary struct {
	TotalValueISK  float64
	ItemCount      int
	LocationCount  int
	CapitalShips   []string
	Supercapitals  []string
	PrimaryRegions []string
	HasStructures  bool
}

// WalletEntry is one wallet journal row.
type WalletEntry struct {
	Date          time.Time
	Amount        float64 // positive for incoming
	RefType       string  // e.g. player_donation, contract_price
	FirstPartyID  int64
	SecondPartyID int64
}

// LinkedCharacter is another character on the applicant's auth account.
type LinkedCharacter struct {
	CharacterID   int64
	CharacterName string
	CorporationID int64
	AllianceID    int64
	Declared      bool
	Logins        []time.Time
}

// SuspectedAlt is an alt-correlation result with its supporting evidence.
type SuspectedAlt struct {
	CharacterID   int64          `json:"character_id"`
	CharacterName string         `json:"character_name"`
	Confidence    float64        `json:"confidence"`
	Method        string         `json:"method"`
	Evidence      map[string]any `json:"evidence,omitempty"`
}

// Playstyle classifies how the applicant actually plays, derived from
// killboard stats.
type Playstyle struct {
	Primary   string   `json:"primary,omitempty"`
	Secondary string   `json:"secondary,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	GroupSize string   `json:"group_size,omitempty"` // solo | small_gang | fleet
}
