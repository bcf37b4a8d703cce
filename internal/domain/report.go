package domain

import "time"

// Severity is a risk tier for a flag or a whole report.
type Severity string

const (
	SeverityRed    Severity = "RED"
	SeverityYellow Severity = "YELLOW"
	SeverityGreen  Severity = "GREEN"
)

// Rank orders severities for sorting and precedence: RED before YELLOW
// before GREEN. Unknown values sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityRed:
		return 0
	case SeverityYellow:
		return 1
	case SeverityGreen:
		return 2
	}
	return 3
}

// Category groups flags by the rule family that produces them.
type Category string

const (
	CategoryCorpHistory Category = "corp_history"
	CategoryActivity    Category = "activity"
	CategoryAssets      Category = "assets"
	CategoryWallet      Category = "wallet"
	CategoryAlts        Category = "alts"
)

// Finding is one rule-derived observation. Extractors fill Code, Reason,
// Evidence and Confidence; the aggregator stamps Severity, Category and
// Source from the flag registry and the producing extractor.
type Finding struct {
	Code       string         `json:"code"`
	Severity   Severity       `json:"severity"`
	Category   Category       `json:"category"`
	Reason     string         `json:"reason"`
	Evidence   map[string]any `json:"evidence,omitempty"`
	Confidence float64        `json:"confidence"` // 0..1
	Source     string         `json:"source"`     // extractor name
}

// Completeness marks whether every extractor contributed to a report.
type Completeness string

const (
	CompletenessFull    Completeness = "full"
	CompletenessPartial Completeness = "partial"
)

// Assessment is the deterministic output of the aggregation engine for one
// applicant snapshot. It carries no identifiers or timestamps so that equal
// inputs produce equal assessments.
type Assessment struct {
	Tier            Severity       `json:"tier"`
	Confidence      float64        `json:"confidence"`
	Findings        []Finding      `json:"findings"`
	Recommendations []string       `json:"recommendations"`
	Playstyle       Playstyle      `json:"playstyle"`
	SuspectedAlts   []SuspectedAlt `json:"suspected_alts,omitempty"`
	ExtractorsRun   []string       `json:"extractors_run"`
	FailedSources   []string       `json:"failed_sources,omitempty"`
	Completeness    Completeness   `json:"completeness"`
}

// ReportStatus tracks a report through the pipeline.
type ReportStatus string

const (
	StatusQueued    ReportStatus = "queued"
	StatusRunning   ReportStatus = "running"
	StatusCompleted ReportStatus = "completed"
	StatusFailed    ReportStatus = "failed"
)

// RiskReport is the final structured report handed to callers and persisted.
type RiskReport struct {
	ID            string       `json:"id"`
	CharacterID   int64        `json:"character_id"`
	CharacterName string       `json:"character_name"`
	Status        ReportStatus `json:"status"`
	RequestedBy   string       `json:"requested_by,omitempty"`

	Assessment

	RedCount    int `json:"red_count"`
	YellowCount int `json:"yellow_count"`
	GreenCount  int `json:"green_count"`

	// Upstream sources that failed during profile assembly; a non-empty
	// list means the report is degraded, never that the subject is clean.
	DataErrors []string `json:"data_errors,omitempty"`

	CreatedAt        time.Time `json:"created_at"`
	CompletedAt      time.Time `json:"completed_at"`
	ProcessingTimeMS int64     `json:"processing_time_ms"`
}

// MarkDataIncomplete records upstream fetch failures and downgrades the
// completeness marker. A report built from partial data must never read as
// a clean, fully informed verdict.
func (r *RiskReport) MarkDataIncomplete(sources ...string) {
	if len(sources) == 0 {
		return
	}
	r.DataErrors = append(r.DataErrors, sources...)
	r.Completeness = CompletenessPartial
}

// CountFlags recomputes the per-tier counters from the finding list.
func (r *RiskReport) CountFlags() {
	r.RedCount, r.YellowCount, r.GreenCount = 0, 0, 0
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityRed:
			r.RedCount++
		case SeverityYellow:
			r.YellowCount++
		case SeverityGreen:
			r.GreenCount++
		}
	}
}
