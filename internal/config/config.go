package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config is loaded once at process start and treated as immutable for the
// process lifetime.
type Config struct {
	Env        string `toml:"env"`
	ListenAddr string `toml:"listen_addr" validate:"required"`

	DatabaseURL     string `toml:"database_url"`
	AnalysisWorkers int    `toml:"analysis_workers" validate:"gte=0"`

	ESIBaseURL   string `toml:"esi_base_url" validate:"omitempty,url"`
	ZKillBaseURL string `toml:"zkill_base_url" validate:"omitempty,url"`

	// Entities considered hostile for this deployment.
	HostileCorps     []int64 `toml:"hostile_corps"`
	HostileAlliances []int64 `toml:"hostile_alliances"`

	// Dominant timezone of the recruiting alliance: EU-TZ, US-TZ or AU-TZ.
	// Empty disables the timezone-mismatch rule.
	ReferenceTimezone string `toml:"reference_timezone" validate:"omitempty,oneof=EU-TZ US-TZ AU-TZ"`

	BatchConcurrency int `toml:"batch_concurrency" validate:"gte=1"`

	Thresholds Thresholds `toml:"thresholds"`
}

// Thresholds carries every numeric rule constant, grouped per extractor.
type Thresholds struct {
	CorpHistory CorpHistoryThresholds `toml:"corp_history"`
	Activity    ActivityThresholds    `toml:"activity"`
	Assets      AssetThresholds       `toml:"assets"`
	Wallet      WalletThresholds      `toml:"wallet"`
	Social      SocialThresholds      `toml:"social"`
	Scoring     ScoringThresholds     `toml:"scoring"`
}

type CorpHistoryThresholds struct {
	RapidHopCount         int `toml:"rapid_hop_count" validate:"gte=2"`
	RapidHopWindowDays    int `toml:"rapid_hop_window_days" validate:"gte=1"`
	ShortTenureDays       int `toml:"short_tenure_days" validate:"gte=1"`
	EstablishedTenureDays int `toml:"established_tenure_days" validate:"gte=1"`
	EstablishedTotalDays  int `toml:"established_total_days" validate:"gte=1"`
}

type ActivityThresholds struct {
	LowActivityKills90d  int `toml:"low_activity_kills_90d" validate:"gte=0"`
	ActivePvperKills90d  int `toml:"active_pvper_kills_90d" validate:"gtefield=LowActivityKills90d"`
	InactiveDays         int `toml:"inactive_days" validate:"gte=1"`
	SeverelyInactiveDays int `toml:"severely_inactive_days" validate:"gtefield=InactiveDays"`
}

type AssetThresholds struct {
	MinValueISK        float64 `toml:"min_value_isk" validate:"gte=0"`
	WealthyISK         float64 `toml:"wealthy_isk" validate:"gte=0"`
	ScatteredLocations int     `toml:"scattered_locations" validate:"gte=2"`
}

type WalletThresholds struct {
	RMTSameAmountCount  int     `toml:"rmt_same_amount_count" validate:"gte=2"`
	RMTMinAmountISK     float64 `toml:"rmt_min_amount_isk" validate:"gte=0"`
	RMTIntervalMinHours float64 `toml:"rmt_interval_min_hours" validate:"gte=0"`
	RMTIntervalMaxHours float64 `toml:"rmt_interval_max_hours" validate:"gtefield=RMTIntervalMinHours"`
	RMTIntervalVariance float64 `toml:"rmt_interval_variance" validate:"gte=0"`
	LargeTransferISK    float64 `toml:"large_transfer_isk" validate:"gte=0"`
	PreJoinWindowDays   int     `toml:"pre_join_window_days" validate:"gte=1"`
}

type SocialThresholds struct {
	AltConfidence       float64 `toml:"alt_confidence" validate:"gte=0,lte=1"`
	MediumAltConfidence float64 `toml:"medium_alt_confidence" validate:"gte=0,lte=1"`
	SuspiciousAltCount  int     `toml:"suspicious_alt_count" validate:"gte=1"`
}

type ScoringThresholds struct {
	// RedActivation is the confidence a RED finding needs to force an
	// overall RED verdict; YellowActivation likewise for YELLOW.
	RedActivation    float64 `toml:"red_activation" validate:"gte=0,lte=1"`
	YellowActivation float64 `toml:"yellow_activation" validate:"gte=0,lte=1"`
	// BaselineConfidence is reported for a zero-finding run: insufficient
	// signal, deliberately distinguishable from a confidently clean score.
	BaselineConfidence float64 `toml:"baseline_confidence" validate:"gt=0,lte=1"`
}

// Default returns the built-in configuration. Threshold values mirror the
// fixed heuristics the analyzers were tuned with.
func Default() Config {
	return Config{
		Env:          "development",
		ListenAddr:   ":8080",
		ESIBaseURL:   "https://esi.evetech.net/latest",
		ZKillBaseURL: "https://zkillboard.com/api",

		BatchConcurrency: 4,

		Thresholds: Thresholds{
			CorpHistory: CorpHistoryThresholds{
				RapidHopCount:         5,
				RapidHopWindowDays:    180,
				ShortTenureDays:       30,
				EstablishedTenureDays: 365,
				EstablishedTotalDays:  730,
			},
			Activity: ActivityThresholds{
				LowActivityKills90d:  20,
				ActivePvperKills90d:  50,
				InactiveDays:         30,
				SeverelyInactiveDays: 90,
			},
			Assets: AssetThresholds{
				MinValueISK:        500_000_000,
				WealthyISK:         10_000_000_000,
				ScatteredLocations: 6,
			},
			Wallet: WalletThresholds{
				RMTSameAmountCount:  5,
				RMTMinAmountISK:     100_000_000,
				RMTIntervalMinHours: 100,
				RMTIntervalMaxHours: 200,
				RMTIntervalVariance: 1000,
				LargeTransferISK:    1_000_000_000,
				PreJoinWindowDays:   30,
			},
			Social: SocialThresholds{
				AltConfidence:       0.8,
				MediumAltConfidence: 0.5,
				SuspiciousAltCount:  3,
			},
			Scoring: ScoringThresholds{
				RedActivation:      0.8,
				YellowActivation:   0.6,
				BaselineConfidence: 0.3,
			},
		},
	}
}

// Load builds the effective configuration: defaults, then the TOML file at
// path (skipped when path is empty or missing), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// run on defaults
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getenv("APP_ENV", cfg.Env)
	cfg.ListenAddr = getenv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.AnalysisWorkers = getenvInt("ANALYSIS_WORKERS", cfg.AnalysisWorkers)
	cfg.ReferenceTimezone = getenv("REFERENCE_TIMEZONE", cfg.ReferenceTimezone)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil {
			return out
		}
	}
	return def
}
